package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/server/services"
)

// multipartOverhead leaves room for boundaries and form fields on top of the
// file payload itself.
const multipartOverhead = 1 << 20

type downloadURLResponse struct {
	URL string `json:"url"`
}

func (s *HTTPServer) uploadFromRequest(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(s.maxUploadSize + multipartOverhead); err != nil {
		return nil, nil, common.ErrorInvalidUpload
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, common.ErrorInvalidUpload
	}

	return file, header, nil
}

func uploadParams(ownerID string, folderID *string, header *multipart.FileHeader, body io.Reader) services.UploadParams {
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return services.UploadParams{
		OwnerID:  ownerID,
		FolderID: folderID,
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Body:     body,
	}
}

func (s *HTTPServer) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	file, header, err := s.uploadFromRequest(w, r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	defer file.Close()

	var folderID *string
	if v := r.FormValue("folderId"); v != "" {
		folderID = &v
	}

	created, err := s.files.Upload(r.Context(), uploadParams(user.ID, folderID, header, file))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleFileList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	files, err := s.files.List(r.Context(), user.ID, nil)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (s *HTTPServer) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	fileID := r.PathValue("id")

	if s.files.PresignDownloads() {
		url, err := s.files.DownloadURL(r.Context(), fileID, user.ID)
		if err != nil {
			writeError(r.Context(), w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, downloadURLResponse{URL: url})
		return
	}

	file, rc, err := s.files.Download(r.Context(), fileID, user.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn(r.Context(), "download stream interrupted", "file_id", file.ID, "error", err.Error())
	}
}

func (s *HTTPServer) handleFileThumbnail(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	rc, err := s.files.Thumbnail(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func (s *HTTPServer) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	if err := s.files.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
