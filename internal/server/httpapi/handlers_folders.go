package httpapi

import (
	"net/http"

	"github.com/dkovalenko/fileharbor/internal/common"
)

type createFolderRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	ParentID *string `json:"parentId" validate:"omitempty,uuid"`
}

type renameFolderRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (s *HTTPServer) handleFolderCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	var req createFolderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	folder, err := s.folders.Create(r.Context(), user.ID, req.Name, req.ParentID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

func (s *HTTPServer) handleFolderListRoots(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	folders, err := s.folders.ListRoots(r.Context(), user.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

func (s *HTTPServer) handleFolderGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	folder, err := s.folders.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (s *HTTPServer) handleFolderContents(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	contents, err := s.folders.GetContents(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

func (s *HTTPServer) handleFolderRename(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	var req renameFolderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	folder, err := s.folders.Rename(r.Context(), r.PathValue("id"), user.ID, req.Name)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (s *HTTPServer) handleFolderDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	if err := s.folders.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *HTTPServer) handleFolderUpload(w http.ResponseWriter, r *http.Request) {
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

	created, err := s.folders.UploadInto(r.Context(), r.PathValue("id"), user.ID, uploadParams(user.ID, nil, header, file))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
