package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/logging"
	"github.com/dkovalenko/fileharbor/internal/server/blobstore"
	"github.com/dkovalenko/fileharbor/internal/server/config"
	"github.com/dkovalenko/fileharbor/internal/server/models"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// presignValidity bounds how long a download URL handed to a client stays
// usable.
const presignValidity = 15 * time.Minute

// newStorageKey derives the blob key from the owner and a fresh UUID. The
// display name stays out of the key, so equally named uploads never collide
// or overwrite.
func newStorageKey(ownerID string) string {
	return fmt.Sprintf("users/%s/%s", ownerID, uuid.New())
}

// UploadParams carries one upload request into the service.
type UploadParams struct {
	OwnerID  string
	FolderID *string
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// FileService orchestrates uploads, downloads, listing and deletes, always
// enforcing ownership. Blob writes precede metadata writes on upload; blob
// deletes precede metadata deletes on delete, so a failure never loses track
// of stored bytes silently.
type FileService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	blobs        blobstore.Store
	logger       logging.Logger
	maxSize      int64
	allowedMime  map[string]struct{}
	presignLinks bool
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, logger logging.Logger) *FileService {
	var allowed map[string]struct{}
	if cfg.AllowedMimeTypes != "" {
		allowed = make(map[string]struct{})
		for _, mt := range strings.Split(cfg.AllowedMimeTypes, ",") {
			allowed[strings.TrimSpace(mt)] = struct{}{}
		}
	}
	return &FileService{
		db:           db,
		repomanager:  m,
		blobs:        blobs,
		logger:       logger.With("module", "files"),
		maxSize:      cfg.MaxUploadSize,
		allowedMime:  allowed,
		presignLinks: cfg.PresignDownloads,
	}
}

// PresignDownloads reports whether downloads answer with a presigned URL
// instead of streamed bytes.
func (s *FileService) PresignDownloads() bool { return s.presignLinks }

func (s *FileService) validateUpload(p *UploadParams) error {
	if p.Body == nil || p.Size <= 0 {
		return common.ErrorInvalidUpload
	}
	if err := validateName(p.Name); err != nil {
		return common.ErrorInvalidUpload
	}
	if s.maxSize > 0 && p.Size > s.maxSize {
		return common.ErrorInvalidUpload
	}
	if s.allowedMime != nil {
		if _, ok := s.allowedMime[p.MimeType]; !ok {
			return common.ErrorInvalidUpload
		}
	}
	return nil
}

// Upload validates the payload, writes the blob, then records the metadata
// row. When the metadata write fails the already-written blob is removed
// again, so no upload leaves an orphaned blob behind.
func (s *FileService) Upload(ctx context.Context, p UploadParams) (*models.File, error) {
	if err := s.validateUpload(&p); err != nil {
		return nil, err
	}

	if p.FolderID != nil {
		folder, err := s.repomanager.Folders(s.db).GetByID(ctx, *p.FolderID)
		if err != nil {
			return nil, err
		}
		if err := authorizeOwner(folder.UserID, p.OwnerID); err != nil {
			return nil, err
		}
	}

	key := newStorageKey(p.OwnerID)

	body := p.Body
	var payload []byte
	if thumbnailable(p.MimeType) {
		// buffer image payloads so the thumbnail can be cut from the same bytes
		data, err := io.ReadAll(io.LimitReader(p.Body, p.Size))
		if err != nil {
			return nil, common.ErrorInvalidUpload
		}
		payload = data
		body = bytes.NewReader(data)
	}

	if err := s.blobs.Put(ctx, key, p.MimeType, body, p.Size); err != nil {
		return nil, err
	}

	var thumbKey *string
	if payload != nil {
		if tk, err := s.storeThumbnail(ctx, key, p.MimeType, payload); err != nil {
			s.logger.Warn(ctx, "thumbnail generation failed", "key", key, "error", err.Error())
		} else {
			thumbKey = &tk
		}
	}

	file := &models.File{
		Name:         p.Name,
		Size:         p.Size,
		MimeType:     p.MimeType,
		StorageKey:   key,
		ThumbnailKey: thumbKey,
		UserID:       p.OwnerID,
		FolderID:     p.FolderID,
	}

	created, err := s.repomanager.Files(s.db).Create(ctx, file)
	if err != nil {
		// compensating delete keeps the blob store free of orphans
		if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil {
			s.logger.Error(ctx, "orphaned blob after failed metadata write", "key", key, "error", cleanupErr.Error())
		}
		if thumbKey != nil {
			_ = s.blobs.Delete(ctx, *thumbKey)
		}
		return nil, fmt.Errorf("error recording file: %w", err)
	}

	return created, nil
}

// Download returns the file's metadata and a reader over its bytes after the
// ownership check.
func (s *FileService) Download(ctx context.Context, fileID, requesterID string) (*models.File, io.ReadCloser, error) {
	file, err := s.getOwned(ctx, fileID, requesterID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return file, rc, nil
}

// DownloadURL returns a short-lived presigned URL for the file after the
// ownership check. The URL expires, so it never becomes a shareable raw
// locator.
func (s *FileService) DownloadURL(ctx context.Context, fileID, requesterID string) (string, error) {
	file, err := s.getOwned(ctx, fileID, requesterID)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, file.StorageKey, file.Name, presignValidity)
}

// List returns the owner's files newest first. A nil folderID selects
// root-level files only.
func (s *FileService) List(ctx context.Context, ownerID string, folderID *string) ([]*models.File, error) {
	return s.repomanager.Files(s.db).ListByOwner(ctx, ownerID, folderID)
}

// Delete removes the blob first and the metadata row second. A blob-store
// failure leaves the row intact; a metadata failure after the blob is gone
// surfaces as *common.PartialDeleteError so the dangling row can be
// reconciled instead of silently lost.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID string) error {
	file, err := s.getOwned(ctx, fileID, requesterID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		return err
	}

	if file.ThumbnailKey != nil {
		if err := s.blobs.Delete(ctx, *file.ThumbnailKey); err != nil {
			s.logger.Warn(ctx, "thumbnail delete failed", "key", *file.ThumbnailKey, "error", err.Error())
		}
	}

	if err := s.repomanager.Files(s.db).Delete(ctx, file.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the row vanished between the read and the delete
			return common.ErrorNotFound
		}
		return &common.PartialDeleteError{FileID: file.ID, StorageKey: file.StorageKey, Err: err}
	}

	return nil
}

// Thumbnail streams the stored image preview after the ownership check.
func (s *FileService) Thumbnail(ctx context.Context, fileID, requesterID string) (io.ReadCloser, error) {
	file, err := s.getOwned(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}
	if file.ThumbnailKey == nil {
		return nil, common.ErrorNotFound
	}
	return s.blobs.Get(ctx, *file.ThumbnailKey)
}

func (s *FileService) getOwned(ctx context.Context, fileID, requesterID string) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(file.UserID, requesterID); err != nil {
		return nil, err
	}
	return file, nil
}
