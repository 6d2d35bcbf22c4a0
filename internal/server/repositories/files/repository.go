package files

import (
	"context"

	"github.com/dkovalenko/fileharbor/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	// ListByOwner returns the owner's files newest first. A nil folderID
	// selects root-level files only; folder contents are listed by passing
	// the folder's ID.
	ListByOwner(ctx context.Context, userID string, folderID *string) ([]*models.File, error)
	// Delete removes the metadata row. Returns common.ErrorNotFound when the
	// row is already gone, so a second concurrent delete does not report
	// success.
	Delete(ctx context.Context, id string) error
}
