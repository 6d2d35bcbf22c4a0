package folders

import (
	"context"

	"github.com/dkovalenko/fileharbor/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	// ListRoots returns the owner's folders with no parent, newest first.
	ListRoots(ctx context.Context, userID string) ([]*models.Folder, error)
	// ListChildren returns the direct subfolders of a folder, newest first.
	ListChildren(ctx context.Context, parentID string) ([]*models.Folder, error)
	Rename(ctx context.Context, id string, name string) (*models.Folder, error)
	// Delete removes the folder row. Returns common.ErrorNotFound when no row
	// was deleted.
	Delete(ctx context.Context, id string) error
	// HasChildren reports whether the folder still contains subfolders or files.
	HasChildren(ctx context.Context, id string) (bool, error)
}
