package services

import (
	"context"
	"database/sql"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/dbx"
	"github.com/dkovalenko/fileharbor/internal/server/models"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/repomanager"
)

// FolderContents bundles a folder's direct files and subfolders.
type FolderContents struct {
	Files   []*models.File   `json:"files"`
	Folders []*models.Folder `json:"folders"`
}

// FolderService orchestrates folder CRUD and nesting. Every operation on an
// existing folder runs the ownership predicate first. Deleting a non-empty
// folder is rejected: callers must empty a folder before removing it, which
// keeps children from silently dangling.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       *FileService
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, files *FileService) *FolderService {
	return &FolderService{
		db:          db,
		repomanager: m,
		files:       files,
	}
}

// Create makes a folder for ownerID, optionally nested under parentID. The
// parent must exist and belong to the same owner.
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	repo := s.repomanager.Folders(s.db)

	if parentID != nil {
		parent, err := repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if err := authorizeOwner(parent.UserID, ownerID); err != nil {
			return nil, err
		}
	}

	return repo.Create(ctx, &models.Folder{Name: name, UserID: ownerID, ParentID: parentID})
}

// Get returns the folder after the ownership check.
func (s *FolderService) Get(ctx context.Context, folderID, requesterID string) (*models.Folder, error) {
	return s.getOwned(ctx, folderID, requesterID)
}

// GetContents lists the folder's direct files and subfolders. Ownership is
// checked on the container only; children share the owner by construction.
func (s *FolderService) GetContents(ctx context.Context, folderID, requesterID string) (*FolderContents, error) {
	folder, err := s.getOwned(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	files, err := s.repomanager.Files(s.db).ListByOwner(ctx, folder.UserID, &folder.ID)
	if err != nil {
		return nil, err
	}

	subfolders, err := s.repomanager.Folders(s.db).ListChildren(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	return &FolderContents{Files: files, Folders: subfolders}, nil
}

// ListRoots returns the owner's top-level folders, newest first.
func (s *FolderService) ListRoots(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).ListRoots(ctx, ownerID)
}

// Rename updates the folder's name under the same rules as Create.
func (s *FolderService) Rename(ctx context.Context, folderID, requesterID, newName string) (*models.Folder, error) {
	if err := validateName(newName); err != nil {
		return nil, err
	}

	if _, err := s.getOwned(ctx, folderID, requesterID); err != nil {
		return nil, err
	}

	return s.repomanager.Folders(s.db).Rename(ctx, folderID, newName)
}

// Delete removes an empty folder. A folder still holding files or subfolders
// fails with common.ErrorFolderNotEmpty.
func (s *FolderService) Delete(ctx context.Context, folderID, requesterID string) error {
	folder, err := s.getOwned(ctx, folderID, requesterID)
	if err != nil {
		return err
	}

	// emptiness check and delete share a transaction so a concurrent upload
	// cannot slip a child in between
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Folders(tx)

		has, err := repo.HasChildren(ctx, folder.ID)
		if err != nil {
			return err
		}
		if has {
			return common.ErrorFolderNotEmpty
		}

		return repo.Delete(ctx, folder.ID)
	})
}

// UploadInto checks ownership of the target folder, then delegates to the
// file service.
func (s *FolderService) UploadInto(ctx context.Context, folderID, requesterID string, p UploadParams) (*models.File, error) {
	folder, err := s.getOwned(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	p.OwnerID = requesterID
	p.FolderID = &folder.ID
	return s.files.Upload(ctx, p)
}

func (s *FolderService) getOwned(ctx context.Context, folderID, requesterID string) (*models.Folder, error) {
	folder, err := s.repomanager.Folders(s.db).GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(folder.UserID, requesterID); err != nil {
		return nil, err
	}
	return folder, nil
}
