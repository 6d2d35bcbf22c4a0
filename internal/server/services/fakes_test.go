package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/dbx"
	"github.com/dkovalenko/fileharbor/internal/logging"
	"github.com/dkovalenko/fileharbor/internal/server/config"
	"github.com/dkovalenko/fileharbor/internal/server/models"
	filesrepo "github.com/dkovalenko/fileharbor/internal/server/repositories/files"
	foldersrepo "github.com/dkovalenko/fileharbor/internal/server/repositories/folders"
	sessionsrepo "github.com/dkovalenko/fileharbor/internal/server/repositories/sessions"
	usersrepo "github.com/dkovalenko/fileharbor/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

// --- fake repositories ---

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{},
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorEmailTaken
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeSessionsRepo struct {
	sessions map[string]*models.Session

	createErr error
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID string, validity time.Duration) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeFoldersRepo struct {
	folders map[string]*models.Folder
	files   *fakeFilesRepo

	deleteErr error
}

func newFakeFoldersRepo() *fakeFoldersRepo {
	return &fakeFoldersRepo{folders: map[string]*models.Folder{}}
}

func (f *fakeFoldersRepo) add(userID string, parentID *string, name string) *models.Folder {
	folder := &models.Folder{
		ID: uuid.NewString(), Name: name, UserID: userID, ParentID: parentID,
		CreatedAt: time.Now(),
	}
	f.folders[folder.ID] = folder
	return folder
}

func (f *fakeFoldersRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	folder.ID = uuid.NewString()
	folder.CreatedAt = time.Now()
	f.folders[folder.ID] = folder
	return folder, nil
}

func (f *fakeFoldersRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return folder, nil
}

func (f *fakeFoldersRepo) ListRoots(ctx context.Context, userID string) ([]*models.Folder, error) {
	result := []*models.Folder{}
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.ParentID == nil {
			result = append(result, folder)
		}
	}
	return result, nil
}

func (f *fakeFoldersRepo) ListChildren(ctx context.Context, parentID string) ([]*models.Folder, error) {
	result := []*models.Folder{}
	for _, folder := range f.folders {
		if folder.ParentID != nil && *folder.ParentID == parentID {
			result = append(result, folder)
		}
	}
	return result, nil
}

func (f *fakeFoldersRepo) Rename(ctx context.Context, id string, name string) (*models.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	folder.Name = name
	return folder, nil
}

func (f *fakeFoldersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.folders[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.folders, id)
	return nil
}

func (f *fakeFoldersRepo) HasChildren(ctx context.Context, id string) (bool, error) {
	for _, folder := range f.folders {
		if folder.ParentID != nil && *folder.ParentID == id {
			return true, nil
		}
	}
	if f.files != nil {
		for _, file := range f.files.files {
			if file.FolderID != nil && *file.FolderID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeFilesRepo struct {
	files map[string]*models.File

	createErr error
	deleteErr error
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{files: map[string]*models.File{}}
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	file.ID = uuid.NewString()
	file.CreatedAt = time.Now()
	f.files[file.ID] = file
	return file, nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return file, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, userID string, folderID *string) ([]*models.File, error) {
	result := []*models.File{}
	for _, file := range f.files {
		if file.UserID != userID {
			continue
		}
		switch {
		case folderID == nil && file.FolderID == nil:
			result = append(result, file)
		case folderID != nil && file.FolderID != nil && *file.FolderID == *folderID:
			result = append(result, file)
		}
	}
	return result, nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.files, id)
	return nil
}

// --- fake repository manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	s  *fakeSessionsRepo
	fo *fakeFoldersRepo
	fi *fakeFilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	m := &fakeRepoManager{
		u:  newFakeUsersRepo(),
		s:  newFakeSessionsRepo(),
		fo: newFakeFoldersRepo(),
		fi: newFakeFilesRepo(),
	}
	m.fo.files = m.fi
	return m
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository           { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository     { return m.s }
func (m *fakeRepoManager) Folders(db dbx.DBTX) foldersrepo.Repository       { return m.fo }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository           { return m.fi }

// --- fake blob store ---

type fakeBlobStore struct {
	blobs map[string][]byte

	putErr     error
	getErr     error
	deleteErr  error
	presignErr error

	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.blobs[key]
	if !ok {
		return nil, common.ErrorUpstreamStorage
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeBlobStore) PresignGet(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example/" + key, nil
}
