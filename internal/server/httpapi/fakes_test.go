package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
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
	"github.com/dkovalenko/fileharbor/internal/server/services"
	"github.com/google/uuid"
)

// --- in-memory repositories ---

type memUsersRepo struct{ users map[string]*models.User }

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, common.ErrorEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memSessionsRepo struct{ sessions map[string]*models.Session }

func (m *memSessionsRepo) Create(ctx context.Context, userID string, validity time.Duration) (*models.Session, error) {
	s := &models.Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: time.Now().Add(validity), CreatedAt: time.Now()}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *memSessionsRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *memSessionsRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type memFoldersRepo struct {
	folders map[string]*models.Folder
	files   *memFilesRepo
}

func (m *memFoldersRepo) Create(ctx context.Context, f *models.Folder) (*models.Folder, error) {
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now()
	m.folders[f.ID] = f
	return f, nil
}

func (m *memFoldersRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (m *memFoldersRepo) ListRoots(ctx context.Context, userID string) ([]*models.Folder, error) {
	result := []*models.Folder{}
	for _, f := range m.folders {
		if f.UserID == userID && f.ParentID == nil {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memFoldersRepo) ListChildren(ctx context.Context, parentID string) ([]*models.Folder, error) {
	result := []*models.Folder{}
	for _, f := range m.folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memFoldersRepo) Rename(ctx context.Context, id, name string) (*models.Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f.Name = name
	return f, nil
}

func (m *memFoldersRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.folders[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.folders, id)
	return nil
}

func (m *memFoldersRepo) HasChildren(ctx context.Context, id string) (bool, error) {
	for _, f := range m.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return true, nil
		}
	}
	for _, f := range m.files.files {
		if f.FolderID != nil && *f.FolderID == id {
			return true, nil
		}
	}
	return false, nil
}

type memFilesRepo struct{ files map[string]*models.File }

func (m *memFilesRepo) Create(ctx context.Context, f *models.File) (*models.File, error) {
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now()
	m.files[f.ID] = f
	return f, nil
}

func (m *memFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (m *memFilesRepo) ListByOwner(ctx context.Context, userID string, folderID *string) ([]*models.File, error) {
	result := []*models.File{}
	for _, f := range m.files {
		if f.UserID != userID {
			continue
		}
		switch {
		case folderID == nil && f.FolderID == nil:
			result = append(result, f)
		case folderID != nil && f.FolderID != nil && *f.FolderID == *folderID:
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memFilesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.files, id)
	return nil
}

type memRepoManager struct {
	users    *memUsersRepo
	sessions *memSessionsRepo
	folders  *memFoldersRepo
	files    *memFilesRepo
}

func newMemRepoManager() *memRepoManager {
	fi := &memFilesRepo{files: map[string]*models.File{}}
	return &memRepoManager{
		users:    &memUsersRepo{users: map[string]*models.User{}},
		sessions: &memSessionsRepo{sessions: map[string]*models.Session{}},
		folders:  &memFoldersRepo{folders: map[string]*models.Folder{}, files: fi},
		files:    fi,
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *memRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository    { return m.sessions }
func (m *memRepoManager) Folders(dbx.DBTX) foldersrepo.Repository      { return m.folders }
func (m *memRepoManager) Files(dbx.DBTX) filesrepo.Repository          { return m.files }

// --- in-memory blob store ---

type memBlobStore struct{ blobs map[string][]byte }

func (b *memBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.blobs[key] = data
	return nil
}

func (b *memBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := b.blobs[key]
	if !ok {
		return nil, common.ErrorUpstreamStorage
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobStore) Delete(ctx context.Context, key string) error {
	delete(b.blobs, key)
	return nil
}

func (b *memBlobStore) PresignGet(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

// --- server under test ---

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*HTTPServer, http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	if mutate != nil {
		mutate(cfg)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := newMemRepoManager()
	blobs := &memBlobStore{blobs: map[string][]byte{}}

	us := services.NewUserService(db, rm, cfg)
	fs := services.NewFileService(db, rm, blobs, cfg, logger)
	fos := services.NewFolderService(db, rm, fs)

	srv := NewHTTPServer(cfg, logger, us, fs, fos)
	return srv, srv.routes(), mock
}

// --- request helpers ---

func doJSON(t *testing.T, h http.Handler, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signUpAndIn(t *testing.T, h http.Handler, email string) *http.Cookie {
	t.Helper()

	body := `{"email":"` + email + `","password":"password123"}`
	if rec := doJSON(t, h, http.MethodPost, "/register", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body)
	}
	rec := doJSON(t, h, http.MethodPost, "/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("login response did not set a session cookie")
	return nil
}

func multipartBody(t *testing.T, fieldFile, filename, mimeType string, payload []byte, extra map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="` + fieldFile + `"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{mimeType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("part write error: %v", err)
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField error: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close error: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func doUploadRaw(t *testing.T, h http.Handler, target string, cookie *http.Cookie, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, h http.Handler, target string, cookie *http.Cookie, filename, mimeType string, payload []byte, extra map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, "file", filename, mimeType, payload, extra)
	return doUploadRaw(t, h, target, cookie, body, contentType)
}
