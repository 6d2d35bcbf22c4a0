// Package httpapi exposes the file storage operations over HTTP/JSON.
// Authentication rides a session cookie; every authenticated route runs
// through requireSession before touching a service.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkovalenko/fileharbor/internal/logging"
	"github.com/dkovalenko/fileharbor/internal/server/config"
	"github.com/dkovalenko/fileharbor/internal/server/services"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type HTTPServer struct {
	address string
	logger  logging.Logger
	users   *services.UserService
	files   *services.FileService
	folders *services.FolderService

	maxUploadSize   int64
	sessionValidity time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, fs *services.FileService, fos *services.FolderService) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddr,
		logger:          l.With("module", "http_server"),
		users:           us,
		files:           fs,
		folders:         fos,
		maxUploadSize:   cfg.MaxUploadSize,
		sessionValidity: cfg.SessionValidity,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /auth/status", s.handleAuthStatus)

	mux.HandleFunc("POST /api/files/upload", s.requireSession(s.handleFileUpload))
	mux.HandleFunc("GET /api/files", s.requireSession(s.handleFileList))
	mux.HandleFunc("GET /api/files/{id}/download", s.requireSession(s.handleFileDownload))
	mux.HandleFunc("GET /api/files/{id}/thumbnail", s.requireSession(s.handleFileThumbnail))
	mux.HandleFunc("DELETE /api/files/{id}", s.requireSession(s.handleFileDelete))

	mux.HandleFunc("POST /api/folders", s.requireSession(s.handleFolderCreate))
	mux.HandleFunc("GET /api/folders", s.requireSession(s.handleFolderListRoots))
	mux.HandleFunc("GET /api/folders/{id}", s.requireSession(s.handleFolderGet))
	mux.HandleFunc("GET /api/folders/{id}/contents", s.requireSession(s.handleFolderContents))
	mux.HandleFunc("PUT /api/folders/{id}", s.requireSession(s.handleFolderRename))
	mux.HandleFunc("DELETE /api/folders/{id}", s.requireSession(s.handleFolderDelete))
	mux.HandleFunc("POST /api/folders/{id}/upload", s.requireSession(s.handleFolderUpload))

	return mux
}
