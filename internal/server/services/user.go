// Package services contains the server-side business logic: account
// management, file upload/download/delete mediation against object storage,
// and folder organization. Services own a *sql.DB and reach the metadata
// store through repository interfaces so tests can swap either side.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/server/auth"
	"github.com/dkovalenko/fileharbor/internal/server/config"
	"github.com/dkovalenko/fileharbor/internal/server/models"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login and session lifecycle. The cookie
// token is a signed reference to a server-held session row, so logout
// revokes it immediately.
type UserService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	sessionValidity time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidity,
	}
}

// Register creates a new user with a bcrypt-hashed password. A taken email
// yields common.ErrorEmailTaken.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			return nil, common.ErrorEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and, on success, opens a session and
// returns its signed cookie token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, s.sessionValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	token, err := auth.GenerateSessionToken(session.ID, user.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Authenticate resolves a cookie token to its user. The session row must
// still exist and be unexpired; expired rows are removed on sight.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseSessionToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	sessionRepo := s.repomanager.Sessions(s.db)
	session, err := sessionRepo.Find(ctx, claims.SessionID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = sessionRepo.Delete(ctx, session.ID)
		return nil, common.ErrorUnauthorized
	}

	if session.UserID != claims.UserID {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// PurgeExpiredSessions removes session rows past their expiry and returns
// how many were dropped. Expired rows are also removed lazily on
// authentication, so this only keeps the table from accumulating rows for
// clients that never came back.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx)
}

// Logout revokes the session referenced by the token. An already-invalid
// token is not an error: the client ends up logged out either way.
func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseSessionToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID)
}
