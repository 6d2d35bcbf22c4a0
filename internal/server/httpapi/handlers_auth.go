package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrorValidation
	}
	if err := validate.Struct(dst); err != nil {
		return common.ErrorValidation
	}
	return nil
}

func (s *HTTPServer) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		// malformed login payloads get the same answer as bad credentials
		writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(token, s.sessionValidity))
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := s.users.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Warn(r.Context(), "logout error", "error", err.Error())
		}
	}

	http.SetCookie(w, s.sessionCookie("", -time.Second))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *HTTPServer) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: false})
		return
	}

	user, err := s.users.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: true, User: user})
}
