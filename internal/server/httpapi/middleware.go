package httpapi

import (
	"context"
	"net/http"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/server/models"
)

// SessionCookieName is the cookie the login handler sets and the auth
// middleware reads.
const SessionCookieName = "fileharbor_session"

type contextKey string

const userContextKey contextKey = "user"

// userFromContext returns the authenticated user placed there by
// requireSession.
func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok
}

// requireSession validates the session cookie and injects the user into the
// request context. Requests without a valid, unexpired, unrevoked session
// answer 401.
func (s *HTTPServer) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
			return
		}

		user, err := s.users.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			writeError(r.Context(), w, s.logger, common.ErrorUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}
