package sessions

import (
	"context"
	"time"

	"github.com/dkovalenko/fileharbor/internal/server/models"
)

type Repository interface {
	// Create inserts a session for the user valid for the given duration and
	// returns it with the generated ID.
	Create(ctx context.Context, userID string, validity time.Duration) (*models.Session, error)
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions past their expiry and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
