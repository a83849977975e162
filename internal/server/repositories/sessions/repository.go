// Package sessions persists the server-side records behind session cookies.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository stores session records. Records are written once and only read
// afterwards; DeleteExpired is the only removal path.
type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
