// Package session implements the durable single-row store for the current
// identity.
package session

import (
	"context"

	"github.com/akraslov/notesync/internal/models"
)

// Repository stores at most one session. Get returns common.ErrNotFound while
// the app is anonymous.
type Repository interface {
	Get(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
