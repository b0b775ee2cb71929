// Package users implements the local-cache repository for User rows.
package users

import (
	"context"

	"github.com/akraslov/notesync/internal/models"
)

// Repository describes the cache operations for users.
type Repository interface {
	// Upsert inserts or rewrites a user by LocalID.
	Upsert(ctx context.Context, user *models.User) error

	// GetByLocalID returns a user by id, or common.ErrNotFound.
	GetByLocalID(ctx context.Context, localID string) (*models.User, error)

	// GetByUsername returns a user by username, or common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetPending returns the registration backlog, oldest first.
	GetPending(ctx context.Context) ([]models.User, error)

	// Clear wipes the users table.
	Clear(ctx context.Context) error
}
