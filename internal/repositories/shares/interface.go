// Package shares implements the local-cache repository for SharedNote links.
package shares

import (
	"context"

	"github.com/akraslov/notesync/internal/models"
)

// Repository describes the cache operations for shared-note links.
type Repository interface {
	// Upsert inserts a link or, when the (note, owner, target) tuple is
	// already cached, replaces it.
	Upsert(ctx context.Context, share *models.SharedNote) error

	// UpdateStatusByRemoteID rewrites only the status of the link the
	// server knows under remoteID.
	UpdateStatusByRemoteID(ctx context.Context, remoteID int64, status string) error

	// GetByTarget returns the link giving targetID access to noteID, or
	// common.ErrNotFound.
	GetByTarget(ctx context.Context, noteID, targetID int64) (*models.SharedNote, error)

	// GetAll returns every cached link.
	GetAll(ctx context.Context) ([]models.SharedNote, error)

	// Clear wipes the shared_notes table.
	Clear(ctx context.Context) error
}
