// Package notes implements the local-cache repository for Note rows.
package notes

import (
	"context"

	"github.com/akraslov/notesync/internal/models"
)

// Repository describes the cache operations the reconciliation layer needs
// for notes. Implementations are backed by the local sqlite database.
type Repository interface {
	// Upsert inserts a new note or rewrites an existing one by LocalID.
	Upsert(ctx context.Context, note *models.Note) error

	// GetByLocalID returns a note by its client-generated id, or
	// common.ErrNotFound.
	GetByLocalID(ctx context.Context, localID string) (*models.Note, error)

	// GetByRemoteID returns the note the server knows under remoteID, or
	// common.ErrNotFound.
	GetByRemoteID(ctx context.Context, remoteID int64) (*models.Note, error)

	// GetAll returns every cached note in insertion order.
	GetAll(ctx context.Context) ([]models.Note, error)

	// GetPendingByOwner returns the pending-create backlog for the given
	// owner (nil matches anonymous notes), oldest first.
	GetPendingByOwner(ctx context.Context, ownerID *int64) ([]models.Note, error)

	// AdoptOwnerless assigns ownerID to every note that has no owner yet.
	AdoptOwnerless(ctx context.Context, ownerID int64) error

	// DeleteByLocalID removes a single note row.
	DeleteByLocalID(ctx context.Context, localID string) error

	// DeleteSynced removes the owner's server-confirmed notes, leaving
	// pending-create rows untouched.
	DeleteSynced(ctx context.Context, ownerID int64) error

	// Clear wipes the whole notes table.
	Clear(ctx context.Context) error
}
