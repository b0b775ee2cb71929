package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akraslov/notesync/internal/api"
	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/dbx"
	"github.com/akraslov/notesync/internal/logging"
	"github.com/akraslov/notesync/internal/models"
	"github.com/akraslov/notesync/internal/repositories/notes"
	"github.com/akraslov/notesync/internal/repositories/shares"
	"github.com/google/uuid"
)

// ShareService tracks which notes the user shares and which are shared with
// them. Sharing is meaningless offline, so every mutation here is
// remote-first: the cache only mirrors what the server confirmed.
type ShareService struct {
	db  *sql.DB
	api api.Client
	log logging.Logger
}

func NewShareService(db *sql.DB, client api.Client, log logging.Logger) *ShareService {
	return &ShareService{db: db, api: client, log: log}
}

func (s *ShareService) repo() shares.Repository {
	return shares.NewSQLiteRepository(s.db)
}

func (s *ShareService) notesRepo() notes.Repository {
	return notes.NewSQLiteRepository(s.db)
}

// ShareNote grants friendID access to noteID (a remote note id) and mirrors
// the confirmed link locally.
func (s *ShareService) ShareNote(ctx context.Context, userID, noteID, friendID int64) (*models.SharedNote, error) {
	resp, err := s.api.ShareNote(ctx, userID, api.ShareRequest{NoteID: noteID, TargetUserID: friendID})
	if err != nil {
		return nil, fmt.Errorf("failed to share note: %w", err)
	}

	row := shareFromResponse(uuid.NewString(), resp)
	if err := s.repo().Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to cache shared note: %w", err)
	}
	return row, nil
}

// UpdateStatus changes a share's status on the server and mirrors only the
// status field of the matching cached row.
func (s *ShareService) UpdateStatus(ctx context.Context, userID, shareID int64) (string, error) {
	resp, err := s.api.UpdateShareStatus(ctx, userID, shareID)
	if err != nil {
		return "", fmt.Errorf("failed to update share status: %w", err)
	}

	if err := s.repo().UpdateStatusByRemoteID(ctx, resp.ID, resp.Status); err != nil {
		return "", fmt.Errorf("failed to cache share status: %w", err)
	}
	return resp.Status, nil
}

// SharedWithMe reads the incoming shares straight from the server; the cache
// is only updated by SyncShares.
func (s *ShareService) SharedWithMe(ctx context.Context, userID int64) ([]models.SharedNote, error) {
	resp, err := s.api.ListSharedWithMe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming shares: %w", err)
	}
	return mapShares(resp), nil
}

// SharedByMe reads the outgoing shares straight from the server.
func (s *ShareService) SharedByMe(ctx context.Context, userID int64) ([]models.SharedNote, error) {
	resp, err := s.api.ListSharedByMe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing shares: %w", err)
	}
	return mapShares(resp), nil
}

// SyncShares refreshes the cached share table from both directions. If either
// fetch fails the cache is left untouched: partial shared state is worse than
// stale-but-consistent state. On success the table is replaced in one
// transaction.
func (s *ShareService) SyncShares(ctx context.Context, userID int64) error {
	withMe, err := s.api.ListSharedWithMe(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch incoming shares: %w", err)
	}
	byMe, err := s.api.ListSharedByMe(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch outgoing shares: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := shares.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for i := range withMe {
			if err := repo.Upsert(ctx, shareFromResponse(uuid.NewString(), &withMe[i])); err != nil {
				return err
			}
		}
		for i := range byMe {
			if err := repo.Upsert(ctx, shareFromResponse(uuid.NewString(), &byMe[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace cached shares: %w", err)
	}

	s.log.Debug(ctx, "shares synced", "incoming", len(withMe), "outgoing", len(byMe))
	return nil
}

// CanAccessNote decides access from the cache alone: the owner of the note,
// or a user the note was shared with, may open it. noteID is a remote id.
func (s *ShareService) CanAccessNote(ctx context.Context, userID, noteID int64) (bool, error) {
	n, err := s.notesRepo().GetByRemoteID(ctx, noteID)
	if err == nil && n.OwnerID != nil && *n.OwnerID == userID {
		return true, nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false, err
	}

	_, err = s.repo().GetByTarget(ctx, noteID, userID)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func mapShares(resp []api.ShareResponse) []models.SharedNote {
	result := make([]models.SharedNote, 0, len(resp))
	for i := range resp {
		result = append(result, *shareFromResponse(uuid.NewString(), &resp[i]))
	}
	return result
}
