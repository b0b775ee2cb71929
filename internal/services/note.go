// Package services contains the reconciliation layer: it owns the policy of
// when local cache state is promoted to pending, flushed to the server, or
// overwritten by remote truth. The cache itself lives in the repositories
// packages; the remote boundary is the api.Client.
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
	"github.com/google/uuid"
)

// NoteService reconciles the local note cache with the remote service.
//
// Creates are accepted locally first (the user may be offline while typing)
// and confirmed later by draining the pending queue. Updates and deletes of
// already-synced notes go remote-first instead: a note that round-tripped
// once may be visible to other users, so the local mutation is rejected when
// the server cannot confirm it.
type NoteService struct {
	db    *sql.DB
	api   api.Client
	log   logging.Logger
	locks *keyedMutex
	watch *notifier[[]models.Note]
}

func NewNoteService(db *sql.DB, client api.Client, log logging.Logger) *NoteService {
	return &NoteService{
		db:    db,
		api:   client,
		log:   log,
		locks: newKeyedMutex(),
		watch: newNotifier[[]models.Note](),
	}
}

func (s *NoteService) repo() notes.Repository {
	return notes.NewSQLiteRepository(s.db)
}

// Watch returns a live view of the cache: the current snapshot immediately,
// then a fresh snapshot after every committed mutation, until ctx is done.
func (s *NoteService) Watch(ctx context.Context) (<-chan []models.Note, error) {
	snapshot, err := s.repo().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return s.watch.subscribe(ctx, snapshot), nil
}

// Get returns a note by its local id, or common.ErrNotFound.
func (s *NoteService) Get(ctx context.Context, localID string) (*models.Note, error) {
	return s.repo().GetByLocalID(ctx, localID)
}

// CreateLocal stores a new note with the pending-create flag set. It never
// blocks on the network and never fails due to connectivity; the server
// learns about the note when the pending queue is drained.
//
// Re-saving an existing local id is safe against a concurrent drain: if the
// stored row gained a remote id in the meantime, the write keeps it instead
// of re-queueing the create. The caller sees Synced() on the result and can
// mirror the edit with Update.
func (s *NoteService) CreateLocal(ctx context.Context, note models.Note, ownerID *int64) (*models.Note, error) {
	if note.LocalID == "" {
		note.LocalID = uuid.NewString()
	}

	s.locks.Lock(note.LocalID)
	defer s.locks.Unlock(note.LocalID)

	cur, err := s.repo().GetByLocalID(ctx, note.LocalID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if err == nil && cur.RemoteID != nil {
		note.RemoteID = cur.RemoteID
		note.OwnerID = cur.OwnerID
		note.PendingCreate = false
	} else {
		note.RemoteID = nil
		note.OwnerID = ownerID
		note.PendingCreate = true
	}

	if err := s.repo().Upsert(ctx, &note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	s.publish(ctx)
	return &note, nil
}

// Update mirrors all mutable fields to the server and commits the local write
// only after the remote call succeeds. Returns common.ErrNoRemoteID when the
// note was never synced; use CreateLocal for those.
func (s *NoteService) Update(ctx context.Context, note models.Note, ownerID *int64) error {
	s.locks.Lock(note.LocalID)
	defer s.locks.Unlock(note.LocalID)

	if note.RemoteID == nil {
		return common.ErrNoRemoteID
	}

	req := noteToRequest(&note)
	var err error
	if ownerID != nil {
		_, err = s.api.UpdateUserNote(ctx, *ownerID, *note.RemoteID, req)
	} else {
		_, err = s.api.UpdateNote(ctx, *note.RemoteID, req)
	}
	if err != nil {
		return fmt.Errorf("failed to update note remotely: %w", err)
	}

	note.OwnerID = ownerID
	note.PendingCreate = false
	if err := s.repo().Upsert(ctx, &note); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	s.publish(ctx)
	return nil
}

// Delete removes a note. A never-synced note is deleted locally only; a
// synced one is deleted on the server first, and the local row survives when
// the remote call fails so the caller can retry.
func (s *NoteService) Delete(ctx context.Context, localID string) error {
	s.locks.Lock(localID)
	defer s.locks.Unlock(localID)

	n, err := s.repo().GetByLocalID(ctx, localID)
	if err != nil {
		return err
	}

	if n.RemoteID != nil {
		if n.OwnerID != nil {
			err = s.api.DeleteUserNote(ctx, *n.OwnerID, *n.RemoteID)
		} else {
			err = s.api.DeleteNote(ctx, *n.RemoteID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete note remotely: %w", err)
		}
	}

	if err := s.repo().DeleteByLocalID(ctx, localID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	s.publish(ctx)
	return nil
}

// PostPendingNotes drains the pending-create backlog for ownerID in queue
// order. The first remote failure halts the pass; notes posted before the
// failure stay synced and the rest are retried on the next trigger.
func (s *NoteService) PostPendingNotes(ctx context.Context, ownerID *int64) error {
	pending, err := s.repo().GetPendingByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load pending notes: %w", err)
	}

	posted := 0
	for i := range pending {
		if err := s.postPending(ctx, &pending[i], ownerID); err != nil {
			s.log.Warn(ctx, "pending drain halted",
				"posted", posted, "remaining", len(pending)-posted, "error", err)
			if posted > 0 {
				s.publish(ctx)
			}
			return err
		}
		posted++
	}

	if posted > 0 {
		s.log.Info(ctx, "pending notes posted", "count", posted)
		s.publish(ctx)
	}
	return nil
}

func (s *NoteService) postPending(ctx context.Context, n *models.Note, ownerID *int64) error {
	s.locks.Lock(n.LocalID)
	defer s.locks.Unlock(n.LocalID)

	// Re-read under the lock: a concurrent delete or an overlapping drain
	// may have changed the row since the backlog was listed.
	cur, err := s.repo().GetByLocalID(ctx, n.LocalID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !cur.PendingCreate || cur.RemoteID != nil {
		return nil
	}

	req := noteToRequest(cur)
	var resp *api.NoteResponse
	if ownerID != nil {
		resp, err = s.api.CreateUserNote(ctx, *ownerID, req)
	} else {
		resp, err = s.api.CreateNote(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("failed to post pending note: %w", err)
	}

	cur.RemoteID = &resp.ID
	cur.OwnerID = ownerID
	cur.PendingCreate = false
	if err := s.repo().Upsert(ctx, cur); err != nil {
		return fmt.Errorf("failed to save posted note: %w", err)
	}
	return nil
}

// SyncOnLogin runs the identity-linking step once per successful login or
// registration: adopt previously anonymous notes, flush the pending queue for
// the user, then pull the authoritative remote note set.
func (s *NoteService) SyncOnLogin(ctx context.Context, userID int64) error {
	if err := s.repo().AdoptOwnerless(ctx, userID); err != nil {
		return err
	}
	if err := s.PostPendingNotes(ctx, &userID); err != nil {
		return err
	}
	_, err := s.FetchUserNotes(ctx, userID)
	return err
}

// FetchUserNotes replaces the local mirror of the user's server-confirmed
// notes with the remote list. Pending-create rows are not remote-visible yet
// and are never discarded by the refresh. Local ids stay stable for notes
// already cached under the same remote id.
func (s *NoteService) FetchUserNotes(ctx context.Context, userID int64) ([]models.Note, error) {
	remote, err := s.api.ListUserNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user notes: %w", err)
	}

	var fetched []models.Note
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := notes.NewSQLiteRepository(tx)

		localIDs := make(map[int64]string, len(remote))
		for i := range remote {
			existing, err := repo.GetByRemoteID(ctx, remote[i].ID)
			if err == nil {
				localIDs[remote[i].ID] = existing.LocalID
				continue
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
		}

		if err := repo.DeleteSynced(ctx, userID); err != nil {
			return err
		}

		fetched = make([]models.Note, 0, len(remote))
		for i := range remote {
			localID := localIDs[remote[i].ID]
			if localID == "" {
				localID = uuid.NewString()
			}
			n, err := noteFromResponse(localID, userID, &remote[i])
			if err != nil {
				return err
			}
			if err := repo.Upsert(ctx, n); err != nil {
				return err
			}
			fetched = append(fetched, *n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh user notes: %w", err)
	}

	s.publish(ctx)
	return fetched, nil
}

// ClearLocal wipes the note cache unconditionally. Used on logout.
func (s *NoteService) ClearLocal(ctx context.Context) error {
	if err := s.repo().Clear(ctx); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// Refresh re-emits the current snapshot to watchers. Used after mutations
// performed outside this service, such as the logout transaction.
func (s *NoteService) Refresh(ctx context.Context) {
	s.publish(ctx)
}

func (s *NoteService) publish(ctx context.Context) {
	snapshot, err := s.repo().GetAll(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load notes snapshot", "error", err)
		return
	}
	s.watch.publish(snapshot)
}
