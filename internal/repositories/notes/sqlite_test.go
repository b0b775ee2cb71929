package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE notes (
    local_id       TEXT PRIMARY KEY,
    remote_id      INTEGER,
    owner_id       INTEGER,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    tag            TEXT NOT NULL DEFAULT '',
    priority       INTEGER NOT NULL DEFAULT 0,
    finished       INTEGER NOT NULL DEFAULT 0,
    reminder       TEXT,
    checklist      TEXT,
    auto_delete_at TEXT,
    auto_delete    INTEGER NOT NULL DEFAULT 0,
    pending_create INTEGER NOT NULL DEFAULT 0
);
`

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func TestUpsert_RoundTripsAllFields(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	remoteID := int64(42)
	ownerID := int64(7)
	reminder := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	autoDeleteAt := reminder.Add(24 * time.Hour)

	in := &models.Note{
		LocalID:     "n1",
		RemoteID:    &remoteID,
		OwnerID:     &ownerID,
		Title:       "groceries",
		Description: "weekly run",
		Tag:         "home",
		Priority:    models.PriorityHigh,
		Finished:    true,
		Reminder:    &reminder,
		Checklist: []models.ChecklistItem{
			{Text: "milk", Done: true},
			{Text: "bread"},
		},
		AutoDeleteAt: &autoDeleteAt,
		AutoDelete:   true,
	}
	require.NoError(t, repo.Upsert(ctx, in))

	out, err := repo.GetByLocalID(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, in.Title, out.Title)
	require.Equal(t, in.Priority, out.Priority)
	require.Equal(t, remoteID, *out.RemoteID)
	require.Equal(t, ownerID, *out.OwnerID)
	require.True(t, out.Reminder.Equal(reminder))
	require.True(t, out.AutoDeleteAt.Equal(autoDeleteAt))
	require.Equal(t, in.Checklist, out.Checklist)
	require.True(t, out.AutoDelete)
}

func TestUpsert_SameLocalIDReplaces(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "n1", Title: "v1", PendingCreate: true}))

	remoteID := int64(5)
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "n1", Title: "v2", RemoteID: &remoteID}))

	out, err := repo.GetByLocalID(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, "v2", out.Title)
	require.Equal(t, remoteID, *out.RemoteID)
	require.False(t, out.PendingCreate)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGet_NotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByLocalID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetByRemoteID(ctx, 404)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetPendingByOwner_KeepsInsertionOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := int64(7)

	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Upsert(ctx, &models.Note{
			LocalID:       fmt.Sprintf("n%d", i),
			OwnerID:       &owner,
			Title:         title,
			PendingCreate: true,
		}))
	}

	pending, err := repo.GetPendingByOwner(ctx, &owner)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, "first", pending[0].Title)
	require.Equal(t, "second", pending[1].Title)
	require.Equal(t, "third", pending[2].Title)
}

func TestGetPendingByOwner_NilMatchesAnonymousOnly(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := int64(7)

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "anon", Title: "anon", PendingCreate: true}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "owned", OwnerID: &owner, Title: "owned", PendingCreate: true}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "done", Title: "done"}))

	anon, err := repo.GetPendingByOwner(ctx, nil)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	require.Equal(t, "anon", anon[0].LocalID)

	owned, err := repo.GetPendingByOwner(ctx, &owner)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, "owned", owned[0].LocalID)
}

func TestAdoptOwnerless(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	other := int64(3)

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "a", Title: "a", PendingCreate: true}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "b", Title: "b"}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "c", OwnerID: &other, Title: "c"}))

	require.NoError(t, repo.AdoptOwnerless(ctx, 7))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	byID := map[string]models.Note{}
	for _, n := range all {
		byID[n.LocalID] = n
	}
	require.Equal(t, int64(7), *byID["a"].OwnerID)
	require.Equal(t, int64(7), *byID["b"].OwnerID)
	require.Equal(t, other, *byID["c"].OwnerID, "rows with an owner must not be touched")
}

func TestDeleteSynced_PreservesPendingRows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	owner := int64(7)
	remoteID := int64(42)

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "synced", OwnerID: &owner, RemoteID: &remoteID, Title: "synced"}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "pending", OwnerID: &owner, Title: "pending", PendingCreate: true}))

	require.NoError(t, repo.DeleteSynced(ctx, owner))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "pending", all[0].LocalID)
}

func TestDeleteByLocalID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "n1", Title: "x"}))
	require.NoError(t, repo.DeleteByLocalID(ctx, "n1"))

	_, err := repo.GetByLocalID(ctx, "n1")
	require.ErrorIs(t, err, common.ErrNotFound)

	// Deleting an already-deleted row is not an error.
	require.NoError(t, repo.DeleteByLocalID(ctx, "n1"))
}

func TestClear(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "n1", Title: "x"}))
	require.NoError(t, repo.Upsert(ctx, &models.Note{LocalID: "n2", Title: "y"}))
	require.NoError(t, repo.Clear(ctx))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
