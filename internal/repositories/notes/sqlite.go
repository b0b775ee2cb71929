package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/dbx"
	"github.com/akraslov/notesync/internal/models"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const noteColumns = `local_id, remote_id, owner_id, title, description, tag,
	priority, finished, reminder, checklist, auto_delete_at, auto_delete, pending_create`

func (r *SQLiteRepository) Upsert(ctx context.Context, n *models.Note) error {
	checklist, err := marshalChecklist(n.Checklist)
	if err != nil {
		return fmt.Errorf("failed to encode checklist: %w", err)
	}

	query := `INSERT INTO notes (` + noteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			remote_id = excluded.remote_id,
			owner_id = excluded.owner_id,
			title = excluded.title,
			description = excluded.description,
			tag = excluded.tag,
			priority = excluded.priority,
			finished = excluded.finished,
			reminder = excluded.reminder,
			checklist = excluded.checklist,
			auto_delete_at = excluded.auto_delete_at,
			auto_delete = excluded.auto_delete,
			pending_create = excluded.pending_create
	`
	_, err = r.db.ExecContext(ctx, query,
		n.LocalID, n.RemoteID, n.OwnerID, n.Title, n.Description, n.Tag,
		int(n.Priority), n.Finished, formatTime(n.Reminder), checklist,
		formatTime(n.AutoDeleteAt), n.AutoDelete, n.PendingCreate)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE local_id = ?`, localID)
	return scanNote(row)
}

func (r *SQLiteRepository) GetByRemoteID(ctx context.Context, remoteID int64) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE remote_id = ?`, remoteID)
	return scanNote(row)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY rowid`)
}

// GetPendingByOwner uses "IS ?" so a nil owner matches anonymous rows.
// Ordering by rowid keeps the backlog FIFO.
func (r *SQLiteRepository) GetPendingByOwner(ctx context.Context, ownerID *int64) ([]models.Note, error) {
	return r.selectNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE pending_create = 1 AND owner_id IS ? ORDER BY rowid`,
		ownerID)
}

func (r *SQLiteRepository) AdoptOwnerless(ctx context.Context, ownerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notes SET owner_id = ? WHERE owner_id IS NULL`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to adopt ownerless notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByLocalID(ctx context.Context, localID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// DeleteSynced leaves pending rows alone: they are not remote-visible yet, so
// a cache refresh must never discard them.
func (r *SQLiteRepository) DeleteSynced(ctx context.Context, ownerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE owner_id = ? AND remote_id IS NOT NULL`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete synced notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes`)
	if err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		n, err := scanNoteRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNoteRow(row rowScanner) (*models.Note, error) {
	var (
		n            models.Note
		remoteID     sql.NullInt64
		ownerID      sql.NullInt64
		priority     int
		reminder     sql.NullString
		checklist    sql.NullString
		autoDeleteAt sql.NullString
	)

	err := row.Scan(&n.LocalID, &remoteID, &ownerID, &n.Title, &n.Description,
		&n.Tag, &priority, &n.Finished, &reminder, &checklist, &autoDeleteAt,
		&n.AutoDelete, &n.PendingCreate)
	if err != nil {
		return nil, err
	}

	if remoteID.Valid {
		n.RemoteID = &remoteID.Int64
	}
	if ownerID.Valid {
		n.OwnerID = &ownerID.Int64
	}
	n.Priority = models.Priority(priority)

	if n.Reminder, err = parseTime(reminder); err != nil {
		return nil, fmt.Errorf("failed to parse reminder: %w", err)
	}
	if n.AutoDeleteAt, err = parseTime(autoDeleteAt); err != nil {
		return nil, fmt.Errorf("failed to parse auto-delete time: %w", err)
	}
	if n.Checklist, err = unmarshalChecklist(checklist); err != nil {
		return nil, fmt.Errorf("failed to decode checklist: %w", err)
	}

	return &n, nil
}

func scanNote(row *sql.Row) (*models.Note, error) {
	n, err := scanNoteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select note: %w", err)
	}
	return n, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func marshalChecklist(items []models.ChecklistItem) (any, error) {
	if items == nil {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalChecklist(s sql.NullString) ([]models.ChecklistItem, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var items []models.ChecklistItem
	if err := json.Unmarshal([]byte(s.String), &items); err != nil {
		return nil, err
	}
	return items, nil
}
