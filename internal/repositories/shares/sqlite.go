package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/dbx"
	"github.com/akraslov/notesync/internal/models"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const shareColumns = `local_id, remote_id, note_id, owner_id, target_id, status`

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.SharedNote) error {
	query := `INSERT INTO shared_notes (` + shareColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(note_id, owner_id, target_id) DO UPDATE SET
			remote_id = excluded.remote_id,
			status = excluded.status
	`
	_, err := r.db.ExecContext(ctx, query,
		s.LocalID, s.RemoteID, s.NoteID, s.OwnerID, s.TargetID, s.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert shared note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatusByRemoteID(ctx context.Context, remoteID int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE shared_notes SET status = ? WHERE remote_id = ?`, status, remoteID)
	if err != nil {
		return fmt.Errorf("failed to update shared note status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByTarget(ctx context.Context, noteID, targetID int64) (*models.SharedNote, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM shared_notes WHERE note_id = ? AND target_id = ?`,
		noteID, targetID)

	var s models.SharedNote
	err := row.Scan(&s.LocalID, &s.RemoteID, &s.NoteID, &s.OwnerID, &s.TargetID, &s.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select shared note: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.SharedNote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM shared_notes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared notes: %w", err)
	}
	defer rows.Close()

	var result []models.SharedNote
	for rows.Next() {
		var s models.SharedNote
		if err := rows.Scan(&s.LocalID, &s.RemoteID, &s.NoteID, &s.OwnerID, &s.TargetID, &s.Status); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shared_notes`); err != nil {
		return fmt.Errorf("failed to clear shared notes: %w", err)
	}
	return nil
}
