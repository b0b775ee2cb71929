package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akraslov/notesync/internal/common"
	"github.com/akraslov/notesync/internal/dbx"
	"github.com/akraslov/notesync/internal/models"
)

// SQLiteRepository implements Repository over a DBTX. The table holds a
// single row with a fixed id.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, username FROM session WHERE id = 1`)

	var s models.Session
	err := row.Scan(&s.UserID, &s.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select session: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO session (id, user_id, username) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, username = excluded.username`
	if _, err := r.db.ExecContext(ctx, query, s.UserID, s.Username); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
