package users

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

const userColumns = `local_id, remote_id, username, password, pending_create`

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			remote_id = excluded.remote_id,
			username = excluded.username,
			password = excluded.password,
			pending_create = excluded.pending_create
	`
	_, err := r.db.ExecContext(ctx, query,
		u.LocalID, u.RemoteID, u.Username, u.Password, u.PendingCreate)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE local_id = ?`, localID)
	return scanUser(row)
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepository) GetPending(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE pending_create = 1 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var (
			u        models.User
			remoteID sql.NullInt64
		)
		if err := rows.Scan(&u.LocalID, &remoteID, &u.Username, &u.Password, &u.PendingCreate); err != nil {
			return nil, err
		}
		if remoteID.Valid {
			u.RemoteID = &remoteID.Int64
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u        models.User
		remoteID sql.NullInt64
	)
	err := row.Scan(&u.LocalID, &remoteID, &u.Username, &u.Password, &u.PendingCreate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if remoteID.Valid {
		u.RemoteID = &remoteID.Int64
	}
	return &u, nil
}
