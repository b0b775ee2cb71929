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
	"github.com/akraslov/notesync/internal/repositories/session"
	"github.com/akraslov/notesync/internal/repositories/shares"
	"github.com/akraslov/notesync/internal/repositories/users"
	"github.com/google/uuid"
)

// UserService reconciles accounts and owns the session lifecycle. Users
// follow the same synced/pending model as notes: a registration that cannot
// reach the server is queued locally and replayed later.
type UserService struct {
	db    *sql.DB
	api   api.Client
	log   logging.Logger
	watch *notifier[*models.Session]
}

func NewUserService(db *sql.DB, client api.Client, log logging.Logger) *UserService {
	return &UserService{db: db, api: client, log: log, watch: newNotifier[*models.Session]()}
}

func (s *UserService) usersRepo() users.Repository {
	return users.NewSQLiteRepository(s.db)
}

func (s *UserService) sessionRepo() session.Repository {
	return session.NewSQLiteRepository(s.db)
}

// Session returns the current identity, or nil while anonymous.
func (s *UserService) Session(ctx context.Context) (*models.Session, error) {
	sess, err := s.sessionRepo().Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return sess, err
}

// WatchSession delivers the current session immediately and then every
// session change until ctx is done. A nil element means anonymous.
func (s *UserService) WatchSession(ctx context.Context) <-chan *models.Session {
	cur, err := s.Session(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load session", "error", err)
	}
	return s.watch.subscribe(ctx, cur)
}

// Register validates the credentials and creates the account on the server.
// When the server cannot be reached the registration is stored pending and
// replayed by PostPendingUsers; the returned user reports Synced() == false
// in that case and no session is created.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	u := &models.User{LocalID: uuid.NewString(), Username: username, Password: password}
	if existing, err := s.usersRepo().GetByUsername(ctx, username); err == nil {
		// A retried registration reuses the queued row.
		u.LocalID = existing.LocalID
	}

	resp, err := s.api.CreateUser(ctx, api.UserRequest{Username: username, Password: password})
	if err != nil {
		if !common.IsRemote(err) {
			return nil, fmt.Errorf("failed to register: %w", err)
		}
		u.PendingCreate = true
		if saveErr := s.usersRepo().Upsert(ctx, u); saveErr != nil {
			return nil, fmt.Errorf("failed to queue registration: %w", saveErr)
		}
		s.log.Warn(ctx, "registration queued for retry", "username", username, "error", err)
		return u, nil
	}

	u.RemoteID = &resp.ID
	u.PendingCreate = false
	if err := s.usersRepo().Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if err := s.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates against the server and persists the session.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	resp, err := s.api.LoginUser(ctx, api.UserRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	u := &models.User{LocalID: uuid.NewString(), Username: username, Password: password}
	if existing, err := s.usersRepo().GetByUsername(ctx, username); err == nil {
		u.LocalID = existing.LocalID
	}
	u.RemoteID = &resp.ID
	u.PendingCreate = false
	if err := s.usersRepo().Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if err := s.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	return &models.Session{UserID: resp.ID, Username: resp.Username}, nil
}

// PostPendingUsers replays queued registrations in order, halting on the
// first remote failure like the note drain.
func (s *UserService) PostPendingUsers(ctx context.Context) error {
	pending, err := s.usersRepo().GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending users: %w", err)
	}

	for i := range pending {
		u := pending[i]
		resp, err := s.api.CreateUser(ctx, api.UserRequest{Username: u.Username, Password: u.Password})
		if err != nil {
			return fmt.Errorf("failed to post pending user: %w", err)
		}
		u.RemoteID = &resp.ID
		u.PendingCreate = false
		if err := s.usersRepo().Upsert(ctx, &u); err != nil {
			return fmt.Errorf("failed to save posted user: %w", err)
		}
	}
	return nil
}

// UpsertUser mirrors an account change to the server and commits locally only
// on remote success. Returns common.ErrNoRemoteID for never-synced users.
func (s *UserService) UpsertUser(ctx context.Context, u *models.User) error {
	if u.RemoteID == nil {
		return common.ErrNoRemoteID
	}

	_, err := s.api.UpdateUser(ctx, *u.RemoteID, api.UserRequest{Username: u.Username, Password: u.Password})
	if err != nil {
		return fmt.Errorf("failed to update user remotely: %w", err)
	}

	u.PendingCreate = false
	if err := s.usersRepo().Upsert(ctx, u); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Logout clears the session and the whole local cache in one transaction, so
// a new session can never observe another user's rows. The caller is
// responsible for cancelling background sync first.
func (s *UserService) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := session.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := notes.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := shares.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return users.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	s.watch.publish(nil)
	return nil
}

func (s *UserService) saveSession(ctx context.Context, resp *api.UserResponse) error {
	sess := &models.Session{UserID: resp.ID, Username: resp.Username}
	if err := s.sessionRepo().Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.watch.publish(sess)
	return nil
}
