// Package api is the Remote Source boundary: one function per (entity,
// operation, scope) against the backend's JSON API. Transport failures never
// cross the boundary raw; they come back as *common.RemoteError.
package api

import "context"

// Client is the remote note service. Methods with a userID parameter hit the
// per-user endpoints; the unscoped variants serve anonymous sessions.
type Client interface {
	// Notes.
	CreateNote(ctx context.Context, req NoteRequest) (*NoteResponse, error)
	CreateUserNote(ctx context.Context, userID int64, req NoteRequest) (*NoteResponse, error)
	UpdateNote(ctx context.Context, remoteID int64, req NoteRequest) (*NoteResponse, error)
	UpdateUserNote(ctx context.Context, userID, remoteID int64, req NoteRequest) (*NoteResponse, error)
	DeleteNote(ctx context.Context, remoteID int64) error
	DeleteUserNote(ctx context.Context, userID, remoteID int64) error
	ListUserNotes(ctx context.Context, userID int64) ([]NoteResponse, error)

	// Users.
	CreateUser(ctx context.Context, req UserRequest) (*UserResponse, error)
	UpdateUser(ctx context.Context, userID int64, req UserRequest) (*UserResponse, error)
	LoginUser(ctx context.Context, req UserRequest) (*UserResponse, error)

	// Shared notes.
	ShareNote(ctx context.Context, userID int64, req ShareRequest) (*ShareResponse, error)
	UpdateShareStatus(ctx context.Context, userID, shareID int64) (*ShareUpdateResponse, error)
	ListSharedWithMe(ctx context.Context, userID int64) ([]ShareResponse, error)
	ListSharedByMe(ctx context.Context, userID int64) ([]ShareResponse, error)

	// Ping checks server liveness.
	Ping(ctx context.Context) error
}
