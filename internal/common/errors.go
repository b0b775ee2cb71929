// Package common defines the error taxonomy shared across the notesync
// layers. Sentinels are matched with errors.Is, typed errors with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRemoteID is returned when an update/delete-style operation is
	// invoked on an entity the server never confirmed. The caller should
	// create the entity (locally, pending) instead.
	ErrNoRemoteID = errors.New("entity has no remote id")

	// ErrEmptyResponse marks a successful HTTP response that was missing
	// the body the operation required.
	ErrEmptyResponse = errors.New("empty response body")
)

// RemoteError reports a failed remote call: a non-2xx status, or a transport
// failure translated at the API boundary. Transport-level failures carry a
// zero Status.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote error: %s", e.Message)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.Status, e.Message)
}

// IsRemote reports whether err originated at the remote boundary and is
// therefore worth retrying later.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// ValidationError tags a rejected input value with the field that failed.
// Validation errors are resolved locally and never reach the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
