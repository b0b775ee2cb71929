// Package models defines the client-side entities persisted in the local
// cache and synchronized with the remote note service.
package models

import "time"

// Priority orders notes from least to most urgent. Values match the wire
// representation (0..2).
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// ChecklistItem is one line of a note's optional checklist.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Note is a locally authoritative note row.
//
// LocalID is generated on the client and never changes. RemoteID is assigned
// once the server accepts the create; a nil RemoteID means the note is not
// visible to the server yet. OwnerID is nil while the note belongs to an
// anonymous (not logged in) session.
//
// Invariant: PendingCreate implies RemoteID == nil. A note cannot be both
// confirmed remotely and queued for creation.
type Note struct {
	LocalID       string
	RemoteID      *int64
	OwnerID       *int64
	Title         string
	Description   string
	Tag           string
	Priority      Priority
	Finished      bool
	Reminder      *time.Time
	Checklist     []ChecklistItem
	AutoDeleteAt  *time.Time
	AutoDelete    bool
	PendingCreate bool
}

// Synced reports whether the server has confirmed this note.
func (n *Note) Synced() bool { return n.RemoteID != nil }
