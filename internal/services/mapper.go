package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/akraslov/notesync/internal/api"
	"github.com/akraslov/notesync/internal/models"
)

// noteToRequest mirrors every mutable field of a note onto the wire shape.
func noteToRequest(n *models.Note) api.NoteRequest {
	req := api.NoteRequest{
		Title:       n.Title,
		Description: n.Description,
		Tag:         n.Tag,
		Priority:    int(n.Priority),
		Finished:    n.Finished,
		AutoDelete:  n.AutoDelete,
	}
	if n.Reminder != nil {
		req.Reminder = n.Reminder.UTC().Format(time.RFC3339Nano)
	}
	if n.AutoDeleteAt != nil {
		req.AutoDeleteAt = n.AutoDeleteAt.UTC().Format(time.RFC3339Nano)
	}
	if n.Checklist != nil {
		b, _ := json.Marshal(n.Checklist)
		req.Checklist = string(b)
	}
	return req
}

// noteFromResponse maps a server note into the cache model. localID keeps the
// client-side identity stable across refreshes; fallbackOwner is used when
// the server omits the owner on per-user endpoints.
func noteFromResponse(localID string, fallbackOwner int64, r *api.NoteResponse) (*models.Note, error) {
	remoteID := r.ID
	owner := fallbackOwner
	if r.UserID != nil {
		owner = *r.UserID
	}

	n := &models.Note{
		LocalID:     localID,
		RemoteID:    &remoteID,
		OwnerID:     &owner,
		Title:       r.Title,
		Description: r.Description,
		Tag:         r.Tag,
		Priority:    models.Priority(r.Priority),
		Finished:    r.Finished,
		AutoDelete:  r.AutoDelete,
	}

	if r.Reminder != "" {
		t, err := time.Parse(time.RFC3339Nano, r.Reminder)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reminder: %w", err)
		}
		n.Reminder = &t
	}
	if r.AutoDeleteAt != "" {
		t, err := time.Parse(time.RFC3339Nano, r.AutoDeleteAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse auto-delete time: %w", err)
		}
		n.AutoDeleteAt = &t
	}
	if r.Checklist != "" {
		if err := json.Unmarshal([]byte(r.Checklist), &n.Checklist); err != nil {
			return nil, fmt.Errorf("failed to decode checklist: %w", err)
		}
	}

	return n, nil
}

func shareFromResponse(localID string, r *api.ShareResponse) *models.SharedNote {
	return &models.SharedNote{
		LocalID:  localID,
		RemoteID: r.ID,
		NoteID:   r.NoteID,
		OwnerID:  r.OwnerID,
		TargetID: r.TargetUserID,
		Status:   r.Status,
	}
}
