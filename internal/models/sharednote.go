package models

// SharedNoteStatusActive is the status a freshly created share starts in.
// The full status vocabulary is owned by the server; the client stores
// whatever string it receives.
const SharedNoteStatusActive = "active"

// SharedNote links a synced note to a recipient user. All ids are remote ids:
// shares only exist for server-confirmed notes and users.
//
// At most one cached row exists per (NoteID, OwnerID, TargetID); re-syncing
// replaces rather than duplicates.
type SharedNote struct {
	LocalID  string
	RemoteID int64
	NoteID   int64
	OwnerID  int64
	TargetID int64
	Status   string
}
