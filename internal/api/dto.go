package api

// Wire DTOs. Priority travels as an int 0..2; reminder, checklist and
// auto-delete timestamps travel as opaque strings the server stores verbatim.

type NoteRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Tag          string `json:"tag"`
	Priority     int    `json:"priority"`
	Finished     bool   `json:"finished"`
	Reminder     string `json:"reminder,omitempty"`
	Checklist    string `json:"checklist,omitempty"`
	AutoDeleteAt string `json:"autoDeleteAt,omitempty"`
	AutoDelete   bool   `json:"autoDelete"`
}

type NoteResponse struct {
	ID           int64  `json:"id"`
	UserID       *int64 `json:"userId,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Tag          string `json:"tag"`
	Priority     int    `json:"priority"`
	Finished     bool   `json:"finished"`
	Reminder     string `json:"reminder,omitempty"`
	Checklist    string `json:"checklist,omitempty"`
	AutoDeleteAt string `json:"autoDeleteAt,omitempty"`
	AutoDelete   bool   `json:"autoDelete"`
}

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ShareRequest struct {
	NoteID       int64 `json:"noteId"`
	TargetUserID int64 `json:"targetUserId"`
}

type ShareResponse struct {
	ID           int64  `json:"id"`
	NoteID       int64  `json:"noteId"`
	OwnerID      int64  `json:"ownerId"`
	TargetUserID int64  `json:"targetUserId"`
	Status       string `json:"status"`
}

type ShareUpdateResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// errorBody is the shape the server uses for non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
}
