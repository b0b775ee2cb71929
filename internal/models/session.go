package models

// Session identifies the currently authenticated user. Its absence from the
// session store means the app runs in anonymous, offline-only mode.
type Session struct {
	UserID   int64
	Username string
}
