package models

// User mirrors a registered (or registration-pending) account in the local
// cache. Password is only held long enough to replay a pending registration;
// it is not treated as a durable secret.
//
// Same invariant as Note: PendingCreate implies RemoteID == nil.
type User struct {
	LocalID       string
	RemoteID      *int64
	Username      string
	Password      string
	PendingCreate bool
}

// Synced reports whether the server has confirmed this user.
func (u *User) Synced() bool { return u.RemoteID != nil }
