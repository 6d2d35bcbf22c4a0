package models

import "time"

// Session is a server-held login. The cookie handed to the browser carries a
// signed token referencing the session ID, so logout can revoke it before
// the expiry.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
