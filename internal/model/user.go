// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Google Sign-In is the identity provider, so the external identifier is the
// Google subject id (a decimal string). We still generate our own internal
// string ID (xid) so primary keys are not tied to a third party's numbering
// scheme.
//
// A user row is created on the first verified login for an email address and
// refreshed on every subsequent login. Rows are never deleted by the auth
// flow.
type User struct {
	ID        string    `json:"id"           db:"id"`
	Email     string    `json:"email"        db:"email"`      // unique, required
	Name      string    `json:"name"         db:"name"`       // display name (may be empty)
	GoogleID  string    `json:"googleId"     db:"google_id"`  // Google subject id (may be empty, unique when set)
	AvatarURL string    `json:"profileImage" db:"avatar_url"` // profile picture URL
	CreatedAt time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt"    db:"updated_at"`
}

// UserView is the public shape of a user returned by the auth endpoints.
// It deliberately omits GoogleID and timestamps.
type UserView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"profileImage"`
}

// View converts a full User row into its public representation.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
