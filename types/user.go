package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and login metadata.
type User struct {
	// Username is the unique login name chosen by the user.
	// It is immutable after registration.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// FirstName is the user's first name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's last name.
	LastName string `json:"last_name" db:"last_name"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// JoinedAt is the timestamp when the account was created.
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	// LastLoginAt is the timestamp of the most recent successful login.
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserSummary is the public profile snippet embedded in listings
// and expanded messages.
type UserSummary struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
}

// Summary returns the public profile snippet for the user.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
