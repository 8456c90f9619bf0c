package types

import "time"

// Message represents a directed text message between two users.
type Message struct {
	// ID is the unique identifier of the message, assigned at creation.
	ID int64 `json:"id" db:"id"`

	// FromUsername is the sender's username.
	FromUsername string `json:"from_username" db:"from_username"`

	// ToUsername is the recipient's username.
	ToUsername string `json:"to_username" db:"to_username"`

	// Body is the message text.
	Body string `json:"body" db:"body"`

	// SentAt is the timestamp when the message was sent. Immutable.
	SentAt time.Time `json:"sent_at" db:"sent_at"`

	// ReadAt is nil until the recipient marks the message as read.
	// Once set it never changes.
	ReadAt *time.Time `json:"read_at" db:"read_at"`
}

// MessageDetail is the expanded form of a message with the sender and
// recipient profiles resolved. Access decisions operate on this form.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// MessageWithCounterparty is a listing item where only the counterparty
// of the listed user is resolved (the recipient for outbound listings,
// the sender for inbound listings).
type MessageWithCounterparty struct {
	ID       int64        `json:"id"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
	FromUser *UserSummary `json:"from_user,omitempty"`
	ToUser   *UserSummary `json:"to_user,omitempty"`
}
