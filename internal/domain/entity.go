package domain

import (
	"time"
)

type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusConfirmed MessageStatus = "confirmed"
	StatusFailed    MessageStatus = "failed"
)

// Message is a single conversation entry. ID is server-assigned once the
// message is confirmed; while pending it holds a locally generated id.
type Message struct {
	ID        string        `json:"id,omitempty"`
	Sender    string        `json:"sender"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status"`
}

// IsLocal reports whether the entry originated here and has not been
// confirmed by the server yet.
func (m *Message) IsLocal() bool {
	return m.Status != StatusConfirmed
}

// Identity is the user record returned by the remote service.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is an authenticated context, valid until explicitly or implicitly
// terminated. Owned exclusively by the session manager.
type Session struct {
	Token string
	User  Identity
	Valid bool
}
