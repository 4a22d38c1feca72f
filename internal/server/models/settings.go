package models

import (
	"encoding/json"
	"time"
)

// UserSettings stores per-user preference sections as raw JSON documents.
// Each section is merged shallowly on update and decoded onto typed
// defaults at the API boundary.
type UserSettings struct {
	UserID            string
	Appearance        json.RawMessage
	Notifications     json.RawMessage
	InboxBehavior     json.RawMessage
	Language          json.RawMessage
	VacationResponder json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Signature is a reusable mail signature. At most one per user is default.
type Signature struct {
	ID        string
	UserID    string
	Name      string
	Content   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FilterRule is a user-defined mail filter. Conditions and Actions are
// stored as JSON arrays and surfaced verbatim on the wire.
type FilterRule struct {
	ID         string
	UserID     string
	Name       string
	Enabled    bool
	Conditions json.RawMessage
	MatchAll   bool
	Actions    json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BlockedAddress is a sender address the user has blocked.
type BlockedAddress struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time
}

// KeyboardShortcut is a per-user key binding for a UI action.
type KeyboardShortcut struct {
	ID        string
	UserID    string
	Action    string
	Key       string
	Modifiers json.RawMessage
	Enabled   bool
}
