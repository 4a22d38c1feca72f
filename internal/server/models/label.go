package models

import "time"

// Label is a user-defined tag attachable to any number of emails.
type Label struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
}
