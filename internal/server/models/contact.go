package models

import "time"

// Contact is an address-book entry.
type Contact struct {
	ID         string
	UserID     string
	Name       string
	Email      string
	Phone      string
	Company    string
	Avatar     string
	Notes      string
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// GroupIDs is populated by the repository on read paths.
	GroupIDs []string
}

// ContactGroup is a named set of contacts.
type ContactGroup struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time

	ContactIDs []string
}
