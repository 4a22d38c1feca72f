package models

import "time"

// CustomFolder is a user-defined folder. Folders nest via ParentID and are
// ordered among siblings by Ord.
type CustomFolder struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	Icon      string
	ParentID  *string
	Ord       int
	CreatedAt time.Time
	UpdatedAt time.Time
}
