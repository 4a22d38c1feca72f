// Package models defines the server-side data structures persisted by the
// repositories. Fields map one-to-one onto database columns; nullable
// columns use pointer types.
package models

import "time"

// User is an authenticated principal. Created at registration, never
// mutated by the API; every owned record references its ID.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
