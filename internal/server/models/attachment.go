package models

import "time"

// Attachment holds metadata for an uploaded file. The bytes themselves live
// in the content store under StorageKey; EmailID is nil while the upload is
// staged and not yet linked to a message.
type Attachment struct {
	ID         string
	EmailID    *string
	Name       string
	Size       int64
	MimeType   string
	StorageKey string
	CreatedAt  time.Time
}
