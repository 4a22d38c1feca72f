package models

import "time"

// System folders.
const (
	FolderInbox     = "inbox"
	FolderDrafts    = "drafts"
	FolderSent      = "sent"
	FolderSpam      = "spam"
	FolderTrash     = "trash"
	FolderArchive   = "archive"
	FolderStarred   = "starred"
	FolderSnoozed   = "snoozed"
	FolderScheduled = "scheduled"
)

// Recipient kinds.
const (
	RecipientTo  = "TO"
	RecipientCc  = "CC"
	RecipientBcc = "BCC"
)

// Email is a single mail message owned (through its account) by one user.
//
// ThreadID links messages into a conversation: a brand-new message roots its
// own thread, a reply inherits the thread of the message it answers. ReplyToID
// and ForwardedFromID are self-references to other emails of the same user.
type Email struct {
	ID                string
	AccountID         string
	Subject           string
	Body              string
	Preview           string
	SenderName        string
	SenderEmail       string
	IsRead            bool
	IsStarred         bool
	IsDraft           bool
	HasAttachment     bool
	Folder            string
	ThreadID          *string
	ReplyToID         *string
	ForwardedFromID   *string
	ScheduledSendAt   *time.Time
	SnoozeUntil       *time.Time
	SnoozedFromFolder *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Related rows, populated by the repository on read paths.
	AccountColor string
	Recipients   []*Recipient
	Attachments  []*Attachment
	LabelIDs     []string
}

// Recipient is one address on an email's TO/CC/BCC line.
type Recipient struct {
	ID      int64
	EmailID string
	Address string
	Name    string
	Kind    string
	Ord     int
}
