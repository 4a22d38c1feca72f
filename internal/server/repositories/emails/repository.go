package emails

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

// Filter narrows email listings. Nil pointer fields are not applied.
type Filter struct {
	Folder        string
	AccountID     string
	IsRead        *bool
	IsStarred     *bool
	HasAttachment *bool
	Search        string
	ThreadID      string
	LabelIDs      []string
}

// BulkSet describes field assignments applied by BulkUpdate. Nil fields
// are left unchanged.
type BulkSet struct {
	IsRead    *bool
	IsStarred *bool
	Folder    *string
}

type Repository interface {
	Count(ctx context.Context, userID string, f Filter) (int, error)
	List(ctx context.Context, userID string, f Filter, offset, limit int) ([]*models.Email, error)
	Get(ctx context.Context, userID, id string) (*models.Email, error)
	Create(ctx context.Context, email *models.Email) (*models.Email, error)
	Update(ctx context.Context, userID string, email *models.Email) error
	Delete(ctx context.Context, userID, id string) error
	BulkUpdate(ctx context.Context, userID string, ids []string, set BulkSet) error
	BulkDelete(ctx context.Context, userID string, ids []string) error
	AddRecipients(ctx context.Context, emailID string, recipients []*models.Recipient) error
	ListRecipients(ctx context.Context, emailIDs []string) (map[string][]*models.Recipient, error)
	SetLabels(ctx context.Context, userID, emailID string, labelIDs []string) error
	AddLabels(ctx context.Context, userID string, emailIDs, labelIDs []string) error
	RemoveLabels(ctx context.Context, userID string, emailIDs, labelIDs []string) error
	ListLabelIDs(ctx context.Context, emailIDs []string) (map[string][]string, error)
}
