package attachments

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID, id string) (*models.Attachment, error)
	Create(ctx context.Context, att *models.Attachment) (*models.Attachment, error)
	ListByEmails(ctx context.Context, emailIDs []string) (map[string][]*models.Attachment, error)
	LinkToEmail(ctx context.Context, userID, emailID string, attachmentIDs []string) error
}
