package contactgroups

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]*models.ContactGroup, error)
	Get(ctx context.Context, userID, id string) (*models.ContactGroup, error)
	Create(ctx context.Context, group *models.ContactGroup) (*models.ContactGroup, error)
	Update(ctx context.Context, group *models.ContactGroup) error
	Delete(ctx context.Context, userID, id string) error
	ListContactIDs(ctx context.Context, groupIDs []string) (map[string][]string, error)
}
