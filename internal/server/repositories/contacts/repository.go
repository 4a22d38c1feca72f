package contacts

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	Count(ctx context.Context, userID, search string) (int, error)
	List(ctx context.Context, userID, search string, offset, limit int) ([]*models.Contact, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Contact, error)
	ListByGroup(ctx context.Context, userID, groupID string) ([]*models.Contact, error)
	Get(ctx context.Context, userID, id string) (*models.Contact, error)
	GetByEmail(ctx context.Context, userID, email string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, userID, id string) error
	ListGroupIDs(ctx context.Context, contactIDs []string) (map[string][]string, error)
	SetGroups(ctx context.Context, userID, contactID string, groupIDs []string) error
	AddToGroup(ctx context.Context, userID, contactID, groupID string) error
	RemoveFromGroup(ctx context.Context, userID, contactID, groupID string) error
}
