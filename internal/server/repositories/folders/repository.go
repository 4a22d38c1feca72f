package folders

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]*models.CustomFolder, error)
	Get(ctx context.Context, userID, id string) (*models.CustomFolder, error)
	Create(ctx context.Context, folder *models.CustomFolder) (*models.CustomFolder, error)
	Update(ctx context.Context, folder *models.CustomFolder) error
	Delete(ctx context.Context, userID, id string) error
	CountSiblings(ctx context.Context, userID string, parentID *string) (int, error)
	ListSiblings(ctx context.Context, userID string, parentID *string) ([]*models.CustomFolder, error)
	UpdateOrder(ctx context.Context, userID, id string, ord int) error
}
