package labels

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]*models.Label, error)
	Get(ctx context.Context, userID, id string) (*models.Label, error)
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
	Update(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, userID, id string) error
}
