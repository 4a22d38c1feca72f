package accounts

import (
	"context"

	"github.com/penguinmail/penguinmail/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]*models.Account, error)
	Get(ctx context.Context, userID, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, userID, id string) error
	CountForUser(ctx context.Context, userID string) (int, error)
	ClearDefaults(ctx context.Context, userID string) error
	MarkDefault(ctx context.Context, userID, id string) error
}
