package services

import (
	"context"
	"database/sql"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// LabelUpdate carries the fields a PATCH may change.
type LabelUpdate struct {
	Name  *string
	Color *string
}

// LabelService manages user-defined labels.
type LabelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLabelService(db *sql.DB, m repomanager.RepositoryManager) *LabelService {
	return &LabelService{db: db, repomanager: m}
}

func (s *LabelService) List(ctx context.Context, userID string) ([]*models.Label, error) {
	return s.repomanager.Labels(s.db).List(ctx, userID)
}

func (s *LabelService) Get(ctx context.Context, userID, id string) (*models.Label, error) {
	return s.repomanager.Labels(s.db).Get(ctx, userID, id)
}

func (s *LabelService) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	return s.repomanager.Labels(s.db).Create(ctx, label)
}

func (s *LabelService) Update(ctx context.Context, userID, id string, upd LabelUpdate) (*models.Label, error) {
	repo := s.repomanager.Labels(s.db)
	label, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		label.Name = *upd.Name
	}
	if upd.Color != nil {
		label.Color = *upd.Color
	}
	if err := repo.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *LabelService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Labels(s.db).Delete(ctx, userID, id)
}
