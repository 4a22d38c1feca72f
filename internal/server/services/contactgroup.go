package services

import (
	"context"
	"database/sql"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// ContactGroupUpdate carries the fields a PATCH may change.
type ContactGroupUpdate struct {
	Name  *string
	Color *string
}

// ContactGroupService manages named sets of contacts.
type ContactGroupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContactGroupService(db *sql.DB, m repomanager.RepositoryManager) *ContactGroupService {
	return &ContactGroupService{db: db, repomanager: m}
}

func (s *ContactGroupService) List(ctx context.Context, userID string) ([]*models.ContactGroup, error) {
	list, err := s.repomanager.ContactGroups(s.db).List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachContacts(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ContactGroupService) Get(ctx context.Context, userID, id string) (*models.ContactGroup, error) {
	group, err := s.repomanager.ContactGroups(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachContacts(ctx, []*models.ContactGroup{group}); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *ContactGroupService) attachContacts(ctx context.Context, list []*models.ContactGroup) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, g := range list {
		ids = append(ids, g.ID)
	}
	contactIDs, err := s.repomanager.ContactGroups(s.db).ListContactIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, g := range list {
		g.ContactIDs = contactIDs[g.ID]
	}
	return nil
}

func (s *ContactGroupService) Create(ctx context.Context, group *models.ContactGroup) (*models.ContactGroup, error) {
	return s.repomanager.ContactGroups(s.db).Create(ctx, group)
}

func (s *ContactGroupService) Update(ctx context.Context, userID, id string, upd ContactGroupUpdate) (*models.ContactGroup, error) {
	repo := s.repomanager.ContactGroups(s.db)
	group, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		group.Name = *upd.Name
	}
	if upd.Color != nil {
		group.Color = *upd.Color
	}
	if err := repo.Update(ctx, group); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *ContactGroupService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.ContactGroups(s.db).Delete(ctx, userID, id)
}
