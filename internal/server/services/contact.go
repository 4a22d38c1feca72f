package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/pagination"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// ContactUpdate carries the fields a PATCH may change. Groups replaces the
// contact's whole group membership when HasGroups is set.
type ContactUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Company    *string
	Avatar     *string
	Notes      *string
	IsFavorite *bool
	Groups     []string
	HasGroups  bool
}

// ContactService manages the address book and group memberships.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repomanager: m}
}

// List returns one page of contacts, optionally narrowed by a search term
// over name, email and company.
func (s *ContactService) List(ctx context.Context, userID, search string, page, pageSize int) ([]*models.Contact, pagination.Page, error) {
	repo := s.repomanager.Contacts(s.db)

	total, err := repo.Count(ctx, userID, search)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	p := pagination.New(total, page, pageSize)
	list, err := repo.List(ctx, userID, search, p.Offset(), p.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if err := s.attachGroups(ctx, list); err != nil {
		return nil, pagination.Page{}, err
	}
	return list, p, nil
}

func (s *ContactService) ListFavorites(ctx context.Context, userID string) ([]*models.Contact, error) {
	list, err := s.repomanager.Contacts(s.db).ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ContactService) ListByGroup(ctx context.Context, userID, groupID string) ([]*models.Contact, error) {
	if _, err := s.repomanager.ContactGroups(s.db).Get(ctx, userID, groupID); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Contacts(s.db).ListByGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ContactService) Get(ctx context.Context, userID, id string) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(ctx, []*models.Contact{contact}); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) GetByEmail(ctx context.Context, userID, email string) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).GetByEmail(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(ctx, []*models.Contact{contact}); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) attachGroups(ctx context.Context, list []*models.Contact) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	groupIDs, err := s.repomanager.Contacts(s.db).ListGroupIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range list {
		c.GroupIDs = groupIDs[c.ID]
	}
	return nil
}

// Create adds a contact and, when group ids are given, memberships in the
// user's own groups. Unowned group ids are skipped.
func (s *ContactService) Create(ctx context.Context, contact *models.Contact, groupIDs []string) (*models.Contact, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Contacts(tx)
		if _, err := repo.Create(ctx, contact); err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			return repo.SetGroups(ctx, contact.UserID, contact.ID, groupIDs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}
	return s.Get(ctx, contact.UserID, contact.ID)
}

func (s *ContactService) Update(ctx context.Context, userID, id string, upd ContactUpdate) (*models.Contact, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Contacts(tx)
		contact, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			contact.Name = *upd.Name
		}
		if upd.Email != nil {
			contact.Email = *upd.Email
		}
		if upd.Phone != nil {
			contact.Phone = *upd.Phone
		}
		if upd.Company != nil {
			contact.Company = *upd.Company
		}
		if upd.Avatar != nil {
			contact.Avatar = *upd.Avatar
		}
		if upd.Notes != nil {
			contact.Notes = *upd.Notes
		}
		if upd.IsFavorite != nil {
			contact.IsFavorite = *upd.IsFavorite
		}

		if err := repo.Update(ctx, contact); err != nil {
			return err
		}
		if upd.HasGroups {
			return repo.SetGroups(ctx, userID, id, upd.Groups)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating contact: %w", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Contacts(s.db).Delete(ctx, userID, id)
}

// ToggleFavorite flips the favorite flag and returns the updated contact.
func (s *ContactService) ToggleFavorite(ctx context.Context, userID, id string) (*models.Contact, error) {
	repo := s.repomanager.Contacts(s.db)
	contact, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	contact.IsFavorite = !contact.IsFavorite
	if err := repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// AddToGroup and RemoveFromGroup verify both sides exist before touching the
// membership so a bad id reads as not found.
func (s *ContactService) AddToGroup(ctx context.Context, userID, contactID, groupID string) error {
	if _, err := s.repomanager.Contacts(s.db).Get(ctx, userID, contactID); err != nil {
		return err
	}
	if _, err := s.repomanager.ContactGroups(s.db).Get(ctx, userID, groupID); err != nil {
		return err
	}
	return s.repomanager.Contacts(s.db).AddToGroup(ctx, userID, contactID, groupID)
}

func (s *ContactService) RemoveFromGroup(ctx context.Context, userID, contactID, groupID string) error {
	if _, err := s.repomanager.Contacts(s.db).Get(ctx, userID, contactID); err != nil {
		return err
	}
	if _, err := s.repomanager.ContactGroups(s.db).Get(ctx, userID, groupID); err != nil {
		return err
	}
	return s.repomanager.Contacts(s.db).RemoveFromGroup(ctx, userID, contactID, groupID)
}
