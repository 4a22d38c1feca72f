package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// FolderUpdate carries the fields a PATCH may change.
type FolderUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}

// FolderService manages user-defined folders: nesting, ordering and CRUD.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

func (s *FolderService) List(ctx context.Context, userID string) ([]*models.CustomFolder, error) {
	return s.repomanager.Folders(s.db).List(ctx, userID)
}

func (s *FolderService) Get(ctx context.Context, userID, id string) (*models.CustomFolder, error) {
	return s.repomanager.Folders(s.db).Get(ctx, userID, id)
}

// Create adds a folder at the end of its sibling list. A missing parent is
// reported as not found.
func (s *FolderService) Create(ctx context.Context, folder *models.CustomFolder) (*models.CustomFolder, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Folders(tx)

		if folder.ParentID != nil {
			if _, err := repo.Get(ctx, folder.UserID, *folder.ParentID); err != nil {
				return err
			}
		}

		count, err := repo.CountSiblings(ctx, folder.UserID, folder.ParentID)
		if err != nil {
			return err
		}
		folder.Ord = count

		_, err = repo.Create(ctx, folder)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return folder, nil
}

func (s *FolderService) Update(ctx context.Context, userID, id string, upd FolderUpdate) (*models.CustomFolder, error) {
	repo := s.repomanager.Folders(s.db)
	folder, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		folder.Name = *upd.Name
	}
	if upd.Color != nil {
		folder.Color = *upd.Color
	}
	if upd.Icon != nil {
		folder.Icon = *upd.Icon
	}
	if err := repo.Update(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Folders(s.db).Delete(ctx, userID, id)
}

// Reorder moves the folder to newOrder among its siblings and renumbers
// them densely from zero.
func (s *FolderService) Reorder(ctx context.Context, userID, id string, newOrder int) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Folders(tx)

		folder, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		siblings, err := repo.ListSiblings(ctx, userID, folder.ParentID)
		if err != nil {
			return err
		}

		reordered := make([]*models.CustomFolder, 0, len(siblings))
		for _, f := range siblings {
			if f.ID != folder.ID {
				reordered = append(reordered, f)
			}
		}
		if newOrder < 0 {
			newOrder = 0
		}
		if newOrder > len(reordered) {
			newOrder = len(reordered)
		}
		reordered = append(reordered[:newOrder], append([]*models.CustomFolder{folder}, reordered[newOrder:]...)...)

		for i, f := range reordered {
			if f.Ord != i {
				if err := repo.UpdateOrder(ctx, userID, f.ID, i); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
