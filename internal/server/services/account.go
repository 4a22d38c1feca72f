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

// AccountUpdate carries the fields a PATCH may change. Nil fields are left
// untouched.
type AccountUpdate struct {
	Name               *string
	Color              *string
	DisplayName        *string
	Signature          *string
	DefaultSignatureID *string
	Avatar             *string
	IsDefault          *bool
}

// AccountService manages a user's connected email accounts, keeping the
// single-default invariant: at most one account per user is default, and
// switching defaults happens inside one transaction.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager) *AccountService {
	return &AccountService{db: db, repomanager: m}
}

func (s *AccountService) List(ctx context.Context, userID string) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).Get(ctx, userID, id)
}

// Create adds an account. The user's first account becomes the default
// automatically.
func (s *AccountService) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.Color == "" {
		account.Color = models.AccountColorBlue
	}
	if account.Provider == "" {
		account.Provider = models.ProviderGmail
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		count, err := repo.CountForUser(ctx, account.UserID)
		if err != nil {
			return err
		}
		account.IsDefault = count == 0
		_, err = repo.Create(ctx, account)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}

// Update applies a partial update. Setting IsDefault=true routes through the
// same clear-then-set swap as SetDefault; IsDefault=false is ignored, the
// way to lose default status is to give it to another account.
func (s *AccountService) Update(ctx context.Context, userID, id string, upd AccountUpdate) (*models.Account, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		var err error
		account, err = repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			account.Name = *upd.Name
		}
		if upd.Color != nil {
			account.Color = *upd.Color
		}
		if upd.DisplayName != nil {
			account.DisplayName = *upd.DisplayName
		}
		if upd.Signature != nil {
			account.Signature = *upd.Signature
		}
		if upd.DefaultSignatureID != nil {
			account.DefaultSignatureID = *upd.DefaultSignatureID
		}
		if upd.Avatar != nil {
			account.Avatar = *upd.Avatar
		}
		if upd.IsDefault != nil && *upd.IsDefault {
			if err := repo.ClearDefaults(ctx, userID); err != nil {
				return err
			}
			account.IsDefault = true
		}

		return repo.Update(ctx, account)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating account: %w", err)
	}
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Accounts(s.db).Delete(ctx, userID, id)
}

// SetDefault makes the given account the user's default. Clear-then-set runs
// in one transaction so no reader observes zero or two defaults.
func (s *AccountService) SetDefault(ctx context.Context, userID, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return err
		}
		if err := repo.ClearDefaults(ctx, userID); err != nil {
			return err
		}
		return repo.MarkDefault(ctx, userID, id)
	})
}
