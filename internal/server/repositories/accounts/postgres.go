// Package accounts provides a PostgreSQL-backed repository for connected
// email accounts. Every query is scoped to the owning user.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, user_id, email, name, color, display_name, signature,
	default_signature_id, avatar, is_default, provider, last_sync_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.Email, &a.Name, &a.Color, &a.DisplayName,
		&a.Signature, &a.DefaultSignatureID, &a.Avatar, &a.IsDefault, &a.Provider,
		&a.LastSyncAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE user_id = $1
		 ORDER BY is_default DESC, created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return accounts, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1 AND user_id = $2`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (user_id, email, name, color, display_name, signature, avatar, is_default, provider)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, default_signature_id, last_sync_at, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.UserID, account.Email, account.Name, account.Color, account.DisplayName,
		account.Signature, account.Avatar, account.IsDefault, account.Provider).
		Scan(&account.ID, &account.DefaultSignatureID, &account.LastSyncAt,
			&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts
		 SET name = $1, color = $2, display_name = $3, signature = $4,
		     default_signature_id = $5, avatar = $6, is_default = $7, updated_at = now()
		 WHERE id = $8 AND user_id = $9`

	res, err := r.db.ExecContext(ctx, query,
		account.Name, account.Color, account.DisplayName, account.Signature,
		account.DefaultSignatureID, account.Avatar, account.IsDefault,
		account.ID, account.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM accounts WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accounts WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ClearDefaults(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET is_default = FALSE WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkDefault(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_default = TRUE, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
