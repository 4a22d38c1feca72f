// Package labels provides a PostgreSQL-backed repository for user labels.
package labels

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

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Label, error) {
	query :=
		`SELECT id, user_id, name, color, created_at FROM labels
		 WHERE user_id = $1
		 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Label
	for rows.Next() {
		l := &models.Label{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Color, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Label, error) {
	query :=
		`SELECT id, user_id, name, color, created_at FROM labels
		 WHERE id = $1 AND user_id = $2`

	l := &models.Label{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&l.ID, &l.UserID, &l.Name, &l.Color, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, label *models.Label) (*models.Label, error) {
	query :=
		`INSERT INTO labels (user_id, name, color)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, label.UserID, label.Name, label.Color).
		Scan(&label.ID, &label.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return label, nil
}

func (r *PostgresRepository) Update(ctx context.Context, label *models.Label) error {
	query :=
		`UPDATE labels SET name = $1, color = $2
		 WHERE id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, label.Name, label.Color, label.ID, label.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
