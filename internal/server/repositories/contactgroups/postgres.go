// Package contactgroups provides a PostgreSQL-backed repository for contact
// groups.
package contactgroups

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

const groupColumns = `id, user_id, name, color, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (*models.ContactGroup, error) {
	g := &models.ContactGroup{}
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Color, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.ContactGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM contact_groups WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ContactGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.ContactGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM contact_groups WHERE id = $1 AND user_id = $2`

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) Create(ctx context.Context, group *models.ContactGroup) (*models.ContactGroup, error) {
	query :=
		`INSERT INTO contact_groups (user_id, name, color)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, group.UserID, group.Name, group.Color).
		Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return group, nil
}

func (r *PostgresRepository) Update(ctx context.Context, group *models.ContactGroup) error {
	query :=
		`UPDATE contact_groups SET name = $1, color = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, group.Name, group.Color, group.ID, group.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contact_groups WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListContactIDs(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(groupIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT group_id, contact_id FROM contact_group_members
		 WHERE group_id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, contactID string
		if err := rows.Scan(&groupID, &contactID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[groupID] = append(result[groupID], contactID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
