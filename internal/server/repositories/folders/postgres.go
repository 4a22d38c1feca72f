// Package folders provides a PostgreSQL-backed repository for user-defined
// folders. Folders nest via parent_id and order among siblings by ord.
package folders

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

const folderColumns = `id, user_id, name, color, icon, parent_id, ord, created_at, updated_at`

func scanFolder(row interface{ Scan(...any) error }) (*models.CustomFolder, error) {
	f := &models.CustomFolder{}
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Color, &f.Icon, &f.ParentID,
		&f.Ord, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.CustomFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM custom_folders
		 WHERE user_id = $1
		 ORDER BY ord, name`

	return r.queryFolders(ctx, query, userID)
}

func (r *PostgresRepository) queryFolders(ctx context.Context, query string, args ...any) ([]*models.CustomFolder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.CustomFolder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.CustomFolder, error) {
	query := `SELECT ` + folderColumns + ` FROM custom_folders
		 WHERE id = $1 AND user_id = $2`

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.CustomFolder) (*models.CustomFolder, error) {
	query :=
		`INSERT INTO custom_folders (user_id, name, color, icon, parent_id, ord)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		folder.UserID, folder.Name, folder.Color, folder.Icon, folder.ParentID, folder.Ord).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) Update(ctx context.Context, folder *models.CustomFolder) error {
	query :=
		`UPDATE custom_folders SET name = $1, color = $2, icon = $3, updated_at = now()
		 WHERE id = $4 AND user_id = $5`

	res, err := r.db.ExecContext(ctx, query,
		folder.Name, folder.Color, folder.Icon, folder.ID, folder.UserID)
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
		`DELETE FROM custom_folders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountSiblings(ctx context.Context, userID string, parentID *string) (int, error) {
	var count int
	var err error
	if parentID == nil {
		err = r.db.QueryRowContext(ctx,
			`SELECT count(*) FROM custom_folders WHERE user_id = $1 AND parent_id IS NULL`, userID).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT count(*) FROM custom_folders WHERE user_id = $1 AND parent_id = $2`, userID, *parentID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListSiblings(ctx context.Context, userID string, parentID *string) ([]*models.CustomFolder, error) {
	if parentID == nil {
		return r.queryFolders(ctx,
			`SELECT `+folderColumns+` FROM custom_folders
			 WHERE user_id = $1 AND parent_id IS NULL ORDER BY ord`, userID)
	}
	return r.queryFolders(ctx,
		`SELECT `+folderColumns+` FROM custom_folders
		 WHERE user_id = $1 AND parent_id = $2 ORDER BY ord`, userID, *parentID)
}

func (r *PostgresRepository) UpdateOrder(ctx context.Context, userID, id string, ord int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE custom_folders SET ord = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		ord, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
