// Package contacts provides a PostgreSQL-backed repository for address-book
// entries and their group memberships.
package contacts

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

const contactColumns = `id, user_id, name, email, phone, company, avatar, notes,
	is_favorite, created_at, updated_at`

const searchClause = ` AND (name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2)`

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company,
		&c.Avatar, &c.Notes, &c.IsFavorite, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID, search string) (int, error) {
	query := `SELECT count(*) FROM contacts WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		query += searchClause
		args = append(args, "%"+search+"%")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID, search string, offset, limit int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		query += searchClause
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT %d OFFSET %d`, limit, offset)

	return r.queryContacts(ctx, query, args...)
}

func (r *PostgresRepository) ListFavorites(ctx context.Context, userID string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		 WHERE user_id = $1 AND is_favorite ORDER BY name`
	return r.queryContacts(ctx, query, userID)
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, userID, groupID string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		 WHERE user_id = $1
		   AND id IN (SELECT contact_id FROM contact_group_members WHERE group_id = $2)
		 ORDER BY name`
	return r.queryContacts(ctx, query, userID, groupID)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, userID, email string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE email = $1 AND user_id = $2`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, email, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (user_id, name, email, phone, company, avatar, notes, is_favorite)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		contact.UserID, contact.Name, contact.Email, contact.Phone, contact.Company,
		contact.Avatar, contact.Notes, contact.IsFavorite).
		Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

func (r *PostgresRepository) Update(ctx context.Context, contact *models.Contact) error {
	query :=
		`UPDATE contacts
		 SET name = $1, email = $2, phone = $3, company = $4, avatar = $5,
		     notes = $6, is_favorite = $7, updated_at = now()
		 WHERE id = $8 AND user_id = $9`

	res, err := r.db.ExecContext(ctx, query,
		contact.Name, contact.Email, contact.Phone, contact.Company, contact.Avatar,
		contact.Notes, contact.IsFavorite, contact.ID, contact.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListGroupIDs(ctx context.Context, contactIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(contactIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT contact_id, group_id FROM contact_group_members
		 WHERE contact_id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, groupID string
		if err := rows.Scan(&contactID, &groupID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[contactID] = append(result[contactID], groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetGroups(ctx context.Context, userID, contactID string, groupIDs []string) error {
	del :=
		`DELETE FROM contact_group_members
		 WHERE contact_id = $1
		   AND group_id IN (SELECT id FROM contact_groups WHERE user_id = $2)`
	if _, err := r.db.ExecContext(ctx, del, contactID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil
	}

	ins :=
		`INSERT INTO contact_group_members (group_id, contact_id)
		 SELECT g.id, c.id
		 FROM contact_groups g
		 JOIN contacts c ON c.user_id = $1 AND c.id = $2
		 WHERE g.user_id = $1 AND g.id = ANY($3::uuid[])
		 ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, ins, userID, contactID, groupIDs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddToGroup(ctx context.Context, userID, contactID, groupID string) error {
	query :=
		`INSERT INTO contact_group_members (group_id, contact_id)
		 SELECT g.id, c.id
		 FROM contact_groups g
		 JOIN contacts c ON c.user_id = $1 AND c.id = $2
		 WHERE g.user_id = $1 AND g.id = $3
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, contactID, groupID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveFromGroup(ctx context.Context, userID, contactID, groupID string) error {
	query :=
		`DELETE FROM contact_group_members cgm
		 USING contact_groups g
		 WHERE g.id = cgm.group_id AND g.user_id = $1
		   AND cgm.contact_id = $2 AND cgm.group_id = $3`

	if _, err := r.db.ExecContext(ctx, query, userID, contactID, groupID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
