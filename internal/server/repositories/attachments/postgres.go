// Package attachments provides a PostgreSQL-backed repository for attachment
// metadata. Content lives in object storage under storage_key; rows with a
// NULL email_id are staged uploads not yet linked to an email.
package attachments

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

// Get returns the attachment if it is staged or belongs to one of the user's
// emails. Linked attachments of other users come back as not found.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Attachment, error) {
	query :=
		`SELECT at.id, at.email_id, at.name, at.size, at.mime_type, at.storage_key, at.created_at
		 FROM attachments at
		 WHERE at.id = $1
		   AND (at.email_id IS NULL OR EXISTS (
		       SELECT 1 FROM emails e
		       JOIN accounts a ON a.id = e.account_id
		       WHERE e.id = at.email_id AND a.user_id = $2))`

	att := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&att.ID, &att.EmailID, &att.Name, &att.Size, &att.MimeType, &att.StorageKey, &att.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return att, nil
}

func (r *PostgresRepository) Create(ctx context.Context, att *models.Attachment) (*models.Attachment, error) {
	query :=
		`INSERT INTO attachments (email_id, name, size, mime_type, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		att.EmailID, att.Name, att.Size, att.MimeType, att.StorageKey).
		Scan(&att.ID, &att.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return att, nil
}

func (r *PostgresRepository) ListByEmails(ctx context.Context, emailIDs []string) (map[string][]*models.Attachment, error) {
	result := make(map[string][]*models.Attachment)
	if len(emailIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT id, email_id, name, size, mime_type, storage_key, created_at
		 FROM attachments
		 WHERE email_id = ANY($1::uuid[])
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, emailIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		att := &models.Attachment{}
		if err := rows.Scan(&att.ID, &att.EmailID, &att.Name, &att.Size,
			&att.MimeType, &att.StorageKey, &att.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if att.EmailID != nil {
			result[*att.EmailID] = append(result[*att.EmailID], att)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// LinkToEmail attaches staged uploads to an email the user owns. Already
// linked attachments are left untouched.
func (r *PostgresRepository) LinkToEmail(ctx context.Context, userID, emailID string, attachmentIDs []string) error {
	if len(attachmentIDs) == 0 {
		return nil
	}

	query :=
		`UPDATE attachments at
		 SET email_id = e.id
		 FROM emails e
		 JOIN accounts a ON a.id = e.account_id
		 WHERE a.user_id = $1 AND e.id = $2
		   AND at.id = ANY($3::uuid[]) AND at.email_id IS NULL`

	if _, err := r.db.ExecContext(ctx, query, userID, emailID, attachmentIDs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
