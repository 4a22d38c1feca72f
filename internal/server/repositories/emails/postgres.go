// Package emails provides a PostgreSQL-backed repository for mail messages
// and their recipients and label links.
//
// Ownership scoping is centralized: every statement goes through the
// ownedJoin/ownedFilter fragments so no query can forget to restrict rows
// to the acting user's accounts.
package emails

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const emailColumns = `e.id, e.account_id, e.subject, e.body, e.preview,
	e.sender_name, e.sender_email, e.is_read, e.is_starred, e.is_draft,
	e.has_attachment, e.folder, e.thread_id, e.reply_to_id, e.forwarded_from_id,
	e.scheduled_send_at, e.snooze_until, e.snoozed_from_folder,
	e.created_at, e.updated_at, a.color`

// ownedJoin ties an email row to its owning user; $1 is always the user id.
const ownedJoin = ` FROM emails e JOIN accounts a ON a.id = e.account_id AND a.user_id = $1`

func scanEmail(row interface{ Scan(...any) error }) (*models.Email, error) {
	e := &models.Email{}
	err := row.Scan(&e.ID, &e.AccountID, &e.Subject, &e.Body, &e.Preview,
		&e.SenderName, &e.SenderEmail, &e.IsRead, &e.IsStarred, &e.IsDraft,
		&e.HasAttachment, &e.Folder, &e.ThreadID, &e.ReplyToID, &e.ForwardedFromID,
		&e.ScheduledSendAt, &e.SnoozeUntil, &e.SnoozedFromFolder,
		&e.CreatedAt, &e.UpdatedAt, &e.AccountColor)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// buildFilter renders f as WHERE fragments. Args start after $1 (user id).
func buildFilter(f Filter) (string, []any) {
	var clauses []string
	args := []any{}
	n := 2

	add := func(clause string, value any) {
		clauses = append(clauses, fmt.Sprintf(clause, n))
		args = append(args, value)
		n++
	}

	if f.Folder != "" {
		add("e.folder = $%d", f.Folder)
	}
	if f.AccountID != "" {
		add("e.account_id = $%d", f.AccountID)
	}
	if f.IsRead != nil {
		add("e.is_read = $%d", *f.IsRead)
	}
	if f.IsStarred != nil {
		add("e.is_starred = $%d", *f.IsStarred)
	}
	if f.HasAttachment != nil {
		add("e.has_attachment = $%d", *f.HasAttachment)
	}
	if f.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(e.subject ILIKE $%d OR e.body ILIKE $%d OR e.sender_name ILIKE $%d OR e.sender_email ILIKE $%d)",
			n, n, n, n))
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.ThreadID != "" {
		add("e.thread_id = $%d", f.ThreadID)
	}
	for _, labelID := range f.LabelIDs {
		add("EXISTS (SELECT 1 FROM email_labels el WHERE el.email_id = e.id AND el.label_id = $%d)", labelID)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *PostgresRepository) Count(ctx context.Context, userID string, f Filter) (int, error) {
	where, args := buildFilter(f)
	query := `SELECT count(*)` + ownedJoin + ` WHERE TRUE` + where

	var count int
	err := r.db.QueryRowContext(ctx, query, append([]any{userID}, args...)...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, f Filter, offset, limit int) ([]*models.Email, error) {
	where, args := buildFilter(f)
	query := `SELECT ` + emailColumns + ownedJoin + ` WHERE TRUE` + where +
		fmt.Sprintf(` ORDER BY e.created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Email, error) {
	query := `SELECT ` + emailColumns + ownedJoin + ` WHERE e.id = $2`

	e, err := scanEmail(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, email *models.Email) (*models.Email, error) {
	query :=
		`INSERT INTO emails (account_id, subject, body, preview, sender_name, sender_email,
		     is_read, is_starred, is_draft, has_attachment, folder, thread_id,
		     reply_to_id, forwarded_from_id, scheduled_send_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		email.AccountID, email.Subject, email.Body, email.Preview,
		email.SenderName, email.SenderEmail, email.IsRead, email.IsStarred,
		email.IsDraft, email.HasAttachment, email.Folder, email.ThreadID,
		email.ReplyToID, email.ForwardedFromID, email.ScheduledSendAt).
		Scan(&email.ID, &email.CreatedAt, &email.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return email, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, email *models.Email) error {
	query :=
		`UPDATE emails e
		 SET is_read = $3, is_starred = $4, folder = $5, snooze_until = $6,
		     snoozed_from_folder = $7, updated_at = now()
		 FROM accounts a
		 WHERE a.id = e.account_id AND a.user_id = $1 AND e.id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, email.ID,
		email.IsRead, email.IsStarred, email.Folder, email.SnoozeUntil, email.SnoozedFromFolder)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query :=
		`DELETE FROM emails e
		 USING accounts a
		 WHERE a.id = e.account_id AND a.user_id = $1 AND e.id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// BulkUpdate applies set to every listed email the user owns. Rows outside
// the caller's scope are silently skipped by the ownership filter.
func (r *PostgresRepository) BulkUpdate(ctx context.Context, userID string, ids []string, set BulkSet) error {
	var assignments []string
	args := []any{userID, ids}
	n := 3

	assign := func(expr string, value any) {
		assignments = append(assignments, fmt.Sprintf(expr, n))
		args = append(args, value)
		n++
	}

	if set.IsRead != nil {
		assign("is_read = $%d", *set.IsRead)
	}
	if set.IsStarred != nil {
		assign("is_starred = $%d", *set.IsStarred)
	}
	if set.Folder != nil {
		assign("folder = $%d", *set.Folder)
	}
	if len(assignments) == 0 {
		return nil
	}
	assignments = append(assignments, "updated_at = now()")

	query :=
		`UPDATE emails e SET ` + strings.Join(assignments, ", ") + `
		 FROM accounts a
		 WHERE a.id = e.account_id AND a.user_id = $1 AND e.id = ANY($2::uuid[])`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BulkDelete(ctx context.Context, userID string, ids []string) error {
	query :=
		`DELETE FROM emails e
		 USING accounts a
		 WHERE a.id = e.account_id AND a.user_id = $1 AND e.id = ANY($2::uuid[])`

	if _, err := r.db.ExecContext(ctx, query, userID, ids); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddRecipients(ctx context.Context, emailID string, recipients []*models.Recipient) error {
	query :=
		`INSERT INTO recipients (email_id, address, name, kind, ord)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email_id, address, kind) DO NOTHING`

	for _, rec := range recipients {
		if _, err := r.db.ExecContext(ctx, query, emailID, rec.Address, rec.Name, rec.Kind, rec.Ord); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) ListRecipients(ctx context.Context, emailIDs []string) (map[string][]*models.Recipient, error) {
	result := make(map[string][]*models.Recipient)
	if len(emailIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT id, email_id, address, name, kind, ord FROM recipients
		 WHERE email_id = ANY($1::uuid[])
		 ORDER BY email_id, kind, ord`

	rows, err := r.db.QueryContext(ctx, query, emailIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := &models.Recipient{}
		if err := rows.Scan(&rec.ID, &rec.EmailID, &rec.Address, &rec.Name, &rec.Kind, &rec.Ord); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[rec.EmailID] = append(result[rec.EmailID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetLabels(ctx context.Context, userID, emailID string, labelIDs []string) error {
	del := `DELETE FROM email_labels WHERE email_id = $1`
	if _, err := r.db.ExecContext(ctx, del, emailID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(labelIDs) == 0 {
		return nil
	}
	return r.AddLabels(ctx, userID, []string{emailID}, labelIDs)
}

// AddLabels links every (owned email, owned label) pair. The subqueries make
// unowned ids vanish instead of erroring.
func (r *PostgresRepository) AddLabels(ctx context.Context, userID string, emailIDs, labelIDs []string) error {
	query :=
		`INSERT INTO email_labels (email_id, label_id)
		 SELECT e.id, l.id
		 FROM emails e
		 JOIN accounts a ON a.id = e.account_id AND a.user_id = $1
		 JOIN labels l ON l.user_id = $1 AND l.id = ANY($3::uuid[])
		 WHERE e.id = ANY($2::uuid[])
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, emailIDs, labelIDs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveLabels(ctx context.Context, userID string, emailIDs, labelIDs []string) error {
	query :=
		`DELETE FROM email_labels el
		 USING emails e, accounts a
		 WHERE e.id = el.email_id AND a.id = e.account_id AND a.user_id = $1
		   AND el.email_id = ANY($2::uuid[]) AND el.label_id = ANY($3::uuid[])`

	if _, err := r.db.ExecContext(ctx, query, userID, emailIDs, labelIDs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListLabelIDs(ctx context.Context, emailIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(emailIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT email_id, label_id FROM email_labels
		 WHERE email_id = ANY($1::uuid[])
		 ORDER BY email_id`

	rows, err := r.db.QueryContext(ctx, query, emailIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var emailID, labelID string
		if err := rows.Scan(&emailID, &labelID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[emailID] = append(result[emailID], labelID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
