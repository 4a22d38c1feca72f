// Package settings provides a PostgreSQL-backed repository for per-user
// preferences: the settings document, signatures, filter rules, blocked
// addresses and keyboard shortcuts.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
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

// sectionColumns maps a settings section name to its column. UpdateSection
// only ever interpolates values from this map into SQL.
var sectionColumns = map[string]string{
	"appearance":        "appearance",
	"notifications":     "notifications",
	"inboxBehavior":     "inbox_behavior",
	"language":          "language",
	"vacationResponder": "vacation_responder",
}

const settingsColumns = `user_id, appearance, notifications, inbox_behavior,
	language, vacation_responder, created_at, updated_at`

func scanSettings(row interface{ Scan(...any) error }) (*models.UserSettings, error) {
	s := &models.UserSettings{}
	err := row.Scan(&s.UserID, &s.Appearance, &s.Notifications, &s.InboxBehavior,
		&s.Language, &s.VacationResponder, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM user_settings WHERE user_id = $1`

	s, err := scanSettings(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// EnsureSettings creates an empty settings row for the user if one does not
// exist yet and returns the current row.
func (r *PostgresRepository) EnsureSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	query :=
		`INSERT INTO user_settings (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.GetSettings(ctx, userID)
}

func (r *PostgresRepository) UpdateSection(ctx context.Context, userID, section string, value json.RawMessage) error {
	column, ok := sectionColumns[section]
	if !ok {
		return common.ErrorNotFound
	}

	query := fmt.Sprintf(
		`UPDATE user_settings SET %s = $1, updated_at = now() WHERE user_id = $2`, column)

	res, err := r.db.ExecContext(ctx, query, []byte(value), userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

const signatureColumns = `id, user_id, name, content, is_default, created_at, updated_at`

func scanSignature(row interface{ Scan(...any) error }) (*models.Signature, error) {
	s := &models.Signature{}
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Content, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) ListSignatures(ctx context.Context, userID string) ([]*models.Signature, error) {
	query := `SELECT ` + signatureColumns + ` FROM signatures
		 WHERE user_id = $1
		 ORDER BY is_default DESC, name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Signature
	for rows.Next() {
		s, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetSignature(ctx context.Context, userID, id string) (*models.Signature, error) {
	query := `SELECT ` + signatureColumns + ` FROM signatures WHERE id = $1 AND user_id = $2`

	s, err := scanSignature(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) CreateSignature(ctx context.Context, sig *models.Signature) (*models.Signature, error) {
	query :=
		`INSERT INTO signatures (user_id, name, content, is_default)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, sig.UserID, sig.Name, sig.Content, sig.IsDefault).
		Scan(&sig.ID, &sig.CreatedAt, &sig.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sig, nil
}

func (r *PostgresRepository) UpdateSignature(ctx context.Context, sig *models.Signature) error {
	query :=
		`UPDATE signatures SET name = $1, content = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4`

	res, err := r.db.ExecContext(ctx, query, sig.Name, sig.Content, sig.ID, sig.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteSignature(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM signatures WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearDefaultSignatures(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE signatures SET is_default = FALSE, updated_at = now()
		 WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkSignatureDefault(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE signatures SET is_default = TRUE, updated_at = now()
		 WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

const ruleColumns = `id, user_id, name, enabled, conditions, match_all, actions, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*models.FilterRule, error) {
	f := &models.FilterRule{}
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Enabled, &f.Conditions,
		&f.MatchAll, &f.Actions, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) ListFilterRules(ctx context.Context, userID string) ([]*models.FilterRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM filter_rules WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FilterRule
	for rows.Next() {
		f, err := scanRule(rows)
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

func (r *PostgresRepository) CreateFilterRule(ctx context.Context, rule *models.FilterRule) (*models.FilterRule, error) {
	query :=
		`INSERT INTO filter_rules (user_id, name, enabled, conditions, match_all, actions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rule.UserID, rule.Name, rule.Enabled, []byte(rule.Conditions), rule.MatchAll, []byte(rule.Actions)).
		Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) UpdateFilterRule(ctx context.Context, rule *models.FilterRule) error {
	query :=
		`UPDATE filter_rules
		 SET name = $1, enabled = $2, conditions = $3, match_all = $4, actions = $5, updated_at = now()
		 WHERE id = $6 AND user_id = $7`

	res, err := r.db.ExecContext(ctx, query,
		rule.Name, rule.Enabled, []byte(rule.Conditions), rule.MatchAll, []byte(rule.Actions),
		rule.ID, rule.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteFilterRule(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM filter_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListBlocked(ctx context.Context, userID string) ([]*models.BlockedAddress, error) {
	query := `SELECT id, user_id, email, created_at FROM blocked_addresses
		 WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.BlockedAddress
	for rows.Next() {
		b := &models.BlockedAddress{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Email, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CreateBlocked(ctx context.Context, block *models.BlockedAddress) (*models.BlockedAddress, error) {
	query :=
		`INSERT INTO blocked_addresses (user_id, email)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, block.UserID, block.Email).
		Scan(&block.ID, &block.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return block, nil
}

func (r *PostgresRepository) DeleteBlockedByEmail(ctx context.Context, userID, email string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM blocked_addresses WHERE email = $1 AND user_id = $2`, email, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListShortcuts(ctx context.Context, userID string) ([]*models.KeyboardShortcut, error) {
	query := `SELECT id, user_id, action, key, modifiers, enabled FROM keyboard_shortcuts
		 WHERE user_id = $1 ORDER BY action`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.KeyboardShortcut
	for rows.Next() {
		sc := &models.KeyboardShortcut{}
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.Action, &sc.Key, &sc.Modifiers, &sc.Enabled); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpsertShortcut replaces the binding for the action, keeping one row per
// user and action.
func (r *PostgresRepository) UpsertShortcut(ctx context.Context, sc *models.KeyboardShortcut) (*models.KeyboardShortcut, error) {
	query :=
		`INSERT INTO keyboard_shortcuts (user_id, action, key, modifiers, enabled)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, action) DO UPDATE
		 SET key = EXCLUDED.key, modifiers = EXCLUDED.modifiers, enabled = EXCLUDED.enabled
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		sc.UserID, sc.Action, sc.Key, []byte(sc.Modifiers), sc.Enabled).Scan(&sc.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sc, nil
}

func (r *PostgresRepository) GetShortcut(ctx context.Context, userID, id string) (*models.KeyboardShortcut, error) {
	query := `SELECT id, user_id, action, key, modifiers, enabled FROM keyboard_shortcuts
		 WHERE id = $1 AND user_id = $2`

	sc := &models.KeyboardShortcut{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&sc.ID, &sc.UserID, &sc.Action, &sc.Key, &sc.Modifiers, &sc.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sc, nil
}

func (r *PostgresRepository) UpdateShortcut(ctx context.Context, sc *models.KeyboardShortcut) error {
	query :=
		`UPDATE keyboard_shortcuts SET key = $1, modifiers = $2, enabled = $3
		 WHERE id = $4 AND user_id = $5`

	res, err := r.db.ExecContext(ctx, query,
		sc.Key, []byte(sc.Modifiers), sc.Enabled, sc.ID, sc.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
