// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/migrations"
	"github.com/penguinmail/penguinmail/internal/server/repositories/accounts"
	"github.com/penguinmail/penguinmail/internal/server/repositories/attachments"
	"github.com/penguinmail/penguinmail/internal/server/repositories/contactgroups"
	"github.com/penguinmail/penguinmail/internal/server/repositories/contacts"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/repositories/folders"
	"github.com/penguinmail/penguinmail/internal/server/repositories/labels"
	"github.com/penguinmail/penguinmail/internal/server/repositories/settings"
	"github.com/penguinmail/penguinmail/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// Emails returns an emails.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Emails(db dbx.DBTX) emails.Repository {
	return emails.NewPostgresRepository(db)
}

// Labels returns a labels.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Labels(db dbx.DBTX) labels.Repository {
	return labels.NewPostgresRepository(db)
}

// Folders returns a folders.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return folders.NewPostgresRepository(db)
}

// Contacts returns a contacts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}

// ContactGroups returns a contactgroups.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) ContactGroups(db dbx.DBTX) contactgroups.Repository {
	return contactgroups.NewPostgresRepository(db)
}

// Settings returns a settings.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

// Attachments returns an attachments.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Attachments(db dbx.DBTX) attachments.Repository {
	return attachments.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
