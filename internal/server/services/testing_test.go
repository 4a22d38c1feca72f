package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/repositories/accounts"
	"github.com/penguinmail/penguinmail/internal/server/repositories/attachments"
	"github.com/penguinmail/penguinmail/internal/server/repositories/contactgroups"
	"github.com/penguinmail/penguinmail/internal/server/repositories/contacts"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/repositories/folders"
	"github.com/penguinmail/penguinmail/internal/server/repositories/labels"
	"github.com/penguinmail/penguinmail/internal/server/repositories/settings"
	"github.com/penguinmail/penguinmail/internal/server/repositories/users"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// newTestDB returns a sqlmock-backed database for exercising the
// transaction plumbing. Queries themselves go to fake repositories.
func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeManager hands out the fake repositories regardless of the handle.
type fakeManager struct {
	users       users.Repository
	accounts    accounts.Repository
	emails      emails.Repository
	labels      labels.Repository
	folders     folders.Repository
	contacts    contacts.Repository
	groups      contactgroups.Repository
	settings    settings.Repository
	attachments attachments.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository           { return m.accounts }
func (m *fakeManager) Emails(dbx.DBTX) emails.Repository               { return m.emails }
func (m *fakeManager) Labels(dbx.DBTX) labels.Repository               { return m.labels }
func (m *fakeManager) Folders(dbx.DBTX) folders.Repository             { return m.folders }
func (m *fakeManager) Contacts(dbx.DBTX) contacts.Repository           { return m.contacts }
func (m *fakeManager) ContactGroups(dbx.DBTX) contactgroups.Repository { return m.groups }
func (m *fakeManager) Settings(dbx.DBTX) settings.Repository           { return m.settings }
func (m *fakeManager) Attachments(dbx.DBTX) attachments.Repository     { return m.attachments }
