package repomanager

import (
	"context"
	"database/sql"

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

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Emails(db dbx.DBTX) emails.Repository
	Labels(db dbx.DBTX) labels.Repository
	Folders(db dbx.DBTX) folders.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	ContactGroups(db dbx.DBTX) contactgroups.Repository
	Settings(db dbx.DBTX) settings.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
