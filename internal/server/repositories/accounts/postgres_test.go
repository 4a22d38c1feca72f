package accounts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/server/models"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func accountRows(t *testing.T, accounts ...*models.Account) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "email", "name", "color", "display_name", "signature",
		"default_signature_id", "avatar", "is_default", "provider", "last_sync_at",
		"created_at", "updated_at",
	})
	for _, a := range accounts {
		rows.AddRow(a.ID, a.UserID, a.Email, a.Name, a.Color, a.DisplayName,
			a.Signature, a.DefaultSignatureID, a.Avatar, a.IsDefault, a.Provider,
			a.LastSyncAt, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func TestList(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	a := &models.Account{
		ID: "acc-1", UserID: "user-1", Email: "me@example.com", Name: "Work",
		Color: "blue", Provider: "gmail", IsDefault: true, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery(`SELECT .+ FROM accounts`).
		WithArgs("user-1").
		WillReturnRows(accountRows(t, a))

	list, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "acc-1", list[0].ID)
	assert.True(t, list[0].IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM accounts`).
		WithArgs("acc-x", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "user-1", "acc-x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_ScopedToOwner(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	// The owner id travels with the query, so another user's account id
	// yields no row at all.
	mock.ExpectQuery(`SELECT .+ FROM accounts`).
		WithArgs("acc-1", "user-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "user-2", "acc-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("user-1", "me@example.com", "Work", "blue", "", "", "", true, "gmail").
		WillReturnRows(sqlmock.NewRows([]string{"id", "default_signature_id", "last_sync_at", "created_at", "updated_at"}).
			AddRow("acc-1", "", nil, now, now))

	a, err := repo.Create(context.Background(), &models.Account{
		UserID: "user-1", Email: "me@example.com", Name: "Work",
		Color: "blue", IsDefault: true, Provider: "gmail",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", a.ID)
	assert.Equal(t, now, a.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`UPDATE accounts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Account{ID: "acc-x", UserID: "user-1"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`DELETE FROM accounts`).
		WithArgs("acc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1", "acc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearDefaultsAndMarkDefault(t *testing.T) {
	db, mock := newDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`UPDATE accounts SET is_default = FALSE`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE accounts SET is_default = TRUE`).
		WithArgs("acc-2", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearDefaults(context.Background(), "user-1"))
	require.NoError(t, repo.MarkDefault(context.Background(), "user-1", "acc-2"))
	require.NoError(t, mock.ExpectationsWereMet())
}
