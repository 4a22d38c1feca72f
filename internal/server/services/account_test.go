package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/accounts"
)

// fakeAccountRepo records the order of default-swap calls so tests can
// assert clear runs before mark/update.
type fakeAccountRepo struct {
	accounts.Repository
	byID map[string]*models.Account
	ops  []string
}

func (f *fakeAccountRepo) Get(_ context.Context, userID, id string) (*models.Account, error) {
	a, ok := f.byID[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *models.Account) error {
	cur, ok := f.byID[account.ID]
	if !ok || cur.UserID != account.UserID {
		return common.ErrorNotFound
	}
	f.ops = append(f.ops, "update:"+account.ID)
	cp := *account
	f.byID[account.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) ClearDefaults(_ context.Context, userID string) error {
	f.ops = append(f.ops, "clear")
	for _, a := range f.byID {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}

func (f *fakeAccountRepo) MarkDefault(_ context.Context, userID, id string) error {
	f.ops = append(f.ops, "mark:"+id)
	a, ok := f.byID[id]
	if !ok || a.UserID != userID {
		return common.ErrorNotFound
	}
	a.IsDefault = true
	return nil
}

func newAccountTestRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[string]*models.Account{
		"acc-1": {ID: "acc-1", UserID: "user-1", Email: "one@example.com", Name: "One", IsDefault: true},
		"acc-2": {ID: "acc-2", UserID: "user-1", Email: "two@example.com", Name: "Two"},
	}}
}

func (f *fakeAccountRepo) defaults(userID string) []string {
	var ids []string
	for id, a := range f.byID {
		if a.UserID == userID && a.IsDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestSetDefault_SwapRunsInOneTransaction(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newAccountTestRepo()
	svc := NewAccountService(db, &fakeManager{accounts: repo})

	require.NoError(t, svc.SetDefault(context.Background(), "user-1", "acc-2"))

	// clear-then-mark, inside the Begin/Commit pair above
	assert.Equal(t, []string{"clear", "mark:acc-2"}, repo.ops)
	assert.Equal(t, []string{"acc-2"}, repo.defaults("user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDefault_UnknownAccountRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newAccountTestRepo()
	svc := NewAccountService(db, &fakeManager{accounts: repo})

	err := svc.SetDefault(context.Background(), "user-1", "acc-x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, repo.ops)
	assert.Equal(t, []string{"acc-1"}, repo.defaults("user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccount_DefaultPatchSwapsInOneTransaction(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newAccountTestRepo()
	svc := NewAccountService(db, &fakeManager{accounts: repo})

	isDefault := true
	account, err := svc.Update(context.Background(), "user-1", "acc-2", AccountUpdate{IsDefault: &isDefault})
	require.NoError(t, err)
	assert.True(t, account.IsDefault)

	assert.Equal(t, []string{"clear", "update:acc-2"}, repo.ops)
	assert.Equal(t, []string{"acc-2"}, repo.defaults("user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccount_DefaultFalseIgnored(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newAccountTestRepo()
	svc := NewAccountService(db, &fakeManager{accounts: repo})

	isDefault := false
	account, err := svc.Update(context.Background(), "user-1", "acc-1", AccountUpdate{IsDefault: &isDefault})
	require.NoError(t, err)
	assert.True(t, account.IsDefault)

	assert.Equal(t, []string{"update:acc-1"}, repo.ops)
	assert.Equal(t, []string{"acc-1"}, repo.defaults("user-1"))
}
