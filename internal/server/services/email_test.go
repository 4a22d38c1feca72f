package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/accounts"
	"github.com/penguinmail/penguinmail/internal/server/repositories/attachments"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
)

type fakeAccounts struct {
	accounts.Repository
	byID map[string]*models.Account
}

func (f *fakeAccounts) Get(_ context.Context, userID, id string) (*models.Account, error) {
	a, ok := f.byID[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

type fakeEmails struct {
	emails.Repository
	byID    map[string]*models.Email
	owner   map[string]string
	created []*models.Email
}

func newFakeEmails() *fakeEmails {
	return &fakeEmails{byID: map[string]*models.Email{}, owner: map[string]string{}}
}

func (f *fakeEmails) add(userID string, e *models.Email) {
	f.byID[e.ID] = e
	f.owner[e.ID] = userID
}

func (f *fakeEmails) Get(_ context.Context, userID, id string) (*models.Email, error) {
	e, ok := f.byID[id]
	if !ok || f.owner[id] != userID {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmails) Create(_ context.Context, e *models.Email) (*models.Email, error) {
	e.ID = fmt.Sprintf("email-%d", len(f.created)+1)
	f.created = append(f.created, e)
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEmails) Update(_ context.Context, userID string, e *models.Email) error {
	if f.owner[e.ID] != userID {
		return common.ErrorNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEmails) AddRecipients(context.Context, string, []*models.Recipient) error {
	return nil
}

func (f *fakeEmails) ListRecipients(context.Context, []string) (map[string][]*models.Recipient, error) {
	return map[string][]*models.Recipient{}, nil
}

func (f *fakeEmails) ListLabelIDs(context.Context, []string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

func (f *fakeEmails) SetLabels(context.Context, string, string, []string) error {
	return nil
}

type fakeAttachments struct {
	attachments.Repository
	linked map[string][]string
}

func (f *fakeAttachments) ListByEmails(context.Context, []string) (map[string][]*models.Attachment, error) {
	return map[string][]*models.Attachment{}, nil
}

func (f *fakeAttachments) LinkToEmail(_ context.Context, _, emailID string, ids []string) error {
	if f.linked == nil {
		f.linked = map[string][]string{}
	}
	f.linked[emailID] = ids
	return nil
}

func newEmailTestService(t *testing.T) (*EmailService, *fakeEmails, *fakeAttachments) {
	t.Helper()
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	emailRepo := newFakeEmails()
	attRepo := &fakeAttachments{}
	m := &fakeManager{
		accounts: &fakeAccounts{byID: map[string]*models.Account{
			"acc-1": {ID: "acc-1", UserID: "user-1", Email: "me@example.com", Name: "Work", DisplayName: "Jo Doe", Color: "blue"},
		}},
		emails:      emailRepo,
		attachments: attRepo,
	}
	return NewEmailService(db, m), emailRepo, attRepo
}

func strp(s string) *string { return &s }

func TestCreateEmail_RootsOwnThread(t *testing.T) {
	svc, _, _ := newEmailTestService(t)

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		To:        []Address{{Name: "A", Email: "a@example.com"}},
		Subject:   "hello",
		Body:      "<p>hi   there</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, email.ThreadID)
	assert.NotEmpty(t, *email.ThreadID)
	assert.Nil(t, email.ReplyToID)
	assert.Equal(t, models.FolderSent, email.Folder)
	assert.Equal(t, "Jo Doe", email.SenderName)
	assert.Equal(t, "me@example.com", email.SenderEmail)
	assert.Equal(t, "hi there", email.Preview)
}

func TestCreateEmail_ReplyInheritsThread(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "orig", ThreadID: strp("thread-7")})

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		ReplyToID: strp("orig"),
	})
	require.NoError(t, err)

	require.NotNil(t, email.ThreadID)
	assert.Equal(t, "thread-7", *email.ThreadID)
	require.NotNil(t, email.ReplyToID)
	assert.Equal(t, "orig", *email.ReplyToID)
}

func TestCreateEmail_ReplyToThreadlessTargetUsesTargetID(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "orig"})

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		ReplyToID: strp("orig"),
	})
	require.NoError(t, err)

	require.NotNil(t, email.ThreadID)
	assert.Equal(t, "orig", *email.ThreadID)

	// The referenced message itself stays threadless.
	assert.Nil(t, repo.byID["orig"].ThreadID)
}

func TestCreateEmail_MissingReplyTargetDropped(t *testing.T) {
	svc, _, _ := newEmailTestService(t)

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		ReplyToID: strp("nope"),
	})
	require.NoError(t, err)

	assert.Nil(t, email.ReplyToID)
	require.NotNil(t, email.ThreadID)
	assert.NotEqual(t, "nope", *email.ThreadID)
}

func TestCreateEmail_UnownedReplyTargetDropped(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-2", &models.Email{ID: "theirs", ThreadID: strp("their-thread")})

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		ReplyToID: strp("theirs"),
	})
	require.NoError(t, err)

	assert.Nil(t, email.ReplyToID)
	assert.NotEqual(t, "their-thread", *email.ThreadID)
}

func TestCreateEmail_ForwardKeepsOwnThread(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "orig", ThreadID: strp("thread-7")})

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID:       "acc-1",
		ForwardedFromID: strp("orig"),
	})
	require.NoError(t, err)

	require.NotNil(t, email.ForwardedFromID)
	assert.Equal(t, "orig", *email.ForwardedFromID)
	assert.NotEqual(t, "thread-7", *email.ThreadID)
}

func TestCreateDraft_IgnoresReferences(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "orig", ThreadID: strp("thread-7")})

	email, err := svc.CreateDraft(context.Background(), "user-1", EmailCompose{
		AccountID: "acc-1",
		ReplyToID: strp("orig"),
	})
	require.NoError(t, err)

	assert.True(t, email.IsDraft)
	assert.Equal(t, models.FolderDrafts, email.Folder)
	assert.Nil(t, email.ReplyToID)
	assert.NotEqual(t, "thread-7", *email.ThreadID)
}

func TestCreateEmail_ScheduledGoesToScheduledFolder(t *testing.T) {
	svc, _, _ := newEmailTestService(t)

	at := testTime()
	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID:       "acc-1",
		ScheduledSendAt: &at,
	})
	require.NoError(t, err)

	assert.Equal(t, models.FolderScheduled, email.Folder)
	require.NotNil(t, email.ScheduledSendAt)
	assert.Equal(t, at, *email.ScheduledSendAt)
}

func TestCreateEmail_LinksAttachments(t *testing.T) {
	svc, _, attRepo := newEmailTestService(t)

	email, err := svc.Create(context.Background(), "user-1", EmailCompose{
		AccountID:     "acc-1",
		AttachmentIDs: []string{"att-1", "att-2"},
	})
	require.NoError(t, err)

	assert.True(t, email.HasAttachment)
	assert.Equal(t, []string{"att-1", "att-2"}, attRepo.linked[email.ID])
}

func TestCreateEmail_UnknownAccount(t *testing.T) {
	svc, _, _ := newEmailTestService(t)

	_, err := svc.Create(context.Background(), "user-1", EmailCompose{AccountID: "nope"})
	assert.ErrorIs(t, err, common.ErrAccountNotFound)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateEmail_SnoozeRecordsOrigin(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "e1", Folder: models.FolderInbox})

	until := testTime()
	snoozed := models.FolderSnoozed
	email, err := svc.Update(context.Background(), "user-1", "e1", EmailUpdate{
		Folder:      &snoozed,
		SnoozeUntil: &until,
	})
	require.NoError(t, err)

	assert.Equal(t, models.FolderSnoozed, email.Folder)
	require.NotNil(t, email.SnoozedFromFolder)
	assert.Equal(t, models.FolderInbox, *email.SnoozedFromFolder)
	require.NotNil(t, email.SnoozeUntil)
}

func TestUpdateEmail_LeavingSnoozeClearsState(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	until := testTime()
	inbox := models.FolderInbox
	repo.add("user-1", &models.Email{
		ID:                "e1",
		Folder:            models.FolderSnoozed,
		SnoozeUntil:       &until,
		SnoozedFromFolder: &inbox,
	})

	archive := models.FolderArchive
	email, err := svc.Update(context.Background(), "user-1", "e1", EmailUpdate{Folder: &archive})
	require.NoError(t, err)

	assert.Equal(t, models.FolderArchive, email.Folder)
	assert.Nil(t, email.SnoozeUntil)
	assert.Nil(t, email.SnoozedFromFolder)
}

func TestDeleteEmail_MovesToTrash(t *testing.T) {
	svc, repo, _ := newEmailTestService(t)
	repo.add("user-1", &models.Email{ID: "e1", Folder: models.FolderInbox})

	require.NoError(t, svc.Delete(context.Background(), "user-1", "e1"))
	assert.Equal(t, models.FolderTrash, repo.byID["e1"].Folder)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags", "<p>hello <b>world</b></p>", "hello world"},
		{"whitespace", "a \n\t b", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHTML(tt.in))
		})
	}
}

func TestStripHTML_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "0123456789"
	}
	assert.Len(t, stripHTML(long), previewMaxLength)
}

func TestStripHTML_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", previewMaxLength-1) + "éé"

	got := stripHTML(body)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, previewMaxLength, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", previewMaxLength-1)+"é", got)
}
