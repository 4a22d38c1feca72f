package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/dbx"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/pagination"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// Address is one name/address pair on a recipient line.
type Address struct {
	Name  string
	Email string
}

// EmailCompose is the input for creating an email or a draft.
type EmailCompose struct {
	AccountID       string
	To              []Address
	Cc              []Address
	Bcc             []Address
	Subject         string
	Body            string
	ReplyToID       *string
	ForwardedFromID *string
	ScheduledSendAt *time.Time
	AttachmentIDs   []string
}

// EmailUpdate carries the fields a PATCH may change. Nil fields are left
// untouched.
type EmailUpdate struct {
	IsRead      *bool
	IsStarred   *bool
	Folder      *string
	SnoozeUntil *time.Time
	Labels      []string
	HasLabels   bool
}

// Bulk operations accepted by BulkOperation.
const (
	BulkMarkRead        = "markRead"
	BulkMarkUnread      = "markUnread"
	BulkStar            = "star"
	BulkUnstar          = "unstar"
	BulkArchive         = "archive"
	BulkDelete          = "delete"
	BulkDeletePermanent = "deletePermanent"
	BulkMove            = "move"
	BulkAddLabel        = "addLabel"
	BulkRemoveLabel     = "removeLabel"
)

// EmailService implements mail listing, composition, threading and bulk
// operations.
type EmailService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEmailService(db *sql.DB, m repomanager.RepositoryManager) *EmailService {
	return &EmailService{db: db, repomanager: m}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

const previewMaxLength = 200

// stripHTML flattens markup into a short plain-text preview. The limit
// counts runes, not bytes, so multi-byte text is never cut mid-character.
func stripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, "")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(text) > previewMaxLength {
		text = string([]rune(text)[:previewMaxLength])
	}
	return text
}

// List returns one page of emails matching the filter, with recipients,
// attachments and label ids attached.
func (s *EmailService) List(ctx context.Context, userID string, f emails.Filter, page, pageSize int) ([]*models.Email, pagination.Page, error) {
	repo := s.repomanager.Emails(s.db)

	total, err := repo.Count(ctx, userID, f)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	p := pagination.New(total, page, pageSize)
	list, err := repo.List(ctx, userID, f, p.Offset(), p.Limit())
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if err := s.attachRelated(ctx, list); err != nil {
		return nil, pagination.Page{}, err
	}
	return list, p, nil
}

func (s *EmailService) Get(ctx context.Context, userID, id string) (*models.Email, error) {
	repo := s.repomanager.Emails(s.db)
	email, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelated(ctx, []*models.Email{email}); err != nil {
		return nil, err
	}
	return email, nil
}

// attachRelated populates Recipients, Attachments and LabelIDs for the
// given emails in three batched queries.
func (s *EmailService) attachRelated(ctx context.Context, list []*models.Email) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}

	emailRepo := s.repomanager.Emails(s.db)
	recipients, err := emailRepo.ListRecipients(ctx, ids)
	if err != nil {
		return err
	}
	labelIDs, err := emailRepo.ListLabelIDs(ctx, ids)
	if err != nil {
		return err
	}
	attachments, err := s.repomanager.Attachments(s.db).ListByEmails(ctx, ids)
	if err != nil {
		return err
	}

	for _, e := range list {
		e.Recipients = recipients[e.ID]
		e.LabelIDs = labelIDs[e.ID]
		e.Attachments = attachments[e.ID]
	}
	return nil
}

// Create composes and "sends" an email: the message lands in the sent
// folder (or scheduled, when a send time is given), threaded per
// resolveThreading.
func (s *EmailService) Create(ctx context.Context, userID string, in EmailCompose) (*models.Email, error) {
	return s.compose(ctx, userID, in, false)
}

// CreateDraft stores the message in drafts without threading references.
func (s *EmailService) CreateDraft(ctx context.Context, userID string, in EmailCompose) (*models.Email, error) {
	return s.compose(ctx, userID, in, true)
}

func (s *EmailService) compose(ctx context.Context, userID string, in EmailCompose, draft bool) (*models.Email, error) {
	var email *models.Email

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repomanager.Accounts(tx)
		emailRepo := s.repomanager.Emails(tx)

		account, err := accountRepo.Get(ctx, userID, in.AccountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return err
		}

		senderName := account.DisplayName
		if senderName == "" {
			senderName = account.Name
		}

		email = &models.Email{
			AccountID:     account.ID,
			Subject:       in.Subject,
			Body:          in.Body,
			Preview:       stripHTML(in.Body),
			SenderName:    senderName,
			SenderEmail:   account.Email,
			IsDraft:       draft,
			HasAttachment: len(in.AttachmentIDs) > 0,
			Folder:        models.FolderSent,
			AccountColor:  account.Color,
		}
		if draft {
			email.Folder = models.FolderDrafts
		}

		if draft {
			// Drafts root their own thread; references attach on send.
			threadID := uuid.New().String()
			email.ThreadID = &threadID
		} else if err := s.resolveThreading(ctx, emailRepo, userID, email, in); err != nil {
			return err
		}

		if !draft && in.ScheduledSendAt != nil {
			email.ScheduledSendAt = in.ScheduledSendAt
			email.Folder = models.FolderScheduled
		}

		if _, err := emailRepo.Create(ctx, email); err != nil {
			return err
		}

		recipients := collectRecipients(email.ID, in)
		if err := emailRepo.AddRecipients(ctx, email.ID, recipients); err != nil {
			return err
		}
		email.Recipients = recipients

		if len(in.AttachmentIDs) > 0 {
			if err := s.repomanager.Attachments(tx).LinkToEmail(ctx, userID, email.ID, in.AttachmentIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating email: %w", err)
	}

	if err := s.attachRelated(ctx, []*models.Email{email}); err != nil {
		return nil, err
	}
	return email, nil
}

// resolveThreading assigns thread and reference ids before insert.
//
// A fresh message roots its own thread. A reply inherits the target's
// thread id, falling back to the target's own id when the target never got
// one; the target itself is left untouched. Forwarding records the source
// but never moves the new message into its thread. References to missing
// or unowned messages are dropped silently.
func (s *EmailService) resolveThreading(ctx context.Context, repo emails.Repository, userID string, email *models.Email, in EmailCompose) error {
	threadID := uuid.New().String()
	email.ThreadID = &threadID

	if in.ReplyToID != nil && *in.ReplyToID != "" {
		ref, err := repo.Get(ctx, userID, *in.ReplyToID)
		switch {
		case err == nil:
			email.ReplyToID = &ref.ID
			if ref.ThreadID != nil {
				email.ThreadID = ref.ThreadID
			} else {
				email.ThreadID = &ref.ID
			}
		case errors.Is(err, common.ErrorNotFound):
			// dropped
		default:
			return err
		}
	}

	if in.ForwardedFromID != nil && *in.ForwardedFromID != "" {
		ref, err := repo.Get(ctx, userID, *in.ForwardedFromID)
		switch {
		case err == nil:
			email.ForwardedFromID = &ref.ID
		case errors.Is(err, common.ErrorNotFound):
			// dropped
		default:
			return err
		}
	}
	return nil
}

func collectRecipients(emailID string, in EmailCompose) []*models.Recipient {
	var recipients []*models.Recipient
	add := func(addrs []Address, kind string) {
		for i, a := range addrs {
			recipients = append(recipients, &models.Recipient{
				EmailID: emailID,
				Address: a.Email,
				Name:    a.Name,
				Kind:    kind,
				Ord:     i,
			})
		}
	}
	add(in.To, models.RecipientTo)
	add(in.Cc, models.RecipientCc)
	add(in.Bcc, models.RecipientBcc)
	return recipients
}

// Update applies a partial update. Moving a message into the snoozed folder
// records where it came from so it can return there later; moving it
// anywhere else clears the snooze state.
func (s *EmailService) Update(ctx context.Context, userID, id string, upd EmailUpdate) (*models.Email, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Emails(tx)
		email, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		if upd.IsRead != nil {
			email.IsRead = *upd.IsRead
		}
		if upd.IsStarred != nil {
			email.IsStarred = *upd.IsStarred
		}
		if upd.Folder != nil && *upd.Folder != email.Folder {
			if *upd.Folder == models.FolderSnoozed {
				from := email.Folder
				email.SnoozedFromFolder = &from
				email.SnoozeUntil = upd.SnoozeUntil
			} else {
				email.SnoozedFromFolder = nil
				email.SnoozeUntil = nil
			}
			email.Folder = *upd.Folder
		}

		if err := repo.Update(ctx, userID, email); err != nil {
			return err
		}

		if upd.HasLabels {
			return repo.SetLabels(ctx, userID, id, upd.Labels)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating email: %w", err)
	}
	return s.Get(ctx, userID, id)
}

// Delete moves the message to trash. Permanent removal goes through
// DeletePermanent.
func (s *EmailService) Delete(ctx context.Context, userID, id string) error {
	trash := models.FolderTrash
	_, err := s.Update(ctx, userID, id, EmailUpdate{Folder: &trash})
	return err
}

func (s *EmailService) DeletePermanent(ctx context.Context, userID, id string) error {
	return s.repomanager.Emails(s.db).Delete(ctx, userID, id)
}

// BulkOperation applies the named operation to every listed email the user
// owns; unowned ids are skipped silently. Unknown operations are no-ops.
func (s *EmailService) BulkOperation(ctx context.Context, userID, op string, ids []string, folder string, labelIDs []string) error {
	if len(ids) == 0 {
		return nil
	}
	repo := s.repomanager.Emails(s.db)

	boolPtr := func(v bool) *bool { return &v }
	strPtr := func(v string) *string { return &v }

	switch op {
	case BulkMarkRead:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{IsRead: boolPtr(true)})
	case BulkMarkUnread:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{IsRead: boolPtr(false)})
	case BulkStar:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{IsStarred: boolPtr(true)})
	case BulkUnstar:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{IsStarred: boolPtr(false)})
	case BulkArchive:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{Folder: strPtr(models.FolderArchive)})
	case BulkDelete:
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{Folder: strPtr(models.FolderTrash)})
	case BulkDeletePermanent:
		return repo.BulkDelete(ctx, userID, ids)
	case BulkMove:
		if folder == "" {
			return nil
		}
		return repo.BulkUpdate(ctx, userID, ids, emails.BulkSet{Folder: &folder})
	case BulkAddLabel:
		if len(labelIDs) == 0 {
			return nil
		}
		return repo.AddLabels(ctx, userID, ids, labelIDs)
	case BulkRemoveLabel:
		if len(labelIDs) == 0 {
			return nil
		}
		return repo.RemoveLabels(ctx, userID, ids, labelIDs)
	}
	return nil
}

// AddLabels attaches labels to one email the user owns.
func (s *EmailService) AddLabels(ctx context.Context, userID, emailID string, labelIDs []string) error {
	repo := s.repomanager.Emails(s.db)
	if _, err := repo.Get(ctx, userID, emailID); err != nil {
		return err
	}
	return repo.AddLabels(ctx, userID, []string{emailID}, labelIDs)
}

// RemoveLabels detaches labels from one email the user owns.
func (s *EmailService) RemoveLabels(ctx context.Context, userID, emailID string, labelIDs []string) error {
	repo := s.repomanager.Emails(s.db)
	if _, err := repo.Get(ctx, userID, emailID); err != nil {
		return err
	}
	return repo.RemoveLabels(ctx, userID, []string{emailID}, labelIDs)
}
