package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type addressIn struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type emailCreateIn struct {
	AccountID       string      `json:"accountId"`
	To              []addressIn `json:"to"`
	Cc              []addressIn `json:"cc"`
	Bcc             []addressIn `json:"bcc"`
	Subject         string      `json:"subject"`
	Body            string      `json:"body"`
	ReplyToID       *string     `json:"replyToId"`
	ForwardedFromID *string     `json:"forwardedFromId"`
	ScheduledSendAt *time.Time  `json:"scheduledSendAt"`
	AttachmentIDs   []string    `json:"attachmentIds"`
}

type emailUpdateIn struct {
	IsRead      *bool      `json:"isRead"`
	IsStarred   *bool      `json:"isStarred"`
	Folder      *string    `json:"folder"`
	SnoozeUntil *time.Time `json:"snoozeUntil"`
	Labels      []string   `json:"labels"`
}

type bulkOpIn struct {
	IDs       []string `json:"ids"`
	Operation string   `json:"operation"`
	Folder    string   `json:"folder"`
	LabelIDs  []string `json:"labelIds"`
}

type labelOpIn struct {
	LabelIDs []string `json:"labelIds"`
}

func toAddresses(in []addressIn) []services.Address {
	out := make([]services.Address, 0, len(in))
	for _, a := range in {
		out = append(out, services.Address{Name: a.Name, Email: a.Email})
	}
	return out
}

func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	q := r.URL.Query()

	f := emails.Filter{
		Folder:        q.Get("folder"),
		AccountID:     q.Get("accountId"),
		IsRead:        queryBool(r, "isRead"),
		IsStarred:     queryBool(r, "isStarred"),
		HasAttachment: queryBool(r, "hasAttachment"),
		Search:        q.Get("search"),
		ThreadID:      q.Get("threadId"),
	}
	if raw := q.Get("labelIds"); raw != "" {
		f.LabelIDs = strings.Split(raw, ",")
	}

	list, p, err := s.emails.List(r.Context(), user.ID, f, queryInt(r, "page", 1), queryInt(r, "pageSize", 50))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope(emailsToWire(list), p))
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	email, err := s.emails.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, emailToWire(email))
}

func (s *Server) composeInput(w http.ResponseWriter, r *http.Request) (services.EmailCompose, bool) {
	var in emailCreateIn
	if !s.decodeJSON(w, r, &in) {
		return services.EmailCompose{}, false
	}
	if in.AccountID == "" {
		s.writeError(w, http.StatusBadRequest, "accountId is required")
		return services.EmailCompose{}, false
	}
	return services.EmailCompose{
		AccountID:       in.AccountID,
		To:              toAddresses(in.To),
		Cc:              toAddresses(in.Cc),
		Bcc:             toAddresses(in.Bcc),
		Subject:         in.Subject,
		Body:            in.Body,
		ReplyToID:       in.ReplyToID,
		ForwardedFromID: in.ForwardedFromID,
		ScheduledSendAt: in.ScheduledSendAt,
		AttachmentIDs:   in.AttachmentIDs,
	}, true
}

func (s *Server) handleCreateEmail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	in, ok := s.composeInput(w, r)
	if !ok {
		return
	}
	email, err := s.emails.Create(r.Context(), user.ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, emailToWire(email))
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	in, ok := s.composeInput(w, r)
	if !ok {
		return
	}
	email, err := s.emails.CreateDraft(r.Context(), user.ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, emailToWire(email))
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in emailUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	email, err := s.emails.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.EmailUpdate{
		IsRead:      in.IsRead,
		IsStarred:   in.IsStarred,
		Folder:      in.Folder,
		SnoozeUntil: in.SnoozeUntil,
		Labels:      in.Labels,
		HasLabels:   in.Labels != nil,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, emailToWire(email))
}

func (s *Server) handleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.emails.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleDeleteEmailPermanent(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.emails.DeletePermanent(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleBulkEmails(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in bulkOpIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	if err := s.emails.BulkOperation(r.Context(), user.ID, in.Operation, in.IDs, in.Folder, in.LabelIDs); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleAddEmailLabels(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in labelOpIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	if err := s.emails.AddLabels(r.Context(), user.ID, chi.URLParam(r, "id"), in.LabelIDs); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleRemoveEmailLabels(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in labelOpIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	if err := s.emails.RemoveLabels(r.Context(), user.ID, chi.URLParam(r, "id"), in.LabelIDs); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
