package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/logging"
	"github.com/penguinmail/penguinmail/internal/server/config"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/pagination"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type fakeAuth struct {
	AuthService
	user *models.User
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	if email == "jo@example.com" && password == "pw" {
		return &services.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 900}, nil
	}
	return nil, common.ErrInvalidCredentials
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	if token == "ref" {
		return &services.TokenPair{AccessToken: "acc2", ExpiresIn: 900}, nil
	}
	return nil, common.ErrInvalidToken
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == "good" && f.user != nil {
		return f.user, nil
	}
	return nil, common.ErrorUnauthorized
}

type fakeEmailService struct {
	EmailService
	listed    []*models.Email
	page      pagination.Page
	byID      map[string]*models.Email
	gotFilt   emails.Filter
	createErr error
}

func (f *fakeEmailService) List(_ context.Context, _ string, filt emails.Filter, _, _ int) ([]*models.Email, pagination.Page, error) {
	f.gotFilt = filt
	return f.listed, f.page, nil
}

func (f *fakeEmailService) Get(_ context.Context, _, id string) (*models.Email, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEmailService) Create(context.Context, string, services.EmailCompose) (*models.Email, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Email{ID: "e-new"}, nil
}

type fakeSettingsService struct {
	SettingsService
	bundle *services.SettingsBundle
}

func (f *fakeSettingsService) Get(context.Context, string) (*services.SettingsBundle, error) {
	return f.bundle, nil
}

type fakeLabelService struct {
	LabelService
	labels []*models.Label
}

func (f *fakeLabelService) List(context.Context, string) ([]*models.Label, error) {
	return f.labels, nil
}

func newTestServer(t *testing.T, svc Services) *Server {
	t.Helper()
	if svc.Auth == nil {
		svc.Auth = &fakeAuth{user: &models.User{ID: "user-1", Email: "jo@example.com"}}
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	return NewServer(&config.Config{EndpointAddrHTTP: ":0"}, logger, svc)
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Services{})
	rec := doRequest(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin_WireShape(t *testing.T) {
	s := newTestServer(t, Services{})

	rec := doRequest(t, s, http.MethodPost, "/api/auth/login", "", `{"email":"jo@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "acc", got["access_token"])
	assert.Equal(t, "ref", got["refresh_token"])
	assert.Equal(t, float64(900), got["expires_in"])
	assert.Equal(t, "Bearer", got["token_type"])
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t, Services{})

	rec := doRequest(t, s, http.MethodPost, "/api/auth/login", "", `{"email":"jo@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid credentials"}`, rec.Body.String())
}

func TestRefresh_OmitsRefreshToken(t *testing.T) {
	s := newTestServer(t, Services{})

	rec := doRequest(t, s, http.MethodPost, "/api/auth/refresh", "", `{"refresh_token":"ref"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "acc2", got["access_token"])
	_, present := got["refresh_token"]
	assert.False(t, present)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, Services{Labels: &fakeLabelService{}})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"bad token", "bad", http.StatusUnauthorized},
		{"good token", "good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, "/api/labels/", tt.token, "")
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"detail":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestListEmails_EnvelopeAndFilter(t *testing.T) {
	threadID := "thread-1"
	fake := &fakeEmailService{
		listed: []*models.Email{{
			ID:          "e1",
			AccountID:   "acc-1",
			Subject:     "hi",
			SenderName:  "Jo",
			SenderEmail: "jo@example.com",
			Folder:      "inbox",
			ThreadID:    &threadID,
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Recipients: []*models.Recipient{
				{Address: "a@example.com", Name: "A", Kind: models.RecipientTo},
				{Address: "c@example.com", Kind: models.RecipientCc},
			},
		}},
		page: pagination.Page{Page: 2, PageSize: 10, Total: 21, TotalPages: 3},
	}
	s := newTestServer(t, Services{Emails: fake})

	rec := doRequest(t, s, http.MethodGet, "/api/emails/?folder=inbox&isRead=false&labelIds=l1,l2&page=2&pageSize=10", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "inbox", fake.gotFilt.Folder)
	require.NotNil(t, fake.gotFilt.IsRead)
	assert.False(t, *fake.gotFilt.IsRead)
	assert.Equal(t, []string{"l1", "l2"}, fake.gotFilt.LabelIDs)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(2), got["page"])
	assert.Equal(t, float64(10), got["pageSize"])
	assert.Equal(t, float64(21), got["total"])
	assert.Equal(t, float64(3), got["totalPages"])

	data, ok := got["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)

	email := data[0].(map[string]any)
	from := email["from"].(map[string]any)
	assert.Equal(t, "jo@example.com", from["email"])
	assert.Len(t, email["to"], 1)
	assert.Len(t, email["cc"], 1)
	assert.Empty(t, email["bcc"])
	assert.Equal(t, "thread-1", email["threadId"])
	assert.Equal(t, "2025-06-01T12:00:00Z", email["date"])
}

func TestGetEmail_NotFound(t *testing.T) {
	s := newTestServer(t, Services{Emails: &fakeEmailService{byID: map[string]*models.Email{}}})

	rec := doRequest(t, s, http.MethodGet, "/api/emails/nope", "good", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not found"}`, rec.Body.String())
}

func TestGetSettings_RendersDefaults(t *testing.T) {
	bundle := &services.SettingsBundle{
		Settings: &models.UserSettings{
			Appearance: json.RawMessage(`{"theme":"dark"}`),
		},
		Shortcuts: []*models.KeyboardShortcut{
			{ID: "sc-1", Action: "compose", Key: "c", Modifiers: json.RawMessage(`["ctrl"]`), Enabled: true},
		},
	}
	s := newTestServer(t, Services{Settings: &fakeSettingsService{bundle: bundle}})

	rec := doRequest(t, s, http.MethodGet, "/api/settings/", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	appearance := got["appearance"].(map[string]any)
	assert.Equal(t, "dark", appearance["theme"])
	assert.Equal(t, "medium", appearance["fontSize"])

	language := got["language"].(map[string]any)
	assert.Equal(t, "en", language["language"])

	shortcuts := got["keyboardShortcuts"].([]any)
	require.Len(t, shortcuts, 1)
	sc := shortcuts[0].(map[string]any)
	assert.Equal(t, []any{"ctrl"}, sc["modifiers"])

	assert.Equal(t, []any{}, got["signatures"])
	assert.Equal(t, []any{}, got["filters"])
	assert.Equal(t, []any{}, got["blockedAddresses"])
}

func TestCreateEmail_RequiresAccountID(t *testing.T) {
	s := newTestServer(t, Services{Emails: &fakeEmailService{}})

	rec := doRequest(t, s, http.MethodPost, "/api/emails/", "good", `{"subject":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEmail_UnknownAccount(t *testing.T) {
	s := newTestServer(t, Services{Emails: &fakeEmailService{createErr: common.ErrAccountNotFound}})

	rec := doRequest(t, s, http.MethodPost, "/api/emails/", "good", `{"accountId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Account not found"}`, rec.Body.String())
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, Services{Emails: &fakeEmailService{}})

	rec := doRequest(t, s, http.MethodPost, "/api/emails/", "good", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid request body"}`, rec.Body.String())
}
