// Package httpapi exposes the REST surface of the server: routing,
// authentication middleware, request/response wire types and handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/penguinmail/penguinmail/internal/logging"
	"github.com/penguinmail/penguinmail/internal/server/config"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/pagination"
	"github.com/penguinmail/penguinmail/internal/server/repositories/emails"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

// AuthService defines the authentication operations the API needs.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AccountService defines the account operations the API needs.
type AccountService interface {
	List(ctx context.Context, userID string) ([]*models.Account, error)
	Get(ctx context.Context, userID, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, userID, id string, upd services.AccountUpdate) (*models.Account, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

// EmailService defines the email operations the API needs.
type EmailService interface {
	List(ctx context.Context, userID string, f emails.Filter, page, pageSize int) ([]*models.Email, pagination.Page, error)
	Get(ctx context.Context, userID, id string) (*models.Email, error)
	Create(ctx context.Context, userID string, in services.EmailCompose) (*models.Email, error)
	CreateDraft(ctx context.Context, userID string, in services.EmailCompose) (*models.Email, error)
	Update(ctx context.Context, userID, id string, upd services.EmailUpdate) (*models.Email, error)
	Delete(ctx context.Context, userID, id string) error
	DeletePermanent(ctx context.Context, userID, id string) error
	BulkOperation(ctx context.Context, userID, op string, ids []string, folder string, labelIDs []string) error
	AddLabels(ctx context.Context, userID, emailID string, labelIDs []string) error
	RemoveLabels(ctx context.Context, userID, emailID string, labelIDs []string) error
}

// LabelService defines the label operations the API needs.
type LabelService interface {
	List(ctx context.Context, userID string) ([]*models.Label, error)
	Get(ctx context.Context, userID, id string) (*models.Label, error)
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
	Update(ctx context.Context, userID, id string, upd services.LabelUpdate) (*models.Label, error)
	Delete(ctx context.Context, userID, id string) error
}

// FolderService defines the custom folder operations the API needs.
type FolderService interface {
	List(ctx context.Context, userID string) ([]*models.CustomFolder, error)
	Get(ctx context.Context, userID, id string) (*models.CustomFolder, error)
	Create(ctx context.Context, folder *models.CustomFolder) (*models.CustomFolder, error)
	Update(ctx context.Context, userID, id string, upd services.FolderUpdate) (*models.CustomFolder, error)
	Delete(ctx context.Context, userID, id string) error
	Reorder(ctx context.Context, userID, id string, newOrder int) error
}

// ContactService defines the contact operations the API needs.
type ContactService interface {
	List(ctx context.Context, userID, search string, page, pageSize int) ([]*models.Contact, pagination.Page, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Contact, error)
	ListByGroup(ctx context.Context, userID, groupID string) ([]*models.Contact, error)
	Get(ctx context.Context, userID, id string) (*models.Contact, error)
	GetByEmail(ctx context.Context, userID, email string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact, groupIDs []string) (*models.Contact, error)
	Update(ctx context.Context, userID, id string, upd services.ContactUpdate) (*models.Contact, error)
	Delete(ctx context.Context, userID, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (*models.Contact, error)
	AddToGroup(ctx context.Context, userID, contactID, groupID string) error
	RemoveFromGroup(ctx context.Context, userID, contactID, groupID string) error
}

// ContactGroupService defines the contact group operations the API needs.
type ContactGroupService interface {
	List(ctx context.Context, userID string) ([]*models.ContactGroup, error)
	Get(ctx context.Context, userID, id string) (*models.ContactGroup, error)
	Create(ctx context.Context, group *models.ContactGroup) (*models.ContactGroup, error)
	Update(ctx context.Context, userID, id string, upd services.ContactGroupUpdate) (*models.ContactGroup, error)
	Delete(ctx context.Context, userID, id string) error
}

// SettingsService defines the settings operations the API needs.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*services.SettingsBundle, error)
	UpdateSections(ctx context.Context, userID string, sections map[string]json.RawMessage) (*services.SettingsBundle, error)
	Reset(ctx context.Context, userID string) (*services.SettingsBundle, error)
	CreateSignature(ctx context.Context, userID, name, content string, isDefault bool) error
	UpdateSignature(ctx context.Context, userID, id string, upd services.SignatureUpdate) error
	DeleteSignature(ctx context.Context, userID, id string) error
	CreateFilter(ctx context.Context, rule *models.FilterRule) error
	UpdateFilter(ctx context.Context, userID, id string, upd services.FilterUpdate) error
	DeleteFilter(ctx context.Context, userID, id string) error
	BlockAddress(ctx context.Context, userID, email string) error
	UnblockAddress(ctx context.Context, userID, email string) error
	UpdateShortcut(ctx context.Context, userID, id string, upd services.ShortcutUpdate) error
}

// AttachmentService defines the attachment operations the API needs.
type AttachmentService interface {
	Upload(ctx context.Context, name, mimeType string, size int64, body io.Reader) (*models.Attachment, error)
	Get(ctx context.Context, userID, id string) (*models.Attachment, error)
	DownloadURL(ctx context.Context, userID, id string) (string, error)
}

// Server is the HTTP API server.
type Server struct {
	cfg         *config.Config
	logger      logging.Logger
	auth        AuthService
	accounts    AccountService
	emails      EmailService
	labels      LabelService
	folders     FolderService
	contacts    ContactService
	groups      ContactGroupService
	settings    SettingsService
	attachments AttachmentService
	router      chi.Router
	server      *http.Server
}

// Services bundles everything NewServer wires into routes.
type Services struct {
	Auth        AuthService
	Accounts    AccountService
	Emails      EmailService
	Labels      LabelService
	Folders     FolderService
	Contacts    ContactService
	Groups      ContactGroupService
	Settings    SettingsService
	Attachments AttachmentService
}

// NewServer creates the API server and builds its router.
func NewServer(cfg *config.Config, logger logging.Logger, svc Services) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		auth:        svc.Auth,
		accounts:    svc.Accounts,
		emails:      svc.Emails,
		labels:      svc.Labels,
		folders:     svc.Folders,
		contacts:    svc.Contacts,
		groups:      svc.Groups,
		settings:    svc.Settings,
		attachments: svc.Attachments,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.loggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", s.handleListAccounts)
				r.Post("/", s.handleCreateAccount)
				r.Get("/{id}", s.handleGetAccount)
				r.Patch("/{id}", s.handleUpdateAccount)
				r.Delete("/{id}", s.handleDeleteAccount)
				r.Post("/{id}/set-default", s.handleSetDefaultAccount)
			})

			r.Route("/emails", func(r chi.Router) {
				r.Get("/", s.handleListEmails)
				r.Post("/", s.handleCreateEmail)
				r.Post("/draft", s.handleCreateDraft)
				r.Post("/bulk", s.handleBulkEmails)
				r.Get("/{id}", s.handleGetEmail)
				r.Patch("/{id}", s.handleUpdateEmail)
				r.Delete("/{id}", s.handleDeleteEmail)
				r.Delete("/{id}/permanent", s.handleDeleteEmailPermanent)
				r.Post("/{id}/labels", s.handleAddEmailLabels)
				r.Delete("/{id}/labels", s.handleRemoveEmailLabels)
			})

			r.Route("/labels", func(r chi.Router) {
				r.Get("/", s.handleListLabels)
				r.Post("/", s.handleCreateLabel)
				r.Get("/{id}", s.handleGetLabel)
				r.Patch("/{id}", s.handleUpdateLabel)
				r.Delete("/{id}", s.handleDeleteLabel)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", s.handleListFolders)
				r.Post("/", s.handleCreateFolder)
				r.Get("/{id}", s.handleGetFolder)
				r.Patch("/{id}", s.handleUpdateFolder)
				r.Delete("/{id}", s.handleDeleteFolder)
				r.Post("/{id}/reorder", s.handleReorderFolder)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", s.handleListContacts)
				r.Get("/search", s.handleSearchContacts)
				r.Get("/favorites", s.handleFavoriteContacts)
				r.Get("/by-group/{groupId}", s.handleContactsByGroup)
				r.Get("/by-email/{email}", s.handleContactByEmail)
				r.Post("/", s.handleCreateContact)
				r.Get("/{id}", s.handleGetContact)
				r.Patch("/{id}", s.handleUpdateContact)
				r.Delete("/{id}", s.handleDeleteContact)
				r.Post("/{id}/toggle-favorite", s.handleToggleFavorite)
				r.Post("/{id}/add-to-group/{groupId}", s.handleAddContactToGroup)
				r.Post("/{id}/remove-from-group/{groupId}", s.handleRemoveContactFromGroup)
			})

			r.Route("/contact-groups", func(r chi.Router) {
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)
				r.Get("/{id}", s.handleGetGroup)
				r.Patch("/{id}", s.handleUpdateGroup)
				r.Delete("/{id}", s.handleDeleteGroup)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.handleGetSettings)
				r.Patch("/", s.handleUpdateSettings)
				r.Post("/reset", s.handleResetSettings)
				r.Post("/signatures", s.handleCreateSignature)
				r.Patch("/signatures/{id}", s.handleUpdateSignature)
				r.Delete("/signatures/{id}", s.handleDeleteSignature)
				r.Post("/filters", s.handleCreateFilter)
				r.Patch("/filters/{id}", s.handleUpdateFilter)
				r.Delete("/filters/{id}", s.handleDeleteFilter)
				r.Post("/blocked-addresses", s.handleBlockAddress)
				r.Delete("/blocked-addresses/{email}", s.handleUnblockAddress)
				r.Patch("/keyboard-shortcuts/{id}", s.handleUpdateShortcut)
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/upload", s.handleUploadAttachment)
				r.Get("/{id}", s.handleGetAttachment)
				r.Get("/{id}/download", s.handleDownloadAttachment)
			})
		})
	})

	return r
}

// Start begins listening for HTTP requests and blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.EndpointAddrHTTP,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info(context.Background(), "starting API server", "addr", s.cfg.EndpointAddrHTTP)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info(ctx, "shutting down API server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
