package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type signatureCreateIn struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsDefault bool   `json:"isDefault"`
}

type signatureUpdateIn struct {
	Name      *string `json:"name"`
	Content   *string `json:"content"`
	IsDefault *bool   `json:"isDefault"`
}

type filterCreateIn struct {
	Name       string          `json:"name"`
	Enabled    *bool           `json:"enabled"`
	Conditions json.RawMessage `json:"conditions"`
	MatchAll   *bool           `json:"matchAll"`
	Actions    json.RawMessage `json:"actions"`
}

type filterUpdateIn struct {
	Name       *string         `json:"name"`
	Enabled    *bool           `json:"enabled"`
	Conditions json.RawMessage `json:"conditions"`
	MatchAll   *bool           `json:"matchAll"`
	Actions    json.RawMessage `json:"actions"`
}

type blockAddressIn struct {
	Email string `json:"email"`
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int) {
	user := userFrom(r.Context())

	bundle, err := s.settings.Get(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, status, settingsToWire(bundle))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var sections map[string]json.RawMessage
	if !s.decodeJSON(w, r, &sections) {
		return
	}

	bundle, err := s.settings.UpdateSections(r.Context(), user.ID, sections)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingsToWire(bundle))
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	bundle, err := s.settings.Reset(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingsToWire(bundle))
}

func (s *Server) handleCreateSignature(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in signatureCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.settings.CreateSignature(r.Context(), user.ID, in.Name, in.Content, in.IsDefault); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusCreated)
}

func (s *Server) handleUpdateSignature(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in signatureUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	err := s.settings.UpdateSignature(r.Context(), user.ID, chi.URLParam(r, "id"), services.SignatureUpdate{
		Name:      in.Name,
		Content:   in.Content,
		IsDefault: in.IsDefault,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusOK)
}

func (s *Server) handleDeleteSignature(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.settings.DeleteSignature(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleCreateFilter(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in filterCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	rule := &models.FilterRule{
		UserID:     user.ID,
		Name:       in.Name,
		Enabled:    true,
		MatchAll:   true,
		Conditions: in.Conditions,
		Actions:    in.Actions,
	}
	if in.Enabled != nil {
		rule.Enabled = *in.Enabled
	}
	if in.MatchAll != nil {
		rule.MatchAll = *in.MatchAll
	}

	if err := s.settings.CreateFilter(r.Context(), rule); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusCreated)
}

func (s *Server) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in filterUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	err := s.settings.UpdateFilter(r.Context(), user.ID, chi.URLParam(r, "id"), services.FilterUpdate{
		Name:       in.Name,
		Enabled:    in.Enabled,
		Conditions: in.Conditions,
		MatchAll:   in.MatchAll,
		Actions:    in.Actions,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusOK)
}

func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.settings.DeleteFilter(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleBlockAddress(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in blockAddressIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Email == "" {
		s.writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.settings.BlockAddress(r.Context(), user.ID, in.Email); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusCreated)
}

func (s *Server) handleUnblockAddress(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.settings.UnblockAddress(r.Context(), user.ID, chi.URLParam(r, "email")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

// handleUpdateShortcut reads its parameters from the query string: key,
// enabled, and zero or more modifiers values.
func (s *Server) handleUpdateShortcut(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	q := r.URL.Query()

	var upd services.ShortcutUpdate
	if key := q.Get("key"); key != "" {
		upd.Key = &key
	}
	upd.Enabled = queryBool(r, "enabled")
	if mods, ok := q["modifiers"]; ok {
		raw, err := json.Marshal(mods)
		if err == nil {
			upd.Modifiers = raw
		}
	}

	if err := s.settings.UpdateShortcut(r.Context(), user.ID, chi.URLParam(r, "id"), upd); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderSettings(w, r, http.StatusOK)
}
