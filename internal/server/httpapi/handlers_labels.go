package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type labelCreateIn struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type labelUpdateIn struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.labels.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, labelsToWire(list))
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	label, err := s.labels.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, labelToWire(label))
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in labelCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	label, err := s.labels.Create(r.Context(), &models.Label{
		UserID: user.ID,
		Name:   in.Name,
		Color:  in.Color,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, labelToWire(label))
}

func (s *Server) handleUpdateLabel(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in labelUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	label, err := s.labels.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.LabelUpdate{
		Name:  in.Name,
		Color: in.Color,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, labelToWire(label))
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.labels.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
