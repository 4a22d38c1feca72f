package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type contactGroupCreateIn struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type contactGroupUpdateIn struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.groups.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactGroupsToWire(list))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	group, err := s.groups.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactGroupToWire(group))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in contactGroupCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	group, err := s.groups.Create(r.Context(), &models.ContactGroup{
		UserID: user.ID,
		Name:   in.Name,
		Color:  in.Color,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, contactGroupToWire(group))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in contactGroupUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	group, err := s.groups.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.ContactGroupUpdate{
		Name:  in.Name,
		Color: in.Color,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactGroupToWire(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.groups.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
