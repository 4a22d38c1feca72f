package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type contactCreateIn struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Avatar  string   `json:"avatar"`
	Phone   string   `json:"phone"`
	Company string   `json:"company"`
	Notes   string   `json:"notes"`
	Groups  []string `json:"groups"`
}

type contactUpdateIn struct {
	Email      *string  `json:"email"`
	Name       *string  `json:"name"`
	Avatar     *string  `json:"avatar"`
	Phone      *string  `json:"phone"`
	Company    *string  `json:"company"`
	Notes      *string  `json:"notes"`
	IsFavorite *bool    `json:"isFavorite"`
	Groups     []string `json:"groups"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, p, err := s.contacts.List(r.Context(), user.ID, "", queryInt(r, "page", 1), queryInt(r, "pageSize", 50))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope(contactsToWire(list), p))
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, p, err := s.contacts.List(r.Context(), user.ID, r.URL.Query().Get("q"), queryInt(r, "page", 1), queryInt(r, "pageSize", 50))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope(contactsToWire(list), p))
}

func (s *Server) handleFavoriteContacts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.contacts.ListFavorites(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactsToWire(list))
}

func (s *Server) handleContactsByGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.contacts.ListByGroup(r.Context(), user.ID, chi.URLParam(r, "groupId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactsToWire(list))
}

func (s *Server) handleContactByEmail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	contact, err := s.contacts.GetByEmail(r.Context(), user.ID, chi.URLParam(r, "email"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactToWire(contact))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	contact, err := s.contacts.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactToWire(contact))
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in contactCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Email == "" || in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}

	contact, err := s.contacts.Create(r.Context(), &models.Contact{
		UserID:  user.ID,
		Email:   in.Email,
		Name:    in.Name,
		Avatar:  in.Avatar,
		Phone:   in.Phone,
		Company: in.Company,
		Notes:   in.Notes,
	}, in.Groups)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, contactToWire(contact))
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in contactUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	contact, err := s.contacts.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.ContactUpdate{
		Email:      in.Email,
		Name:       in.Name,
		Avatar:     in.Avatar,
		Phone:      in.Phone,
		Company:    in.Company,
		Notes:      in.Notes,
		IsFavorite: in.IsFavorite,
		Groups:     in.Groups,
		HasGroups:  in.Groups != nil,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactToWire(contact))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.contacts.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	contact, err := s.contacts.ToggleFavorite(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contactToWire(contact))
}

func (s *Server) handleAddContactToGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.contacts.AddToGroup(r.Context(), user.ID, chi.URLParam(r, "id"), chi.URLParam(r, "groupId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleRemoveContactFromGroup(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.contacts.RemoveFromGroup(r.Context(), user.ID, chi.URLParam(r, "id"), chi.URLParam(r, "groupId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
