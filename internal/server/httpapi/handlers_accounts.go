package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type accountCreateIn struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	DisplayName string `json:"displayName"`
	Signature   string `json:"signature"`
}

type accountUpdateIn struct {
	Name               *string `json:"name"`
	Color              *string `json:"color"`
	DisplayName        *string `json:"displayName"`
	Signature          *string `json:"signature"`
	DefaultSignatureID *string `json:"defaultSignatureId"`
	Avatar             *string `json:"avatar"`
	IsDefault          *bool   `json:"isDefault"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.accounts.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountsToWire(list))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	account, err := s.accounts.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountToWire(account))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in accountCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Email == "" || in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}

	account, err := s.accounts.Create(r.Context(), &models.Account{
		UserID:      user.ID,
		Email:       in.Email,
		Name:        in.Name,
		Color:       in.Color,
		DisplayName: in.DisplayName,
		Signature:   in.Signature,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, accountToWire(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in accountUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	account, err := s.accounts.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.AccountUpdate{
		Name:               in.Name,
		Color:              in.Color,
		DisplayName:        in.DisplayName,
		Signature:          in.Signature,
		DefaultSignatureID: in.DefaultSignatureID,
		Avatar:             in.Avatar,
		IsDefault:          in.IsDefault,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountToWire(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.accounts.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleSetDefaultAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.accounts.SetDefault(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
