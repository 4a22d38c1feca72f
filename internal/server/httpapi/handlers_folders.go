package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/services"
)

type folderCreateIn struct {
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Icon     string  `json:"icon"`
	ParentID *string `json:"parentId"`
}

type folderUpdateIn struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	list, err := s.folders.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, foldersToWire(list))
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	folder, err := s.folders.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, folderToWire(folder))
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in folderCreateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	folder, err := s.folders.Create(r.Context(), &models.CustomFolder{
		UserID:   user.ID,
		Name:     in.Name,
		Color:    in.Color,
		Icon:     in.Icon,
		ParentID: in.ParentID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, folderToWire(folder))
}

func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var in folderUpdateIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	folder, err := s.folders.Update(r.Context(), user.ID, chi.URLParam(r, "id"), services.FolderUpdate{
		Name:  in.Name,
		Color: in.Color,
		Icon:  in.Icon,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, folderToWire(folder))
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.folders.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}

func (s *Server) handleReorderFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	newOrder := queryInt(r, "newOrder", 0)

	if err := s.folders.Reorder(r.Context(), user.ID, chi.URLParam(r, "id"), newOrder); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSuccess(w)
}
