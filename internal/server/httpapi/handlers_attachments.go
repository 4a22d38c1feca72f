package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	att, err := s.attachments.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, attachmentToWire(att))
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	att, err := s.attachments.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, attachmentToWire(att))
}

// handleDownloadAttachment redirects to a short-lived presigned URL for the
// stored content instead of proxying the bytes.
func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	url, err := s.attachments.DownloadURL(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
