package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/penguinmail/penguinmail/internal/common"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) writeSuccess(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// writeServiceError maps sentinel service errors onto API status codes.
// Anything unrecognized is a 500; the detail stays generic so internals
// never leak to the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrAccountNotFound):
		s.writeError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, common.ErrorNotFound):
		s.writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorUnauthorized):
		s.writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrWrongTokenType), errors.Is(err, common.ErrTokenExpired):
		s.writeError(w, http.StatusUnauthorized, "Invalid refresh token")
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into v, reporting a 400 on malformed
// input. Returns false when the response has already been written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
