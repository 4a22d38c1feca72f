package httpapi

import "net/http"

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	pair, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairOut(pair))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in refreshIn
	if !s.decodeJSON(w, r, &in) {
		return
	}

	pair, err := s.auth.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairOut(pair))
}

// handleLogout is a formality for symmetric clients. Tokens are stateless,
// so there is nothing server-side to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w)
}
