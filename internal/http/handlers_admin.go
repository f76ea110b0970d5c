package http

import (
	"crypto/subtle"
	"net/http"
)

type adminStats struct {
	UserCount int      `json:"userCount"`
	MaxUsers  int      `json:"maxUsers"`
	Usernames []string `json:"usernames"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminPassword == "" {
		respondError(w, http.StatusNotImplemented, "admin access not configured")
		return
	}
	provided := r.Header.Get("X-Admin-Password")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.AdminPassword)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid admin password")
		return
	}

	count, err := s.repo.UserCount(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	usernames, err := s.repo.ListUsernames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	if usernames == nil {
		usernames = []string{}
	}

	respondJSON(w, http.StatusOK, adminStats{
		UserCount: count,
		MaxUsers:  s.cfg.MaxUsers,
		Usernames: usernames,
	})
}
