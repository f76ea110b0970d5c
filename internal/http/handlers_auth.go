package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lootledger/internal/core"
	"lootledger/internal/identity"
)

type credentialsRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type authResponse struct {
	Token  string           `json:"token"`
	Record *core.UserRecord `json:"record"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, rec, err := s.identity.Register(r.Context(), req.Username, req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidUsername), errors.Is(err, core.ErrInvalidPIN):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrUsernameTaken):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, identity.ErrUserLimitReached):
			respondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, identity.ErrAvailabilityUnknown):
			respondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, Record: rec})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	available, err := s.identity.CheckAvailability(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidUsername):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrAvailabilityUnknown):
			respondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "availability check failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, rec, err := s.identity.Login(r.Context(), req.Username, req.PIN)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, Record: rec})
}
