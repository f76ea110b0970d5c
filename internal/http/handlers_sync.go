package http

import (
	"errors"
	"net/http"

	"lootledger/internal/sync"
)

func (s *Server) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.sync.Push(r.Context(), s.username(r))
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrQuotaExceeded):
			respondError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, sync.ErrRemoteDisabled):
			respondError(w, http.StatusNotImplemented, err.Error())
		default:
			respondError(w, http.StatusBadGateway, "push failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.sync.Pull(r.Context(), s.username(r))
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrQuotaExceeded):
			respondError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, sync.ErrRemoteDisabled):
			respondError(w, http.StatusNotImplemented, err.Error())
		case errors.Is(err, sync.ErrNoRemoteRecord):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondError(w, http.StatusBadGateway, "pull failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sync.Status(r.Context(), s.username(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load sync status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
