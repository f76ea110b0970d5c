package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lootledger/internal/core"
	"lootledger/internal/middleware"
	"lootledger/internal/tracker"
)

func (s *Server) username(r *http.Request) string {
	username, _ := middleware.UsernameFromContext(r.Context())
	return username
}

func dayParam(r *http.Request) (core.Day, error) {
	return core.ParseDay(chi.URLParam(r, "day"))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.tracker.GetRecord(r.Context(), s.username(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load record")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.tracker.GetDay(r.Context(), s.username(r), day)
	if err != nil {
		if errors.Is(err, tracker.ErrDayNotFound) {
			respondError(w, http.StatusNotFound, "no data for that day")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not load day")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req saveDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := s.tracker.SaveDay(r.Context(), s.username(r), day, req.toResources(), req.Note, req.Confirmed)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDay) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "could not save day")
		return
	}

	// An unconfirmed save with warnings is not an error: the client shows
	// the warnings and resubmits with confirmed set.
	status := http.StatusOK
	if !outcome.Saved {
		status = http.StatusConflict
	}
	respondJSON(w, status, outcome)
}

func (s *Server) handleCopyPrevious(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.tracker.CopyPrevious(r.Context(), s.username(r), day)
	if err != nil {
		if errors.Is(err, tracker.ErrDayNotFound) {
			respondError(w, http.StatusNotFound, "no data for the previous day")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not copy previous day")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDelta(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	delta, err := s.tracker.Delta(r.Context(), s.username(r), day)
	if err != nil {
		if errors.Is(err, tracker.ErrDayNotFound) {
			respondError(w, http.StatusNotFound, "no data for that day")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not compute delta")
		return
	}
	respondJSON(w, http.StatusOK, delta)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	summary, err := s.tracker.Summary(r.Context(), s.username(r), year, month)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.tracker.Notes(r.Context(), s.username(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load notes")
		return
	}
	if notes == nil {
		notes = []tracker.NoteEntry{}
	}
	respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.tracker.ExportRecord(r.Context(), s.username(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not export record")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="lootledger-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	rec, err := s.tracker.ImportRecord(r.Context(), s.username(r), data, force)
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrInvalidBackup):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, tracker.ErrUsernameMismatch):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "could not import backup")
		}
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
