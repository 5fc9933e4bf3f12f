package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/stats"
	"github.com/julianstephens/prosper/internal/tracker"
)

type errorResponse struct {
	Error string `json:"error"`
}

type toggleResponse struct {
	Added   bool          `json:"added"`
	Removed bool          `json:"removed"`
	Entry   models.Entry  `json:"entry"`
	Day     stats.DayView `json:"day"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// respondWithTrackerError maps tracker errors onto status codes.
func respondWithTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrHabitNotFound), errors.Is(err, tracker.ErrEntryNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tracker.ErrInvalid):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrAmbiguous):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDateParam accepts YYYY-MM-DD, today, yesterday or tomorrow.
func (s *Server) parseDateParam(r *http.Request) (string, error) {
	return s.tracker.ResolveDay(chi.URLParam(r, "date"))
}

func (s *Server) getDay(w http.ResponseWriter, r *http.Request) {
	day, err := s.parseDateParam(r)
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	view, err := s.tracker.Day(r.Context(), day)
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) toggleEntry(w http.ResponseWriter, r *http.Request) {
	day, err := s.parseDateParam(r)
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	res, err := s.tracker.ToggleEntry(r.Context(), chi.URLParam(r, "habitId"), day)
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	view, err := s.tracker.Day(r.Context(), day)
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toggleResponse{
		Added:   res.Added,
		Removed: res.Removed,
		Entry:   res.Entry,
		Day:     view,
	})
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.tracker.Habits(r.Context())
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, habits)
}

func (s *Server) getStreak(w http.ResponseWriter, r *http.Request) {
	info, err := s.tracker.Streak(r.Context())
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

// getHistory returns the most recent active days first; ?limit= caps the rows.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.tracker.History(r.Context())
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(history) {
			history = history[:limit]
		}
	}
	respondWithJSON(w, http.StatusOK, history)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.tracker.Summary(r.Context())
	if err != nil {
		respondWithTrackerError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
