/*
handlers.go - HTTP handlers for the habit-log engine

PURPOSE:
  Exposes the engine as the networked backend. Handlers parse the
  request, delegate to the store and the shared analytics functions,
  and serialise the result. No business logic lives here: validation
  and record construction are the shared client-package builders, and
  the analytics are the habit-package folds, so this backend cannot
  drift from the local one.

ENDPOINTS:
  Auth:
    POST   /api/auth/signup          Create user, return {token, user}
    POST   /api/auth/signin          Exchange credentials for a token

  Authenticated (X-Auth-Token):
    GET    /api/habits               List habits
    POST   /api/habits               Create habit
    DELETE /api/habits/{id}          Delete habit (cascades its logs)
    POST   /api/habits/log           Upsert one day's log
    GET    /api/habits/logs/{date}   Logs for one day
    GET    /api/routines             List routines, habits hydrated
    POST   /api/routines             Create routine
    DELETE /api/routines/{id}        Delete routine
    GET    /api/stats/heatmap        date -> completion count
    GET    /api/stats/streaks        per-habit streak counters

ERROR HANDLING:
  Errors are returned as {"error": "..."} with the status implied by
  the taxonomy classification:
  - 400: validation errors, user exists
  - 401: missing/invalid token, invalid credentials
  - 404: resource not found, unknown routes
  - 500: backend failures (a failed stats computation is 500, never an
         empty result)

SEE ALSO:
  - server.go: router setup and middleware
  - client/remote: consumes these endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/loopline/habit-engine/auth"
	"github.com/loopline/habit-engine/client"
	"github.com/loopline/habit-engine/habit"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  habit.Store
	Tokens *auth.TokenIssuer
	Log    *slog.Logger

	// Now supplies "today" for streak computation. Overridable in tests;
	// defaults to habit.Today.
	Now func() habit.Date
}

// NewHandler creates a handler over the given store and token issuer.
func NewHandler(store habit.Store, tokens *auth.TokenIssuer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Store: store, Tokens: tokens, Log: log, Now: habit.Today}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// SignUp creates a user and returns a session.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds client.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := creds.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), habit.User{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, habit.ErrUserExists) {
		h.writeError(w, http.StatusBadRequest, "user exists", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	h.writeSession(w, user)
}

// SignIn exchanges credentials for a session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds client.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), creds.Username)
	if err != nil {
		// Absent user and wrong password are indistinguishable.
		h.writeError(w, http.StatusUnauthorized, "invalid credentials", habit.ErrInvalidCredentials)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, creds.Password); err != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid credentials", err)
		return
	}

	h.writeSession(w, user)
}

func (h *Handler) writeSession(w http.ResponseWriter, user habit.User) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, client.Session{Token: token, User: user})
}

// =============================================================================
// HABIT HANDLERS
// =============================================================================

// CreateHabit creates a habit for the signed-in user.
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req client.NewHabit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	record, err := req.Habit(userID(r), uuid.NewString(), time.Now().UTC())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	created, err := h.Store.CreateHabit(r.Context(), record)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create habit", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// ListHabits returns the signed-in user's habits.
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Store.ListHabits(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list habits", err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// DeleteHabit deletes a habit and its logs.
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Ownership check doubles as existence check.
	record, err := h.Store.GetHabit(r.Context(), id)
	if err != nil || record.UserID != userID(r) {
		h.writeError(w, http.StatusNotFound, "habit not found", habit.ErrNotFound)
		return
	}
	if err := h.Store.DeleteHabit(r.Context(), id); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to delete habit", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// =============================================================================
// LOG HANDLERS
// =============================================================================

// UpsertLog writes or overwrites one day's log for a habit.
func (h *Handler) UpsertLog(w http.ResponseWriter, r *http.Request) {
	var entry client.LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	record, err := entry.Log(r.Context(), h.Store, userID(r), uuid.NewString())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	stored, err := h.Store.UpsertLog(r.Context(), record)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to upsert log", err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// ListLogsForDate returns every log for one calendar day.
func (h *Handler) ListLogsForDate(w http.ResponseWriter, r *http.Request) {
	date, err := habit.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	logs, err := h.Store.ListLogsForDate(r.Context(), userID(r), date)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// =============================================================================
// ROUTINE HANDLERS
// =============================================================================

// CreateRoutine creates a routine for the signed-in user.
func (h *Handler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req client.NewRoutine
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	record, err := req.Routine(userID(r), uuid.NewString(), time.Now().UTC())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	created, err := h.Store.CreateRoutine(r.Context(), record)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to create routine", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// ListRoutines returns routines with habit ids hydrated to records.
func (h *Handler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := h.Store.HydrateRoutines(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list routines", err)
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

// DeleteRoutine deletes a routine.
func (h *Handler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteRoutine(r.Context(), chi.URLParam(r, "id")); err != nil {
		if habit.IsNotFound(err) {
			h.writeError(w, http.StatusNotFound, "routine not found", err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to delete routine", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// Heatmap returns the date -> completion count mapping.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	heatmap, err := habit.HeatmapForUser(r.Context(), h.Store, userID(r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to compute heatmap", err)
		return
	}
	writeJSON(w, http.StatusOK, heatmap)
}

// Streaks returns per-habit streak counters.
func (h *Handler) Streaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := habit.StreaksForUser(r.Context(), h.Store, userID(r), h.Now())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to compute streaks", err)
		return
	}
	writeJSON(w, http.StatusOK, streaks)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	if status >= 500 {
		h.Log.Error(message, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}
