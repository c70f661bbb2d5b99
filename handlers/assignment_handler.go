package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rekindleAPI/internal/assignment"
	"rekindleAPI/middleware"
	"rekindleAPI/services"

	"github.com/google/uuid"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
	profiles    *services.ProfileService
}

func NewAssignmentHandler(assignments *services.AssignmentService, profiles *services.ProfileService) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		profiles:    profiles,
	}
}

// GetToday serves (or creates) today's assignment — the on-demand twin
// of the nightly batch.
func (h *AssignmentHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	resp, err := h.assignments.GetOrCreateForClerkID(ctx, clerkID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrNoActionAvailable) {
			// Empty state, not a failure: the client renders "nothing
			// for today" rather than an error toast.
			respondWithJSON(w, http.StatusOK, map[string]any{"available": false})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not get today's action")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'date' must be YYYY-MM-DD")
		return
	}

	resp, err := h.assignments.GetByDate(ctx, clerkID, date)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "No assignment for that date")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not get assignment")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// MarkCompleted records a completion. Catch-up on past dates is
// allowed, but only for premium users: free tier may complete today's
// served action only (the billing collaborator's gate, enforced here at
// the caller per its contract).
func (h *AssignmentHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, ok := decodeMarkRequest(w, r)
	if !ok {
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !sameDay(date, today) {
		p, err := h.profiles.GetUserByClerkID(ctx, clerkID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Could not verify subscription")
			return
		}
		if !p.IsPremium() {
			respondWithError(w, http.StatusForbidden, "Completing past actions requires premium")
			return
		}
	}

	if err := h.assignments.MarkCompleted(ctx, clerkID, date); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "No assignment for that date")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not mark action completed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Action marked completed"})
}

func (h *AssignmentHandler) MarkFavorited(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, ok := decodeMarkRequest(w, r)
	if !ok {
		return
	}

	if err := h.assignments.MarkFavorited(ctx, clerkID, date, true); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "No assignment for that date")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not favorite action")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Action favorited"})
}

func (h *AssignmentHandler) MarkDoNotComplete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, ok := decodeMarkRequest(w, r)
	if !ok {
		return
	}

	if err := h.assignments.MarkDoNotComplete(ctx, clerkID, date); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "No assignment for that date")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not flag action")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Action flagged as do-not-complete"})
}

func (h *AssignmentHandler) HideAction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	actionID, ok := decodeHideRequest(w, r)
	if !ok {
		return
	}

	if err := h.profiles.HideAction(ctx, clerkID, actionID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not hide action")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Action hidden"})
}

func (h *AssignmentHandler) UnhideAction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	actionID, ok := decodeHideRequest(w, r)
	if !ok {
		return
	}

	if err := h.profiles.UnhideAction(ctx, clerkID, actionID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not unhide action")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Action unhidden"})
}

func (h *AssignmentHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	calendar, err := h.assignments.GetCalendar(ctx, clerkID, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not get calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, calendar)
}

func decodeMarkRequest(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var req assignment.MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return time.Time{}, false
	}
	date, err := parseDateParam(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Field 'date' must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func decodeHideRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req assignment.HideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}
	actionID, err := uuid.Parse(req.ActionID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Field 'action_id' must be a UUID")
		return uuid.Nil, false
	}
	return actionID, true
}

func parseDateParam(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
