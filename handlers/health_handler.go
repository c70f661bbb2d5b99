package handlers

import (
	"context"
	"net/http"
	"time"

	"rekindleAPI/middleware"
	"rekindleAPI/services"
)

type HealthScoreHandler struct {
	health *services.HealthService
}

func NewHealthScoreHandler(health *services.HealthService) *HealthScoreHandler {
	return &HealthScoreHandler{health: health}
}

func (h *HealthScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	score, err := h.health.GetScore(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not compute health score")
		return
	}

	respondWithJSON(w, http.StatusOK, score)
}
