package handlers

import (
	"context"
	"net/http"
	"time"

	"rekindleAPI/middleware"
	"rekindleAPI/services"
)

type BadgeHandler struct {
	badges *services.BadgeService
}

func NewBadgeHandler(badges *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badges: badges}
}

func (h *BadgeHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	badges, err := h.badges.GetBadges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not get badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}
