package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"
	"rekindleAPI/middleware"
	"rekindleAPI/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.profiles.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) GetCategoryProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.profiles.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	categories, err := h.profiles.GetCategoryProfile(ctx, p.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not get category profile")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

// BoostCategory records an explicit "show me more like this" signal.
func (h *ProfileHandler) BoostCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req profile.BoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category := action.Category(req.Category)
	if !validCategory(category) {
		respondWithError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	weight, err := h.profiles.BoostCategory(ctx, clerkID, category)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not boost category")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"weight":   weight,
	})
}

func validCategory(c action.Category) bool {
	for _, known := range action.AllCategories {
		if c == known {
			return true
		}
	}
	return false
}
