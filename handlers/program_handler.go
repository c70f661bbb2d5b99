package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rekindleAPI/middleware"
	"rekindleAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ProgramHandler struct {
	programs    *services.ProgramService
	assignments *services.AssignmentService
}

func NewProgramHandler(programs *services.ProgramService, assignments *services.AssignmentService) *ProgramHandler {
	return &ProgramHandler{
		programs:    programs,
		assignments: assignments,
	}
}

func (h *ProgramHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	programs, err := h.programs.ListPrograms(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not list programs")
		return
	}

	respondWithJSON(w, http.StatusOK, programs)
}

func (h *ProgramHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	programID, err := uuid.Parse(mux.Vars(r)["programID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid program id")
		return
	}

	resp, err := h.programs.Enroll(ctx, clerkID, programID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyEnrolled) {
			respondWithError(w, http.StatusConflict, "Already enrolled in this program")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not enroll in program")
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *ProgramHandler) GetEnrollments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	enrollments, err := h.programs.GetEnrollments(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not get enrollments")
		return
	}

	respondWithJSON(w, http.StatusOK, enrollments)
}

// CompleteDay marks today's pinned program action as completed. It goes
// through the same ledger mutation as any other completion, so decay
// reversal and badge evaluation run identically.
func (h *ProgramHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.assignments.MarkCompleted(ctx, clerkID, time.Now().UTC()); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "No program action for today")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not complete program day")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Program day completed"})
}
