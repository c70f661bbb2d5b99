package assignment

import (
	"time"

	"rekindleAPI/internal/action"

	"github.com/google/uuid"
)

// Source records how an assignment row came to exist. Program rows are
// pins: the selection pipeline must never overwrite them.
type Source string

const (
	SourceSelection Source = "selection"
	SourceProgram   Source = "program"
)

type DailyAssignment struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	ActionID     uuid.UUID  `json:"action_id" db:"action_id"`
	Date         time.Time  `json:"date" db:"date"`
	Source       Source     `json:"source" db:"source"`
	Completed    bool       `json:"completed" db:"completed"`
	Favorited    bool       `json:"favorited" db:"favorited"`
	DidNotFinish bool       `json:"did_not_complete" db:"did_not_complete"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// DailyActionResponse is the DTO handed to callers and to the
// notification/email collaborator. Its shape is load-bearing: calendar
// export and the email renderer read it directly.
type DailyActionResponse struct {
	Assignment DailyAssignment `json:"assignment"`
	Action     action.Action   `json:"action"`
	Date       string          `json:"date"`
	Fallback   bool            `json:"fallback,omitempty"`
}

type MarkRequest struct {
	Date string `json:"date"`
}

type HideRequest struct {
	ActionID string `json:"action_id"`
}

type CalendarDay struct {
	Date         string  `json:"date"`
	ActionID     *string `json:"action_id,omitempty"`
	ActionName   *string `json:"action_name,omitempty"`
	Completed    bool    `json:"completed"`
	Favorited    bool    `json:"favorited"`
	DidNotFinish bool    `json:"did_not_complete"`
}

type CalendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
