package program

import (
	"time"

	"github.com/google/uuid"
)

// Program is a multi-day guided track (e.g. a 7-day reconnection week).
// Enrollment pins one assignment per program day; the daily selection
// pipeline never overwrites pinned rows.
type Program struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	LengthDays  int       `json:"length_days" db:"length_days"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProgramDay maps day N of a program to the action pinned for that day.
type ProgramDay struct {
	ProgramID uuid.UUID `json:"program_id" db:"program_id"`
	DayNumber int       `json:"day_number" db:"day_number"`
	ActionID  uuid.UUID `json:"action_id" db:"action_id"`
}

// Enrollment tracks one user's pass through a program. Completed flips
// only when CompletedDays reaches the program's full length; partial
// passes never count toward event_completion badges.
type Enrollment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	ProgramID     uuid.UUID  `json:"program_id" db:"program_id"`
	StartDate     time.Time  `json:"start_date" db:"start_date"`
	CompletedDays int        `json:"completed_days" db:"completed_days"`
	Completed     bool       `json:"completed" db:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type EnrollResponse struct {
	Enrollment Enrollment `json:"enrollment"`
	Program    Program    `json:"program"`
}
