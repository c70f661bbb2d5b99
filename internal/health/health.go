package health

import (
	"time"

	"github.com/google/uuid"
)

// Product parameters for the health score. These are tuning knobs, not
// algorithmic contracts.
const (
	DefaultBaseline    = 50
	PointsPerCompleted = 2
	MaxPointsPerDay    = 2
	MaxPointsPerWeek   = 10
	DecayPerMissedDay  = 1.5
	ScoreFloor         = 0
	ScoreCeiling       = 100
)

// DecayEntry records the penalty for one missed assignment. It exists
// only while that date's action is outstanding; completing the action
// later deletes it (the reversal path).
type DecayEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	MissedDate time.Time `json:"missed_date" db:"missed_date"`
	Amount     float64   `json:"decay_applied" db:"decay_applied"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ScoreResponse struct {
	Score          float64 `json:"score"`
	Baseline       int     `json:"baseline"`
	EarnedPoints   float64 `json:"earned_points"`
	DecayTotal     float64 `json:"decay_total"`
	CompletedCount int     `json:"completed_count"`
	ActiveDecays   int     `json:"active_decays"`
}
