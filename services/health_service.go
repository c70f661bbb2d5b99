package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rekindleAPI/internal/health"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthService derives the bounded relationship health score from a
// user's baseline, capped completion points and active decay entries,
// and owns the decay lifecycle.
type HealthService struct {
	db *pgxpool.Pool
}

func NewHealthService(db *pgxpool.Pool) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) GetScore(ctx context.Context, clerkID string) (*health.ScoreResponse, error) {
	var userID uuid.UUID
	var baseline int
	err := s.db.QueryRow(ctx, `SELECT id, health_baseline FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &baseline)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if baseline == 0 {
		baseline = health.DefaultBaseline
	}

	completions, err := s.getCompletionDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	var decayTotal float64
	var activeDecays int
	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(decay_applied), 0), COUNT(*)
		FROM health_decay_entries
		WHERE user_id = $1
	`, userID).Scan(&decayTotal, &activeDecays)
	if err != nil {
		return nil, fmt.Errorf("failed to sum decay entries: %w", err)
	}

	earned := health.EarnedPoints(completions)
	return &health.ScoreResponse{
		Score:          health.ComputeScore(baseline, completions, decayTotal),
		Baseline:       baseline,
		EarnedPoints:   earned,
		DecayTotal:     decayTotal,
		CompletedCount: len(completions),
		ActiveDecays:   activeDecays,
	}, nil
}

func (s *HealthService) getCompletionDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	query := `
	SELECT date
	FROM daily_assignments
	WHERE user_id = $1 AND completed = true
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completion date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ReverseDecay deletes the decay entry for a late-completed assignment.
// RowsAffected makes it exactly-once: the second completion attempt
// finds nothing to delete, and a date with no entry is a no-op, not an
// error.
func (s *HealthService) ReverseDecay(ctx context.Context, userID uuid.UUID, missedDate time.Time) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM health_decay_entries
		WHERE user_id = $1 AND missed_date = $2
	`, userID, missedDate)
	if err != nil {
		return fmt.Errorf("failed to reverse decay: %w", err)
	}

	if result.RowsAffected() > 0 {
		decayReversalsTotal.Inc()
		log.Printf("Reversed decay for user %s on %s", userID, missedDate.Format("2006-01-02"))
	}
	return nil
}

// RunDecaySweep inserts one decay entry per unresolved past assignment:
// date passed, not completed, not flagged did-not-complete. ON CONFLICT
// DO NOTHING keeps the sweep idempotent, so re-running it never doubles
// a penalty.
func (s *HealthService) RunDecaySweep(ctx context.Context) (int, error) {
	query := `
	INSERT INTO health_decay_entries (id, user_id, missed_date, decay_applied, created_at)
	SELECT gen_random_uuid(), da.user_id, da.date, $1, NOW()
	FROM daily_assignments da
	WHERE da.date < CURRENT_DATE
		AND da.completed = false
		AND da.did_not_complete = false
	ON CONFLICT (user_id, missed_date) DO NOTHING
	`

	result, err := s.db.Exec(ctx, query, health.DecayPerMissedDay)
	if err != nil {
		return 0, fmt.Errorf("failed to run decay sweep: %w", err)
	}

	inserted := int(result.RowsAffected())
	if inserted > 0 {
		log.Printf("Decay sweep applied %d new entries", inserted)
	}
	return inserted, nil
}
