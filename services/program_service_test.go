package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedProgram(t *testing.T, db *pgxpool.Pool, actionIDs []uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	programID := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO programs (id, name, description, length_days, created_at)
		VALUES ($1, $2, 'Seeded test program', $3, NOW())
	`, programID, fmt.Sprintf("Test program %s", programID), len(actionIDs))
	if err != nil {
		t.Fatalf("failed to seed program: %v", err)
	}
	for i, actionID := range actionIDs {
		_, err := db.Exec(ctx, `
			INSERT INTO program_days (id, program_id, day_number, action_id)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), programID, i+1, actionID)
		if err != nil {
			t.Fatalf("failed to seed program day: %v", err)
		}
	}

	t.Cleanup(func() {
		ctx := context.Background()
		db.Exec(ctx, `DELETE FROM program_enrollments WHERE program_id = $1`, programID)
		db.Exec(ctx, `DELETE FROM program_days WHERE program_id = $1`, programID)
		db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, programID)
	})
	return programID
}

func enrollmentState(t *testing.T, db *pgxpool.Pool, userID, programID uuid.UUID) (int, bool) {
	t.Helper()
	var completedDays int
	var completed bool
	err := db.QueryRow(context.Background(), `
		SELECT completed_days, completed
		FROM program_enrollments
		WHERE user_id = $1 AND program_id = $2
	`, userID, programID).Scan(&completedDays, &completed)
	if err != nil {
		t.Fatalf("failed to read enrollment: %v", err)
	}
	return completedDays, completed
}

// Completing a pinned day credits the enrollment that pinned it, never
// an overlapping enrollment in another program whose own pins lost the
// date conflict.
func TestNoteDayCompletedCreditsOnlyPinnedEnrollment(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db)
	clerkID := fmt.Sprintf("test_clerk_%s", userID)

	a1 := seedAction(t, db)
	a2 := seedAction(t, db)
	b1 := seedAction(t, db)
	programA := seedProgram(t, db, []uuid.UUID{a1, a2})
	programB := seedProgram(t, db, []uuid.UUID{b1})

	svc := NewProgramService(db)
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, clerkID, programA); err != nil {
		t.Fatalf("failed to enroll in first program: %v", err)
	}
	// Same start date: this program's only pin loses the day-one
	// conflict and inserts nothing.
	if _, err := svc.Enroll(ctx, clerkID, programB); err != nil {
		t.Fatalf("failed to enroll in second program: %v", err)
	}

	day1 := dateOnly(time.Now().UTC()).AddDate(0, 0, 1)
	if err := svc.NoteDayCompleted(ctx, userID, day1); err != nil {
		t.Fatalf("failed to record program day: %v", err)
	}

	if days, done := enrollmentState(t, db, userID, programA); days != 1 || done {
		t.Errorf("first program: got %d days completed=%v, want 1 days completed=false", days, done)
	}
	if days, done := enrollmentState(t, db, userID, programB); days != 0 || done {
		t.Errorf("second program must stay untouched: got %d days completed=%v", days, done)
	}

	day2 := day1.AddDate(0, 0, 1)
	if err := svc.NoteDayCompleted(ctx, userID, day2); err != nil {
		t.Fatalf("failed to record second program day: %v", err)
	}

	if days, done := enrollmentState(t, db, userID, programA); days != 2 || !done {
		t.Errorf("first program should be finished: got %d days completed=%v", days, done)
	}
	if days, done := enrollmentState(t, db, userID, programB); days != 0 || done {
		t.Errorf("second program must stay untouched after finish: got %d days completed=%v", days, done)
	}
}
