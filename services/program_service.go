package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rekindleAPI/internal/assignment"
	"rekindleAPI/internal/program"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgramService manages multi-day programs. Enrollment pins one
// assignment row per program day; pinned rows take priority over the
// selection pipeline and are never overwritten by it.
type ProgramService struct {
	db *pgxpool.Pool
}

func NewProgramService(db *pgxpool.Pool) *ProgramService {
	return &ProgramService{db: db}
}

func (s *ProgramService) ListPrograms(ctx context.Context) ([]program.Program, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, length_days, created_at
		FROM programs
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch programs: %w", err)
	}
	defer rows.Close()

	var programs []program.Program
	for rows.Next() {
		var p program.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.LengthDays, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (s *ProgramService) getProgram(ctx context.Context, programID uuid.UUID) (*program.Program, error) {
	var p program.Program
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, length_days, created_at
		FROM programs
		WHERE id = $1
	`, programID).Scan(&p.ID, &p.Name, &p.Description, &p.LengthDays, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("program not found")
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	return &p, nil
}

// Enroll starts a program for the user beginning tomorrow and pins one
// assignment per program day. Days that already carry an assignment are
// left alone: existing rows, whatever their source, are never replaced.
func (s *ProgramService) Enroll(ctx context.Context, clerkID string, programID uuid.UUID) (*program.EnrollResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	prog, err := s.getProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	var active bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM program_enrollments
			WHERE user_id = $1 AND program_id = $2 AND completed = false
		)
	`, userID, programID).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if active {
		return nil, ErrAlreadyEnrolled
	}

	startDate := dateOnly(time.Now().UTC()).AddDate(0, 0, 1)

	enrollment := program.Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		ProgramID: programID,
		StartDate: startDate,
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO program_enrollments (id, user_id, program_id, start_date, completed_days, completed, created_at)
		VALUES ($1, $2, $3, $4, 0, false, NOW())
		RETURNING created_at
	`, enrollment.ID, userID, programID, startDate).Scan(&enrollment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	// Pin the program's days. ON CONFLICT DO NOTHING keeps any
	// already-assigned day intact.
	pinQuery := `
	INSERT INTO daily_assignments (id, user_id, action_id, date, source, created_at)
	SELECT gen_random_uuid(), $1, pd.action_id, $2::date + (pd.day_number - 1), $3, NOW()
	FROM program_days pd
	WHERE pd.program_id = $4
	ON CONFLICT (user_id, date) DO NOTHING
	`
	result, err := s.db.Exec(ctx, pinQuery, userID, startDate, assignment.SourceProgram, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to pin program days: %w", err)
	}
	log.Printf("Enrolled user %s in program %q, pinned %d of %d days", userID, prog.Name, result.RowsAffected(), prog.LengthDays)

	return &program.EnrollResponse{Enrollment: enrollment, Program: *prog}, nil
}

// NoteDayCompleted bumps the enrollment whose pin is the completed
// date's assignment. Matching goes through program_days on the pinned
// action and its day offset, so overlapping enrollments of different
// programs never credit each other. The enrollment flips to completed
// only when every day of the program is done.
func (s *ProgramService) NoteDayCompleted(ctx context.Context, userID uuid.UUID, date time.Time) error {
	var source assignment.Source
	var actionID uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT source, action_id FROM daily_assignments WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(&source, &actionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to check assignment source: %w", err)
	}
	if source != assignment.SourceProgram {
		return nil
	}

	query := `
	UPDATE program_enrollments pe
	SET completed_days = pe.completed_days + 1,
		completed = (pe.completed_days + 1 >= p.length_days),
		completed_at = CASE WHEN pe.completed_days + 1 >= p.length_days THEN NOW() ELSE NULL END
	FROM programs p, program_days pd
	WHERE p.id = pe.program_id
		AND pd.program_id = pe.program_id
		AND pd.action_id = $3
		AND pe.user_id = $1
		AND pe.completed = false
		AND pe.start_date + (pd.day_number - 1) = $2::date
	`

	result, err := s.db.Exec(ctx, query, userID, date, actionID)
	if err != nil {
		return fmt.Errorf("failed to record program day: %w", err)
	}
	if result.RowsAffected() > 0 {
		log.Printf("Recorded program day for user %s on %s", userID, date.Format("2006-01-02"))
	}
	return nil
}

func (s *ProgramService) GetEnrollments(ctx context.Context, clerkID string) ([]program.Enrollment, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, program_id, start_date, completed_days, completed, completed_at, created_at
		FROM program_enrollments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []program.Enrollment
	for rows.Next() {
		var e program.Enrollment
		err := rows.Scan(&e.ID, &e.UserID, &e.ProgramID, &e.StartDate, &e.CompletedDays, &e.Completed, &e.CompletedAt, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
