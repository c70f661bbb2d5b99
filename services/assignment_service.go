package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/assignment"
	"rekindleAPI/internal/engine"
	"rekindleAPI/internal/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// How far back the repeat-prevention window reaches.
const recencyWindowDays = 30

// AssignmentService is the assignment ledger: at most one action per
// (user, date), selected by the eligibility/weighting/selector pipeline
// or pinned by a program. Both the nightly batch and on-demand requests
// go through GetOrCreate so the two paths cannot drift.
type AssignmentService struct {
	db       *pgxpool.Pool
	catalog  *CatalogService
	profiles *ProfileService
	health   *HealthService
	badges   *BadgeService
	programs *ProgramService

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewAssignmentService(db *pgxpool.Pool, catalog *CatalogService, profiles *ProfileService, health *HealthService, badges *BadgeService, programs *ProgramService, rng *rand.Rand) *AssignmentService {
	return &AssignmentService{
		db:       db,
		catalog:  catalog,
		profiles: profiles,
		health:   health,
		badges:   badges,
		programs: programs,
		rng:      rng,
	}
}

func (s *AssignmentService) GetOrCreateForClerkID(ctx context.Context, clerkID string, date time.Time) (*assignment.DailyActionResponse, error) {
	p, err := s.profiles.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.GetOrCreate(ctx, p, date)
}

// GetOrCreate returns the existing assignment for (user, date) or runs
// the selection pipeline and persists one. Concurrent callers converge
// on a single row: the INSERT carries ON CONFLICT DO NOTHING against the
// (user_id, date) uniqueness constraint and the loser re-reads the
// winner's row. Pre-existing rows, including program pins, are returned
// untouched.
func (s *AssignmentService) GetOrCreate(ctx context.Context, p *profile.UserProfile, date time.Time) (*assignment.DailyActionResponse, error) {
	date = dateOnly(date)

	if existing, err := s.getRow(ctx, p.ID, date); err == nil {
		selectionsTotal.WithLabelValues("existing").Inc()
		return s.buildResponse(ctx, existing, false)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	inputs, err := s.fetchSelectionInputs(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	candidates, fellBack := engine.FilterCandidates(engine.FilterInput{
		Catalog:   inputs.catalog,
		Date:      date,
		Profile:   p,
		RecentIDs: inputs.recentIDs,
		HiddenIDs: inputs.hiddenIDs,
	})
	if fellBack {
		log.Printf("Eligibility exhausted for user %s on %s, serving degraded candidate set", p.ID, date.Format("2006-01-02"))
		selectionsTotal.WithLabelValues("fallback").Inc()
	}
	if len(candidates) == 0 {
		selectionsTotal.WithLabelValues("exhausted").Inc()
		return nil, ErrNoActionAvailable
	}

	groups := engine.GroupByCategory(candidates)
	categories := make([]action.Category, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	weights := engine.CategoryWeights(categories, inputs.survey, inputs.prefs)

	s.rngMu.Lock()
	picked, ok := engine.SelectAction(s.rng, groups, weights)
	s.rngMu.Unlock()
	if !ok {
		selectionsTotal.WithLabelValues("exhausted").Inc()
		return nil, ErrNoActionAvailable
	}

	insertQuery := `
	INSERT INTO daily_assignments (id, user_id, action_id, date, source, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (user_id, date) DO NOTHING
	`
	_, err = s.db.Exec(ctx, insertQuery, uuid.New(), p.ID, picked.ID, date, assignment.SourceSelection)
	if err != nil {
		return nil, fmt.Errorf("failed to persist assignment: %w", err)
	}

	// Re-read rather than trusting our insert: a concurrent caller may
	// have won the conflict, and their row is the truth.
	row, err := s.getRow(ctx, p.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment after insert: %w", err)
	}

	selectionsTotal.WithLabelValues("created").Inc()
	return s.buildResponse(ctx, row, fellBack)
}

type selectionInputs struct {
	catalog   []action.Action
	recentIDs map[uuid.UUID]bool
	hiddenIDs map[uuid.UUID]bool
	survey    []profile.CategoryProfile
	prefs     map[action.Category]float64
}

// fetchSelectionInputs loads the pipeline's read-only inputs in
// parallel; they are independent queries and the pipeline itself never
// touches the database.
func (s *AssignmentService) fetchSelectionInputs(ctx context.Context, userID uuid.UUID) (*selectionInputs, error) {
	in := &selectionInputs{}
	var catalogErr, recentErr, hiddenErr, surveyErr, prefsErr error

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		in.catalog, catalogErr = s.catalog.ListActions(ctx)
	}()
	go func() {
		defer wg.Done()
		in.recentIDs, recentErr = s.getRecentActionIDs(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		in.hiddenIDs, hiddenErr = s.profiles.GetHiddenActionIDs(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		in.survey, surveyErr = s.profiles.GetCategoryProfile(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		in.prefs, prefsErr = s.profiles.GetPreferenceWeights(ctx, userID)
	}()
	wg.Wait()

	for _, err := range []error{catalogErr, recentErr, hiddenErr, surveyErr, prefsErr} {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch selection inputs: %w", err)
		}
	}
	return in, nil
}

func (s *AssignmentService) getRecentActionIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	query := `
	SELECT action_id
	FROM daily_assignments
	WHERE user_id = $1 AND date >= CURRENT_DATE - $2::int
	`

	rows, err := s.db.Query(ctx, query, userID, recencyWindowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent assignments: %w", err)
	}
	defer rows.Close()

	recent := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recent assignment: %w", err)
		}
		recent[id] = true
	}
	return recent, rows.Err()
}

func (s *AssignmentService) getRow(ctx context.Context, userID uuid.UUID, date time.Time) (*assignment.DailyAssignment, error) {
	query := `
	SELECT id, user_id, action_id, date, source, completed, favorited,
	       did_not_complete, completed_at, created_at
	FROM daily_assignments
	WHERE user_id = $1 AND date = $2
	`

	var a assignment.DailyAssignment
	err := s.db.QueryRow(ctx, query, userID, date).Scan(
		&a.ID,
		&a.UserID,
		&a.ActionID,
		&a.Date,
		&a.Source,
		&a.Completed,
		&a.Favorited,
		&a.DidNotFinish,
		&a.CompletedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AssignmentService) buildResponse(ctx context.Context, row *assignment.DailyAssignment, fellBack bool) (*assignment.DailyActionResponse, error) {
	act, err := s.catalog.GetAction(ctx, row.ActionID.String())
	if err != nil {
		return nil, err
	}
	return &assignment.DailyActionResponse{
		Assignment: *row,
		Action:     *act,
		Date:       row.Date.Format("2006-01-02"),
		Fallback:   fellBack,
	}, nil
}

// GetByDate returns the assignment for a specific day without creating
// one.
func (s *AssignmentService) GetByDate(ctx context.Context, clerkID string, date time.Time) (*assignment.DailyActionResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	row, err := s.getRow(ctx, userID, dateOnly(date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return s.buildResponse(ctx, row, false)
}

// MarkCompleted flips an assignment to completed. Past dates are
// allowed (catch-up). Repeating the call is a no-op thanks to the
// completed = false guard, which also makes the downstream decay
// reversal exactly-once. Health and badge bookkeeping run after the
// primary write and their failures never revert it.
func (s *AssignmentService) MarkCompleted(ctx context.Context, clerkID string, date time.Time) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}
	date = dateOnly(date)

	query := `
	UPDATE daily_assignments
	SET completed = true, did_not_complete = false, completed_at = NOW()
	WHERE user_id = $1 AND date = $2 AND completed = false
	`

	result, err := s.db.Exec(ctx, query, userID, date)
	if err != nil {
		return fmt.Errorf("failed to mark assignment completed: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either no row, or already completed. Only the former is an
		// error; re-completing must stay a no-op.
		if _, err := s.getRow(ctx, userID, date); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		return nil
	}

	// Auxiliary bookkeeping. The completion is already durable; these
	// are logged on failure, never rolled back into it.
	if err := s.health.ReverseDecay(ctx, userID, date); err != nil {
		log.Printf("Decay reversal failed for user %s date %s: %v", userID, date.Format("2006-01-02"), err)
	}
	if err := s.programs.NoteDayCompleted(ctx, userID, date); err != nil {
		log.Printf("Program day bookkeeping failed for user %s date %s: %v", userID, date.Format("2006-01-02"), err)
	}
	if _, err := s.badges.EvaluateAndAward(ctx, userID); err != nil {
		log.Printf("Badge evaluation failed for user %s: %v", userID, err)
	}

	return nil
}

func (s *AssignmentService) MarkFavorited(ctx context.Context, clerkID string, date time.Time, favorited bool) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	UPDATE daily_assignments
	SET favorited = $3
	WHERE user_id = $1 AND date = $2
	`

	result, err := s.db.Exec(ctx, query, userID, dateOnly(date), favorited)
	if err != nil {
		return fmt.Errorf("failed to mark assignment favorited: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// MarkDoNotComplete flags an assignment the user is deliberately
// skipping. Flagged rows are exempt from the decay sweep.
func (s *AssignmentService) MarkDoNotComplete(ctx context.Context, clerkID string, date time.Time) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	date = dateOnly(date)

	query := `
	UPDATE daily_assignments
	SET did_not_complete = true
	WHERE user_id = $1 AND date = $2 AND completed = false
	`

	result, err := s.db.Exec(ctx, query, userID, date)
	if err != nil {
		return fmt.Errorf("failed to flag assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either no row, or already completed. A completed day has
		// nothing left to exempt, so only the missing row is an error.
		if _, err := s.getRow(ctx, userID, date); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to check assignment: %w", err)
		}
	}
	return nil
}

func (s *AssignmentService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*assignment.CalendarResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT da.date, da.action_id, a.name, da.completed, da.favorited, da.did_not_complete
	FROM daily_assignments da
	JOIN actions a ON a.id = da.action_id
	WHERE da.user_id = $1
		AND EXTRACT(YEAR FROM da.date) = $2
		AND EXTRACT(MONTH FROM da.date) = $3
	ORDER BY da.date
	`

	rows, err := s.db.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	resp := &assignment.CalendarResponse{Year: year, Month: month}
	for rows.Next() {
		var day assignment.CalendarDay
		var date time.Time
		var actionID uuid.UUID
		var name string
		err := rows.Scan(&date, &actionID, &name, &day.Completed, &day.Favorited, &day.DidNotFinish)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		day.Date = date.Format("2006-01-02")
		idStr := actionID.String()
		day.ActionID = &idStr
		day.ActionName = &name
		resp.Days = append(resp.Days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar: %w", err)
	}

	return resp, nil
}

func (s *AssignmentService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
