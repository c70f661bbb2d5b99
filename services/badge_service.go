package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/badge"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BadgeService evaluates badge requirement rules against completion and
// program history. Awards are permanent: evaluation only ever inserts,
// never revokes.
type BadgeService struct {
	db *pgxpool.Pool
}

func NewBadgeService(db *pgxpool.Pool) *BadgeService {
	return &BadgeService{db: db}
}

// completionRecord is one qualifying completion with the catalog fields
// the requirement rules match against.
type completionRecord struct {
	Date   time.Time
	Action action.Action
}

func (s *BadgeService) GetBadges(ctx context.Context, clerkID string) ([]*badge.BadgeWithStatus, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		b.id,
		b.name,
		b.description,
		b.icon,
		b.requirement_type,
		b.requirement_value,
		b.category,
		b.created_at,
		CASE WHEN ub.id IS NOT NULL THEN true ELSE false END as earned,
		ub.earned_at
	FROM badges b
	LEFT JOIN user_badges ub ON b.id = ub.badge_id AND ub.user_id = $1
	ORDER BY earned DESC, b.requirement_value ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.BadgeWithStatus
	for rows.Next() {
		b := &badge.BadgeWithStatus{}
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Description,
			&b.Icon,
			&b.RequirementType,
			&b.RequirementValue,
			&b.Category,
			&b.CreatedAt,
			&b.Earned,
			&b.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating badges: %w", err)
	}

	// Progress is only reported for unearned badges.
	completions, err := s.getCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	programsDone, err := s.countCompletedPrograms(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, b := range badges {
		if b.Earned {
			continue
		}
		current := s.progressFor(b.Badge, completions, programsDone)
		b.Progress = badge.NewProgress(current, b.RequirementValue)
	}

	return badges, nil
}

// EvaluateAndAward checks every unearned badge against the user's
// history and awards those whose requirement is met. Awarding is
// idempotent: the conflict target on (user_id, badge_id) makes a
// concurrent double-evaluation award exactly once.
func (s *BadgeService) EvaluateAndAward(ctx context.Context, userID uuid.UUID) ([]badge.Badge, error) {
	allBadges, err := s.listBadges(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.getEarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.getCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	programsDone, err := s.countCompletedPrograms(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []badge.Badge
	for _, b := range allBadges {
		if earned[b.ID] {
			continue
		}
		current := s.progressFor(b, completions, programsDone)
		if current < b.RequirementValue {
			continue
		}

		result, err := s.db.Exec(ctx, `
			INSERT INTO user_badges (id, user_id, badge_id, earned_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, uuid.New(), userID, b.ID)
		if err != nil {
			return awarded, fmt.Errorf("failed to award badge %s: %w", b.Name, err)
		}
		if result.RowsAffected() > 0 {
			badgesAwardedTotal.Inc()
			log.Printf("Awarded badge %q to user %s", b.Name, userID)
			awarded = append(awarded, b)
		}
	}

	return awarded, nil
}

// progressFor evaluates one requirement rule against the history.
func (s *BadgeService) progressFor(b badge.Badge, completions []completionRecord, programsDone int) int {
	switch b.RequirementType {
	case badge.RequirementTotalActions:
		return len(completions)

	case badge.RequirementStreakDays:
		return badge.DailyStreak(completionDates(completions), time.Now().UTC())

	case badge.RequirementWeeklyStreak:
		return badge.WeeklyStreak(completionDates(completions))

	case badge.RequirementCategoryCount:
		cat, ok := badge.EffectiveCategory(b)
		if !ok {
			return 0
		}
		count := 0
		for _, c := range completions {
			if c.Action.Category == cat {
				count++
			}
		}
		return count

	case badge.RequirementEventCompletion:
		return programsDone

	default:
		if badge.IsActivityRequirement(b.RequirementType) {
			count := 0
			for _, c := range completions {
				if badge.MatchesActivity(b.RequirementType, c.Action) {
					count++
				}
			}
			return count
		}
		return 0
	}
}

func completionDates(completions []completionRecord) []time.Time {
	dates := make([]time.Time, len(completions))
	for i, c := range completions {
		dates[i] = c.Date
	}
	return dates
}

func (s *BadgeService) listBadges(ctx context.Context) ([]badge.Badge, error) {
	query := `
	SELECT id, name, description, icon, requirement_type, requirement_value, category, created_at
	FROM badges
	ORDER BY requirement_value
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	var badges []badge.Badge
	for rows.Next() {
		var b badge.Badge
		err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.RequirementType, &b.RequirementValue, &b.Category, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (s *BadgeService) getEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earned badges: %w", err)
	}
	defer rows.Close()

	earned := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

func (s *BadgeService) getCompletions(ctx context.Context, userID uuid.UUID) ([]completionRecord, error) {
	query := `
	SELECT da.date, a.id, a.category, a.theme, a.name, a.description, a.benefit
	FROM daily_assignments da
	JOIN actions a ON a.id = da.action_id
	WHERE da.user_id = $1 AND da.completed = true
	ORDER BY da.date
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var completions []completionRecord
	for rows.Next() {
		var c completionRecord
		err := rows.Scan(
			&c.Date,
			&c.Action.ID,
			&c.Action.Category,
			&c.Action.Theme,
			&c.Action.Name,
			&c.Action.Description,
			&c.Action.Benefit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// Only fully finished programs count: completed flag set AND every day
// done. A partial pass never satisfies event_completion.
func (s *BadgeService) countCompletedPrograms(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM program_enrollments pe
	JOIN programs p ON p.id = pe.program_id
	WHERE pe.user_id = $1
		AND pe.completed = true
		AND pe.completed_days = p.length_days
	`

	var count int
	err := s.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed programs: %w", err)
	}
	return count, nil
}
