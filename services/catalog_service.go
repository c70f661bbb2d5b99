package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rekindleAPI/internal/action"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService is the read side of the action catalog. The catalog
// changes rarely, so a short in-memory cache keeps the nightly batch
// from re-reading it once per user.
type CatalogService struct {
	db *pgxpool.Pool

	mu       sync.RWMutex
	cached   []action.Action
	cachedAt time.Time
	cacheTTL time.Duration
}

func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{
		db:       db,
		cacheTTL: 5 * time.Minute,
	}
}

func (s *CatalogService) ListActions(ctx context.Context) ([]action.Action, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cachedAt) < s.cacheTTL {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	query := `
	SELECT
		id,
		category,
		theme,
		name,
		description,
		benefit,
		country_code,
		season_start_month,
		season_start_day,
		season_end_month,
		season_end_day,
		is_active,
		created_at
	FROM actions
	WHERE is_active = true
	ORDER BY category, name
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch action catalog: %w", err)
	}
	defer rows.Close()

	var actions []action.Action
	for rows.Next() {
		var a action.Action
		var startMonth, startDay, endMonth, endDay *int
		err := rows.Scan(
			&a.ID,
			&a.Category,
			&a.Theme,
			&a.Name,
			&a.Description,
			&a.Benefit,
			&a.CountryCode,
			&startMonth,
			&startDay,
			&endMonth,
			&endDay,
			&a.IsActive,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		if startMonth != nil && startDay != nil && endMonth != nil && endDay != nil {
			a.Season = &action.SeasonalWindow{
				StartMonth: *startMonth,
				StartDay:   *startDay,
				EndMonth:   *endMonth,
				EndDay:     *endDay,
			}
		}
		actions = append(actions, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	s.mu.Lock()
	s.cached = actions
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return actions, nil
}

// GetAction loads a single catalog row by id.
func (s *CatalogService) GetAction(ctx context.Context, id string) (*action.Action, error) {
	query := `
	SELECT
		id, category, theme, name, description, benefit, country_code,
		season_start_month, season_start_day, season_end_month, season_end_day,
		is_active, created_at
	FROM actions
	WHERE id = $1
	`

	var a action.Action
	var startMonth, startDay, endMonth, endDay *int
	err := s.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Category,
		&a.Theme,
		&a.Name,
		&a.Description,
		&a.Benefit,
		&a.CountryCode,
		&startMonth,
		&startDay,
		&endMonth,
		&endDay,
		&a.IsActive,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get action: %w", err)
	}
	if startMonth != nil && startDay != nil && endMonth != nil && endDay != nil {
		a.Season = &action.SeasonalWindow{
			StartMonth: *startMonth,
			StartDay:   *startDay,
			EndMonth:   *endMonth,
			EndDay:     *endDay,
		}
	}
	return &a, nil
}
