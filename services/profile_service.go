package services

import (
	"context"
	"errors"
	"fmt"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Accumulation step for one explicit "show me more like this" signal.
const boostIncrement = 0.5

type ProfileService struct {
	db *pgxpool.Pool
}

func NewProfileService(db *pgxpool.Pool) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) GetUserByClerkID(ctx context.Context, clerkID string) (*profile.UserProfile, error) {
	query := `
	SELECT id, clerk_id, email, has_kids, kids_live_with_you, country_code,
	       subscription_tier, health_baseline, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	p := &profile.UserProfile{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&p.ID,
		&p.ClerkID,
		&p.Email,
		&p.HasKids,
		&p.KidsLiveWithYou,
		&p.CountryCode,
		&p.Tier,
		&p.HealthBaseline,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return p, nil
}

// GetUserByID is the batch-path variant of GetUserByClerkID.
func (s *ProfileService) GetUserByID(ctx context.Context, userID uuid.UUID) (*profile.UserProfile, error) {
	query := `
	SELECT id, clerk_id, email, has_kids, kids_live_with_you, country_code,
	       subscription_tier, health_baseline, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	p := &profile.UserProfile{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.ClerkID,
		&p.Email,
		&p.HasKids,
		&p.KidsLiveWithYou,
		&p.CountryCode,
		&p.Tier,
		&p.HealthBaseline,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return p, nil
}

func (s *ProfileService) GetCategoryProfile(ctx context.Context, userID uuid.UUID) ([]profile.CategoryProfile, error) {
	query := `
	SELECT user_id, category, self_rating, wants_improvement, legacy_score, updated_at
	FROM category_profiles
	WHERE user_id = $1
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category profile: %w", err)
	}
	defer rows.Close()

	var profiles []profile.CategoryProfile
	for rows.Next() {
		var cp profile.CategoryProfile
		err := rows.Scan(
			&cp.UserID,
			&cp.Category,
			&cp.SelfRating,
			&cp.WantsImprovement,
			&cp.LegacyScore,
			&cp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category profile: %w", err)
		}
		profiles = append(profiles, cp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category profiles: %w", err)
	}

	return profiles, nil
}

func (s *ProfileService) GetPreferenceWeights(ctx context.Context, userID uuid.UUID) (map[action.Category]float64, error) {
	query := `
	SELECT category, weight
	FROM preference_weights
	WHERE user_id = $1
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preference weights: %w", err)
	}
	defer rows.Close()

	weights := make(map[action.Category]float64)
	for rows.Next() {
		var cat action.Category
		var weight float64
		if err := rows.Scan(&cat, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan preference weight: %w", err)
		}
		weights[cat] = weight
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preference weights: %w", err)
	}

	return weights, nil
}

// BoostCategory records one explicit "show me more like this" signal by
// bumping the accumulated preference weight for the category.
func (s *ProfileService) BoostCategory(ctx context.Context, clerkID string, category action.Category) (float64, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("user not found: %w", err)
	}

	query := `
	INSERT INTO preference_weights (user_id, category, weight, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, category)
	DO UPDATE SET weight = preference_weights.weight + $3, updated_at = NOW()
	RETURNING weight
	`

	var weight float64
	err = s.db.QueryRow(ctx, query, userID, category, boostIncrement).Scan(&weight)
	if err != nil {
		return 0, fmt.Errorf("failed to boost category: %w", err)
	}

	return weight, nil
}

func (s *ProfileService) GetHiddenActionIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	query := `SELECT action_id FROM hidden_actions WHERE user_id = $1`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hidden actions: %w", err)
	}
	defer rows.Close()

	hidden := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hidden action: %w", err)
		}
		hidden[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hidden actions: %w", err)
	}

	return hidden, nil
}

func (s *ProfileService) HideAction(ctx context.Context, clerkID string, actionID uuid.UUID) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	query := `
	INSERT INTO hidden_actions (user_id, action_id, created_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_id, action_id) DO NOTHING
	`

	_, err = s.db.Exec(ctx, query, userID, actionID)
	if err != nil {
		return fmt.Errorf("failed to hide action: %w", err)
	}

	return nil
}

func (s *ProfileService) UnhideAction(ctx context.Context, clerkID string, actionID uuid.UUID) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	result, err := s.db.Exec(ctx, `DELETE FROM hidden_actions WHERE user_id = $1 AND action_id = $2`, userID, actionID)
	if err != nil {
		return fmt.Errorf("failed to unhide action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("action was not hidden")
	}

	return nil
}

// ListActiveUserIDs feeds the nightly batch: every user who should
// receive tomorrow's assignment.
func (s *ProfileService) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM users WHERE is_active = true ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return ids, nil
}
