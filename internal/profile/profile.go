package profile

import (
	"time"

	"rekindleAPI/internal/action"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

type UserProfile struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	ClerkID         string           `json:"clerk_id" db:"clerk_id"`
	Email           string           `json:"email" db:"email"`
	HasKids         bool             `json:"has_kids" db:"has_kids"`
	KidsLiveWithYou bool             `json:"kids_live_with_you" db:"kids_live_with_you"`
	CountryCode     *string          `json:"country_code,omitempty" db:"country_code"`
	Tier            SubscriptionTier `json:"subscription_tier" db:"subscription_tier"`
	HealthBaseline  int              `json:"health_baseline" db:"health_baseline"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

func (p *UserProfile) IsPremium() bool {
	return p.Tier == TierPremium
}

// CategoryProfile holds the onboarding survey signals for one category.
// SelfRating and WantsImprovement are nullable because older accounts
// predate the survey; LegacyScore (0-100) is the pre-survey signal kept
// only as a weighting fallback.
type CategoryProfile struct {
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Category         action.Category `json:"category" db:"category"`
	SelfRating       *int            `json:"self_rating,omitempty" db:"self_rating"`
	WantsImprovement *bool           `json:"wants_improvement,omitempty" db:"wants_improvement"`
	LegacyScore      *int            `json:"legacy_score,omitempty" db:"legacy_score"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// PreferenceWeight is the accumulated explicit "show me more like this"
// signal for one (user, category).
type PreferenceWeight struct {
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Category  action.Category `json:"category" db:"category"`
	Weight    float64         `json:"weight" db:"weight"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

type BoostRequest struct {
	Category string `json:"category"`
}
