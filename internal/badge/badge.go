package badge

import (
	"time"

	"rekindleAPI/internal/action"

	"github.com/google/uuid"
)

type RequirementType string

const (
	RequirementTotalActions     RequirementType = "total_actions"
	RequirementStreakDays       RequirementType = "streak_days"
	RequirementWeeklyStreak     RequirementType = "weekly_streak"
	RequirementCategoryCount    RequirementType = "category_count"
	RequirementEventCompletion  RequirementType = "event_completion"
	RequirementOutdoorActions   RequirementType = "outdoor_actions"
	RequirementAdventureActions RequirementType = "adventure_actions"
	RequirementCreativeActions  RequirementType = "creative_actions"
)

type Badge struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Description      string           `json:"description" db:"description"`
	Icon             string           `json:"icon" db:"icon"`
	RequirementType  RequirementType  `json:"requirement_type" db:"requirement_type"`
	RequirementValue int              `json:"requirement_value" db:"requirement_value"`
	Category         *action.Category `json:"category,omitempty" db:"category"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// UserBadge is immutable once created: badge evaluation never revokes.
type UserBadge struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}

type Progress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

type BadgeWithStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
	Progress *Progress  `json:"progress,omitempty"`
}

// NewProgress clamps percentage to 100 so an over-qualified unearned
// badge (award pending) never reports more than full.
func NewProgress(current, target int) *Progress {
	if target <= 0 {
		target = 1
	}
	pct := float64(current) / float64(target) * 100
	if pct > 100 {
		pct = 100
	}
	return &Progress{Current: current, Target: target, Percentage: pct}
}
