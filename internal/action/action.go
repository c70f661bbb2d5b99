package action

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCommunication      Category = "communication"
	CategoryRomance            Category = "romance"
	CategoryPartnership        Category = "partnership"
	CategoryIntimacy           Category = "intimacy"
	CategoryGratitude          Category = "gratitude"
	CategoryConflictResolution Category = "conflict_resolution"
	CategoryReconnection       Category = "reconnection"
	CategoryQualityTime        Category = "quality_time"
)

// AllCategories is the closed category set, in the order the selector
// iterates it.
var AllCategories = []Category{
	CategoryCommunication,
	CategoryConflictResolution,
	CategoryGratitude,
	CategoryIntimacy,
	CategoryPartnership,
	CategoryQualityTime,
	CategoryReconnection,
	CategoryRomance,
}

// SeasonalWindow restricts an action to part of the year, e.g. a
// Valentine's action. Both bounds are inclusive and month/day based so the
// window repeats every year. A window may wrap the year end (Dec -> Jan).
type SeasonalWindow struct {
	StartMonth int `json:"start_month" db:"season_start_month"`
	StartDay   int `json:"start_day" db:"season_start_day"`
	EndMonth   int `json:"end_month" db:"season_end_month"`
	EndDay     int `json:"end_day" db:"season_end_day"`
}

// Contains reports whether the given date falls inside the window.
func (w SeasonalWindow) Contains(date time.Time) bool {
	d := int(date.Month())*100 + date.Day()
	start := w.StartMonth*100 + w.StartDay
	end := w.EndMonth*100 + w.EndDay
	if start <= end {
		return d >= start && d <= end
	}
	// Window wraps the year boundary.
	return d >= start || d <= end
}

type Action struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Category    Category        `json:"category" db:"category"`
	Theme       string          `json:"theme" db:"theme"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Benefit     string          `json:"benefit" db:"benefit"`
	CountryCode *string         `json:"country_code,omitempty" db:"country_code"`
	Season      *SeasonalWindow `json:"season,omitempty"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
