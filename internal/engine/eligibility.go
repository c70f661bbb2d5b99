package engine

import (
	"strings"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"

	"github.com/google/uuid"
)

// householdKeywords flag actions that only make sense with kids in the
// picture. The daily-presence subset additionally implies the kids live
// in the household. Keyword matching is a migration-era heuristic; an
// explicit household tag on the catalog should eventually replace it.
var householdKeywords = []string{
	"kid", "child", "children", "family", "parent",
	"bedtime", "school", "homework", "playground",
}

var dailyPresenceKeywords = []string{
	"bedtime", "school", "homework", "playground",
}

// FilterInput carries everything the eligibility pipeline needs; all of
// it is fetched by the caller so the pipeline itself stays pure.
type FilterInput struct {
	Catalog   []action.Action
	Date      time.Time
	Profile   *profile.UserProfile
	RecentIDs map[uuid.UUID]bool // action ids assigned in the trailing 30 days
	HiddenIDs map[uuid.UUID]bool
}

// FilterCandidates narrows the catalog to the candidate set for one
// user/date. Stages run in a fixed order: dedupe, recency, hidden,
// country+season, household keywords. An empty result falls back to the
// full catalog minus the hidden set — availability over precision; the
// returned flag makes the degradation visible to callers.
func FilterCandidates(in FilterInput) (candidates []action.Action, fellBack bool) {
	seen := make(map[uuid.UUID]bool, len(in.Catalog))
	deduped := make([]action.Action, 0, len(in.Catalog))
	for _, a := range in.Catalog {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		deduped = append(deduped, a)
	}

	out := make([]action.Action, 0, len(deduped))
	for _, a := range deduped {
		if in.RecentIDs[a.ID] || in.HiddenIDs[a.ID] {
			continue
		}
		if !countryEligible(a, in.Profile) {
			continue
		}
		if a.Season != nil && !a.Season.Contains(in.Date) {
			continue
		}
		if !householdEligible(a, in.Profile) {
			continue
		}
		out = append(out, a)
	}

	if len(out) > 0 {
		return out, false
	}

	// Degraded path: everything except explicit hides.
	fallback := make([]action.Action, 0, len(deduped))
	for _, a := range deduped {
		if in.HiddenIDs[a.ID] {
			continue
		}
		fallback = append(fallback, a)
	}
	return fallback, true
}

func countryEligible(a action.Action, p *profile.UserProfile) bool {
	if a.CountryCode == nil {
		return true
	}
	// Country-restricted actions are off the table for users with no
	// country on file.
	if p.CountryCode == nil {
		return false
	}
	return strings.EqualFold(*a.CountryCode, *p.CountryCode)
}

func householdEligible(a action.Action, p *profile.UserProfile) bool {
	if p.HasKids && p.KidsLiveWithYou {
		return true
	}
	text := strings.ToLower(a.Name + " " + a.Description + " " + a.Benefit)
	if !p.HasKids {
		return !matchesAny(text, householdKeywords)
	}
	// Kids exist but live elsewhere: only daily-presence actions are out.
	return !matchesAny(text, dailyPresenceKeywords)
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
