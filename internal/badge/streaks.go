package badge

import (
	"sort"
	"strings"
	"time"

	"rekindleAPI/internal/action"
)

// dayOf truncates to midnight UTC so date-keyed comparisons are stable
// regardless of the timestamp's clock part.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekMonday returns the Monday of the calendar week containing t.
func weekMonday(t time.Time) time.Time {
	d := dayOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// DailyStreak counts consecutive calendar days with at least one
// completion, ending today. No completion today means the streak is 0.
func DailyStreak(completions []time.Time, today time.Time) int {
	if len(completions) == 0 {
		return 0
	}
	days := make(map[time.Time]bool, len(completions))
	for _, c := range completions {
		days[dayOf(c)] = true
	}

	cursor := dayOf(today)
	if !days[cursor] {
		return 0
	}
	streak := 0
	for days[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// WeeklyStreak counts consecutive Monday-Friday work-weeks, each with at
// least one completion on a weekday, walking backward from the most
// recent such week. Weeks are keyed by their Monday; any fully inactive
// intervening week breaks the count.
func WeeklyStreak(completions []time.Time) int {
	weeks := make(map[time.Time]bool)
	for _, c := range completions {
		wd := dayOf(c).Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		weeks[weekMonday(c)] = true
	}
	if len(weeks) == 0 {
		return 0
	}

	mondays := make([]time.Time, 0, len(weeks))
	for m := range weeks {
		mondays = append(mondays, m)
	}
	sort.Slice(mondays, func(i, j int) bool { return mondays[i].After(mondays[j]) })

	streak := 1
	for i := 1; i < len(mondays); i++ {
		if mondays[i-1].AddDate(0, 0, -7).Equal(mondays[i]) {
			streak++
			continue
		}
		break
	}
	return streak
}

// Activity keyword lists for the keyword-driven requirement types. A
// migration-era heuristic: explicit action tagging should replace these
// once the catalog carries activity tags.
var activityKeywords = map[RequirementType][]string{
	RequirementOutdoorActions:   {"outdoor", "outside", "walk", "hike", "picnic", "garden", "park", "nature"},
	RequirementAdventureActions: {"adventure", "explore", "travel", "trip", "new place", "spontaneous", "road trip"},
	RequirementCreativeActions:  {"creative", "draw", "paint", "write", "craft", "cook together", "music", "dance"},
}

// categoryKeywords infers a badge's category from its name when the
// explicit category field is absent. Same fragility caveat as above.
var categoryKeywords = map[string]action.Category{
	"communicat": action.CategoryCommunication,
	"romance":    action.CategoryRomance,
	"romantic":   action.CategoryRomance,
	"partner":    action.CategoryPartnership,
	"intimacy":   action.CategoryIntimacy,
	"gratitude":  action.CategoryGratitude,
	"conflict":   action.CategoryConflictResolution,
	"reconnect":  action.CategoryReconnection,
	"quality":    action.CategoryQualityTime,
}

// IsActivityRequirement reports whether the requirement type is one of
// the keyword-driven activity families.
func IsActivityRequirement(rt RequirementType) bool {
	_, ok := activityKeywords[rt]
	return ok
}

// MatchesActivity reports whether an action's name+description text
// matches the keyword list for the given activity requirement.
func MatchesActivity(rt RequirementType, a action.Action) bool {
	keywords, ok := activityKeywords[rt]
	if !ok {
		return false
	}
	text := strings.ToLower(a.Name + " " + a.Description)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// EffectiveCategory resolves the category a category_count badge counts
// against: the explicit field wins, badge-name keywords are the fallback.
func EffectiveCategory(b Badge) (action.Category, bool) {
	if b.Category != nil {
		return *b.Category, true
	}
	name := strings.ToLower(b.Name)
	for kw, cat := range categoryKeywords {
		if strings.Contains(name, kw) {
			return cat, true
		}
	}
	return "", false
}
