package badge

import (
	"testing"
	"time"

	"rekindleAPI/internal/action"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyStreak(t *testing.T) {
	today := day(2026, 3, 6)

	if got := DailyStreak(nil, today); got != 0 {
		t.Errorf("empty history should be streak 0, got %d", got)
	}

	// Yesterday only: no completion today means no active streak.
	if got := DailyStreak([]time.Time{day(2026, 3, 5)}, today); got != 0 {
		t.Errorf("streak without today should be 0, got %d", got)
	}

	// Three consecutive days ending today.
	completions := []time.Time{
		day(2026, 3, 4).Add(9 * time.Hour),
		day(2026, 3, 5).Add(21 * time.Hour),
		day(2026, 3, 6).Add(7 * time.Hour),
	}
	if got := DailyStreak(completions, today); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}

	// A gap resets the walk even with older history present.
	withGap := append(completions, day(2026, 3, 1))
	if got := DailyStreak(withGap, today); got != 3 {
		t.Errorf("gap must break the streak at 3, got %d", got)
	}

	// Several completions on one day count once.
	doubled := append(completions, day(2026, 3, 6).Add(19*time.Hour))
	if got := DailyStreak(doubled, today); got != 3 {
		t.Errorf("duplicate days must not inflate the streak, got %d", got)
	}
}

func TestWeeklyStreak(t *testing.T) {
	if got := WeeklyStreak(nil); got != 0 {
		t.Errorf("empty history should be streak 0, got %d", got)
	}

	// Weekend-only completions never start a work-week streak.
	weekend := []time.Time{day(2026, 3, 7), day(2026, 3, 8)} // Sat, Sun
	if got := WeeklyStreak(weekend); got != 0 {
		t.Errorf("weekend completions should not count, got %d", got)
	}

	// Three consecutive weeks, one weekday hit each.
	completions := []time.Time{
		day(2026, 2, 17), // Tue, week of Feb 16
		day(2026, 2, 26), // Thu, week of Feb 23
		day(2026, 3, 2),  // Mon, week of Mar 2
	}
	if got := WeeklyStreak(completions); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}

	// An inactive week in between breaks the chain at the recent side.
	withHole := []time.Time{
		day(2026, 2, 10), // week of Feb 9
		// week of Feb 16 missing
		day(2026, 2, 26), // week of Feb 23
		day(2026, 3, 4),  // week of Mar 2
	}
	if got := WeeklyStreak(withHole); got != 2 {
		t.Errorf("expected streak 2 after the hole, got %d", got)
	}
}

func TestMatchesActivity(t *testing.T) {
	hike := action.Action{Name: "Sunset hike", Description: "A short trail you have never walked"}
	if !MatchesActivity(RequirementOutdoorActions, hike) {
		t.Error("hike should match the outdoor keyword list")
	}
	if MatchesActivity(RequirementCreativeActions, hike) {
		t.Error("hike should not match the creative keyword list")
	}
	if MatchesActivity(RequirementTotalActions, hike) {
		t.Error("non-activity requirement types never keyword-match")
	}
}

func TestIsActivityRequirement(t *testing.T) {
	if !IsActivityRequirement(RequirementAdventureActions) {
		t.Error("adventure_actions is an activity requirement")
	}
	if IsActivityRequirement(RequirementStreakDays) {
		t.Error("streak_days is not an activity requirement")
	}
}

func TestEffectiveCategory(t *testing.T) {
	explicit := action.CategoryIntimacy
	b := Badge{Name: "Romance Rookie", Category: &explicit}
	if got, ok := EffectiveCategory(b); !ok || got != action.CategoryIntimacy {
		t.Errorf("explicit category must win, got %s", got)
	}

	byName := Badge{Name: "Great Communicator"}
	if got, ok := EffectiveCategory(byName); !ok || got != action.CategoryCommunication {
		t.Errorf("expected communication from badge name, got %s", got)
	}

	none := Badge{Name: "Early Bird"}
	if _, ok := EffectiveCategory(none); ok {
		t.Error("badge with no category signal should resolve to none")
	}
}
