package health

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	// 2026-03-04 is a Wednesday; its week starts Monday 2026-03-02.
	monday := day(2026, 3, 2)
	cases := []time.Time{
		day(2026, 3, 2),
		day(2026, 3, 4),
		time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC), // Sunday, late
	}
	for _, c := range cases {
		if got := WeekStart(c); !got.Equal(monday) {
			t.Errorf("WeekStart(%s) = %s, want %s", c, got, monday)
		}
	}

	// A Monday input maps to itself across month boundaries too.
	if got := WeekStart(day(2026, 6, 1)); !got.Equal(day(2026, 6, 1)) {
		t.Errorf("Monday must map to itself, got %s", got)
	}
}

func TestEarnedPointsDailyCap(t *testing.T) {
	// Three completions on one day still earn only the daily cap.
	d := day(2026, 3, 3)
	completions := []time.Time{
		d.Add(8 * time.Hour),
		d.Add(12 * time.Hour),
		d.Add(20 * time.Hour),
	}
	if got := EarnedPoints(completions); got != MaxPointsPerDay {
		t.Errorf("expected %v points, got %v", float64(MaxPointsPerDay), got)
	}
}

func TestEarnedPointsWeeklyCap(t *testing.T) {
	// Seven active days in one week would earn 14 raw points; the week
	// caps at 10.
	var completions []time.Time
	start := day(2026, 3, 2) // Monday
	for i := 0; i < 7; i++ {
		completions = append(completions, start.AddDate(0, 0, i))
	}
	if got := EarnedPoints(completions); got != MaxPointsPerWeek {
		t.Errorf("expected weekly cap %v, got %v", float64(MaxPointsPerWeek), got)
	}

	// A completion in the following week earns fresh points.
	completions = append(completions, start.AddDate(0, 0, 7))
	if got := EarnedPoints(completions); got != MaxPointsPerWeek+PointsPerCompleted {
		t.Errorf("expected %v, got %v", float64(MaxPointsPerWeek+PointsPerCompleted), got)
	}
}

func TestEarnedPointsEmpty(t *testing.T) {
	if got := EarnedPoints(nil); got != 0 {
		t.Errorf("expected 0 points, got %v", got)
	}
}

func TestComputeScoreClamps(t *testing.T) {
	// Heavy decay cannot push the score below the floor.
	if got := ComputeScore(10, nil, 500); got != ScoreFloor {
		t.Errorf("expected floor %v, got %v", float64(ScoreFloor), got)
	}

	// Many weeks of capped completions cannot push it past the ceiling.
	var completions []time.Time
	start := day(2026, 1, 5) // Monday
	for week := 0; week < 40; week++ {
		for i := 0; i < 5; i++ {
			completions = append(completions, start.AddDate(0, 0, week*7+i))
		}
	}
	if got := ComputeScore(DefaultBaseline, completions, 0); got != ScoreCeiling {
		t.Errorf("expected ceiling %v, got %v", float64(ScoreCeiling), got)
	}
}

func TestComputeScoreBalance(t *testing.T) {
	completions := []time.Time{day(2026, 3, 3), day(2026, 3, 4)}
	// 50 + 4 earned - 3 decay (two missed days at 1.5 each).
	got := ComputeScore(DefaultBaseline, completions, 2*DecayPerMissedDay)
	want := float64(DefaultBaseline) + 2*PointsPerCompleted - 2*DecayPerMissedDay
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
