package action

import (
	"testing"
	"time"
)

func TestSeasonalWindowContains(t *testing.T) {
	feb := SeasonalWindow{StartMonth: 2, StartDay: 1, EndMonth: 2, EndDay: 28}

	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 2, 14, 12, 30, 0, 0, time.UTC), true},
		{time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, c := range cases {
		if got := feb.Contains(c.date); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.date.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestSeasonalWindowWrapsYear(t *testing.T) {
	// Holiday window running Dec 15 through Jan 6.
	holidays := SeasonalWindow{StartMonth: 12, StartDay: 15, EndMonth: 1, EndDay: 6}

	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, c := range cases {
		if got := holidays.Contains(c.date); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.date.Format("2006-01-02"), got, c.want)
		}
	}
}
