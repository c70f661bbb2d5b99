package health

import "time"

// WeekStart returns the Monday of the calendar week containing t,
// truncated to midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// EarnedPoints converts qualifying completion dates into score points,
// applying the per-day cap first and then the per-week cap.
func EarnedPoints(completions []time.Time) float64 {
	perDay := make(map[time.Time]float64)
	for _, c := range completions {
		day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, time.UTC)
		if perDay[day] < MaxPointsPerDay {
			perDay[day] += PointsPerCompleted
			if perDay[day] > MaxPointsPerDay {
				perDay[day] = MaxPointsPerDay
			}
		}
	}

	perWeek := make(map[time.Time]float64)
	for day, pts := range perDay {
		week := WeekStart(day)
		perWeek[week] += pts
		if perWeek[week] > MaxPointsPerWeek {
			perWeek[week] = MaxPointsPerWeek
		}
	}

	var total float64
	for _, pts := range perWeek {
		total += pts
	}
	return total
}

// ComputeScore folds baseline, capped completion points and active decay
// into the bounded score.
func ComputeScore(baseline int, completions []time.Time, decayTotal float64) float64 {
	score := float64(baseline) + EarnedPoints(completions) - decayTotal
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}
