package engine

import (
	"sort"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"
)

const (
	baseWeight         = 1.0
	surveyBoost        = 2.0
	defaultLegacyScore = 50
)

// CategoryWeights computes a weight per category present in the
// candidate set. Goal-driven survey signals win: every category the user
// rated <= 3 and flagged for improvement gets the survey boost. Only
// when no category qualifies does the legacy score kick in, boosting the
// single lowest-scoring category (missing scores default to 50, ties
// broken by category name so the result is deterministic). The final
// weight adds the explicit per-category preference weight on top.
func CategoryWeights(categories []action.Category, survey []profile.CategoryProfile, prefs map[action.Category]float64) map[action.Category]float64 {
	present := make(map[action.Category]bool, len(categories))
	for _, c := range categories {
		present[c] = true
	}

	surveyWeights := make(map[action.Category]float64)
	for _, cp := range survey {
		if !present[cp.Category] {
			continue
		}
		if cp.SelfRating != nil && *cp.SelfRating <= 3 &&
			cp.WantsImprovement != nil && *cp.WantsImprovement {
			surveyWeights[cp.Category] = surveyBoost
		}
	}

	if len(surveyWeights) == 0 {
		if lowest, ok := lowestLegacyCategory(categories, survey); ok {
			surveyWeights[lowest] = surveyBoost
		}
	}

	weights := make(map[action.Category]float64, len(present))
	for c := range present {
		weights[c] = baseWeight + surveyWeights[c] + prefs[c]
	}
	return weights
}

func lowestLegacyCategory(categories []action.Category, survey []profile.CategoryProfile) (action.Category, bool) {
	if len(categories) == 0 {
		return "", false
	}
	scores := make(map[action.Category]int)
	for _, cp := range survey {
		if cp.LegacyScore != nil {
			scores[cp.Category] = *cp.LegacyScore
		}
	}

	ordered := make([]action.Category, 0, len(categories))
	seen := make(map[action.Category]bool)
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			ordered = append(ordered, c)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	best := ordered[0]
	bestScore := legacyScoreOf(scores, best)
	for _, c := range ordered[1:] {
		if s := legacyScoreOf(scores, c); s < bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

func legacyScoreOf(scores map[action.Category]int, c action.Category) int {
	if s, ok := scores[c]; ok {
		return s
	}
	return defaultLegacyScore
}
