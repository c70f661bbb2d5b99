package engine

import (
	"math/rand"
	"sort"

	"rekindleAPI/internal/action"
)

// SelectAction draws one action: a weighted category draw followed by a
// uniform pick inside the winning category. Categories are walked in
// lexicographic order so the draw is a pure function of (weights, rng) —
// no map-iteration-order surprises. Floating-point residue after the
// walk lands on the last category. Returns false only when the grouped
// candidate set is empty.
func SelectAction(rng *rand.Rand, byCategory map[action.Category][]action.Action, weights map[action.Category]float64) (action.Action, bool) {
	ordered := make([]action.Category, 0, len(byCategory))
	for c, actions := range byCategory {
		if len(actions) == 0 {
			continue
		}
		ordered = append(ordered, c)
	}
	if len(ordered) == 0 {
		return action.Action{}, false
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var total float64
	for _, c := range ordered {
		total += weightOf(weights, c)
	}

	selected := ordered[len(ordered)-1]
	r := rng.Float64() * total
	for _, c := range ordered {
		r -= weightOf(weights, c)
		if r <= 0 {
			selected = c
			break
		}
	}

	pool := byCategory[selected]
	return pool[rng.Intn(len(pool))], true
}

// GroupByCategory buckets candidates for the selector.
func GroupByCategory(candidates []action.Action) map[action.Category][]action.Action {
	groups := make(map[action.Category][]action.Action)
	for _, a := range candidates {
		groups[a.Category] = append(groups[a.Category], a)
	}
	return groups
}

func weightOf(weights map[action.Category]float64, c action.Category) float64 {
	if w, ok := weights[c]; ok && w > 0 {
		return w
	}
	return 1.0
}
