package engine

import (
	"math"
	"math/rand"
	"testing"

	"rekindleAPI/internal/action"
)

func TestSelectActionEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, ok := SelectAction(rng, nil, nil); ok {
		t.Error("expected no selection from an empty candidate set")
	}
	empty := map[action.Category][]action.Action{
		action.CategoryRomance: {},
	}
	if _, ok := SelectAction(rng, empty, nil); ok {
		t.Error("expected no selection when every category bucket is empty")
	}
}

func TestSelectActionSingleCandidate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	only := makeAction("Gratitude note", "Leave a note", action.CategoryGratitude)
	byCategory := map[action.Category][]action.Action{
		action.CategoryGratitude: {only},
	}

	got, ok := SelectAction(rng, byCategory, nil)
	if !ok {
		t.Fatal("expected a selection")
	}
	if got.ID != only.ID {
		t.Errorf("expected the single candidate, got %s", got.Name)
	}
}

func TestSelectActionDeterministicForSeed(t *testing.T) {
	byCategory := map[action.Category][]action.Action{
		action.CategoryRomance: {
			makeAction("A", "a", action.CategoryRomance),
			makeAction("B", "b", action.CategoryRomance),
		},
		action.CategoryGratitude: {
			makeAction("C", "c", action.CategoryGratitude),
		},
	}
	weights := map[action.Category]float64{
		action.CategoryRomance:   2.0,
		action.CategoryGratitude: 1.0,
	}

	first, ok := SelectAction(rand.New(rand.NewSource(42)), byCategory, weights)
	if !ok {
		t.Fatal("expected a selection")
	}
	for i := 0; i < 20; i++ {
		again, _ := SelectAction(rand.New(rand.NewSource(42)), byCategory, weights)
		if again.ID != first.ID {
			t.Fatal("same seed must produce the same pick")
		}
	}
}

func TestSelectActionRespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	byCategory := map[action.Category][]action.Action{
		action.CategoryCommunication: {makeAction("Check-in", "x", action.CategoryCommunication)},
		action.CategoryRomance:       {makeAction("Date night", "y", action.CategoryRomance)},
	}
	weights := map[action.Category]float64{
		action.CategoryCommunication: 1.0,
		action.CategoryRomance:       3.0,
	}

	const trials = 10000
	romanceHits := 0
	for i := 0; i < trials; i++ {
		got, ok := SelectAction(rng, byCategory, weights)
		if !ok {
			t.Fatal("expected a selection")
		}
		if got.Category == action.CategoryRomance {
			romanceHits++
		}
	}

	ratio := float64(romanceHits) / trials
	if math.Abs(ratio-0.75) > 0.03 {
		t.Errorf("romance should win roughly 75%% of draws, got %.3f", ratio)
	}
}

func TestSelectActionDefaultsMissingWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	byCategory := map[action.Category][]action.Action{
		action.CategoryGratitude:    {makeAction("A", "a", action.CategoryGratitude)},
		action.CategoryReconnection: {makeAction("B", "b", action.CategoryReconnection)},
	}

	// No weights at all: both categories must still be reachable.
	seen := make(map[action.Category]bool)
	for i := 0; i < 200; i++ {
		got, _ := SelectAction(rng, byCategory, nil)
		seen[got.Category] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected both categories drawn under default weights, saw %d", len(seen))
	}
}

func TestGroupByCategory(t *testing.T) {
	a := makeAction("A", "a", action.CategoryRomance)
	b := makeAction("B", "b", action.CategoryRomance)
	c := makeAction("C", "c", action.CategoryGratitude)

	groups := GroupByCategory([]action.Action{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[action.CategoryRomance]) != 2 {
		t.Errorf("expected 2 romance actions, got %d", len(groups[action.CategoryRomance]))
	}
	if len(groups[action.CategoryGratitude]) != 1 {
		t.Errorf("expected 1 gratitude action, got %d", len(groups[action.CategoryGratitude]))
	}
}
