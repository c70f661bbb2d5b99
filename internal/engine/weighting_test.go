package engine

import (
	"testing"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestCategoryWeightsSurveyBoost(t *testing.T) {
	categories := []action.Category{
		action.CategoryRomance,
		action.CategoryGratitude,
		action.CategoryQualityTime,
	}
	survey := []profile.CategoryProfile{
		{Category: action.CategoryRomance, SelfRating: intPtr(2), WantsImprovement: boolPtr(true)},
		{Category: action.CategoryGratitude, SelfRating: intPtr(5), WantsImprovement: boolPtr(true)},
		{Category: action.CategoryQualityTime, SelfRating: intPtr(2), WantsImprovement: boolPtr(false)},
	}

	weights := CategoryWeights(categories, survey, nil)

	if weights[action.CategoryRomance] != baseWeight+surveyBoost {
		t.Errorf("romance should carry the survey boost, got %v", weights[action.CategoryRomance])
	}
	// High rating and missing improvement flag each disqualify the boost.
	if weights[action.CategoryGratitude] != baseWeight {
		t.Errorf("gratitude should not be boosted, got %v", weights[action.CategoryGratitude])
	}
	if weights[action.CategoryQualityTime] != baseWeight {
		t.Errorf("quality_time should not be boosted, got %v", weights[action.CategoryQualityTime])
	}
}

func TestCategoryWeightsBoostsEverySurveyHit(t *testing.T) {
	categories := []action.Category{action.CategoryRomance, action.CategoryIntimacy}
	survey := []profile.CategoryProfile{
		{Category: action.CategoryRomance, SelfRating: intPtr(3), WantsImprovement: boolPtr(true)},
		{Category: action.CategoryIntimacy, SelfRating: intPtr(1), WantsImprovement: boolPtr(true)},
	}

	weights := CategoryWeights(categories, survey, nil)
	for _, c := range categories {
		if weights[c] != baseWeight+surveyBoost {
			t.Errorf("%s should carry the survey boost, got %v", c, weights[c])
		}
	}
}

func TestCategoryWeightsLegacyFallback(t *testing.T) {
	categories := []action.Category{
		action.CategoryCommunication,
		action.CategoryRomance,
		action.CategoryGratitude,
	}
	// No survey signal qualifies, so the lowest legacy score wins.
	survey := []profile.CategoryProfile{
		{Category: action.CategoryCommunication, LegacyScore: intPtr(70)},
		{Category: action.CategoryRomance, LegacyScore: intPtr(30)},
	}

	weights := CategoryWeights(categories, survey, nil)

	if weights[action.CategoryRomance] != baseWeight+surveyBoost {
		t.Errorf("lowest legacy category should be boosted, got %v", weights[action.CategoryRomance])
	}
	// Gratitude has no score and defaults to 50, above romance's 30.
	if weights[action.CategoryGratitude] != baseWeight {
		t.Errorf("defaulted legacy category should not be boosted, got %v", weights[action.CategoryGratitude])
	}
}

func TestCategoryWeightsLegacyTieBreak(t *testing.T) {
	categories := []action.Category{action.CategoryRomance, action.CategoryCommunication}
	survey := []profile.CategoryProfile{
		{Category: action.CategoryRomance, LegacyScore: intPtr(40)},
		{Category: action.CategoryCommunication, LegacyScore: intPtr(40)},
	}

	weights := CategoryWeights(categories, survey, nil)
	// Ties resolve by category name, so "communication" beats "romance".
	if weights[action.CategoryCommunication] != baseWeight+surveyBoost {
		t.Errorf("tie should break to the first category name, got %v", weights[action.CategoryCommunication])
	}
	if weights[action.CategoryRomance] != baseWeight {
		t.Errorf("romance should lose the tie, got %v", weights[action.CategoryRomance])
	}
}

func TestCategoryWeightsAddsPreferenceWeight(t *testing.T) {
	categories := []action.Category{action.CategoryRomance, action.CategoryGratitude}
	survey := []profile.CategoryProfile{
		{Category: action.CategoryRomance, SelfRating: intPtr(2), WantsImprovement: boolPtr(true)},
	}
	prefs := map[action.Category]float64{
		action.CategoryRomance:   1.5,
		action.CategoryGratitude: 0.5,
	}

	weights := CategoryWeights(categories, survey, prefs)
	if weights[action.CategoryRomance] != baseWeight+surveyBoost+1.5 {
		t.Errorf("boost and preference should stack, got %v", weights[action.CategoryRomance])
	}
	if weights[action.CategoryGratitude] != baseWeight+0.5 {
		t.Errorf("preference should apply without boost, got %v", weights[action.CategoryGratitude])
	}
}

func TestCategoryWeightsIgnoresAbsentCategories(t *testing.T) {
	categories := []action.Category{action.CategoryGratitude}
	survey := []profile.CategoryProfile{
		{Category: action.CategoryRomance, SelfRating: intPtr(1), WantsImprovement: boolPtr(true)},
	}

	weights := CategoryWeights(categories, survey, nil)
	if _, ok := weights[action.CategoryRomance]; ok {
		t.Error("weights must only cover categories present in the candidate set")
	}
	// Romance's survey hit is off the table, so the legacy fallback fires
	// for the one category that is present.
	if weights[action.CategoryGratitude] != baseWeight+surveyBoost {
		t.Errorf("expected legacy fallback boost, got %v", weights[action.CategoryGratitude])
	}
}
