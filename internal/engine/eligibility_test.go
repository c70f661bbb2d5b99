package engine

import (
	"testing"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/profile"

	"github.com/google/uuid"
)

func makeAction(name, description string, cat action.Category) action.Action {
	return action.Action{
		ID:          uuid.New(),
		Category:    cat,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
}

func ids(actions []action.Action) map[uuid.UUID]bool {
	m := make(map[uuid.UUID]bool, len(actions))
	for _, a := range actions {
		m[a.ID] = true
	}
	return m
}

func TestFilterCandidatesHouseholdKeywords(t *testing.T) {
	bedtime := makeAction("Bedtime story swap", "Take over bedtime tonight so your partner can rest", action.CategoryPartnership)
	familyPicnic := makeAction("Family picnic", "Plan a picnic with the whole family", action.CategoryQualityTime)
	dateNight := makeAction("Surprise date night", "Book a table somewhere new", action.CategoryRomance)
	catalog := []action.Action{bedtime, familyPicnic, dateNight}

	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	// No kids: everything keyword-flagged is out.
	noKids := &profile.UserProfile{HasKids: false}
	got, fellBack := FilterCandidates(FilterInput{Catalog: catalog, Date: date, Profile: noKids})
	if fellBack {
		t.Fatal("did not expect fallback")
	}
	if len(got) != 1 || got[0].ID != dateNight.ID {
		t.Errorf("expected only the date night action, got %d candidates", len(got))
	}

	// Kids elsewhere: family actions are fine, daily-presence ones are not.
	kidsElsewhere := &profile.UserProfile{HasKids: true, KidsLiveWithYou: false}
	got, _ = FilterCandidates(FilterInput{Catalog: catalog, Date: date, Profile: kidsElsewhere})
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	for _, a := range got {
		if a.ID == bedtime.ID {
			t.Error("bedtime action should be excluded when kids live elsewhere")
		}
	}

	// Kids in the household: nothing is filtered.
	kidsAtHome := &profile.UserProfile{HasKids: true, KidsLiveWithYou: true}
	got, _ = FilterCandidates(FilterInput{Catalog: catalog, Date: date, Profile: kidsAtHome})
	if len(got) != 3 {
		t.Errorf("expected full catalog, got %d candidates", len(got))
	}
}

func TestFilterCandidatesRecencyAndHidden(t *testing.T) {
	a := makeAction("Gratitude note", "Leave a note on the mirror", action.CategoryGratitude)
	b := makeAction("Tech-free dinner", "Phones in a drawer for one meal", action.CategoryQualityTime)
	c := makeAction("Walk and talk", "A slow evening loop around the block", action.CategoryReconnection)
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	got, fellBack := FilterCandidates(FilterInput{
		Catalog:   []action.Action{a, b, c},
		Date:      date,
		Profile:   &profile.UserProfile{},
		RecentIDs: map[uuid.UUID]bool{a.ID: true},
		HiddenIDs: map[uuid.UUID]bool{b.ID: true},
	})
	if fellBack {
		t.Fatal("did not expect fallback")
	}
	if len(got) != 1 || got[0].ID != c.ID {
		t.Errorf("expected only the unseen, unhidden action, got %d candidates", len(got))
	}
}

func TestFilterCandidatesCountryAndSeason(t *testing.T) {
	us := "US"
	de := "DE"
	feb := &action.SeasonalWindow{StartMonth: 2, StartDay: 1, EndMonth: 2, EndDay: 28}

	usOnly := makeAction("Thanksgiving gratitude round", "Go around the table", action.CategoryGratitude)
	usOnly.CountryCode = &us
	valentines := makeAction("Handwritten valentine", "Old school, on paper", action.CategoryRomance)
	valentines.Season = feb
	anywhere := makeAction("Morning coffee in bed", "Beat the alarm by ten minutes", action.CategoryRomance)

	catalog := []action.Action{usOnly, valentines, anywhere}
	p := &profile.UserProfile{CountryCode: &de}

	summer := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	got, _ := FilterCandidates(FilterInput{Catalog: catalog, Date: summer, Profile: p})
	if len(got) != 1 || got[0].ID != anywhere.ID {
		t.Errorf("expected only the unrestricted action in July for a DE user, got %d", len(got))
	}

	febDate := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	got, _ = FilterCandidates(FilterInput{Catalog: catalog, Date: febDate, Profile: p})
	if len(got) != 2 {
		t.Errorf("expected the seasonal action to qualify on Feb 14, got %d candidates", len(got))
	}

	// No country on file keeps country-restricted actions out entirely.
	got, _ = FilterCandidates(FilterInput{Catalog: catalog, Date: febDate, Profile: &profile.UserProfile{}})
	for _, a := range got {
		if a.ID == usOnly.ID {
			t.Error("country-restricted action leaked to a user with no country")
		}
	}
}

func TestFilterCandidatesFallback(t *testing.T) {
	a := makeAction("Gratitude note", "Leave a note on the mirror", action.CategoryGratitude)
	b := makeAction("Tech-free dinner", "Phones in a drawer for one meal", action.CategoryQualityTime)
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	// Everything is recent: fall back to the catalog minus hides.
	got, fellBack := FilterCandidates(FilterInput{
		Catalog:   []action.Action{a, b},
		Date:      date,
		Profile:   &profile.UserProfile{},
		RecentIDs: ids([]action.Action{a, b}),
		HiddenIDs: map[uuid.UUID]bool{b.ID: true},
	})
	if !fellBack {
		t.Fatal("expected fallback")
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("fallback must still honor hides, got %d candidates", len(got))
	}

	// Hiding the whole catalog leaves nothing, even degraded.
	got, fellBack = FilterCandidates(FilterInput{
		Catalog:   []action.Action{a, b},
		Date:      date,
		Profile:   &profile.UserProfile{},
		HiddenIDs: ids([]action.Action{a, b}),
	})
	if !fellBack || len(got) != 0 {
		t.Errorf("expected empty fallback result, got %d candidates", len(got))
	}
}

func TestFilterCandidatesDedupes(t *testing.T) {
	a := makeAction("Gratitude note", "Leave a note on the mirror", action.CategoryGratitude)
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	got, _ := FilterCandidates(FilterInput{
		Catalog: []action.Action{a, a, a},
		Date:    date,
		Profile: &profile.UserProfile{},
	})
	if len(got) != 1 {
		t.Errorf("expected duplicates collapsed to 1, got %d", len(got))
	}
}
