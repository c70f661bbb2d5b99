package scheduler

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestNewAppliesDefaults(t *testing.T) {
	clock := clockwork.NewFakeClock()

	s, err := New(nil, nil, nil, nil, nil, clock, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.workers != 8 {
		t.Errorf("expected 8 default workers, got %d", s.workers)
	}
	if s.timezone != time.UTC {
		t.Errorf("expected UTC fallback timezone, got %v", s.timezone)
	}
}

func TestNewHonorsConfig(t *testing.T) {
	clock := clockwork.NewFakeClock()

	s, err := New(nil, nil, nil, nil, nil, clock, Config{Timezone: "Europe/Berlin", Workers: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.workers != 3 {
		t.Errorf("expected 3 workers, got %d", s.workers)
	}
	if s.timezone.String() != "Europe/Berlin" {
		t.Errorf("expected Europe/Berlin, got %v", s.timezone)
	}
}

func TestNewFallsBackOnBadTimezone(t *testing.T) {
	clock := clockwork.NewFakeClock()

	s, err := New(nil, nil, nil, nil, nil, clock, Config{Timezone: "Not/AZone"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.timezone != time.UTC {
		t.Errorf("expected UTC fallback, got %v", s.timezone)
	}
}
