package badge

import "testing"

func TestNewProgress(t *testing.T) {
	p := NewProgress(3, 10)
	if p.Current != 3 || p.Target != 10 || p.Percentage != 30 {
		t.Errorf("unexpected progress: %+v", p)
	}

	// Over-qualified but unearned caps at 100.
	if p := NewProgress(15, 10); p.Percentage != 100 {
		t.Errorf("expected clamped percentage, got %v", p.Percentage)
	}

	// A zero target must not divide by zero.
	if p := NewProgress(5, 0); p.Target != 1 || p.Percentage != 100 {
		t.Errorf("zero target should clamp, got %+v", p)
	}
}
