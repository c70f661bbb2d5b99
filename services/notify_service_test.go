package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"rekindleAPI/internal/action"
	"rekindleAPI/internal/assignment"
)

type recordingProvider struct {
	mu        sync.Mutex
	delivered []string
	done      chan struct{}
	want      int
}

func (p *recordingProvider) Deliver(_ context.Context, email string, _ *assignment.DailyActionResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivered = append(p.delivered, email)
	if len(p.delivered) == p.want {
		close(p.done)
	}
	return nil
}

func TestNotifyServiceDeliversQueuedJobs(t *testing.T) {
	provider := &recordingProvider{done: make(chan struct{}), want: 3}

	svc := NewNotifyService()
	svc.SetProvider(provider)
	defer svc.Stop()

	dto := &assignment.DailyActionResponse{
		Action: action.Action{Name: "Gratitude note"},
		Date:   "2026-03-05",
	}
	svc.Enqueue("a@example.com", dto)
	svc.Enqueue("b@example.com", dto)
	svc.Enqueue("c@example.com", dto)

	select {
	case <-provider.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.delivered) != 3 {
		t.Errorf("expected 3 deliveries, got %d", len(provider.delivered))
	}
}

func TestNotifyServiceStopReleasesWorkers(t *testing.T) {
	svc := NewNotifyService()

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
