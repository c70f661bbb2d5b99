package services

import (
	"context"
	"log"
	"sync"
	"time"

	"rekindleAPI/internal/assignment"
)

// DeliveryProvider is the seam to the notification/email collaborator.
// The engine only hands over the {action, date} DTO; rendering and
// transport live on the other side of this interface.
type DeliveryProvider interface {
	Deliver(ctx context.Context, userEmail string, dto *assignment.DailyActionResponse) error
}

// NotifyService fans assignment DTOs out to the delivery provider
// through a small worker pool so the nightly batch never blocks on a
// slow downstream.
type NotifyService struct {
	provider DeliveryProvider
	workers  int
	jobQueue chan *deliveryJob
	stopChan chan struct{}
	wg       sync.WaitGroup
}

type deliveryJob struct {
	Email string
	DTO   *assignment.DailyActionResponse
}

func NewNotifyService() *NotifyService {
	s := &NotifyService{
		provider: logProvider{},
		workers:  5,
		jobQueue: make(chan *deliveryJob, 100),
		stopChan: make(chan struct{}),
	}
	s.startWorkers()
	return s
}

// SetProvider swaps in the real delivery collaborator from main.go.
func (s *NotifyService) SetProvider(provider DeliveryProvider) {
	s.provider = provider
}

// Enqueue hands a DTO to the pool. A full queue drops the delivery
// rather than stalling the batch; the assignment row itself is already
// persisted and the dashboard will still show it.
func (s *NotifyService) Enqueue(email string, dto *assignment.DailyActionResponse) {
	select {
	case s.jobQueue <- &deliveryJob{Email: email, DTO: dto}:
	default:
		log.Printf("Notify queue full, dropping delivery for %s", email)
	}
}

func (s *NotifyService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *NotifyService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *NotifyService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobQueue:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.provider.Deliver(ctx, job.Email, job.DTO); err != nil {
				log.Printf("Delivery failed for %s: %v", job.Email, err)
			}
			cancel()
		case <-s.stopChan:
			return
		}
	}
}

// logProvider is the default no-op collaborator.
type logProvider struct{}

func (logProvider) Deliver(_ context.Context, email string, dto *assignment.DailyActionResponse) error {
	log.Printf("Daily action ready for %s: %s on %s", email, dto.Action.Name, dto.Date)
	return nil
}
