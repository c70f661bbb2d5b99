package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"rekindleAPI/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Scheduler owns the batch triggers: the nightly run that assigns
// tomorrow's action to every active user, and the decay sweep that
// penalizes unresolved past assignments. Both go through the same
// service methods the HTTP handlers use, so batch and on-demand
// selection cannot diverge.
type Scheduler struct {
	scheduler    gocron.Scheduler
	assignments  *services.AssignmentService
	profiles     *services.ProfileService
	health       *services.HealthService
	provisioning *services.ProvisionService
	notify       *services.NotifyService
	clock        clockwork.Clock
	timezone     *time.Location
	workers      int
}

type Config struct {
	Timezone string
	Workers  int
}

func New(assignments *services.AssignmentService, profiles *services.ProfileService, health *services.HealthService, provisioning *services.ProvisionService, notify *services.NotifyService, clock clockwork.Clock, cfg Config) (*Scheduler, error) {
	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		tz = time.UTC
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz), gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler:    s,
		assignments:  assignments,
		profiles:     profiles,
		health:       health,
		provisioning: provisioning,
		notify:       notify,
		clock:        clock,
		timezone:     tz,
		workers:      workers,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	// Tomorrow's assignments at 03:30
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(s.runAssignmentBatch),
		gocron.WithName("assignment-batch"),
	)
	if err != nil {
		return err
	}

	// Decay sweep at 04:15, after the batch has settled
	_, err = s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(4, 15, 0))),
		gocron.NewTask(s.runDecaySweep),
		gocron.WithName("decay-sweep"),
	)
	if err != nil {
		return err
	}

	// Lapsed-subscription demotion at 04:45
	_, err = s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(4, 45, 0))),
		gocron.NewTask(s.runTierExpirySweep),
		gocron.WithName("tier-expiry-sweep"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("Scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// runAssignmentBatch assigns tomorrow's action to every active user
// with bounded parallelism. One user's failure never aborts the run.
func (s *Scheduler) runAssignmentBatch() {
	log.Println("Running nightly assignment batch...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	userIDs, err := s.profiles.ListActiveUserIDs(ctx)
	if err != nil {
		log.Printf("Assignment batch aborted, could not list users: %v", err)
		return
	}

	tomorrow := s.clock.Now().In(s.timezone).AddDate(0, 0, 1)

	jobs := make(chan uuid.UUID)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				s.assignUser(ctx, userID, tomorrow)
			}
		}()
	}
	for _, id := range userIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	log.Printf("Assignment batch finished for %d users", len(userIDs))
}

func (s *Scheduler) assignUser(ctx context.Context, userID uuid.UUID, date time.Time) {
	p, err := s.profiles.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Batch: failed to load user %s: %v", userID, err)
		services.CountBatchUserError()
		return
	}

	resp, err := s.assignments.GetOrCreate(ctx, p, date)
	if err != nil {
		if errors.Is(err, services.ErrNoActionAvailable) {
			log.Printf("Batch: no action available for user %s", userID)
			return
		}
		log.Printf("Batch: assignment failed for user %s: %v", userID, err)
		services.CountBatchUserError()
		return
	}

	s.notify.Enqueue(p.Email, resp)
}

func (s *Scheduler) runDecaySweep() {
	log.Println("Running decay sweep...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	inserted, err := s.health.RunDecaySweep(ctx)
	if err != nil {
		log.Printf("Decay sweep failed: %v", err)
		return
	}
	log.Printf("Decay sweep finished, %d entries added", inserted)
}

func (s *Scheduler) runTierExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	demoted, err := s.provisioning.TierExpirySweep(ctx)
	if err != nil {
		log.Printf("Tier expiry sweep failed: %v", err)
		return
	}
	if demoted > 0 {
		log.Printf("Tier expiry sweep demoted %d users", demoted)
	}
}
