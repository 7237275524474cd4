package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const DefaultDelay = 600 * time.Second

// FireFunc is called when a reminder's delay has elapsed. The callee is
// responsible for re-checking that the session it belongs to is still open.
type FireFunc func(ctx context.Context, userID int64, generation uint64)

type armed struct {
	jobID      uuid.UUID
	generation uint64
}

// Reminders keeps at most one pending reminder per user.
type Reminders struct {
	s     gocron.Scheduler
	clock clockwork.Clock
	delay time.Duration
	fire  FireFunc
	log   *slog.Logger

	mu    sync.Mutex
	armed map[int64]armed
}

type Option func(*Reminders)

func WithClock(c clockwork.Clock) Option {
	return func(r *Reminders) { r.clock = c }
}

func WithDelay(d time.Duration) Option {
	return func(r *Reminders) {
		if d > 0 {
			r.delay = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Reminders) { r.log = l }
}

// Start creates the underlying gocron scheduler and starts it.
func Start(fire FireFunc, opts ...Option) (*Reminders, error) {
	r := &Reminders{
		clock: clockwork.NewRealClock(),
		delay: DefaultDelay,
		fire:  fire,
		log:   slog.Default(),
		armed: make(map[int64]armed),
	}
	for _, o := range opts {
		o(r)
	}

	s, err := gocron.NewScheduler(
		gocron.WithClock(r.clock),
		gocron.WithLogger(r.log),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	r.s = s

	s.Start()
	return r, nil
}

// Arm schedules a reminder for userID after the configured delay, replacing
// any reminder already armed for that user.
func (r *Reminders) Arm(userID int64, generation uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disarmLocked(userID)

	at := r.clock.Now().Add(r.delay)
	job, err := r.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(r.run, userID, generation),
		gocron.WithName(fmt.Sprintf("reminder-%d", userID)),
		gocron.WithLimitedRuns(1),
	)
	if err != nil {
		return fmt.Errorf("arming reminder for %d: %w", userID, err)
	}

	r.armed[userID] = armed{jobID: job.ID(), generation: generation}
	r.log.Debug("reminder armed", "user_id", userID, "generation", generation, "at", at)
	return nil
}

// Disarm cancels the user's reminder. Safe to call when none is armed.
func (r *Reminders) Disarm(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked(userID)
}

func (r *Reminders) disarmLocked(userID int64) {
	a, ok := r.armed[userID]
	if !ok {
		return
	}
	delete(r.armed, userID)

	// the job may already be running or gone; the fire-time check covers it
	if err := r.s.RemoveJob(a.jobID); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		r.log.Warn("removing reminder job", "user_id", userID, "error", err)
	}
	r.log.Debug("reminder disarmed", "user_id", userID, "generation", a.generation)
}

// Armed reports whether a reminder is pending for userID.
func (r *Reminders) Armed(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.armed[userID]
	return ok
}

func (r *Reminders) run(userID int64, generation uint64) {
	r.mu.Lock()
	a, ok := r.armed[userID]
	current := ok && a.generation == generation
	r.mu.Unlock()

	if !current {
		r.log.Debug("stale reminder skipped", "user_id", userID, "generation", generation)
		return
	}

	r.fire(context.Background(), userID, generation)

	r.mu.Lock()
	if a, ok := r.armed[userID]; ok && a.generation == generation {
		delete(r.armed, userID)
	}
	r.mu.Unlock()
}

// Shutdown stops the scheduler; pending reminders are dropped.
func (r *Reminders) Shutdown() error {
	return r.s.Shutdown()
}
