package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of periodic work.
type Task func(ctx context.Context) error

type entry struct {
	name  string
	rate  Rate
	every int64
	next  int64
	fn    Task
}

// Scheduler advances a tick clock at a fixed period and runs registered tasks
// whose rate has elapsed. Tasks are registered explicitly with their rate.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []*entry
	ticks   atomic.Int64
	period  time.Duration
	logger  *slog.Logger
	onError func(name string, err error)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPeriod overrides the tick period. Cooldowns keep counting ticks, so a
// shorter period speeds the whole engine up.
func WithPeriod(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.period = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHook is called after a task returns an error, in addition to logging.
func WithErrorHook(fn func(name string, err error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// New creates a scheduler at TickPeriod.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		period: TickPeriod,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ticks implements Clock.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// SetPeriod changes the tick period of a scheduler; Run picks it up on the next tick.
func (s *Scheduler) SetPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.period = d
	s.mu.Unlock()
}

// Register adds a task that runs every rate. Names are unique.
func (s *Scheduler) Register(name string, rate Rate, fn Task) error {
	if name == "" {
		return errors.New("task name is required")
	}
	if fn == nil {
		return fmt.Errorf("task %q: nil func", name)
	}
	if rate < 0 {
		return fmt.Errorf("task %q: negative rate %d", name, rate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.name == name {
			return fmt.Errorf("task %q already registered", name)
		}
	}
	every := rate.Ticks()
	s.tasks = append(s.tasks, &entry{
		name:  name,
		rate:  rate,
		every: every,
		next:  s.ticks.Load() + 1,
		fn:    fn,
	})
	s.logger.Debug("task registered", "task", name, "rate", rate.String())
	return nil
}

// Unregister removes a task. Unknown names are ignored.
func (s *Scheduler) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.name == name {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Tasks lists registered task names in registration order.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.name)
	}
	return out
}

// Step advances the clock by one tick and runs every due task synchronously.
// A failing task is logged and does not stop the others.
func (s *Scheduler) Step(ctx context.Context) {
	now := s.ticks.Add(1)

	s.mu.Lock()
	due := make([]*entry, 0, len(s.tasks))
	for _, t := range s.tasks {
		if now >= t.next {
			t.next = now + t.every
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return
		}
		if err := t.fn(ctx); err != nil {
			s.logger.Warn("task failed", "task", t.name, "tick", now, "err", err)
			if s.onError != nil {
				s.onError(t.name, err)
			}
		}
	}
}

// Run drives Step at the configured period until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	period := s.Period()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			s.Step(ctx)
			if took := time.Since(start); took > period {
				s.logger.Debug("tick over budget", "took", took, "budget", period)
			}
			if p := s.Period(); p != period {
				period = p
				ticker.Reset(period)
			}
		}
	}
}
