package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	"github.com/open-builders/gws-backend/internal/service/giveaway"
)

// Coordinator is the part of the lifecycle coordinator the scheduler drives.
type Coordinator interface {
	ListDue(ctx context.Context, now time.Time) ([]dg.Giveaway, error)
	AutoDraw(ctx context.Context, giveawayID string) (*giveaway.DrawResult, error)
}

type SchedulerConfig struct {
	Interval     time.Duration
	Concurrency  int
	DrawTimeout  time.Duration
	HealthWindow int
}

// TickReport summarises one sweep.
type TickReport struct {
	At           time.Time
	Skipped      bool
	Due          int
	Drawn        int
	AlreadyDrawn int
	Failed       int
	Err          error
}

// HealthReport is exposed by the readiness probe.
type HealthReport struct {
	Healthy        bool       `json:"healthy"`
	Running        bool       `json:"running"`
	LastTick       *time.Time `json:"lastTick,omitempty"`
	RecentTicks    int        `json:"recentTicks"`
	RecentFailures int        `json:"recentFailures"`
	Stale          bool       `json:"stale,omitempty"`
}

// Scheduler periodically completes giveaways whose end time has passed.
type Scheduler struct {
	coord Coordinator
	cfg   SchedulerConfig
	now   func() time.Time

	running atomic.Bool

	mu        sync.Mutex
	started   bool
	startedAt time.Time
	lastTick  time.Time
	outcomes  []bool // true when the tick failed to list due giveaways
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewScheduler(coord Coordinator, cfg SchedulerConfig, now func() time.Time) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.DrawTimeout <= 0 {
		cfg.DrawTimeout = 30 * time.Second
	}
	if cfg.HealthWindow < 1 {
		cfg.HealthWindow = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{coord: coord, cfg: cfg, now: now}
}

// Start runs a sweep immediately and then every interval until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	s.startedAt = s.now()
	s.mu.Unlock()

	log.Info().
		Dur("interval", s.cfg.Interval).
		Int("concurrency", s.cfg.Concurrency).
		Msg("Starting draw scheduler")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop prevents new sweeps and waits for the in-flight one to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	log.Info().Msg("Stopping draw scheduler")
	cancel()
	s.wg.Wait()
	log.Info().Msg("Draw scheduler stopped")
}

// RunOnce performs one sweep. A sweep that starts while another is running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) TickReport {
	report := TickReport{At: s.now()}
	if !s.running.CompareAndSwap(false, true) {
		log.Debug().Msg("previous sweep still running, skipping tick")
		report.Skipped = true
		return report
	}
	defer s.running.Store(false)

	listCtx, cancelList := context.WithTimeout(ctx, s.cfg.DrawTimeout)
	due, err := s.coord.ListDue(listCtx, report.At)
	cancelList()
	if err != nil {
		log.Error().Err(err).Msg("failed to list due giveaways")
		report.Err = err
		s.record(report.At, true)
		return report
	}
	report.Due = len(due)

	var drawn, already, failed atomic.Int32
	var eg errgroup.Group
	eg.SetLimit(s.cfg.Concurrency)
	for _, g := range due {
		id := g.ID
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			// A started draw runs to completion even if the scheduler is stopping.
			drawCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.DrawTimeout)
			defer cancel()

			res, err := s.coord.AutoDraw(drawCtx, id)
			switch {
			case err == nil:
				drawn.Add(1)
				ev := log.Debug().Str("giveaway_id", id)
				if res.Winner != nil {
					ev = ev.Str("winner_id", *res.Winner)
				}
				ev.Msg("scheduled draw done")
			case errors.Is(err, dg.ErrNotActive):
				already.Add(1)
				log.Debug().Str("giveaway_id", id).Msg("giveaway already drawn")
			default:
				failed.Add(1)
				log.Error().Err(err).Str("giveaway_id", id).Msg("scheduled draw failed")
			}
			return nil
		})
	}
	_ = eg.Wait()

	report.Drawn = int(drawn.Load())
	report.AlreadyDrawn = int(already.Load())
	report.Failed = int(failed.Load())
	s.record(report.At, false)

	if report.Due > 0 {
		log.Info().
			Int("due", report.Due).
			Int("drawn", report.Drawn).
			Int("already_drawn", report.AlreadyDrawn).
			Int("failed", report.Failed).
			Msg("scheduler sweep finished")
	}
	return report
}

func (s *Scheduler) record(at time.Time, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = at
	s.outcomes = append(s.outcomes, failed)
	if len(s.outcomes) > s.cfg.HealthWindow {
		s.outcomes = s.outcomes[len(s.outcomes)-s.cfg.HealthWindow:]
	}
}

// Health is healthy when none of the recent ticks failed and the scheduler has
// either ticked or started less than two intervals ago. A started scheduler whose
// last finished tick is older than two intervals is stale, which covers a sweep
// that never returns.
func (s *Scheduler) Health() HealthReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := HealthReport{Running: s.running.Load(), RecentTicks: len(s.outcomes)}
	for _, failed := range s.outcomes {
		if failed {
			r.RecentFailures++
		}
	}
	if !s.lastTick.IsZero() {
		t := s.lastTick
		r.LastTick = &t
	}
	now := s.now()
	warmingUp := s.started && now.Sub(s.startedAt) < 2*s.cfg.Interval
	r.Stale = s.started && !s.lastTick.IsZero() && now.Sub(s.lastTick) > 2*s.cfg.Interval
	r.Healthy = r.RecentFailures == 0 && !r.Stale && (len(s.outcomes) > 0 || warmingUp)
	return r
}
