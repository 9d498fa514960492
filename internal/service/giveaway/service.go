package giveaway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/open-builders/gws-backend/internal/common/validation"
	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	du "github.com/open-builders/gws-backend/internal/domain/user"
	"github.com/open-builders/gws-backend/internal/events"
	"github.com/open-builders/gws-backend/internal/lock"
	"github.com/open-builders/gws-backend/internal/service/draw"
	"github.com/open-builders/gws-backend/internal/service/eligibility"
)

const (
	TriggerManual    = "manual"
	TriggerScheduler = "scheduler"
	TriggerAdmin     = "admin"

	maxSaveAttempts = 3
)

// Service is the lifecycle coordinator: the only writer of giveaway records.
// Every mutation runs under the per-id lock and is persisted with a version check.
type Service struct {
	repo      dg.Repository
	users     du.Repository
	checker   eligibility.Checker
	drawer    draw.Drawer
	locker    lock.Locker
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sets the completion event sink. Defaults to a log-only publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(repo dg.Repository, users du.Repository, checker eligibility.Checker, drawer draw.Drawer, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		users:     users,
		checker:   checker,
		drawer:    drawer,
		locker:    locker,
		publisher: events.LogPublisher{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInput carries the admin supplied fields of a new giveaway.
type CreateInput struct {
	Title   string
	EndTime time.Time
}

// DrawResult is the outcome of a completed draw. Winner is nil when nobody joined.
type DrawResult struct {
	Winner   *string      `json:"winner"`
	Giveaway *dg.Giveaway `json:"gws"`
}

// Create validates and persists a new active giveaway.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dg.Giveaway, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, fmt.Errorf("%w: %v", dg.ErrInvalidInput, err)
	}
	title := strings.TrimSpace(in.Title)
	if in.EndTime.IsZero() {
		return nil, fmt.Errorf("%w: missing end time", dg.ErrInvalidInput)
	}

	now := s.now().UTC()
	g := &dg.Giveaway{
		ID:           uuid.NewString(),
		Title:        title,
		EndTime:      in.EndTime.UTC(),
		State:        dg.StateActive,
		Participants: []string{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("%w: %w", dg.ErrPersistence, err)
	}
	log.Info().Str("giveaway_id", g.ID).Time("end_time", g.EndTime).Msg("giveaway created")
	return g, nil
}

// Get returns a single giveaway.
func (s *Service) Get(ctx context.Context, id string) (*dg.Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classifyLoad(err)
	}
	return g, nil
}

// List returns all giveaways, newest first.
func (s *Service) List(ctx context.Context) ([]dg.Giveaway, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dg.ErrPersistence, err)
	}
	return list, nil
}

// ListDue returns active giveaways whose end time is at or before now.
func (s *Service) ListDue(ctx context.Context, now time.Time) ([]dg.Giveaway, error) {
	return s.repo.ListDue(ctx, now)
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error { return s.repo.Ping(ctx) }

// Join adds userID to the giveaway after checking eligibility. Eligibility is
// verified inside the critical section so a draw cannot complete in between.
func (s *Service) Join(ctx context.Context, giveawayID, userID string) (*dg.Giveaway, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, du.ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load profile: %w", dg.ErrPersistence, err)
	}
	handle := strings.TrimSpace(u.ExternalHandle)
	if handle == "" {
		return nil, du.ErrHandleRequired
	}

	release, err := s.locker.Acquire(ctx, lockKey(giveawayID))
	if err != nil {
		return nil, fmt.Errorf("join %s: %w", giveawayID, err)
	}
	defer release()

	eligible := false
	g, err := s.mutate(ctx, giveawayID, func(g *dg.Giveaway) error {
		if g.State != dg.StateActive {
			return dg.ErrNotActive
		}
		if g.HasParticipant(userID) {
			return dg.ErrAlreadyJoined
		}
		if !eligible {
			ok, err := s.checker.CheckEligibility(ctx, handle)
			if err != nil {
				return fmt.Errorf("%w: %w", dg.ErrVerificationUnavailable, err)
			}
			if !ok {
				return dg.ErrIneligible
			}
			eligible = true
		}
		g.AddParticipant(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("giveaway_id", giveawayID).
		Str("user_id", userID).
		Int("participants", g.TotalParticipants).
		Msg("participant joined")
	return g, nil
}

// ManualDraw completes the giveaway on an administrator's request.
func (s *Service) ManualDraw(ctx context.Context, giveawayID string) (*DrawResult, error) {
	return s.draw(ctx, giveawayID, TriggerManual)
}

// AutoDraw completes the giveaway on behalf of the scheduler.
func (s *Service) AutoDraw(ctx context.Context, giveawayID string) (*DrawResult, error) {
	return s.draw(ctx, giveawayID, TriggerScheduler)
}

func (s *Service) draw(ctx context.Context, giveawayID, trigger string) (*DrawResult, error) {
	release, err := s.locker.Acquire(ctx, lockKey(giveawayID))
	if err != nil {
		return nil, fmt.Errorf("draw %s: %w", giveawayID, err)
	}
	defer release()

	g, err := s.mutate(ctx, giveawayID, func(g *dg.Giveaway) error {
		if g.State != dg.StateActive {
			return dg.ErrNotActive
		}
		var winner *string
		if len(g.Participants) > 0 {
			w, err := s.drawer.SelectWinner(g.Participants)
			if err != nil {
				return err
			}
			winner = &w
		}
		g.Complete(winner, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := log.Info().
		Str("giveaway_id", g.ID).
		Str("trigger", trigger).
		Int("participants", len(g.Participants))
	if g.Winner != nil {
		ev = ev.Str("winner_id", *g.Winner)
	}
	ev.Msg("giveaway completed")

	s.publishCompleted(ctx, g, trigger)
	return &DrawResult{Winner: g.Winner, Giveaway: g}, nil
}

// Update applies an administrative correction. A complete giveaway cannot be reopened
// and the winner must be one of the participants.
func (s *Service) Update(ctx context.Context, giveawayID string, p dg.Patch) (*dg.Giveaway, error) {
	if p.Winner == nil && p.State == nil {
		return nil, fmt.Errorf("%w: nothing to update", dg.ErrInvalidPatch)
	}
	if p.State != nil && !p.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", dg.ErrInvalidPatch, *p.State)
	}

	release, err := s.locker.Acquire(ctx, lockKey(giveawayID))
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", giveawayID, err)
	}
	defer release()

	completed := false
	g, err := s.mutate(ctx, giveawayID, func(g *dg.Giveaway) error {
		completed = false
		target := g.State
		if p.State != nil {
			target = *p.State
		}
		if g.State == dg.StateComplete && target == dg.StateActive {
			return fmt.Errorf("%w: a complete giveaway cannot be reopened", dg.ErrInvalidPatch)
		}
		winner := g.Winner
		if p.Winner != nil {
			if !g.HasParticipant(*p.Winner) {
				return fmt.Errorf("%w: winner %s is not a participant", dg.ErrInvalidPatch, *p.Winner)
			}
			w := *p.Winner
			winner = &w
		}
		switch {
		case target == dg.StateActive && winner != nil:
			return fmt.Errorf("%w: an active giveaway cannot have a winner", dg.ErrInvalidPatch)
		case target == dg.StateComplete && g.State == dg.StateActive:
			g.Complete(winner, s.now())
			completed = true
		default:
			g.Winner = winner
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%w: %w", dg.ErrInvalidPatch, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("giveaway_id", g.ID).Str("state", string(g.State)).Msg("giveaway updated")
	if completed {
		s.publishCompleted(ctx, g, TriggerAdmin)
	}
	return g, nil
}

// mutate loads the giveaway, applies fn, validates the result and saves it with a
// version check. A version conflict reloads and reapplies fn, up to maxSaveAttempts times.
// The caller must hold the per-id lock.
func (s *Service) mutate(ctx context.Context, id string, fn func(g *dg.Giveaway) error) (*dg.Giveaway, error) {
	for attempt := 1; ; attempt++ {
		g, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, classifyLoad(err)
		}
		expected := g.Version
		if err := fn(g); err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		g.UpdatedAt = s.now().UTC()

		err = s.repo.Save(ctx, g, expected)
		switch {
		case err == nil:
			return g, nil
		case errors.Is(err, dg.ErrNotFound):
			return nil, err
		case errors.Is(err, dg.ErrVersionConflict) && attempt < maxSaveAttempts:
			log.Debug().Str("giveaway_id", id).Int("attempt", attempt).Msg("version conflict, reloading")
			continue
		default:
			return nil, fmt.Errorf("%w: %w", dg.ErrPersistence, err)
		}
	}
}

func (s *Service) publishCompleted(ctx context.Context, g *dg.Giveaway, trigger string) {
	e := events.Completed{
		GiveawayID:   g.ID,
		Participants: len(g.Participants),
		Trigger:      trigger,
		At:           s.now().UTC(),
	}
	if g.Winner != nil {
		e.Winner = *g.Winner
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishCompleted(pubCtx, e); err != nil {
		log.Warn().Err(err).Str("giveaway_id", g.ID).Msg("failed to publish completion event")
	}
}

func classifyLoad(err error) error {
	if errors.Is(err, dg.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", dg.ErrPersistence, err)
}

func lockKey(giveawayID string) string { return "giveaway:" + giveawayID }
