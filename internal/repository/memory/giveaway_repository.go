package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
)

// GiveawayRepository keeps giveaways in process memory. Stored values are cloned on the way in and out.
type GiveawayRepository struct {
	mu    sync.RWMutex
	items map[string]*dg.Giveaway
}

func NewGiveawayRepository() *GiveawayRepository {
	return &GiveawayRepository{items: make(map[string]*dg.Giveaway)}
}

func (r *GiveawayRepository) Create(_ context.Context, g *dg.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[g.ID]; exists {
		return dg.ErrVersionConflict
	}
	r.items[g.ID] = g.Clone()
	return nil
}

func (r *GiveawayRepository) GetByID(_ context.Context, id string) (*dg.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[id]
	if !ok {
		return nil, dg.ErrNotFound
	}
	return g.Clone(), nil
}

func (r *GiveawayRepository) ListDue(_ context.Context, now time.Time) ([]dg.Giveaway, error) {
	r.mu.RLock()
	out := []dg.Giveaway{}
	for _, g := range r.items {
		if g.IsDue(now) {
			out = append(out, *g.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out, nil
}

func (r *GiveawayRepository) ListAll(_ context.Context) ([]dg.Giveaway, error) {
	r.mu.RLock()
	out := make([]dg.Giveaway, 0, len(r.items))
	for _, g := range r.items {
		out = append(out, *g.Clone())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Save stores g if the current version equals expectedVersion.
func (r *GiveawayRepository) Save(_ context.Context, g *dg.Giveaway, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[g.ID]
	if !ok {
		return dg.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return dg.ErrVersionConflict
	}
	stored := g.Clone()
	stored.Version = expectedVersion + 1
	r.items[g.ID] = stored
	g.Version = stored.Version
	return nil
}

func (r *GiveawayRepository) Ping(context.Context) error { return nil }
