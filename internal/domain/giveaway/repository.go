package giveaway

import (
	"context"
	"time"
)

// Repository defines persistence operations for the Giveaway aggregate.
//
// GetByID returns ErrNotFound for unknown ids. Save replaces the stored record only
// when its version still equals expectedVersion and bumps g.Version on success;
// otherwise it returns ErrVersionConflict and leaves the record untouched.
type Repository interface {
	Create(ctx context.Context, g *Giveaway) error
	GetByID(ctx context.Context, id string) (*Giveaway, error)
	ListDue(ctx context.Context, now time.Time) ([]Giveaway, error)
	ListAll(ctx context.Context) ([]Giveaway, error)
	Save(ctx context.Context, g *Giveaway, expectedVersion int64) error
	Ping(ctx context.Context) error
}
