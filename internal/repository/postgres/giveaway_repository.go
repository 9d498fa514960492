package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
)

// GiveawayRepository persists giveaways in a single row each; participants live in a text[] column.
type GiveawayRepository struct {
	db *sql.DB
}

func NewGiveawayRepository(db *sql.DB) *GiveawayRepository { return &GiveawayRepository{db: db} }

const giveawayColumns = `id, title, end_time, state, participants, total_participants, total_entries, winner_id, version, created_at, updated_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGiveaway(row rowScanner) (*dg.Giveaway, error) {
	var (
		g            dg.Giveaway
		participants pq.StringArray
		winner       sql.NullString
		completedAt  sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.Title, &g.EndTime, &g.State, &participants, &g.TotalParticipants, &g.TotalEntries,
		&winner, &g.Version, &g.CreatedAt, &g.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	g.Participants = []string(participants)
	if g.Participants == nil {
		g.Participants = []string{}
	}
	if winner.Valid {
		w := winner.String
		g.Winner = &w
	}
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	return &g, nil
}

// Create inserts a new giveaway.
func (r *GiveawayRepository) Create(ctx context.Context, g *dg.Giveaway) error {
	const q = `
	INSERT INTO giveaways (` + giveawayColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.db.ExecContext(ctx, q,
		g.ID, g.Title, g.EndTime, g.State, pq.Array(g.Participants), g.TotalParticipants, g.TotalEntries,
		nullString(g.Winner), g.Version, g.CreatedAt, g.UpdatedAt, nullTime(g.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert giveaway: %w", err)
	}
	return nil
}

// GetByID returns a giveaway or dg.ErrNotFound.
func (r *GiveawayRepository) GetByID(ctx context.Context, id string) (*dg.Giveaway, error) {
	const q = `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id=$1`
	g, err := scanGiveaway(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select giveaway: %w", err)
	}
	return g, nil
}

// ListDue returns active giveaways whose end_time is at or before now, oldest first.
func (r *GiveawayRepository) ListDue(ctx context.Context, now time.Time) ([]dg.Giveaway, error) {
	const q = `SELECT ` + giveawayColumns + ` FROM giveaways WHERE state='active' AND end_time <= $1 ORDER BY end_time ASC`
	return r.list(ctx, q, now)
}

// ListAll returns every giveaway, newest first.
func (r *GiveawayRepository) ListAll(ctx context.Context) ([]dg.Giveaway, error) {
	const q = `SELECT ` + giveawayColumns + ` FROM giveaways ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *GiveawayRepository) list(ctx context.Context, q string, args ...any) ([]dg.Giveaway, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list giveaways: %w", err)
	}
	defer rows.Close()
	out := []dg.Giveaway{}
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("scan giveaway: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// Save replaces the row only if its version still equals expectedVersion.
func (r *GiveawayRepository) Save(ctx context.Context, g *dg.Giveaway, expectedVersion int64) error {
	const q = `
	UPDATE giveaways SET
		title=$2, end_time=$3, state=$4, participants=$5, total_participants=$6, total_entries=$7,
		winner_id=$8, completed_at=$9, updated_at=$10, version=version+1
	WHERE id=$1 AND version=$11`
	res, err := r.db.ExecContext(ctx, q,
		g.ID, g.Title, g.EndTime, g.State, pq.Array(g.Participants), g.TotalParticipants, g.TotalEntries,
		nullString(g.Winner), nullTime(g.CompletedAt), g.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update giveaway: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update giveaway: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM giveaways WHERE id=$1)`, g.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check giveaway: %w", err)
		}
		if !exists {
			return dg.ErrNotFound
		}
		return dg.ErrVersionConflict
	}
	g.Version = expectedVersion + 1
	return nil
}

// Ping checks database connectivity.
func (r *GiveawayRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
