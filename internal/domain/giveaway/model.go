package giveaway

import (
	"fmt"
	"slices"
	"time"
)

// State represents the lifecycle state of a giveaway.
type State string

const (
	StateActive   State = "active"
	StateComplete State = "complete"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s == StateActive || s == StateComplete
}

// Giveaway is the aggregate representing a time-boxed campaign.
// It is mutated only by the lifecycle coordinator.
type Giveaway struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	EndTime           time.Time  `json:"endTime"`
	State             State      `json:"state"`
	Participants      []string   `json:"participants"`
	TotalParticipants int        `json:"totalParticipants"`
	TotalEntries      int        `json:"totalEntries"`
	Winner            *string    `json:"winner,omitempty"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// HasParticipant reports whether userID already joined.
func (g *Giveaway) HasParticipant(userID string) bool {
	return slices.Contains(g.Participants, userID)
}

// IsDue reports whether the giveaway should be drawn automatically at now.
func (g *Giveaway) IsDue(now time.Time) bool {
	return g.State == StateActive && !g.EndTime.After(now)
}

// AddParticipant appends userID and bumps both counters. One entry per participant.
func (g *Giveaway) AddParticipant(userID string) {
	g.Participants = append(g.Participants, userID)
	g.TotalParticipants++
	g.TotalEntries++
}

// Complete transitions the giveaway to complete with an optional winner.
func (g *Giveaway) Complete(winner *string, at time.Time) {
	g.State = StateComplete
	g.Winner = winner
	t := at.UTC()
	g.CompletedAt = &t
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (g *Giveaway) Clone() *Giveaway {
	if g == nil {
		return nil
	}
	c := *g
	c.Participants = slices.Clone(g.Participants)
	if g.Winner != nil {
		w := *g.Winner
		c.Winner = &w
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Validate checks the aggregate invariants.
func (g *Giveaway) Validate() error {
	if !g.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidInput, g.State)
	}
	seen := make(map[string]struct{}, len(g.Participants))
	for _, p := range g.Participants {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalidInput, p)
		}
		seen[p] = struct{}{}
	}
	switch g.State {
	case StateActive:
		if g.Winner != nil {
			return fmt.Errorf("%w: active giveaway has a winner", ErrInvalidInput)
		}
	case StateComplete:
		if g.Winner == nil && len(g.Participants) > 0 {
			return fmt.Errorf("%w: complete giveaway with participants has no winner", ErrInvalidInput)
		}
		if g.Winner != nil {
			if _, ok := seen[*g.Winner]; !ok {
				return fmt.Errorf("%w: winner %s is not a participant", ErrInvalidInput, *g.Winner)
			}
		}
	}
	if g.TotalParticipants != len(g.Participants) || g.TotalEntries != len(g.Participants) {
		return fmt.Errorf("%w: counters out of sync with participants", ErrInvalidInput)
	}
	return nil
}

// Patch is an administrative correction of winner and state.
type Patch struct {
	Winner *string
	State  *State
}
