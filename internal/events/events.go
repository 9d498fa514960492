// Package events publishes giveaway lifecycle events for downstream consumers
// such as the notification bot.
package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const TypeGiveawayCompleted = "giveaway_completed"

// Completed is emitted once per giveaway when it transitions to complete.
type Completed struct {
	GiveawayID   string
	Winner       string // empty when the giveaway closed without participants
	Participants int
	Trigger      string
	At           time.Time
}

// Publisher delivers lifecycle events.
type Publisher interface {
	PublishCompleted(ctx context.Context, e Completed) error
}

// RedisStreamPublisher appends events to a capped redis stream.
type RedisStreamPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) PublishCompleted(ctx context.Context, e Completed) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":         TypeGiveawayCompleted,
			"giveaway_id":  e.GiveawayID,
			"winner_id":    e.Winner,
			"participants": e.Participants,
			"trigger":      e.Trigger,
			"at":           e.At.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

// LogPublisher only logs events; used when redis is not configured.
type LogPublisher struct{}

func (LogPublisher) PublishCompleted(_ context.Context, e Completed) error {
	log.Info().
		Str("giveaway_id", e.GiveawayID).
		Str("winner_id", e.Winner).
		Int("participants", e.Participants).
		Str("trigger", e.Trigger).
		Msg("Giveaway completed")
	return nil
}
