// Package notify forwards domain events to the notification queue.
//
// Dispatch is fire-and-forget: events are serialized onto a Redis list and a
// background worker turns them into alert rows and live pushes. A queue
// failure is logged, never returned, so a lost notification can not undo a
// committed assessment transition.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/engine"
)

// Notifier receives the events produced by lifecycle transitions.
type Notifier interface {
	Dispatch(ctx context.Context, events []engine.Event)
}

// QueueNotifier pushes events onto the notifications queue in Redis.
type QueueNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(rdb *redis.Client, log zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{
		rdb: rdb,
		log: log.With().Str("component", "notifier").Logger(),
	}
}

// Dispatch enqueues each event for the notification worker.
func (n *QueueNotifier) Dispatch(ctx context.Context, events []engine.Event) {
	if len(events) == 0 {
		return
	}

	pipe := n.rdb.Pipeline()
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			n.log.Error().Err(err).Str("type", string(ev.Type)).Msg("Marshal error")
			continue
		}
		pipe.RPush(ctx, config.WorkerKey.NotificationsQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		n.log.Error().Err(err).Int("count", len(events)).Msg("Enqueue error, notifications dropped")
	}
}
