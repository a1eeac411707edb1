// Package notify implements the best-effort notification channel: a Redis
// pub/sub publisher behind an async sharded dispatcher. State mutations are
// durable before anything lands here; a lost notification is logged and
// counted, never propagated to the caller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// maxSubjectLen bounds the subject line published on the topic.
const maxSubjectLen = 100

// RedisNotifier publishes events as JSON envelopes on a single pub/sub topic.
type RedisNotifier struct {
	client *redis.Client
	topic  string
}

func NewRedisNotifier(client *redis.Client, topic string) *RedisNotifier {
	return &RedisNotifier{client: client, topic: topic}
}

// Publish sends one event to the topic. Failure is returned to the caller
// (the dispatcher), which treats it as non-fatal.
func (n *RedisNotifier) Publish(ctx context.Context, e ports.Event) error {
	if len(e.Subject) > maxSubjectLen {
		e.Subject = e.Subject[:maxSubjectLen]
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.client.Publish(ctx, n.topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}
