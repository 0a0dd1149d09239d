// Package notifier delivers lending outcomes to users. Delivery is best
// effort: failures are reported to the caller, never retried.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message is the payload published to the chat front end.
type Message struct {
	UserID string    `json:"user_id"`
	Text   string    `json:"message"`
	SentAt time.Time `json:"sent_at"`
}

// Redis publishes one message per user on prefix+userID. The front end
// owning the chat session subscribes to those channels.
type Redis struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedis(rdb *redis.Client, prefix string, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{rdb: rdb, prefix: prefix, log: log}
}

func (n *Redis) Channel(userID string) string { return n.prefix + userID }

// Notify reports true only when at least one subscriber received it.
func (n *Redis) Notify(ctx context.Context, userID, message string) bool {
	payload, err := json.Marshal(Message{UserID: userID, Text: message, SentAt: time.Now().UTC()})
	if err != nil {
		n.log.Error("notify: encode", zap.Error(err))
		return false
	}
	receivers, err := n.rdb.Publish(ctx, n.Channel(userID), payload).Result()
	if err != nil {
		n.log.Warn("notify: publish", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return receivers > 0
}
