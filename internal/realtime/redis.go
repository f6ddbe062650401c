package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over redis pub/sub. No buffering, no
// replay: a disconnected subscriber simply misses the event.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(addr, password string) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (p *RedisPublisher) PublishToUser(ctx context.Context, userID string, evt Event) error {
	return p.publish(ctx, UserChannel(userID), evt)
}

func (p *RedisPublisher) PublishToConversation(ctx context.Context, convID string, evt Event) error {
	return p.publish(ctx, ConversationChannel(convID), evt)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a pub/sub subscription on the given channels. The
// caller owns the returned PubSub and must Close it.
func (p *RedisPublisher) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return p.client.Subscribe(ctx, channels...)
}

func (p *RedisPublisher) Close() error { return p.client.Close() }
