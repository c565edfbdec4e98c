package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

const channelPrefix = "rt:room:"

type relayEnvelope struct {
	Origin  string          `json:"origin,omitempty"`
	User    string          `json:"user,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay publishes room frames on rt:room:{projectId} and delivers
// frames received on those channels to the local hub.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
	ready  chan struct{}
}

func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, hub: hub, ready: make(chan struct{})}
}

func (r *RedisRelay) Publish(ctx context.Context, room string, origin Origin, payload []byte) error {
	data, err := json.Marshal(relayEnvelope{Origin: origin.Connection, User: origin.User, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode relay frame: %w", err)
	}
	return r.client.Publish(ctx, channelPrefix+room, data).Err()
}

// Ready is closed once the subscription is active.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run subscribes to every room channel and delivers until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe room channels: %w", err)
	}
	close(r.ready)

	log := logging.FromContext(ctx)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warnf("realtime.relay", "channel=%s error=%v", msg.Channel, err)
				continue
			}
			origin := Origin{Connection: env.Origin, User: env.User}
			r.hub.Deliver(strings.TrimPrefix(msg.Channel, channelPrefix), origin, env.Payload)
		}
	}
}
