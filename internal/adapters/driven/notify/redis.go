package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// channelPrefix namespaces the per-session pub/sub channels.
const channelPrefix = "lessonscout:session:"

var (
	_ driven.Notifier   = (*Redis)(nil)
	_ driven.Subscriber = (*Redis)(nil)
)

// Channel returns the pub/sub channel for a session.
func Channel(sessionID string) string {
	return channelPrefix + sessionID
}

// Redis publishes notifications over Redis pub/sub so that every process
// serving the same store sees the same realtime stream.
type Redis struct {
	rdb    *redis.Client
	buffer int
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, buffer: DefaultBuffer}
}

// DialRedis parses a redis:// URL, connects, and verifies the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

// Publish sends n on its session channel.
func (r *Redis) Publish(ctx context.Context, n domain.Notification) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, Channel(n.SessionID), data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe listens on a session channel until cancel is called or ctx is done.
// Undecodable messages are skipped.
func (r *Redis) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Notification, func(), error) {
	ps := r.rdb.Subscribe(ctx, Channel(sessionID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe to session %s: %w", sessionID, err)
	}

	out := make(chan domain.Notification, r.buffer)
	done := make(chan struct{})
	msgs := ps.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				n, err := decode(msg.Payload)
				if err != nil {
					hubLog.Warn("dropping notification on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- n:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	stop := context.AfterFunc(ctx, cancel)

	return out, func() {
		stop()
		cancel()
	}, nil
}

func encode(n domain.Notification) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return data, nil
}

func decode(payload string) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return domain.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.SessionID == "" {
		return domain.Notification{}, fmt.Errorf("decode notification: missing session id")
	}
	return n, nil
}
