package ledger

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"rentline/internal/domain/repository"
	"rentline/pkg/errors"
)

// Key prefix for pending end requests. The key format is internal to the
// ledger; callers only ever pass room ids.
const endRequestKeyPrefix = "negotiation:end:"

// RedisLedger implements repository.NegotiationLedger on Redis. SetNX gives
// the atomic check-then-set the duplicate-request guard needs across
// processes. Entries carry no TTL; they are deleted explicitly on accept or
// reject.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(url string) (*RedisLedger, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ledger: parse redis url: %w", err)
	}
	c := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	return &RedisLedger{client: c}, nil
}

var _ repository.NegotiationLedger = (*RedisLedger)(nil)

func (l *RedisLedger) TryAcquire(ctx context.Context, roomID, ownerID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, endRequestKeyPrefix+roomID, ownerID, 0).Result()
	if err != nil {
		return false, errors.Internal("Failed to record end request", err)
	}
	return ok, nil
}

func (l *RedisLedger) Get(ctx context.Context, roomID string) (string, bool, error) {
	val, err := l.client.Get(ctx, endRequestKeyPrefix+roomID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Internal("Failed to read end request", err)
	}
	return val, true, nil
}

func (l *RedisLedger) Release(ctx context.Context, roomID string) error {
	if err := l.client.Del(ctx, endRequestKeyPrefix+roomID).Err(); err != nil {
		return errors.Internal("Failed to delete end request", err)
	}
	return nil
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}
