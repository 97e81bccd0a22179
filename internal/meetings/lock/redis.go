package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	meetingserrors "roomly/internal/meetings/errors"
)

const redisKeyPrefix = "roomly:lock:"

// releaseScript deletes the key only while it still carries our token, so a
// lock that expired and was re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry forward only while the key still carries
// our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisLocker) Acquire(ctx context.Context, keys []string) (Lease, error) {
	token := uuid.NewString()

	return acquireAll(ctx, keys,
		func(ctx context.Context, key string) error {
			ok, err := l.client.SetNX(ctx, redisKeyPrefix+key, token, l.ttl).Result()
			if err != nil {
				return fmt.Errorf("failed to acquire redis lock %s: %w", key, err)
			}
			if !ok {
				return fmt.Errorf("%w: %s", meetingserrors.ErrSlotLocked, key)
			}
			return nil
		},
		func(ctx context.Context, key string) error {
			renewed, err := renewScript.Run(ctx, l.client, []string{redisKeyPrefix + key}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				return fmt.Errorf("failed to renew redis lock %s: %w", key, err)
			}
			if renewed == 0 {
				return fmt.Errorf("%w: %s", meetingserrors.ErrLockExpired, key)
			}
			return nil
		},
		func(ctx context.Context, key string) error {
			if err := releaseScript.Run(ctx, l.client, []string{redisKeyPrefix + key}, token).Err(); err != nil {
				return fmt.Errorf("failed to release redis lock %s: %w", key, err)
			}
			return nil
		},
	)
}
