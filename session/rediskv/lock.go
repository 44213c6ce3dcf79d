package rediskv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
)

const defaultRetryInterval = 25 * time.Millisecond

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a Redis mutex (SET NX PX) shared by every process using one session.
// The ttl bounds how long a crashed holder can block the others.
type Lock struct {
	rdb   redis.UniversalClient
	key   string
	ttl   time.Duration
	retry time.Duration
}

func NewLock(rdb redis.UniversalClient, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, key: key, ttl: ttl, retry: defaultRetryInterval}
}

// Acquire blocks until the lock is held, ctx ends or one ttl has passed.
// The returned func releases it.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, apperrors.Wrapf(apperrors.ErrStorage, "[rediskv Lock] %v", err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrapf(apperrors.ErrRefreshUnavailable, "[rediskv Lock] %s still held: %v", l.key, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

func (l *Lock) release(token string) {
	// The caller's context may already be done; the lock must still go.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
		log.Err(err).Str("key", l.key).Msg("rediskv: failed to release lock")
	}
}
