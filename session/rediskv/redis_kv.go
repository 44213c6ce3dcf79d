// Package rediskv keeps the session in a Redis hash so several processes on one
// machine (or a fleet of workers acting for one account) share a single session.
// Processes sharing a session must also share its RefreshLock, otherwise each
// one rotates the refresh token on its own.
package rediskv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
)

var _ session.BatchKV = (*Store)(nil)

// Store is a session.KV backed by one Redis hash per namespace.
type Store struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

// New creates a Store keeping the session at key. A non-zero ttl is refreshed on
// every write so an abandoned session eventually disappears.
func New(rdb redis.UniversalClient, key string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, key: key, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, field string) (string, error) {
	v, err := s.rdb.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrStorage, "[rediskv Get] %v", err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, field, value string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if value == "" {
			pipe.HDel(ctx, s.key, field)
		} else {
			pipe.HSet(ctx, s.key, field, value)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[rediskv Set] %v", err)
	}
	return nil
}

// SetMany writes all fields in one MULTI/EXEC so other processes never see a
// half-written session.
func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	var set []any
	var del []string
	for field, value := range values {
		if value == "" {
			del = append(del, field)
			continue
		}
		set = append(set, field, value)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(set) > 0 {
			pipe.HSet(ctx, s.key, set...)
		}
		if len(del) > 0 {
			pipe.HDel(ctx, s.key, del...)
		}
		if s.ttl > 0 && len(set) > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[rediskv SetMany] %v", err)
	}
	return nil
}

// RefreshLock returns the lock guarding token refresh for this session.
func (s *Store) RefreshLock(ttl time.Duration) *Lock {
	return NewLock(s.rdb, s.key+":refresh", ttl)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[rediskv Clear] %v", err)
	}
	return nil
}
