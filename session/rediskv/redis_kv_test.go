package rediskv_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
	"github.com/jrsteele09/procure-client/session/rediskv"
)

func newRedisKVTest(t *testing.T, ttl time.Duration) (*rediskv.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rediskv.New(rdb, "procure:session:test", ttl), mr
}

func TestRedisKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKVTest(t, 0)

	v, err := kv.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, kv.Set(ctx, session.KeyAccessToken, "A1"))
	require.Equal(t, "A1", mr.HGet("procure:session:test", session.KeyAccessToken))

	v, err = kv.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "A1", v)

	require.NoError(t, kv.Set(ctx, session.KeyAccessToken, ""))
	v, err = kv.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestRedisKV_TTLRefreshedOnWrite(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKVTest(t, time.Hour)

	require.NoError(t, kv.Set(ctx, session.KeyRefreshToken, "R1"))
	require.Equal(t, time.Hour, mr.TTL("procure:session:test"))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, kv.Set(ctx, session.KeyAccessToken, "A2"))
	require.Equal(t, time.Hour, mr.TTL("procure:session:test"))
}

func TestRedisKV_Clear(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKVTest(t, 0)

	require.NoError(t, kv.Set(ctx, session.KeyUserType, "buyer"))
	require.NoError(t, kv.Clear(ctx))
	require.False(t, mr.Exists("procure:session:test"))
	require.NoError(t, kv.Clear(ctx))
}

func TestRedisKV_SharedAcrossStores(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisKVTest(t, 0)

	first := session.NewStore(kv)
	second := session.NewStore(kv)

	require.NoError(t, first.Save(ctx, session.Session{AccessToken: "A1", RefreshToken: "R1", UserType: session.UserTypeBuyer}))
	sess, err := second.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "A1", sess.AccessToken)
}

func TestRedisKV_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	kv := rediskv.New(rdb, "procure:session:test", 0)
	mr.Close()

	_, err = kv.Get(ctx, session.KeyAccessToken)
	require.ErrorIs(t, err, apperrors.ErrStorage)
	require.ErrorIs(t, kv.Set(ctx, session.KeyAccessToken, "A1"), apperrors.ErrStorage)
	require.ErrorIs(t, kv.Clear(ctx), apperrors.ErrStorage)
}

func TestRedisKV_SetMany(t *testing.T) {
	ctx := context.Background()
	kv, mr := newRedisKVTest(t, time.Hour)

	first := session.NewStore(kv)
	require.NoError(t, first.Save(ctx, session.Session{AccessToken: "A1", RefreshToken: "R1", UserType: session.UserTypeBuyer}))
	require.NoError(t, first.Save(ctx, session.Session{AccessToken: "B1"}))

	require.Equal(t, "B1", mr.HGet("procure:session:test", session.KeyAccessToken))
	require.Empty(t, mr.HGet("procure:session:test", session.KeyRefreshToken))
	require.Empty(t, mr.HGet("procure:session:test", session.KeyUserType))
	require.Equal(t, time.Hour, mr.TTL("procure:session:test"))

	require.NoError(t, kv.SetMany(ctx, map[string]string{session.KeyAccessToken: ""}))
	v, err := kv.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Empty(t, v)
}
