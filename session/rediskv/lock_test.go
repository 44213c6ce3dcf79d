package rediskv_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session/rediskv"
)

func newLockTest(t *testing.T, ttl time.Duration) (*rediskv.Lock, *rediskv.Lock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { other.Close() })

	store := rediskv.New(rdb, "procure:session:test", 0)
	return store.RefreshLock(ttl), rediskv.New(other, "procure:session:test", 0).RefreshLock(ttl), mr
}

func TestLock_ExcludesOtherHolders(t *testing.T) {
	ctx := context.Background()
	first, second, mr := newLockTest(t, 2*time.Second)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("procure:session:test:refresh"))

	acquired := make(chan func(), 1)
	go func() {
		release, err := second.Acquire(ctx)
		if err == nil {
			acquired <- release
		}
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired twice")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case releaseSecond := <-acquired:
		releaseSecond()
	case <-time.After(time.Second):
		t.Fatal("lock not handed over after release")
	}
	require.False(t, mr.Exists("procure:session:test:refresh"))
}

func TestLock_TimesOut(t *testing.T) {
	ctx := context.Background()
	first, second, _ := newLockTest(t, 100*time.Millisecond)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	_, err = second.Acquire(ctx)
	require.ErrorIs(t, err, apperrors.ErrRefreshUnavailable)
}

func TestLock_ReleaseKeepsForeignLock(t *testing.T) {
	ctx := context.Background()
	first, _, mr := newLockTest(t, time.Second)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)

	// The lock expired and someone else took it.
	require.NoError(t, mr.Set("procure:session:test:refresh", "someone-else"))
	release()

	v, err := mr.Get("procure:session:test:refresh")
	require.NoError(t, err)
	require.Equal(t, "someone-else", v)
}
