package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/procure-client/apiclient"
	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/oauthmodel"
	"github.com/jrsteele09/procure-client/session"
	"github.com/jrsteele09/procure-client/session/rediskv"
)

const sharedSessionKey = "procure:session:shared"

// newProcessFixture is one process attached to the shared Redis session.
func newProcessFixture(t *testing.T, mr *miniredis.Miniredis, api *fakeAPI) *clientFixture {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	kv := rediskv.New(rdb, sharedSessionKey, 0)
	return setupClientFixture(t, fixtureOptions{
		api:         api,
		kv:          kv,
		refreshLock: kv.RefreshLock(5 * time.Second),
	})
}

func TestManager_SharedSessionRefreshesOnce(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	api := newFakeAPI(t)

	first := newProcessFixture(t, mr, api)
	second := newProcessFixture(t, mr, api)

	first.login(t, buyerSession)
	api.rotate("R1", oauthmodel.TokenResponse{AccessToken: "A2", RefreshToken: "R2"})
	api.holdRefreshUntil.Store(2)

	var wg sync.WaitGroup
	outcomes := make([]apiclient.Outcome, 2)
	for i, f := range []*clientFixture{first, second} {
		wg.Add(1)
		go func(i int, f *clientFixture) {
			defer wg.Done()
			outcomes[i] = f.manager.Send(ctx, listRFQs())
		}(i, f)
	}
	wg.Wait()

	for _, out := range outcomes {
		require.True(t, out.OK(), "%s: %s", out.Kind, out.Message)
	}
	require.EqualValues(t, 1, api.refreshCalls.Load())
	require.Equal(t, 2, countAuthorization(api.recorded(), "/api/rfqs", "Bearer A2"))
	require.Zero(t, first.navigations.Load()+second.navigations.Load())

	sess, err := second.manager.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Session{AccessToken: "A2", RefreshToken: "R2", UserType: session.UserTypeBuyer}, sess)
	require.False(t, mr.Exists(sharedSessionKey+":refresh"))
}

type failingLock struct{}

func (failingLock) Acquire(context.Context) (func(), error) {
	return nil, errors.New("lock held elsewhere")
}

func TestManager_RefreshLockUnavailable(t *testing.T) {
	f := setupClientFixture(t, fixtureOptions{refreshLock: failingLock{}})
	f.login(t, buyerSession)
	f.api.rotate("R1", oauthmodel.TokenResponse{AccessToken: "A2", RefreshToken: "R2"})

	out := f.manager.Send(context.Background(), apiclient.NewRequest(http.MethodGet, "/api/rfqs"))

	require.True(t, out.RefreshFailure)
	require.ErrorIs(t, out.Err(), apperrors.ErrSessionExpired)
	require.Zero(t, f.api.refreshCalls.Load())
	require.EqualValues(t, 1, f.navigations.Load())
	require.Zero(t, f.kv.Len())
	require.Empty(t, f.reported())
}
