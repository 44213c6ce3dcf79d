package apiclient

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
)

const refreshKey = "refresh"

// RefreshLock serializes refresh across processes sharing one session.
// *rediskv.Lock implements it. Acquire returns a func releasing the lock.
type RefreshLock interface {
	Acquire(ctx context.Context) (func(), error)
}

// Coordinator owns the refresh exchange. However many requests find their
// session expired at once, at most one exchange is in flight; every caller
// waits for it and learns whether the session survived.
type Coordinator struct {
	store     *session.Store
	exchanger Exchanger
	deauth    *Deauthenticator
	lock      RefreshLock

	group     singleflight.Group
	exchanges atomic.Int64
}

// NewCoordinator creates a Coordinator. lock may be nil when the session is not
// shared with other processes.
func NewCoordinator(store *session.Store, exchanger Exchanger, deauth *Deauthenticator, lock RefreshLock) *Coordinator {
	return &Coordinator{
		store:     store,
		exchanger: exchanger,
		deauth:    deauth,
		lock:      lock,
	}
}

// Refresh obtains a new token pair on behalf of a request the API rejected.
// rejectedToken is the access token that request carried ("" if none).
//
// A nil error means the store now holds a token worth replaying with. Otherwise
// the session is gone: the store is cleared and de-authentication has fired.
// ctx only bounds the caller's wait; the exchange itself completes for the
// benefit of the other waiters.
func (c *Coordinator) Refresh(ctx context.Context, rejectedToken string) error {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx), rejectedToken)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Exchanges returns how many refresh exchanges have been attempted.
func (c *Coordinator) Exchanges() int64 {
	return c.exchanges.Load()
}

func (c *Coordinator) refresh(ctx context.Context, rejectedToken string) error {
	// Another process may be refreshing the same session; the store is read
	// only once it has finished.
	if c.lock != nil {
		release, err := c.lock.Acquire(ctx)
		if err != nil {
			log.Err(err).Msg("Refresh: failed to acquire refresh lock")
			c.deauth.Deauthenticate(ctx)
			return apperrors.Wrapf(apperrors.ErrRefreshUnavailable, "[Coordinator refresh] %v", err)
		}
		defer release()
	}

	sess, err := c.store.Load(ctx)
	if err != nil {
		log.Err(err).Msg("Refresh: failed to load session")
		c.deauth.Deauthenticate(ctx)
		return apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Coordinator refresh] %v", err)
	}

	// The caller's request left before an earlier exchange settled.
	if sess.AccessToken != "" && sess.AccessToken != rejectedToken {
		return nil
	}

	if !sess.HasRefreshToken() {
		log.Info().Msg("Refresh: no refresh token, ending session")
		c.deauth.Deauthenticate(ctx)
		return apperrors.ErrNoRefreshToken
	}

	c.exchanges.Add(1)
	pair, err := c.exchanger.Exchange(ctx, sess.RefreshToken)
	if err != nil {
		log.Err(err).Msg("Refresh: token exchange failed")
		c.deauth.Deauthenticate(ctx)
		return apperrors.Wrapf(err, "[Coordinator refresh]")
	}

	if err := c.store.UpdateTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		log.Err(err).Msg("Refresh: failed to store new tokens")
		c.deauth.Deauthenticate(ctx)
		return apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Coordinator refresh] %v", err)
	}

	log.Info().Msg("Refresh: access token renewed")
	return nil
}
