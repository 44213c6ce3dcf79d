package apiclient

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/procure-client/session"
)

// NavigateFunc moves the user out of the authenticated area, e.g. to the login
// page. It is called with the Deauthenticator's lock held and must not call back
// into it.
type NavigateFunc func(ctx context.Context, route string)

// Deauthenticator ends the session: it clears the store and navigates away,
// once per session no matter how many callers ask.
type Deauthenticator struct {
	store    *session.Store
	route    string
	navigate NavigateFunc

	lock sync.Mutex
	// armed until the current session has been ended; re-armed by Arm on login.
	armed bool
}

func NewDeauthenticator(store *session.Store, route string, navigate NavigateFunc) *Deauthenticator {
	return &Deauthenticator{
		store:    store,
		route:    route,
		navigate: navigate,
		armed:    true,
	}
}

// Deauthenticate clears the session and navigates to the login route. It
// reports whether navigation happened; it does not once the session has already
// been ended.
func (d *Deauthenticator) Deauthenticate(ctx context.Context) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	cleared, err := d.store.Clear(ctx)
	if err != nil {
		log.Err(err).Msg("Deauthenticate: failed to clear session")
	}
	if !cleared && !d.armed {
		return false
	}
	d.armed = false

	log.Info().Str("route", d.route).Msg("Session ended")
	if d.navigate != nil {
		d.navigate(ctx, d.route)
	}
	return true
}

// Arm makes the next Deauthenticate navigate again. Called when a new session
// is stored.
func (d *Deauthenticator) Arm() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.armed = true
}
