package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
)

// Config is the part of the application configuration the Manager needs.
// config.Config satisfies it.
type Config interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginRoute() string
	GetRefreshPath() string
	GetRefreshSkew() time.Duration
}

// Deps are the collaborators injected into a Manager.
type Deps struct {
	Store    *session.Store
	Navigate NavigateFunc // Called once when the session ends
	Notify   NotifyFunc   // Shows user-visible failures; nil logs them

	// Exchanger overrides the marketplace refresh endpoint, e.g. with an
	// OAuth2Exchanger.
	Exchanger Exchanger

	// HTTPClient defaults to a client with the configured request timeout.
	HTTPClient *http.Client

	// RefreshLock is required when the Store's backend is shared with other
	// processes, e.g. rediskv.
	RefreshLock RefreshLock
}

// Manager is the authenticated API client. UI code calls Send and sees either a
// success or a failure that has already been reported; session expiry is
// resolved before Send returns.
type Manager struct {
	store       *session.Store
	dispatcher  *Dispatcher
	coordinator *Coordinator
	deauth      *Deauthenticator
	reporter    *Reporter
	refreshSkew time.Duration
}

func NewManager(cfg Config, deps Deps) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewManager] session store is required")
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetRequestTimeout()}
	}

	dispatcher, err := NewDispatcher(cfg.GetAPIBaseURL(), httpClient, deps.Store)
	if err != nil {
		return nil, fmt.Errorf("[NewManager] %w", err)
	}

	exchanger := deps.Exchanger
	if exchanger == nil {
		exchanger = NewEndpointExchanger(dispatcher, cfg.GetRefreshPath())
	}

	deauth := NewDeauthenticator(deps.Store, cfg.GetLoginRoute(), deps.Navigate)

	return &Manager{
		store:       deps.Store,
		dispatcher:  dispatcher,
		coordinator: NewCoordinator(deps.Store, exchanger, deauth, deps.RefreshLock),
		deauth:      deauth,
		reporter:    NewReporter(deps.Notify),
		refreshSkew: cfg.GetRefreshSkew(),
	}, nil
}

// Send performs req on behalf of the current session. A 401 triggers (or joins)
// the single refresh exchange and req is replayed once with the new token. If
// the session cannot be refreshed the result is a 401 client error flagged
// RefreshFailure and the user has been navigated away.
func (m *Manager) Send(ctx context.Context, req *Request) Outcome {
	if !req.Unauthenticated {
		m.refreshIfExpiring(ctx)
	}

	out := m.dispatcher.Send(ctx, req)
	if out.Kind == KindSessionExpired {
		out = m.recover(ctx, req, out)
	}

	m.reporter.Report(out)
	return out
}

// Do sends req and decodes a successful JSON payload into v.
func (m *Manager) Do(ctx context.Context, req *Request, v any) error {
	return m.Send(ctx, req).Decode(v)
}

func (m *Manager) recover(ctx context.Context, req *Request, expired Outcome) Outcome {
	if err := m.coordinator.Refresh(ctx, expired.sentToken); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return networkError(err.Error())
		}
		return refreshFailure()
	}
	return m.dispatcher.Send(ctx, req.replay())
}

// refreshIfExpiring renews a JWT access token that is about to expire so the
// request does not have to bounce off a 401 first.
func (m *Manager) refreshIfExpiring(ctx context.Context) {
	if m.refreshSkew <= 0 {
		return
	}
	token, err := m.store.AccessToken(ctx)
	if err != nil || token == "" {
		return
	}
	claims, err := session.ParseClaims(token)
	if err != nil || !claims.ExpiresWithin(m.refreshSkew) {
		return
	}
	if err := m.coordinator.Refresh(ctx, token); err != nil {
		log.Err(err).Msg("Proactive refresh failed")
	}
}

// Login stores a session created by login, registration or an OAuth callback
// and returns the dashboard route for its user type. The user type is taken
// from the access token's claims when not given.
func (m *Manager) Login(ctx context.Context, sess session.Session) (string, error) {
	if sess.UserType == "" {
		if claims, err := session.ParseClaims(sess.AccessToken); err == nil {
			sess.UserType = claims.UserType
		}
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("[Manager Login] %w", err)
	}
	m.deauth.Arm()
	return sess.UserType.DashboardRoute(), nil
}

// Logout ends the session and navigates to the login route.
func (m *Manager) Logout(ctx context.Context) bool {
	return m.deauth.Deauthenticate(ctx)
}

// Session returns the current session.
func (m *Manager) Session(ctx context.Context) (session.Session, error) {
	return m.store.Load(ctx)
}

// Claims decodes the current access token. Opaque tokens yield
// session.ErrOpaqueToken.
func (m *Manager) Claims(ctx context.Context) (*session.Claims, error) {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	return session.ParseClaims(token)
}

// RefreshExchanges returns how many refresh exchanges have been attempted.
func (m *Manager) RefreshExchanges() int64 {
	return m.coordinator.Exchanges()
}
