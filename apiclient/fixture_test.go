package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/procure-client/apiclient"
	"github.com/jrsteele09/procure-client/oauthmodel"
	"github.com/jrsteele09/procure-client/session"
	"github.com/jrsteele09/procure-client/session/kvfake"
	"github.com/stretchr/testify/require"
)

const (
	testLoginRoute  = "/auth/login"
	testRefreshPath = "/api/auth/refresh"

	// heldPath answers like /api/rfqs, but a rejected call waits for
	// releaseHeld before its 401 is written.
	heldPath = "/api/held"
)

type testConfig struct {
	baseURL string
	skew    time.Duration
}

func (c testConfig) GetAPIBaseURL() string            { return c.baseURL }
func (c testConfig) GetRequestTimeout() time.Duration { return 5 * time.Second }
func (c testConfig) GetLoginRoute() string            { return testLoginRoute }
func (c testConfig) GetRefreshPath() string           { return testRefreshPath }
func (c testConfig) GetRefreshSkew() time.Duration    { return c.skew }

type recordedCall struct {
	Path          string
	Authorization string
	RequestID     string
}

// fakeAPI is a stand-in for the marketplace backend. It accepts only the access
// tokens in accepted and rotates refresh tokens according to rotations. Each
// refresh token can be used once.
type fakeAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	accepted  map[string]bool
	rotations map[string]oauthmodel.TokenResponse
	calls     []recordedCall

	// refreshStatus, when set, is the status the refresh endpoint answers with.
	refreshStatus atomic.Int32
	// holdRefreshUntil delays the refresh answer until that many requests have
	// been rejected, so they all expire before the exchange settles.
	holdRefreshUntil atomic.Int32

	refreshCalls atomic.Int32
	rejected     atomic.Int32

	releaseHeld chan struct{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		accepted:    make(map[string]bool),
		rotations:   make(map[string]oauthmodel.TokenResponse),
		releaseHeld: make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/rfqs", f.requireToken(f.handleListRFQs)).Methods(http.MethodGet)
	r.HandleFunc(heldPath, f.requireToken(f.handleListRFQs)).Methods(http.MethodGet)
	r.HandleFunc("/api/rfqs/{id}", f.requireToken(f.handleGetRFQ)).Methods(http.MethodGet)
	r.HandleFunc("/api/reports", f.requireToken(f.handleReports)).Methods(http.MethodGet)
	r.HandleFunc("/api/revoked", f.handleRevoked).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", f.handleLogin).Methods(http.MethodPost)
	r.HandleFunc(testRefreshPath, f.handleRefresh).Methods(http.MethodPost)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) accept(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted[token] = true
}

func (f *fakeAPI) rotate(refreshToken string, pair oauthmodel.TokenResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotations[refreshToken] = pair
	f.accepted[pair.AccessToken] = true
}

func (f *fakeAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
}

func (f *fakeAPI) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		f.mu.Lock()
		ok := f.accepted[token]
		f.mu.Unlock()

		if !ok {
			f.rejected.Add(1)
			if r.URL.Path == heldPath {
				<-f.releaseHeld
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) handleListRFQs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]string{{"id": "rfq-1", "title": "Aluminium sheet"}})
}

func (f *fakeAPI) handleGetRFQ(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "RFQ not found"})
}

func (f *fakeAPI) handleReports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
}

func (f *fakeAPI) handleRevoked(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	f.rejected.Add(1)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token revoked"})
}

func (f *fakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
}

func (f *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	f.refreshCalls.Add(1)

	deadline := time.Now().Add(2 * time.Second)
	for f.rejected.Load() < f.holdRefreshUntil.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if status := int(f.refreshStatus.Load()); status != 0 {
		writeJSON(w, status, map[string]string{"detail": "Invalid refresh token"})
		return
	}

	var body oauthmodel.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	f.mu.Lock()
	pair, ok := f.rotations[body.RefreshToken]
	delete(f.rotations, body.RefreshToken)
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientFixture wires a Manager to a fakeAPI with an in-memory session.
type clientFixture struct {
	api     *fakeAPI
	kv      *kvfake.FakeKV
	store   *session.Store
	manager *apiclient.Manager

	navigations atomic.Int32
	lastRoute   atomic.Value

	noticesLock sync.Mutex
	notices     []apiclient.Notice
}

type fixtureOptions struct {
	exchanger apiclient.Exchanger
	skew      time.Duration
	baseURL   string

	// api and kv are shared with another fixture when set. kv leaves
	// clientFixture.kv nil.
	api         *fakeAPI
	kv          session.KV
	refreshLock apiclient.RefreshLock
}

func setupClientFixture(t *testing.T, opts fixtureOptions) *clientFixture {
	t.Helper()

	f := &clientFixture{api: opts.api}
	if f.api == nil {
		f.api = newFakeAPI(t)
	}
	if opts.kv != nil {
		f.store = session.NewStore(opts.kv)
	} else {
		f.kv = kvfake.NewFakeKV()
		f.store = session.NewStore(f.kv)
	}

	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = f.api.server.URL
	}

	manager, err := apiclient.NewManager(testConfig{baseURL: baseURL, skew: opts.skew}, apiclient.Deps{
		Store: f.store,
		Navigate: func(_ context.Context, route string) {
			f.navigations.Add(1)
			f.lastRoute.Store(route)
		},
		Notify: func(n apiclient.Notice) {
			f.noticesLock.Lock()
			defer f.noticesLock.Unlock()
			f.notices = append(f.notices, n)
		},
		Exchanger:   opts.exchanger,
		RefreshLock: opts.refreshLock,
	})
	require.NoError(t, err)
	f.manager = manager
	return f
}

func (f *clientFixture) login(t *testing.T, sess session.Session) {
	t.Helper()
	_, err := f.manager.Login(context.Background(), sess)
	require.NoError(t, err)
}

func (f *clientFixture) reported() []apiclient.Notice {
	f.noticesLock.Lock()
	defer f.noticesLock.Unlock()
	return append([]apiclient.Notice(nil), f.notices...)
}

func (f *clientFixture) sendConcurrently(t *testing.T, n int, newReq func() *apiclient.Request) []apiclient.Outcome {
	t.Helper()

	outcomes := make([]apiclient.Outcome, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			outcomes[i] = f.manager.Send(context.Background(), newReq())
		}(i)
	}
	wg.Wait()
	return outcomes
}

func countAuthorization(calls []recordedCall, path, authorization string) int {
	n := 0
	for _, c := range calls {
		if c.Path == path && c.Authorization == authorization {
			n++
		}
	}
	return n
}
