package session

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
)

// Store owns the one Session of an authenticated context. It is the only writer
// of the backing KV; readers get copies.
type Store struct {
	kv   KV
	lock sync.RWMutex
}

// NewStore creates a Store persisted through kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the persisted session. A logged out context yields a zero Session.
func (s *Store) Load(ctx context.Context) (Session, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.load(ctx)
}

// AccessToken returns the bearer credential to attach to the next request.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	token, err := s.kv.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", apperrors.Wrapf(err, "[Store AccessToken] failed to read access token")
	}
	return token, nil
}

// Save replaces the whole session. Used by the login, registration and OAuth
// callback flows. Fields the new session leaves empty are removed.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.AccessToken == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[Store Save] access token is required")
	}
	if _, err := ParseUserType(string(sess.UserType)); err != nil {
		return apperrors.Wrapf(err, "[Store Save]")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.write(ctx, map[string]string{
		KeyAccessToken:  sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyUserType:     string(sess.UserType),
	})
}

// UpdateTokens rotates the token pair in place after a successful refresh,
// leaving the user type untouched.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidTokenPair, "[Store UpdateTokens]")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.write(ctx, map[string]string{
		KeyAccessToken:  accessToken,
		KeyRefreshToken: refreshToken,
	})
}

// Clear destroys the session. It reports whether anything was stored before.
func (s *Store) Clear(ctx context.Context) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, err := s.load(ctx)
	if err != nil {
		// A corrupt session still has to go.
		log.Err(err).Msg("Store Clear: failed to read session before clearing")
	}
	if err := s.kv.Clear(ctx); err != nil {
		return false, apperrors.Wrapf(err, "[Store Clear] failed to clear session")
	}
	return !prev.IsEmpty(), nil
}

func (s *Store) load(ctx context.Context) (Session, error) {
	var fields [3]string
	for i, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserType} {
		v, err := s.kv.Get(ctx, key)
		if err != nil {
			return Session{}, apperrors.Wrapf(err, "[Store Load] failed to read %s", key)
		}
		fields[i] = v
	}

	userType, err := ParseUserType(fields[2])
	if err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[Store Load] %v", err)
	}

	return Session{
		AccessToken:  fields[0],
		RefreshToken: fields[1],
		UserType:     userType,
	}, nil
}

// write stores values in one step when the backend supports it. Otherwise new
// values go in before stale keys are removed, so a failure part way never leaves
// the store without an access token.
func (s *Store) write(ctx context.Context, values map[string]string) error {
	if batch, ok := s.kv.(BatchKV); ok {
		if err := batch.SetMany(ctx, values); err != nil {
			return apperrors.Wrapf(err, "[Store] failed to write session")
		}
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return values[keys[i]] != "" && values[keys[j]] == ""
	})

	for _, key := range keys {
		if err := s.kv.Set(ctx, key, values[key]); err != nil {
			return apperrors.Wrapf(err, "[Store] failed to write %s", key)
		}
	}
	return nil
}
