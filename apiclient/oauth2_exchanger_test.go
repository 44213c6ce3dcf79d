package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/procure-client/apiclient"
	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/stretchr/testify/require"
)

// newIdentityProvider serves an OIDC discovery document and a token endpoint
// that accepts only refresh token "R1".
func newIdentityProvider(t *testing.T, omit string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	r := mux.NewRouter()
	r.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/authorize",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
			return
		}
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "R1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "Refresh token revoked",
			})
			return
		}
		resp := map[string]any{"access_token": "A2", "refresh_token": "R2", "token_type": "Bearer", "expires_in": 1800}
		delete(resp, omit)
		writeJSON(w, http.StatusOK, resp)
	}).Methods(http.MethodPost)

	srv = httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestOAuth2Exchanger(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the pair", func(t *testing.T) {
		idp := newIdentityProvider(t, "")
		exchanger, err := apiclient.DiscoverOAuth2Exchanger(ctx, idp.URL, "procurectl", "secret", idp.Client())
		require.NoError(t, err)

		pair, err := exchanger.Exchange(ctx, "R1")
		require.NoError(t, err)
		require.Equal(t, "A2", pair.AccessToken)
		require.Equal(t, "R2", pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
	})

	t.Run("rejected refresh token", func(t *testing.T) {
		idp := newIdentityProvider(t, "")
		exchanger, err := apiclient.DiscoverOAuth2Exchanger(ctx, idp.URL, "procurectl", "secret", idp.Client())
		require.NoError(t, err)

		_, err = exchanger.Exchange(ctx, "stale")
		require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
		require.Contains(t, err.Error(), "Refresh token revoked")
	})

	t.Run("refresh token kept when not rotated", func(t *testing.T) {
		idp := newIdentityProvider(t, "refresh_token")
		exchanger, err := apiclient.DiscoverOAuth2Exchanger(ctx, idp.URL, "procurectl", "secret", idp.Client())
		require.NoError(t, err)

		pair, err := exchanger.Exchange(ctx, "R1")
		require.NoError(t, err)
		require.Equal(t, "A2", pair.AccessToken)
		require.Equal(t, "R1", pair.RefreshToken)
	})

	t.Run("missing access token", func(t *testing.T) {
		idp := newIdentityProvider(t, "access_token")
		exchanger, err := apiclient.DiscoverOAuth2Exchanger(ctx, idp.URL, "procurectl", "secret", idp.Client())
		require.NoError(t, err)

		_, err = exchanger.Exchange(ctx, "R1")
		require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
	})

	t.Run("issuer unreachable", func(t *testing.T) {
		_, err := apiclient.DiscoverOAuth2Exchanger(ctx, "http://127.0.0.1:1", "procurectl", "", nil)
		require.Error(t, err)
	})
}
