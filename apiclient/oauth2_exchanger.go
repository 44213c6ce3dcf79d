package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/oauthmodel"
)

// OAuth2Exchanger refreshes against a standard OAuth2 token endpoint using the
// refresh_token grant.
type OAuth2Exchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
}

var _ Exchanger = (*OAuth2Exchanger)(nil)

func NewOAuth2Exchanger(cfg *oauth2.Config, httpClient *http.Client) *OAuth2Exchanger {
	return &OAuth2Exchanger{config: cfg, httpClient: httpClient}
}

// DiscoverOAuth2Exchanger builds an OAuth2Exchanger whose token endpoint comes
// from the issuer's OIDC discovery document.
func DiscoverOAuth2Exchanger(ctx context.Context, issuer, clientID, clientSecret string, httpClient *http.Client) (*OAuth2Exchanger, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return NewOAuth2Exchanger(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, oidc.ScopeOfflineAccess},
	}, httpClient), nil
}

func (e *OAuth2Exchanger) Exchange(ctx context.Context, refreshToken string) (oauthmodel.TokenResponse, error) {
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	// A token with no access token is never valid, so the source always refreshes.
	tok, err := e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			msg := retrieveErr.ErrorDescription
			if msg == "" {
				msg = oauthmodel.ErrorMessage(retrieveErr.Body)
			}
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[OAuth2Exchanger] token endpoint answered %d: %s", status, msg)
		}
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[OAuth2Exchanger] %v", err)
	}

	// An endpoint that does not rotate refresh tokens omits it; x/oauth2 then
	// carries the one we sent over.
	pair := oauthmodel.TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
	}
	if err := pair.Validate(); err != nil {
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[OAuth2Exchanger] %v", err)
	}
	return pair, nil
}
