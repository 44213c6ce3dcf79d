package apiclient

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/oauthmodel"
)

// Exchanger trades a refresh token for a new token pair. Any error is a terminal
// refresh failure; implementations must not retry.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (oauthmodel.TokenResponse, error)
}

// EndpointExchanger calls the marketplace refresh endpoint
// (POST {"refresh_token": ...}) through a Dispatcher, unauthenticated, so the
// exchange can never pass back through the Coordinator.
type EndpointExchanger struct {
	dispatcher *Dispatcher
	path       string
}

var _ Exchanger = (*EndpointExchanger)(nil)

func NewEndpointExchanger(dispatcher *Dispatcher, path string) *EndpointExchanger {
	return &EndpointExchanger{dispatcher: dispatcher, path: path}
}

func (e *EndpointExchanger) Exchange(ctx context.Context, refreshToken string) (oauthmodel.TokenResponse, error) {
	req, err := NewJSONRequest(http.MethodPost, e.path, oauthmodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[EndpointExchanger] %v", err)
	}
	req.Unauthenticated = true

	out := e.dispatcher.Send(ctx, req)
	var pair oauthmodel.TokenResponse
	if err := out.Decode(&pair); err != nil {
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[EndpointExchanger] %v", err)
	}
	if err := pair.Validate(); err != nil {
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[EndpointExchanger] %v", err)
	}
	return pair, nil
}
