package marketplace

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/jrsteele09/procure-client/apiclient"
	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/oauthmodel"
	"github.com/jrsteele09/procure-client/session"
)

// LinkedInAuthURL starts the LinkedIn sign in flow. The returned state must be
// passed back to LinkedInCallback.
func (c *Client) LinkedInAuthURL(ctx context.Context) (oauthmodel.LinkedInAuthResponse, error) {
	req := apiclient.NewRequest(http.MethodGet, "/api/auth/linkedin")
	req.Unauthenticated = true

	var resp oauthmodel.LinkedInAuthResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return oauthmodel.LinkedInAuthResponse{}, err
	}
	if resp.AuthorizationURL == "" {
		return oauthmodel.LinkedInAuthResponse{}, apperrors.Wrapf(apperrors.ErrInternal, "[LinkedInAuthURL] empty authorization URL")
	}
	return resp, nil
}

// LinkedInCallback completes the LinkedIn flow, stores the resulting session and
// returns the dashboard route for it. userType is the role picked on the sign
// in page; empty takes it from the token.
func (c *Client) LinkedInCallback(ctx context.Context, code, state string, userType session.UserType) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "[LinkedInCallback] authorization code is required")
	}

	req, err := apiclient.NewJSONRequest(http.MethodPost, "/api/auth/linkedin/callback", oauthmodel.LinkedInCallbackRequest{
		Code:  code,
		State: state,
	})
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "%v", err)
	}
	req.Unauthenticated = true

	var pair oauthmodel.TokenResponse
	if err := c.do(ctx, req, &pair); err != nil {
		return "", err
	}
	if pair.AccessToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrInternal, "[LinkedInCallback] %v", oauthmodel.ErrMissingAccessToken)
	}

	return c.api.Login(ctx, session.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserType:     userType,
	})
}

// Me returns the signed in user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, apiclient.NewRequest(http.MethodGet, "/api/auth/me"), &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SendVerificationEmail asks the API to mail a verification link, for users who
// did not sign in through LinkedIn.
func (c *Client) SendVerificationEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[SendVerificationEmail] invalid email %q", email)
	}
	req, err := apiclient.NewJSONRequest(http.MethodPost, "/api/auth/verify-email", verifyEmailRequest{Email: email})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "%v", err)
	}
	req.Unauthenticated = true
	return c.do(ctx, req, nil)
}

type verifyEmailRequest struct {
	Email string `json:"email"`
}
