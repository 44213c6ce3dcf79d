package oauthmodel

import "strings"

// TokenResponse is the token pair returned by the login, OAuth callback and refresh
// endpoints.
type TokenResponse struct {
	// AccessToken is the short-lived credential attached to API calls.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (30 minutes on the marketplace backend)
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged for a new pair once the access token is rejected.
	// Lifespan: Long-lived (24 hours on the marketplace backend)
	// Security: Stored with the session, rotates on each use
	RefreshToken string `json:"refresh_token"`

	// TokenType indicates how to use the access token (always "bearer").
	TokenType string `json:"token_type,omitempty"`
}

// Validate reports whether the pair is usable. A missing refresh token is
// rejected as well: the next expiry could not be recovered without one.
func (t TokenResponse) Validate() error {
	if strings.TrimSpace(t.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	if strings.TrimSpace(t.RefreshToken) == "" {
		return ErrMissingRefreshToken
	}
	if t.TokenType != "" && !strings.EqualFold(t.TokenType, "bearer") {
		return ErrUnsupportedTokenType
	}
	return nil
}
