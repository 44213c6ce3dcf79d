package config

import "time"

type OAuthConfig interface {
	GetRefreshPath() string
	GetRefreshSkew() time.Duration
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "/api/auth/refresh")
}

// GetRefreshSkew is how close to expiry a JWT access token may get before it is
// refreshed ahead of use. Zero disables proactive refresh.
func (OAuth) GetRefreshSkew() time.Duration {
	return GetDuration("REFRESH_SKEW", 30*time.Second)
}

// GetOIDCIssuer switches refresh to the standard refresh_token grant against the
// issuer's discovered token endpoint. Empty means the marketplace refresh endpoint.
func (OAuth) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (OAuth) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (OAuth) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}
