package oauthmodel

// RefreshRequest is the body sent to the marketplace refresh endpoint.
// Sent as JSON to POST /api/auth/refresh without an Authorization header.
type RefreshRequest struct {
	// RefreshToken is the long-lived credential issued at login.
	// Required: Yes
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Behavior: Rotated on every successful refresh; the old value is discarded
	RefreshToken string `json:"refresh_token"`
}

// LinkedInCallbackRequest carries the authorization code returned by the identity
// provider to the marketplace backend, which performs the provider exchange.
type LinkedInCallbackRequest struct {
	// Code is the one-time authorization code from the provider redirect.
	// Required: Yes
	// Example: "AQTx3kQ..."
	Code string `json:"code"`

	// State echoes the value issued by GET /api/auth/linkedin (CSRF protection).
	// Required: Yes
	State string `json:"state"`
}

// LinkedInAuthResponse is returned by GET /api/auth/linkedin.
type LinkedInAuthResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}
