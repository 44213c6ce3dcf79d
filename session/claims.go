package session

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrOpaqueToken is returned by ParseClaims for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is the metadata a client can read out of its own access token.
// The signature is not verified: the API does that, the client only uses the
// values to schedule refreshes and label the session.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	UserType  UserType
}

// ParseClaims decodes the claims of a JWT access token without verifying it.
func ParseClaims(rawToken string) (*Claims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Join(ErrOpaqueToken, err)
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = mapClaims.GetSubject()
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}

	// Supabase-issued tokens keep the role under user_metadata.
	if ut, ok := mapClaims["user_type"].(string); ok {
		c.UserType, _ = ParseUserType(ut)
	} else if meta, ok := mapClaims["user_metadata"].(map[string]any); ok {
		if ut, ok := meta["user_type"].(string); ok {
			c.UserType, _ = ParseUserType(ut)
		}
	}

	return c, nil
}

// ExpiresWithin reports whether the token expires within d of now.
// Tokens without an exp claim never expire from the client's point of view.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !NowTimeFunc().Add(d).Before(c.ExpiresAt)
}
