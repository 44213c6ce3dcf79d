package session

import (
	"strings"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
)

// UserType is the marketplace role the session was opened with.
type UserType string

const (
	UserTypeBuyer    UserType = "buyer"
	UserTypeSupplier UserType = "supplier"
)

// ParseUserType accepts the persisted or claimed form of a user type.
// Empty input is not an error and yields "".
func ParseUserType(s string) (UserType, error) {
	switch ut := UserType(strings.ToLower(strings.TrimSpace(s))); ut {
	case "", UserTypeBuyer, UserTypeSupplier:
		return ut, nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidUserType, "[ParseUserType] %q", s)
	}
}

// DashboardRoute is where the user lands after the session is created.
// Sessions without a known user type go to the buyer dashboard.
func (u UserType) DashboardRoute() string {
	if u == UserTypeSupplier {
		return "/dashboard/supplier"
	}
	return "/dashboard/buyer"
}

// Session is the token pair plus the user type for one authenticated context.
// A zero Session means "logged out".
type Session struct {
	AccessToken  string   // Attached to API calls as a bearer credential
	RefreshToken string   // Exchanged for a new pair when the access token is rejected
	UserType     UserType // buyer or supplier
}

// IsEmpty reports whether every field is cleared.
func (s Session) IsEmpty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.UserType == ""
}

// HasRefreshToken reports whether the session can be recovered after expiry.
func (s Session) HasRefreshToken() bool {
	return strings.TrimSpace(s.RefreshToken) != ""
}
