package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
)

// Kind labels a completed call.
type Kind int

const (
	KindSuccess Kind = iota
	KindSessionExpired
	KindClientError
	KindServerError
	KindNetworkError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindSessionExpired:
		return "session_expired"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	case KindNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// sessionExpiredMessage is the message of the terminal 401 handed to every
// caller whose session could not be refreshed.
const sessionExpiredMessage = "session expired"

// Outcome is the classified result of a call. Callers of Manager.Send never see
// KindSessionExpired.
type Outcome struct {
	Kind    Kind
	Status  int    // HTTP status; 0 for network errors
	Message string // Human readable reason for non-success outcomes
	Body    []byte
	Header  http.Header

	// RefreshFailure marks the terminal 401 produced after the session could
	// not be refreshed. It is never shown to the user.
	RefreshFailure bool

	// sentToken is the bearer token the call carried.
	sentToken string
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Decode unmarshals a successful JSON payload into v.
func (o Outcome) Decode(v any) error {
	if err := o.Err(); err != nil {
		return err
	}
	if v == nil || len(o.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(o.Body, v); err != nil {
		return fmt.Errorf("[Outcome Decode] invalid response body: %w", err)
	}
	return nil
}

// Err returns nil for success and an *Error otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &Error{
		Kind:           o.Kind,
		Status:         o.Status,
		Message:        o.Message,
		RefreshFailure: o.RefreshFailure,
	}
}

// Error is the error form of a non-success Outcome. It unwraps to the matching
// sentinel in internal/errors.
type Error struct {
	Kind           Kind
	Status         int
	Message        string
	RefreshFailure bool
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap yields the sentinel for the outcome kind, plus ErrNotFound for a 404.
func (e *Error) Unwrap() []error {
	switch {
	case e.RefreshFailure, e.Kind == KindSessionExpired:
		return []error{apperrors.ErrSessionExpired}
	case e.Kind == KindClientError && e.Status == http.StatusNotFound:
		return []error{apperrors.ErrClientError, apperrors.ErrNotFound}
	case e.Kind == KindClientError:
		return []error{apperrors.ErrClientError}
	case e.Kind == KindServerError:
		return []error{apperrors.ErrServerError}
	case e.Kind == KindNetworkError:
		return []error{apperrors.ErrNetwork}
	default:
		return []error{apperrors.ErrInternal}
	}
}

func networkError(message string) Outcome {
	return Outcome{Kind: KindNetworkError, Message: message}
}

func refreshFailure() Outcome {
	return Outcome{
		Kind:           KindClientError,
		Status:         http.StatusUnauthorized,
		Message:        sessionExpiredMessage,
		RefreshFailure: true,
	}
}
