package apiclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// ChainTransport applies mw to base so that mw[0] sees the request first.
func ChainTransport(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

const (
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	yellow     = "\033[33m"
	magenta    = "\033[35m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:    green,
	http.MethodPost:   blue,
	http.MethodPut:    cyan,
	http.MethodDelete: yellow,
	http.MethodPatch:  magenta,
}

// LoggingMiddleware logs each call at debug level. colour pads and colours the
// method for terminal output.
func LoggingMiddleware(colour bool) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			event := log.Debug().
				Str("method", displayMethod(r.Method, colour)).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get("X-Request-ID")).
				Dur("took", time.Since(start))
			if err != nil {
				event.Err(err).Msg("API call failed")
				return nil, err
			}
			event.Int("status", resp.StatusCode).Msg("API call")
			return resp, nil
		})
	}
}

// UserAgentMiddleware sets the User-Agent header unless the request already has one.
func UserAgentMiddleware(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

func displayMethod(method string, colour bool) string {
	if !colour {
		return method
	}
	padded := fmt.Sprintf(" %-7s", method)
	if c, ok := methodColors[method]; ok {
		return c + padded + resetColor
	}
	return gray + padded + resetColor
}
