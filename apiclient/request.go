package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is one outgoing API call. The body is kept as bytes so the call can be
// replayed after a token refresh.
type Request struct {
	Method string
	Path   string // Relative to the API base URL, or an absolute URL
	Query  url.Values
	Header http.Header
	Body   []byte

	// Unauthenticated requests are sent without a bearer token and never trigger
	// a refresh: login, registration, OAuth callback, the refresh exchange.
	Unauthenticated bool

	// IsRetry marks the single replay made after a refresh. A 401 on a retry is
	// final.
	IsRetry bool
}

// NewRequest creates a request without a body.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// NewJSONRequest creates a request carrying payload encoded as JSON.
func NewJSONRequest(method, path string, payload any) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("[NewJSONRequest] failed to encode %s %s body: %w", method, path, err)
	}
	req := NewRequest(method, path)
	req.Body = body
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// replay returns the copy dispatched after a successful refresh.
func (r *Request) replay() *Request {
	clone := *r
	clone.Header = r.Header.Clone()
	clone.Query = cloneValues(r.Query)
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	clone.IsRetry = true
	return &clone
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
