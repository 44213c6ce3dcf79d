package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 10 << 20

// TokenSource supplies the bearer token for the next call. *session.Store
// implements it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Dispatcher sends requests to the marketplace API and classifies the result.
// It reads the session but never writes it.
type Dispatcher struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	headers    http.Header
}

// NewDispatcher creates a Dispatcher resolving request paths against baseURL.
func NewDispatcher(baseURL string, httpClient *http.Client, tokens TokenSource) (*Dispatcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[NewDispatcher] invalid base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("[NewDispatcher] base URL %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	return &Dispatcher{
		baseURL:    u,
		httpClient: httpClient,
		tokens:     tokens,
		headers:    headers,
	}, nil
}

// SetDefaultHeader adds a header sent with every request unless the request
// sets it itself.
func (d *Dispatcher) SetDefaultHeader(key, value string) {
	d.headers.Set(key, value)
}

// Send performs one call. Transport failures come back as KindNetworkError and
// are not retried.
func (d *Dispatcher) Send(ctx context.Context, req *Request) Outcome {
	target, err := d.resolve(req)
	if err != nil {
		return networkError(err.Error())
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return networkError(fmt.Sprintf("failed to build request: %v", err))
	}

	for key, values := range d.headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	for key, values := range req.Header {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	var sentToken string
	if !req.Unauthenticated && d.tokens != nil {
		token, err := d.tokens.AccessToken(ctx)
		if err != nil {
			log.Err(err).Str("path", req.Path).Msg("Dispatcher: failed to read access token")
			return networkError(fmt.Sprintf("failed to read session: %v", err))
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
			sentToken = token
		}
	}

	out := Classify(req, d.do(httpReq))
	out.sentToken = sentToken
	return out
}

func (d *Dispatcher) do(httpReq *http.Request) RawResponse {
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return RawResponse{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return RawResponse{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
}

func (d *Dispatcher) resolve(req *Request) (string, error) {
	ref, err := url.Parse(req.Path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}

	u := ref
	if !ref.IsAbs() {
		u = d.baseURL.JoinPath(ref.Path)
		u.RawQuery = ref.RawQuery
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
