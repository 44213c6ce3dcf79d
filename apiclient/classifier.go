package apiclient

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/procure-client/oauthmodel"
)

// RawResponse is what came back from the network for one call.
// Err is set for transport failures, in which case the other fields are empty.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

// Classify labels a completed call. It has no side effects.
//
// A 401 means the session expired unless the request was already a replay, or
// was sent without credentials in the first place; both are final client errors
// so that a refresh can never loop.
func Classify(req *Request, raw RawResponse) Outcome {
	if raw.Err != nil {
		return networkError(raw.Err.Error())
	}

	out := Outcome{
		Status: raw.StatusCode,
		Header: raw.Header,
		Body:   raw.Body,
	}

	switch {
	case raw.StatusCode >= 200 && raw.StatusCode < 300:
		out.Kind = KindSuccess
		return out
	case raw.StatusCode == http.StatusUnauthorized && !req.IsRetry && !req.Unauthenticated:
		out.Kind = KindSessionExpired
	case raw.StatusCode >= 500:
		out.Kind = KindServerError
	default:
		out.Kind = KindClientError
	}

	out.Message = oauthmodel.ErrorMessage(raw.Body)
	if out.Message == "" {
		out.Message = fmt.Sprintf("request failed with status code %d", raw.StatusCode)
	}
	return out
}
