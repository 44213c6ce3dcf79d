package oauthmodel

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMissingAccessToken   = errors.New("token response has no access token")
	ErrMissingRefreshToken  = errors.New("token response has no refresh token")
	ErrUnsupportedTokenType = errors.New("unsupported token type")
)

// ErrorBody is the structured error payload returned by the API.
// FastAPI handlers answer with {"detail": "..."}; OAuth2 endpoints with
// {"error": "...", "error_description": "..."}.
type ErrorBody struct {
	Detail           json.RawMessage `json:"detail,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
	Message          string          `json:"message,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// ErrorMessage extracts the most specific human readable message from a response
// body. It returns "" when the body carries no structured error.
func ErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := detailMessage(eb.Detail); msg != "" {
		return msg
	}
	for _, msg := range []string{eb.ErrorDescription, eb.Message, eb.Error} {
		if strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}

// detailMessage handles both detail forms FastAPI emits: a plain string, or a
// list of validation errors each carrying "msg".
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
