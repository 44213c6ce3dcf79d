package session

import "context"

// Keys under which the session fields are persisted.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserType     = "user_type"
)

// KV is the durable key-value backend behind the Store.
// Get returns ("", nil) for a missing key. Clear removes every key in the
// backend's namespace.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

// BatchKV is a KV that can write several keys at once. SetMany applies every
// value or none; an empty value removes the key.
type BatchKV interface {
	KV
	SetMany(ctx context.Context, values map[string]string) error
}
