package config

import "time"

type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
)

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionFile() string
	GetSessionKey() string
	GetRedisAddr() string
	GetSessionNamespace() string
	GetRefreshLockTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() SessionBackend {
	switch b := SessionBackend(GetEnv("SESSION_BACKEND", string(SessionBackendFile))); b {
	case SessionBackendMemory, SessionBackendFile, SessionBackendRedis:
		return b
	default:
		return SessionBackendFile
	}
}

func (Session) GetSessionFile() string {
	return GetEnv("SESSION_FILE", "./data/session.json")
}

// GetSessionKey is the passphrase used to encrypt the session file.
// When empty the file is written in plain JSON with owner-only permissions.
func (Session) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetSessionNamespace() string {
	return GetEnv("SESSION_NAMESPACE", "procure:session:default")
}

// GetRefreshLockTTL bounds how long one process may hold the shared refresh
// lock, and how long another waits for it. Keep it above REQUEST_TIMEOUT.
func (Session) GetRefreshLockTTL() time.Duration {
	return GetDuration("SESSION_LOCK_TTL", time.Minute)
}
