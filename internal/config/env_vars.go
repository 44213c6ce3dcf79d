package config

import (
	"os"
	"strings"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
	loginRouteVar     = "LOGIN_ROUTE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Procure CLI")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the marketplace API root (e.g., "https://api.example.com").
// Request paths are resolved against it, so a trailing slash is dropped.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8100"), "/")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return GetDuration(requestTimeoutVar, 30*time.Second)
}

// GetLoginRoute is where the user is sent once the session cannot be recovered.
func (EnvVars) GetLoginRoute() string {
	return GetEnv(loginRouteVar, "/auth/login")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses a Go duration string ("45s", "2m"), falling back to the
// default when the variable is unset or malformed.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
