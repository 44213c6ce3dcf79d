package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginRoute() string
}

type mainConfig struct {
	EnvVars
	Session
	OAuth
}

func New() Config {
	return mainConfig{}
}
