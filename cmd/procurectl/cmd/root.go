package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/procure-client/apiclient"
	"github.com/jrsteele09/procure-client/internal/config"
	"github.com/jrsteele09/procure-client/marketplace"
	"github.com/jrsteele09/procure-client/session"
	"github.com/jrsteele09/procure-client/session/filekv"
	"github.com/jrsteele09/procure-client/session/kvfake"
	"github.com/jrsteele09/procure-client/session/rediskv"
)

var (
	logLevel string
	cfg      config.Config
	app      *App
)

var rootCmd = &cobra.Command{
	Use:           "procurectl",
	Short:         "Command line client for the procurement marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(level)
		if cfg.GetEnv() == "DEV" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		}

		app, err = NewApp(cmd.Context(), cfg)
		return err
	},
}

// Execute runs the command line with the given configuration.
func Execute(c config.Config) error {
	cfg = c
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// App holds the collaborators shared by every command.
type App struct {
	Manager *apiclient.Manager
	Client  *marketplace.Client
}

// NewApp builds the session backend and the authenticated client from cfg.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	kv, lock, err := newSessionKV(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.GetRequestTimeout(),
		Transport: apiclient.ChainTransport(nil,
			apiclient.UserAgentMiddleware("procurectl"),
			apiclient.LoggingMiddleware(cfg.GetEnv() == "DEV"),
		),
	}

	deps := apiclient.Deps{
		Store:       session.NewStore(kv),
		HTTPClient:  httpClient,
		RefreshLock: lock,
		Navigate: func(_ context.Context, route string) {
			fmt.Fprintf(os.Stderr, "Session ended. Sign in again (%s).\n", route)
		},
		Notify: func(n apiclient.Notice) {
			fmt.Fprintln(os.Stderr, "Error:", n.Message)
		},
	}

	if issuer := cfg.GetOIDCIssuer(); issuer != "" {
		exchanger, err := apiclient.DiscoverOAuth2Exchanger(ctx, issuer, cfg.GetOIDCClientID(), cfg.GetOIDCClientSecret(), httpClient)
		if err != nil {
			return nil, fmt.Errorf("[NewApp] %w", err)
		}
		deps.Exchanger = exchanger
	}

	manager, err := apiclient.NewManager(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &App{Manager: manager, Client: marketplace.NewClient(manager)}, nil
}

// newSessionKV opens the configured backend. The lock is nil unless the
// session can be shared with other processes.
func newSessionKV(cfg config.Config) (session.KV, apiclient.RefreshLock, error) {
	switch backend := cfg.GetSessionBackend(); backend {
	case config.SessionBackendMemory:
		return kvfake.NewFakeKV(), nil, nil
	case config.SessionBackendFile:
		return filekv.New(cfg.GetSessionFile(), cfg.GetSessionKey()), nil, nil
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		kv := rediskv.New(rdb, cfg.GetSessionNamespace(), 0)
		return kv, kv.RefreshLock(cfg.GetRefreshLockTTL()), nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
