package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/server"
	"github.com/jonathan/career-assistant/internal/server/ratelimit"
	"github.com/jonathan/career-assistant/internal/session"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the analysis, dashboard and follow-up chat per session.

Sessions are kept in Redis when REDIS_URL is set and in memory otherwise.
SESSION_SECRET signs the session tokens and is required.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if cmd.Flags().Changed("port") {
				e.cfg.Port = port
			}

			jwtConfig, err := config.NewJWTConfig(e.cfg.SessionSecret)
			if err != nil {
				return err
			}

			store, closeStore, err := openSessionStore(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeStore()

			recorder, closeRecorder, err := openRecorder(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeRecorder()

			sessions := session.NewService(store, e.backends, session.Options{
				Recorder:     recorder,
				HistoryTurns: e.cfg.HistoryTurns,
				Logger:       e.log,
			})

			srv := server.New(server.Config{
				Port:      e.cfg.Port,
				RateLimit: ratelimit.LoadConfig(e.cfg.RequestsPerMinute),
			}, sessions, server.NewJWTService(jwtConfig), e.log)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides config)")
	return cmd
}

// openSessionStore connects to Redis when configured and falls back to memory.
func openSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, sessions are kept in memory")
		return session.NewMemoryStore(), func() {}, nil
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	store, err := session.NewRedisStore(cfg.RedisURL, ttl)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
