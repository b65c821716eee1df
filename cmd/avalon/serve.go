// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ManuGH/avalon/internal/api"
	"github.com/ManuGH/avalon/internal/config"
	"github.com/ManuGH/avalon/internal/domain/session/manager"
	"github.com/ManuGH/avalon/internal/history"
	xglog "github.com/ManuGH/avalon/internal/log"
	"github.com/ManuGH/avalon/internal/notify"
	"github.com/ManuGH/avalon/internal/ratelimit"
	"github.com/ManuGH/avalon/internal/telemetry"
	"github.com/ManuGH/avalon/internal/version"
)

const dmLimiterIdleTTL = 10 * time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session engine and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, loader, cfg)
		},
	}
}

// buildNotifier assembles the configured delivery channels. The hub is
// returned separately so the API can mount it.
func buildNotifier(cfg config.NotifyConfig) (notify.Notifier, *notify.Hub) {
	var (
		targets notify.Multi
		hub     *notify.Hub
	)
	for _, mode := range cfg.Modes() {
		switch mode {
		case config.NotifyLog:
			targets = append(targets, notify.NewLogNotifier())
		case config.NotifyWebhook:
			targets = append(targets, notify.NewRateLimited(
				notify.NewWebhookNotifier(cfg.WebhookURL),
				ratelimit.Config{
					Rate:    rate.Limit(cfg.DMRatePerSecond),
					Burst:   cfg.DMBurst,
					IdleTTL: dmLimiterIdleTTL,
				},
			))
		case config.NotifyWebsocket:
			hub = notify.NewHub()
			targets = append(targets, hub)
		}
	}
	if len(targets) == 1 {
		return targets[0], hub
	}
	return targets, hub
}

func serve(ctx context.Context, loader *config.Loader, cfg config.AppConfig) error {
	logger := xglog.WithComponent("serve")

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry.ProviderConfig(version.Version))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	store, err := history.Open(ctx, cfg.History.StoreConfig())
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return fmt.Errorf("open history: %w", err)
	}

	notifier, hub := buildNotifier(cfg.Notify)
	engine := manager.New(
		manager.WithNotifier(notifier),
		manager.WithHistory(store),
		manager.WithDurations(cfg.Game.Durations()),
		manager.WithFanout(cfg.Notify.Fanout),
	)

	holder := config.NewConfigHolder(cfg, loader)
	updates := make(chan config.AppConfig, 1)
	holder.RegisterListener(updates)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watch_failed").Msg("config hot reload disabled")
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-updates:
				engine.SetDurations(next.Game.Durations())
			}
		}
	}()

	var apiOpts []api.Option
	if hub != nil {
		apiOpts = append(apiOpts, api.WithHub(hub))
	}
	srv := api.New(api.Config{
		RateLimitRequests: cfg.API.RateLimit.Requests,
		RateLimitWindow:   cfg.API.RateLimit.Window,
		TracingService:    "avalon-api",
	}, engine, store, apiOpts...)

	httpServer := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str(xglog.FieldEvent, "server.start").
			Str("addr", cfg.API.ListenAddr).
			Str(xglog.FieldBackend, cfg.History.Backend).
			Strs("notify", cfg.Notify.Modes()).
			Msg("avalon listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	logger.Info().Str(xglog.FieldEvent, "server.shutdown").Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	holder.Stop()
	if hub != nil {
		hub.Close()
	}
	engine.Close()
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("close history store")
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("telemetry shutdown")
	}
	return serveErr
}
