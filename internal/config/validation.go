// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"time"

	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/validate"
)

var (
	historyBackends = []string{
		history.BackendMemory,
		history.BackendSqlite,
		history.BackendRedis,
		history.BackendBadger,
		history.BackendCassandra,
	}
	notifyModes = []string{NotifyLog, NotifyWebhook, NotifyWebsocket}
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("log.level", cfg.Log.Level)

	v.Duration("game.questTimeout", cfg.Game.QuestTimeout, time.Second, 24*time.Hour)
	v.Duration("game.lobbyIdle", cfg.Game.LobbyIdle, time.Second, 24*time.Hour)
	v.Duration("game.finishedIdle", cfg.Game.FinishedIdle, time.Second, 24*time.Hour)

	v.OneOf("history.backend", cfg.History.Backend, historyBackends)
	switch cfg.History.Backend {
	case history.BackendSqlite:
		v.ParentDirectory("history.path", cfg.History.Path)
	case history.BackendRedis:
		v.NotEmpty("history.redis.addr", cfg.History.Redis.Addr)
		v.Range("history.redis.db", cfg.History.Redis.DB, 0, 15)
	case history.BackendCassandra:
		v.Custom("history.cassandra.hosts", cfg.History.Cassandra.Hosts, func(value any) error {
			if len(value.([]string)) == 0 {
				return errors.New("at least one host required")
			}
			return nil
		})
		v.NotEmpty("history.cassandra.keyspace", cfg.History.Cassandra.Keyspace)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Duration("api.shutdownTimeout", cfg.API.ShutdownTimeout, time.Second, 5*time.Minute)
	if cfg.API.RateLimit.Requests > 0 {
		v.Duration("api.rateLimit.window", cfg.API.RateLimit.Window, time.Second, time.Hour)
	}

	modes := cfg.Notify.Modes()
	if len(modes) == 0 {
		v.AddError("notify.mode", "at least one notifier required", cfg.Notify.Mode)
	}
	for _, m := range modes {
		v.OneOf("notify.mode", m, notifyModes)
		if m == NotifyWebhook {
			v.URL("notify.webhookURL", cfg.Notify.WebhookURL, []string{"http", "https"})
		}
	}
	v.FloatRange("notify.dmRatePerSecond", cfg.Notify.DMRatePerSecond, 0, 1000)
	v.Positive("notify.dmBurst", cfg.Notify.DMBurst)
	v.Range("notify.fanout", cfg.Notify.Fanout, 1, 64)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
