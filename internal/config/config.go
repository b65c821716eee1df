// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the service configuration from defaults, an optional
// YAML file and AVALON_ environment variables, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/timers"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/telemetry"
)

// Notifier modes. NotifyConfig.Mode is a comma separated list of these.
const (
	NotifyLog       = "log"
	NotifyWebhook   = "webhook"
	NotifyWebsocket = "websocket"
)

// AppConfig is the complete service configuration.
type AppConfig struct {
	Version   string          `yaml:"-"`
	Log       LogConfig       `yaml:"log"`
	Game      GameConfig      `yaml:"game"`
	History   HistoryConfig   `yaml:"history"`
	API       APIConfig       `yaml:"api"`
	Notify    NotifyConfig    `yaml:"notify"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// GameConfig holds the timer lengths. Changes apply to newly scheduled timers.
type GameConfig struct {
	QuestTimeout time.Duration `yaml:"questTimeout"`
	LobbyIdle    time.Duration `yaml:"lobbyIdle"`
	FinishedIdle time.Duration `yaml:"finishedIdle"`
}

// Durations converts to the timer subsystem's settings.
func (g GameConfig) Durations() timers.Durations {
	return timers.Durations{
		QuestVote:    g.QuestTimeout,
		LobbyIdle:    g.LobbyIdle,
		FinishedIdle: g.FinishedIdle,
	}
}

type HistoryConfig struct {
	Backend   string          `yaml:"backend"`
	Path      string          `yaml:"path"`
	Redis     RedisConfig     `yaml:"redis"`
	Cassandra CassandraConfig `yaml:"cassandra"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CassandraConfig struct {
	Hosts       []string      `yaml:"hosts"`
	Keyspace    string        `yaml:"keyspace"`
	Consistency string        `yaml:"consistency"`
	Timeout     time.Duration `yaml:"timeout"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
}

// StoreConfig converts to the history factory's settings.
func (h HistoryConfig) StoreConfig() history.Config {
	return history.Config{
		Backend: h.Backend,
		Path:    h.Path,
		Redis: history.RedisConfig{
			Addr:     h.Redis.Addr,
			Password: h.Redis.Password,
			DB:       h.Redis.DB,
		},
		Cassandra: history.CassandraConfig{
			Hosts:       h.Cassandra.Hosts,
			Keyspace:    h.Cassandra.Keyspace,
			Consistency: h.Cassandra.Consistency,
			Timeout:     h.Cassandra.Timeout,
			Username:    h.Cassandra.Username,
			Password:    h.Cassandra.Password,
		},
	}
}

type APIConfig struct {
	ListenAddr      string          `yaml:"listenAddr"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig caps requests per client IP. Requests <= 0 disables it.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type NotifyConfig struct {
	Mode            string  `yaml:"mode"`
	WebhookURL      string  `yaml:"webhookURL"`
	DMRatePerSecond float64 `yaml:"dmRatePerSecond"`
	DMBurst         int     `yaml:"dmBurst"`
	Fanout          int     `yaml:"fanout"`
}

// Modes splits Mode into its trimmed, non-empty parts.
func (n NotifyConfig) Modes() []string {
	var out []string
	for _, m := range strings.Split(n.Mode, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// ProviderConfig converts to the tracing provider's settings.
func (t TelemetryConfig) ProviderConfig(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:        t.Enabled,
		ServiceName:    "avalon",
		ServiceVersion: version,
		Environment:    t.Environment,
		ExporterType:   t.Exporter,
		Endpoint:       t.Endpoint,
		SamplingRate:   t.SamplingRate,
	}
}

// Default returns the configuration used when nothing else is set.
func Default() AppConfig {
	d := timers.DefaultDurations()
	return AppConfig{
		Log: LogConfig{Level: "info"},
		Game: GameConfig{
			QuestTimeout: d.QuestVote,
			LobbyIdle:    d.LobbyIdle,
			FinishedIdle: d.FinishedIdle,
		},
		History: HistoryConfig{
			Backend: history.BackendMemory,
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Cassandra: CassandraConfig{
				Hosts:       []string{"localhost:9042"},
				Keyspace:    "avalon",
				Consistency: "QUORUM",
				Timeout:     5 * time.Second,
			},
		},
		API: APIConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       RateLimitConfig{Requests: 120, Window: time.Minute},
		},
		Notify: NotifyConfig{
			Mode:            NotifyLog,
			DMRatePerSecond: 1,
			DMBurst:         5,
			Fanout:          8,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}
