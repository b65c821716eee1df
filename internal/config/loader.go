// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/avalon/internal/log"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix marks every environment variable the loader reads.
	EnvPrefix = "AVALON_"
	// ConfigPathEnv names the config file when --config is not given.
	ConfigPathEnv = EnvPrefix + "CONFIG"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys read during the last Load
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		// The CLI reads the config path itself.
		ConsumedEnvKeys: map[string]struct{}{ConfigPathEnv: {}},
	}
}

// Path returns the config file path, empty when running from env only.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseStringList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then
// validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	l.warnUnknownEnv()

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the YAML file over cfg. Unknown fields are rejected so a
// typo never silently falls back to a default.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expandEnv(string(data)))))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Log.Level = l.envString(EnvPrefix+"LOG_LEVEL", cfg.Log.Level)

	cfg.Game.QuestTimeout = l.envDuration(EnvPrefix+"QUEST_TIMEOUT", cfg.Game.QuestTimeout)
	cfg.Game.LobbyIdle = l.envDuration(EnvPrefix+"LOBBY_IDLE", cfg.Game.LobbyIdle)
	cfg.Game.FinishedIdle = l.envDuration(EnvPrefix+"FINISHED_IDLE", cfg.Game.FinishedIdle)

	cfg.History.Backend = l.envString(EnvPrefix+"HISTORY_BACKEND", cfg.History.Backend)
	cfg.History.Path = l.envString(EnvPrefix+"HISTORY_PATH", cfg.History.Path)
	cfg.History.Redis.Addr = l.envString(EnvPrefix+"REDIS_ADDR", cfg.History.Redis.Addr)
	cfg.History.Redis.Password = l.envString(EnvPrefix+"REDIS_PASSWORD", cfg.History.Redis.Password)
	cfg.History.Redis.DB = l.envInt(EnvPrefix+"REDIS_DB", cfg.History.Redis.DB)
	cfg.History.Cassandra.Hosts = l.envList(EnvPrefix+"CASSANDRA_HOSTS", cfg.History.Cassandra.Hosts)
	cfg.History.Cassandra.Keyspace = l.envString(EnvPrefix+"CASSANDRA_KEYSPACE", cfg.History.Cassandra.Keyspace)
	cfg.History.Cassandra.Consistency = l.envString(EnvPrefix+"CASSANDRA_CONSISTENCY", cfg.History.Cassandra.Consistency)
	cfg.History.Cassandra.Username = l.envString(EnvPrefix+"CASSANDRA_USERNAME", cfg.History.Cassandra.Username)
	cfg.History.Cassandra.Password = l.envString(EnvPrefix+"CASSANDRA_PASSWORD", cfg.History.Cassandra.Password)

	cfg.API.ListenAddr = l.envString(EnvPrefix+"LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.API.ShutdownTimeout = l.envDuration(EnvPrefix+"SHUTDOWN_TIMEOUT", cfg.API.ShutdownTimeout)
	cfg.API.RateLimit.Requests = l.envInt(EnvPrefix+"RATE_LIMIT_REQUESTS", cfg.API.RateLimit.Requests)
	cfg.API.RateLimit.Window = l.envDuration(EnvPrefix+"RATE_LIMIT_WINDOW", cfg.API.RateLimit.Window)

	cfg.Notify.Mode = l.envString(EnvPrefix+"NOTIFY_MODE", cfg.Notify.Mode)
	cfg.Notify.WebhookURL = l.envString(EnvPrefix+"WEBHOOK_URL", cfg.Notify.WebhookURL)
	cfg.Notify.DMRatePerSecond = l.envFloat(EnvPrefix+"DM_RATE", cfg.Notify.DMRatePerSecond)
	cfg.Notify.DMBurst = l.envInt(EnvPrefix+"DM_BURST", cfg.Notify.DMBurst)
	cfg.Notify.Fanout = l.envInt(EnvPrefix+"DM_FANOUT", cfg.Notify.Fanout)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvPrefix+"OTLP_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvPrefix+"TRACE_SAMPLING", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvPrefix+"ENVIRONMENT", cfg.Telemetry.Environment)
}

// UnknownEnvKeys lists AVALON_ variables set in the environment that the
// loader never read, sorted.
func (l *Loader) UnknownEnvKeys() []string {
	var unknown []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func (l *Loader) warnUnknownEnv() {
	unknown := l.UnknownEnvKeys()
	if len(unknown) == 0 {
		return
	}
	logger := log.WithComponent("config")
	logger.Warn().
		Strs("keys", unknown).
		Str(log.FieldEvent, "config.unknown_env").
		Msg("ignoring unknown environment variables")
}
