// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avalon/internal/config"
	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/notify"
	"github.com/ManuGH/avalon/internal/version"
)

// useSqlite points the loader at a fresh sqlite history file.
func useSqlite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "history.db")
	t.Setenv(config.EnvPrefix+"HISTORY_BACKEND", history.BackendSqlite)
	t.Setenv(config.EnvPrefix+"HISTORY_PATH", path)
	t.Setenv(config.EnvPrefix+"LOG_LEVEL", "error")
	return path
}

func seed(t *testing.T, path string, games ...history.GameRecord) {
	t.Helper()
	ctx := context.Background()
	store, err := history.Open(ctx, history.Config{Backend: history.BackendSqlite, Path: path})
	require.NoError(t, err)
	defer store.Close()
	for _, g := range games {
		_, err := store.SaveGame(ctx, g)
		require.NoError(t, err)
	}
}

func game(guild string, winner rules.Alignment, endedAt time.Time) history.GameRecord {
	reason := model.EndQuestsEvil
	if winner == rules.Good {
		reason = model.EndAssassinationFailed
	}
	return history.GameRecord{
		GuildID:      guild,
		ChannelID:    "c1",
		Winner:       winner,
		EndReason:    reason,
		PlayerCount:  5,
		QuestResults: []rules.QuestResult{rules.QuestSuccess, rules.QuestFail, rules.QuestSuccess, rules.QuestSuccess},
		EndedAt:      endedAt,
		Players: []history.PlayerRecord{
			{UserID: "p1", Role: rules.Merlin, Alignment: rules.Good},
			{UserID: "p2", Role: rules.Percival, Alignment: rules.Good},
			{UserID: "p3", Role: rules.LoyalServant, Alignment: rules.Good},
			{UserID: "p4", Role: rules.Assassin, Alignment: rules.Evil},
			{UserID: "p5", Role: rules.Morgana, Alignment: rules.Evil},
		},
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestHistoryCommand(t *testing.T) {
	path := useSqlite(t)

	t.Run("Empty", func(t *testing.T) {
		out, err := run(t, "history", "--guild", "g1")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, out)
	})

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, path,
		game("g1", rules.Evil, base),
		game("g1", rules.Good, base.Add(time.Hour)),
		game("g2", rules.Good, base),
	)

	t.Run("NewestFirst", func(t *testing.T) {
		out, err := run(t, "history", "--guild", "g1")
		require.NoError(t, err)
		var games []history.GameRecord
		require.NoError(t, json.Unmarshal([]byte(out), &games))
		require.Len(t, games, 2)
		assert.Equal(t, rules.Good, games[0].Winner)
		assert.Equal(t, rules.Evil, games[1].Winner)
	})

	t.Run("Limit", func(t *testing.T) {
		out, err := run(t, "history", "--guild", "g1", "--limit", "1")
		require.NoError(t, err)
		var games []history.GameRecord
		require.NoError(t, json.Unmarshal([]byte(out), &games))
		assert.Len(t, games, 1)
	})

	t.Run("GuildRequired", func(t *testing.T) {
		_, err := run(t, "history")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "guild")
	})
}

func TestStatsCommand(t *testing.T) {
	path := useSqlite(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, path, game("g1", rules.Evil, base), game("g1", rules.Good, base.Add(time.Minute)))

	out, err := run(t, "stats", "--guild", "g1", "--player", "p1")
	require.NoError(t, err)

	var stats history.PlayerStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
}

func TestExportCommand(t *testing.T) {
	path := useSqlite(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seed(t, path, game("g1", rules.Evil, base))

	dest := filepath.Join(t.TempDir(), "g1.json")
	out, err := run(t, "export", "--guild", "g1", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 games")

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	var exported history.Export
	require.NoError(t, json.Unmarshal(raw, &exported))
	assert.Equal(t, "g1", exported.GuildID)
	assert.Len(t, exported.Games, 1)
}

func TestVerifyDBCommand(t *testing.T) {
	path := useSqlite(t)
	seed(t, path)

	t.Run("ConfiguredPath", func(t *testing.T) {
		out, err := run(t, "verify-db")
		require.NoError(t, err)
		assert.Equal(t, "ok", strings.TrimSpace(out))
	})

	t.Run("FullMode", func(t *testing.T) {
		out, err := run(t, "verify-db", "--path", path, "--mode", "full")
		require.NoError(t, err)
		assert.Equal(t, "ok", strings.TrimSpace(out))
	})

	t.Run("InvalidMode", func(t *testing.T) {
		_, err := run(t, "verify-db", "--mode", "deep")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
	})

	t.Run("NonSqliteBackend", func(t *testing.T) {
		t.Setenv(config.EnvPrefix+"HISTORY_BACKEND", history.BackendMemory)
		_, err := run(t, "verify-db")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--path")
	})
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv(config.EnvPrefix+"HISTORY_BACKEND", "floppy")
	_, err := run(t, "history", "--guild", "g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestBuildNotifier(t *testing.T) {
	cfg := config.Default().Notify

	n, hub := buildNotifier(cfg)
	assert.Nil(t, hub)
	assert.NotNil(t, n)

	cfg.Mode = "log,websocket"
	n, hub = buildNotifier(cfg)
	require.NotNil(t, hub)
	defer hub.Close()
	_, ok := n.(notify.Multi)
	require.True(t, ok)
	require.NoError(t, n.PostToChannel(context.Background(), model.SessionKey{GuildID: "g", ChannelID: "c"}, "hi"))
}
