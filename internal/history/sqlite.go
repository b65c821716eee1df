// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/persistence/sqlite"
	"github.com/jmoiron/sqlx"
)

// Each entry is one migration step, applied in order against PRAGMA user_version.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id            TEXT PRIMARY KEY,
		guild_id      TEXT NOT NULL,
		channel_id    TEXT NOT NULL,
		winner        TEXT NOT NULL,
		end_reason    TEXT NOT NULL,
		player_count  INTEGER NOT NULL,
		quest_results TEXT NOT NULL,
		ended_at      INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS game_players (
		game_id   TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL,
		role      TEXT NOT NULL,
		alignment TEXT NOT NULL,
		PRIMARY KEY (game_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_guild_ended ON games (guild_id, ended_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_game_players_user ON game_players (user_id)`,
}

// SqliteStore persists history in SQLite.
type SqliteStore struct {
	db *sqlx.DB
}

type gameRow struct {
	ID           string `db:"id"`
	GuildID      string `db:"guild_id"`
	ChannelID    string `db:"channel_id"`
	Winner       string `db:"winner"`
	EndReason    string `db:"end_reason"`
	PlayerCount  int    `db:"player_count"`
	QuestResults string `db:"quest_results"`
	EndedAt      int64  `db:"ended_at"`
}

type playerRow struct {
	GameID    string `db:"game_id"`
	UserID    string `db:"user_id"`
	Role      string `db:"role"`
	Alignment string `db:"alignment"`
}

// NewSqliteStore opens (and migrates) the history database at dbPath.
func NewSqliteStore(ctx context.Context, dbPath string) (*SqliteStore, error) {
	raw, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, raw, sqliteMigrations); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("history store: migration failed: %w", err)
	}
	return &SqliteStore{db: sqlx.NewDb(raw, sqlite.DriverName)}, nil
}

func (s *SqliteStore) SaveGame(ctx context.Context, rec GameRecord) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	quests, err := json.Marshal(questStrings(rec.QuestResults))
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO games (id, guild_id, channel_id, winner, end_reason, player_count, quest_results, ended_at)
		VALUES (:id, :guild_id, :channel_id, :winner, :end_reason, :player_count, :quest_results, :ended_at)`,
		gameRow{
			ID:           rec.ID,
			GuildID:      rec.GuildID,
			ChannelID:    rec.ChannelID,
			Winner:       string(rec.Winner),
			EndReason:    string(rec.EndReason),
			PlayerCount:  rec.PlayerCount,
			QuestResults: string(quests),
			EndedAt:      rec.EndedAt.UnixMilli(),
		})
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}

	for _, p := range rec.Players {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO game_players (game_id, user_id, role, alignment)
			VALUES (:game_id, :user_id, :role, :alignment)`,
			playerRow{GameID: rec.ID, UserID: string(p.UserID), Role: string(p.Role), Alignment: string(p.Alignment)})
		if err != nil {
			return "", fmt.Errorf("insert player %s: %w", p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *SqliteStore) History(ctx context.Context, guildID string, limit int) ([]GameRecord, error) {
	var games []gameRow
	err := s.db.SelectContext(ctx, &games, `
		SELECT id, guild_id, channel_id, winner, end_reason, player_count, quest_results, ended_at
		FROM games
		WHERE guild_id = ?
		ORDER BY ended_at DESC, rowid DESC
		LIMIT ?`, guildID, NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	if len(games) == 0 {
		return []GameRecord{}, nil
	}

	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	query, args, err := sqlx.In(`
		SELECT game_id, user_id, role, alignment
		FROM game_players
		WHERE game_id IN (?)
		ORDER BY rowid`, ids)
	if err != nil {
		return nil, err
	}
	var players []playerRow
	if err := s.db.SelectContext(ctx, &players, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	seats := make(map[string][]PlayerRecord, len(games))
	for _, p := range players {
		seats[p.GameID] = append(seats[p.GameID], PlayerRecord{
			UserID:    model.PlayerID(p.UserID),
			Role:      rules.Role(p.Role),
			Alignment: rules.Alignment(p.Alignment),
		})
	}

	out := make([]GameRecord, 0, len(games))
	for _, g := range games {
		var quests []string
		if err := json.Unmarshal([]byte(g.QuestResults), &quests); err != nil {
			return nil, fmt.Errorf("decode quest results of %s: %w", g.ID, err)
		}
		out = append(out, GameRecord{
			ID:           g.ID,
			GuildID:      g.GuildID,
			ChannelID:    g.ChannelID,
			Winner:       rules.Alignment(g.Winner),
			EndReason:    model.EndReason(g.EndReason),
			PlayerCount:  g.PlayerCount,
			QuestResults: questResults(quests),
			EndedAt:      time.UnixMilli(g.EndedAt).UTC(),
			Players:      seats[g.ID],
		})
	}
	return out, nil
}

func (s *SqliteStore) PlayerStats(ctx context.Context, player model.PlayerID, guildID string) (PlayerStats, error) {
	var rows []Participation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT g.winner, gp.role, gp.alignment
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.user_id = ? AND g.guild_id = ?`, string(player), guildID)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("select participations: %w", err)
	}
	return Tally(rows), nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func questStrings(in []rules.QuestResult) []string {
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = string(r)
	}
	return out
}

func questResults(in []string) []rules.QuestResult {
	out := make([]rules.QuestResult, len(in))
	for i, r := range in {
		out[i] = rules.QuestResult(r)
	}
	return out
}
