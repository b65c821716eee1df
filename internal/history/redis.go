// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "avalon:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// RedisStore keeps each record as JSON with a per-guild sorted set (scored
// by end time) and a per-player membership set as indexes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func gameKey(id string) string { return redisPrefix + "game:" + id }

func guildGamesKey(guildID string) string { return redisPrefix + "guild:" + guildID + ":games" }

func playerGamesKey(guildID string, player model.PlayerID) string {
	return redisPrefix + "guild:" + guildID + ":player:" + string(player) + ":games"
}

func (s *RedisStore) SaveGame(ctx context.Context, rec GameRecord) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(rec.ID), buf, 0)
		pipe.ZAdd(ctx, guildGamesKey(rec.GuildID), redis.Z{
			Score:  float64(rec.EndedAt.UnixMilli()),
			Member: rec.ID,
		})
		for _, p := range rec.Players {
			pipe.SAdd(ctx, playerGamesKey(rec.GuildID, p.UserID), rec.ID)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis save game: %w", err)
	}
	return rec.ID, nil
}

func (s *RedisStore) History(ctx context.Context, guildID string, limit int) ([]GameRecord, error) {
	ids, err := s.client.ZRevRange(ctx, guildGamesKey(guildID), 0, int64(NormalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history index: %w", err)
	}
	records, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

func (s *RedisStore) PlayerStats(ctx context.Context, player model.PlayerID, guildID string) (PlayerStats, error) {
	ids, err := s.client.SMembers(ctx, playerGamesKey(guildID, player)).Result()
	if err != nil {
		return PlayerStats{}, fmt.Errorf("redis player index: %w", err)
	}
	records, err := s.load(ctx, ids)
	if err != nil {
		return PlayerStats{}, err
	}
	return Tally(participationsFor(records, player)), nil
}

// load fetches records by id; ids whose payload vanished are skipped.
func (s *RedisStore) load(ctx context.Context, ids []string) ([]GameRecord, error) {
	out := make([]GameRecord, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load games: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec GameRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
