// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package history persists completed games and answers history and
// per-player statistics queries.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/google/uuid"
)

var (
	ErrInvalidRecord = errors.New("invalid game record")
	ErrClosed        = errors.New("history store closed")
)

// Store is implemented by every history backend.
type Store interface {
	// SaveGame persists rec and returns its record id. An empty rec.ID is
	// assigned a new UUID.
	SaveGame(ctx context.Context, rec GameRecord) (string, error)
	// History lists a guild's games, newest first.
	History(ctx context.Context, guildID string, limit int) ([]GameRecord, error)
	// PlayerStats aggregates a player's games within a guild.
	PlayerStats(ctx context.Context, player model.PlayerID, guildID string) (PlayerStats, error)
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// prepare validates rec and fills its id.
func prepare(rec GameRecord) (GameRecord, error) {
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.EndedAt = rec.EndedAt.UTC().Truncate(time.Millisecond)
	return rec, nil
}
