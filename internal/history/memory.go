// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"slices"
	"sync"

	"github.com/ManuGH/avalon/internal/domain/session/model"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []GameRecord
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveGame(_ context.Context, rec GameRecord) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	rec.Players = slices.Clone(rec.Players)
	rec.QuestResults = slices.Clone(rec.QuestResults)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *MemoryStore) guildRecords(guildID string) []GameRecord {
	var out []GameRecord
	for _, rec := range m.records {
		if rec.GuildID == guildID {
			out = append(out, rec)
		}
	}
	return out
}

func (m *MemoryStore) History(_ context.Context, guildID string, limit int) ([]GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := m.guildRecords(guildID)
	// newest insert first among equal timestamps
	slices.Reverse(out)
	sortNewestFirst(out)
	limit = NormalizeLimit(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) PlayerStats(_ context.Context, player model.PlayerID, guildID string) (PlayerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return PlayerStats{}, ErrClosed
	}
	return Tally(participationsFor(m.guildRecords(guildID), player)), nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
