// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is an embedded key-value history store:
//   - records: key = "game:<id>" (JSON)
//   - guild index: key = "guild:<guild>:<ended ms, 20 digits>:<id>"
//   - player index: key = "player:<guild>:<user>:<id>"
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a store at path. An empty path keeps data in memory.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func badgerGameKey(id string) []byte { return []byte("game:" + id) }

func badgerGuildPrefix(guildID string) []byte { return []byte("guild:" + guildID + ":") }

func badgerPlayerPrefix(guildID string, player model.PlayerID) []byte {
	return []byte("player:" + guildID + ":" + string(player) + ":")
}

func (s *BadgerStore) SaveGame(_ context.Context, rec GameRecord) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	id := []byte(rec.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(badgerGameKey(rec.ID), buf); err != nil {
			return err
		}
		idx := fmt.Sprintf("%s%020d:%s", badgerGuildPrefix(rec.GuildID), rec.EndedAt.UnixMilli(), rec.ID)
		if err := txn.Set([]byte(idx), id); err != nil {
			return err
		}
		for _, p := range rec.Players {
			key := append(badgerPlayerPrefix(rec.GuildID, p.UserID), id...)
			if err := txn.Set(key, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("badger save game: %w", err)
	}
	return rec.ID, nil
}

func (s *BadgerStore) History(_ context.Context, guildID string, limit int) ([]GameRecord, error) {
	limit = NormalizeLimit(limit)
	out := make([]GameRecord, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := badgerGuildPrefix(guildID)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := getRecord(txn, string(id))
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) PlayerStats(_ context.Context, player model.PlayerID, guildID string) (PlayerStats, error) {
	var records []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := badgerPlayerPrefix(guildID, player)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := getRecord(txn, string(id))
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return PlayerStats{}, err
	}
	return Tally(participationsFor(records, player)), nil
}

func getRecord(txn *badger.Txn, id string) (GameRecord, error) {
	var rec GameRecord
	item, err := txn.Get(badgerGameKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return rec, fmt.Errorf("index points at missing game %s: %w", id, err)
		}
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
