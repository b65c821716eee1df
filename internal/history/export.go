// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"encoding/json"
	"fmt"

	xglog "github.com/ManuGH/avalon/internal/log"
	"github.com/google/renameio/v2"
)

// Export is the on-disk shape written by ExportGuild.
type Export struct {
	GuildID string       `json:"guildId"`
	Games   []GameRecord `json:"games"`
}

// ExportGuild writes up to limit of a guild's games to path as indented JSON.
// The file is replaced atomically, so readers never observe a partial export.
func ExportGuild(ctx context.Context, store Store, guildID string, limit int, path string) (int, error) {
	logger := xglog.FromContext(ctx)

	games, err := store.History(ctx, guildID, limit)
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return 0, fmt.Errorf("create pending export file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending export file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export{GuildID: guildID, Games: games}); err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("atomically replace export file: %w", err)
	}
	return len(games), nil
}
