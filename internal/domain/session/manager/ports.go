// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
)

// Notifier delivers outbound messages. Implementations must be safe for
// concurrent use; DMs are fanned out in parallel.
type Notifier interface {
	SendDirectMessage(ctx context.Context, player model.PlayerID, content string) error
	PostToChannel(ctx context.Context, key model.SessionKey, content string) error
}

// HistoryWriter persists completed games.
type HistoryWriter interface {
	SaveGame(ctx context.Context, rec history.GameRecord) (string, error)
}

type nopNotifier struct{}

func (nopNotifier) SendDirectMessage(context.Context, model.PlayerID, string) error { return nil }
func (nopNotifier) PostToChannel(context.Context, model.SessionKey, string) error   { return nil }

type nopHistory struct{}

func (nopHistory) SaveGame(context.Context, history.GameRecord) (string, error) { return "", nil }
