// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package notify delivers engine output to players. Every type here
// satisfies manager.Notifier.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/log"
)

// Notifier is the outbound capability the engine consumes.
type Notifier interface {
	SendDirectMessage(ctx context.Context, player model.PlayerID, content string) error
	PostToChannel(ctx context.Context, key model.SessionKey, content string) error
}

// Event is the wire shape used by the webhook and websocket transports.
type Event struct {
	Kind      string         `json:"kind"`
	GuildID   string         `json:"guildId,omitempty"`
	ChannelID string         `json:"channelId,omitempty"`
	PlayerID  model.PlayerID `json:"playerId,omitempty"`
	Content   string         `json:"content"`
}

const (
	KindDirect  = "dm"
	KindChannel = "post"
)

func directEvent(player model.PlayerID, content string) Event {
	return Event{Kind: KindDirect, PlayerID: player, Content: content}
}

func channelEvent(key model.SessionKey, content string) Event {
	return Event{Kind: KindChannel, GuildID: key.GuildID, ChannelID: key.ChannelID, Content: content}
}

// LogNotifier writes channel posts to the structured log. Direct messages
// carry private role information, so only their size is logged.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.WithComponent("notify")}
}

func (n *LogNotifier) SendDirectMessage(_ context.Context, player model.PlayerID, content string) error {
	n.logger.Debug().
		Str(log.FieldEvent, "notify.dm").
		Str(log.FieldPlayerID, string(player)).
		Int("content_len", len(content)).
		Msg("direct message")
	deliveries.WithLabelValues("log", KindDirect, "ok").Inc()
	return nil
}

func (n *LogNotifier) PostToChannel(_ context.Context, key model.SessionKey, content string) error {
	n.logger.Info().
		Str(log.FieldEvent, "notify.post").
		Str(log.FieldGuildID, key.GuildID).
		Str(log.FieldChannelID, key.ChannelID).
		Str("content", content).
		Msg("channel post")
	deliveries.WithLabelValues("log", KindChannel, "ok").Inc()
	return nil
}

// Multi fans each message out to every notifier. Delivery counts as failed
// only when all of them fail.
type Multi []Notifier

func (m Multi) SendDirectMessage(ctx context.Context, player model.PlayerID, content string) error {
	return m.each(func(n Notifier) error { return n.SendDirectMessage(ctx, player, content) })
}

func (m Multi) PostToChannel(ctx context.Context, key model.SessionKey, content string) error {
	return m.each(func(n Notifier) error { return n.PostToChannel(ctx, key, content) })
}

func (m Multi) each(send func(Notifier) error) error {
	var errs []error
	for _, n := range m {
		if err := send(n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(m) {
		return errors.Join(errs...)
	}
	return nil
}
