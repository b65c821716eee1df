// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys shared by the engine, the HTTP layer and the stores.
const (
	GuildIDKey   = "avalon.guild_id"
	ChannelIDKey = "avalon.channel_id"
	ActionKey    = "avalon.op"
	ActorKey     = "avalon.actor"
	PhaseKey     = "avalon.phase"
	RoundKey     = "avalon.round"

	HistoryBackendKey = "history.backend"
	HistoryLimitKey   = "history.limit"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// SessionAttributes identifies the session a span works on.
func SessionAttributes(guildID, channelID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GuildIDKey, guildID),
		attribute.String(ChannelIDKey, channelID),
	}
}

// ActionAttributes describes one engine action. An empty actor is omitted.
func ActionAttributes(guildID, channelID, op, actor string) []attribute.KeyValue {
	attrs := append(SessionAttributes(guildID, channelID), attribute.String(ActionKey, op))
	if actor != "" {
		attrs = append(attrs, attribute.String(ActorKey, actor))
	}
	return attrs
}

// HistoryAttributes describes a history store query.
func HistoryAttributes(backend, guildID string, limit int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(HistoryBackendKey, backend)}
	if guildID != "" {
		attrs = append(attrs, attribute.String(GuildIDKey, guildID))
	}
	if limit > 0 {
		attrs = append(attrs, attribute.Int(HistoryLimitKey, limit))
	}
	return attrs
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
