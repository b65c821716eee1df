// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldGuildID   = "guild_id"
	FieldChannelID = "channel_id"
	FieldPlayerID  = "player_id"
	FieldRecordID  = "record_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldAction    = "action"

	// Game state fields
	FieldPhase     = "phase"
	FieldOldPhase  = "old_phase"
	FieldNewPhase  = "new_phase"
	FieldRound     = "round"
	FieldEpoch     = "epoch"
	FieldWinner    = "winner"
	FieldEndReason = "end_reason"

	// Storage fields
	FieldBackend = "backend"
	FieldPath    = "path"
)
