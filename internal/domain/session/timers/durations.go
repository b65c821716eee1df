// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timers

import "time"

const (
	DefaultQuestVote    = 5 * time.Minute
	DefaultLobbyIdle    = 10 * time.Minute
	DefaultFinishedIdle = 3 * time.Minute
)

// Durations configures the two timer families.
type Durations struct {
	QuestVote    time.Duration
	LobbyIdle    time.Duration
	FinishedIdle time.Duration
}

// DefaultDurations returns the stock game timings.
func DefaultDurations() Durations {
	return Durations{
		QuestVote:    DefaultQuestVote,
		LobbyIdle:    DefaultLobbyIdle,
		FinishedIdle: DefaultFinishedIdle,
	}
}

// WithDefaults fills zero fields from DefaultDurations.
func (d Durations) WithDefaults() Durations {
	def := DefaultDurations()
	if d.QuestVote <= 0 {
		d.QuestVote = def.QuestVote
	}
	if d.LobbyIdle <= 0 {
		d.LobbyIdle = def.LobbyIdle
	}
	if d.FinishedIdle <= 0 {
		d.FinishedIdle = def.FinishedIdle
	}
	return d
}
