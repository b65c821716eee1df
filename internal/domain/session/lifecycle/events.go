// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// EventKind is a domain event in the game lifecycle.
type EventKind int

const (
	EvUnknown EventKind = iota

	// Lobby and bookkeeping events; these never change the phase.
	EvJoin
	EvLeave
	EvCancel
	EvTeamVoteCast
	EvQuestVoteCast
	EvOpenRestart
	EvRestartVoteCast

	// Phase-changing events.
	EvStart
	EvPropose
	EvTeamApproved
	EvTeamRejected
	EvRejectionLimit
	EvQuestContinue
	EvQuestEvilWins
	EvQuestGoodWins
	EvAssassinate
	EvRestartAccepted
)

// AllEvents lists every event the tables must cover.
var AllEvents = []EventKind{
	EvJoin,
	EvLeave,
	EvCancel,
	EvTeamVoteCast,
	EvQuestVoteCast,
	EvOpenRestart,
	EvRestartVoteCast,
	EvStart,
	EvPropose,
	EvTeamApproved,
	EvTeamRejected,
	EvRejectionLimit,
	EvQuestContinue,
	EvQuestEvilWins,
	EvQuestGoodWins,
	EvAssassinate,
	EvRestartAccepted,
}

var eventNames = map[EventKind]string{
	EvUnknown:         "unknown",
	EvJoin:            "join",
	EvLeave:           "leave",
	EvCancel:          "cancel",
	EvTeamVoteCast:    "team_vote_cast",
	EvQuestVoteCast:   "quest_vote_cast",
	EvOpenRestart:     "open_restart",
	EvRestartVoteCast: "restart_vote_cast",
	EvStart:           "start",
	EvPropose:         "propose",
	EvTeamApproved:    "team_approved",
	EvTeamRejected:    "team_rejected",
	EvRejectionLimit:  "rejection_limit",
	EvQuestContinue:   "quest_continue",
	EvQuestEvilWins:   "quest_evil_wins",
	EvQuestGoodWins:   "quest_good_wins",
	EvAssassinate:     "assassinate",
	EvRestartAccepted: "restart_accepted",
}

func (e EventKind) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return "unknown"
}
