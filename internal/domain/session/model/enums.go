// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "github.com/ManuGH/avalon/internal/domain/rules"

// Phase is the session's state-machine state.
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhaseProposal      Phase = "proposal"
	PhaseTeamVote      Phase = "team_vote"
	PhaseQuestVote     Phase = "quest_vote"
	PhaseAssassination Phase = "assassination"
	PhaseFinished      Phase = "finished"
)

// AllPhases lists every phase in play order.
var AllPhases = []Phase{
	PhaseWaiting,
	PhaseProposal,
	PhaseTeamVote,
	PhaseQuestVote,
	PhaseAssassination,
	PhaseFinished,
}

// InGame reports whether the phase is part of active play.
func (p Phase) InGame() bool {
	switch p {
	case PhaseProposal, PhaseTeamVote, PhaseQuestVote, PhaseAssassination:
		return true
	}
	return false
}

// Idle reports whether the phase is eligible for idle cleanup.
func (p Phase) Idle() bool {
	return p == PhaseWaiting || p == PhaseFinished
}

// TeamVote is a ballot on a proposed team.
type TeamVote bool

const (
	Approve TeamVote = true
	Reject  TeamVote = false
)

// QuestVote is a ballot cast on a quest.
type QuestVote bool

const (
	Success QuestVote = true
	Fail    QuestVote = false
)

// Winner is the alignment that won a finished game.
type Winner = rules.Alignment

// EndReason is the persisted taxonomy of terminal outcomes.
type EndReason string

const (
	EndQuestsEvil           EndReason = "quests_evil"
	EndRejection            EndReason = "rejection"
	EndAssassinationSuccess EndReason = "assassination_success"
	EndAssassinationFailed  EndReason = "assassination_failed"
)

// Outcome is the definitive result of a finished game.
type Outcome struct {
	Winner Winner
	Reason EndReason
}
