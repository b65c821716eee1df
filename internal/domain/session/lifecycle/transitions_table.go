// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/avalon/internal/domain/session/model"

// Transition is a single allowed edge in the game state machine.
// Guard-only events are self edges.
type Transition struct {
	From  model.Phase
	To    model.Phase
	Event EventKind
}

// Decision records whether an event is allowed in a phase and why not.
type Decision struct {
	Allowed bool
	Reason  string
}

var transitionsTable = []Transition{
	// Lobby
	{From: model.PhaseWaiting, To: model.PhaseWaiting, Event: EvJoin},
	{From: model.PhaseWaiting, To: model.PhaseWaiting, Event: EvLeave},
	{From: model.PhaseFinished, To: model.PhaseFinished, Event: EvLeave},
	{From: model.PhaseWaiting, To: model.PhaseWaiting, Event: EvCancel},
	{From: model.PhaseFinished, To: model.PhaseFinished, Event: EvCancel},
	{From: model.PhaseWaiting, To: model.PhaseProposal, Event: EvStart},

	// Proposal loop
	{From: model.PhaseProposal, To: model.PhaseTeamVote, Event: EvPropose},
	{From: model.PhaseTeamVote, To: model.PhaseTeamVote, Event: EvTeamVoteCast},
	{From: model.PhaseTeamVote, To: model.PhaseQuestVote, Event: EvTeamApproved},
	{From: model.PhaseTeamVote, To: model.PhaseProposal, Event: EvTeamRejected},
	{From: model.PhaseTeamVote, To: model.PhaseFinished, Event: EvRejectionLimit},

	// Quest
	{From: model.PhaseQuestVote, To: model.PhaseQuestVote, Event: EvQuestVoteCast},
	{From: model.PhaseQuestVote, To: model.PhaseProposal, Event: EvQuestContinue},
	{From: model.PhaseQuestVote, To: model.PhaseFinished, Event: EvQuestEvilWins},
	{From: model.PhaseQuestVote, To: model.PhaseAssassination, Event: EvQuestGoodWins},

	// Endgame
	{From: model.PhaseAssassination, To: model.PhaseFinished, Event: EvAssassinate},

	// Restart revote, open from any started phase
	{From: model.PhaseProposal, To: model.PhaseProposal, Event: EvOpenRestart},
	{From: model.PhaseTeamVote, To: model.PhaseTeamVote, Event: EvOpenRestart},
	{From: model.PhaseQuestVote, To: model.PhaseQuestVote, Event: EvOpenRestart},
	{From: model.PhaseAssassination, To: model.PhaseAssassination, Event: EvOpenRestart},
	{From: model.PhaseFinished, To: model.PhaseFinished, Event: EvOpenRestart},

	{From: model.PhaseProposal, To: model.PhaseProposal, Event: EvRestartVoteCast},
	{From: model.PhaseTeamVote, To: model.PhaseTeamVote, Event: EvRestartVoteCast},
	{From: model.PhaseQuestVote, To: model.PhaseQuestVote, Event: EvRestartVoteCast},
	{From: model.PhaseAssassination, To: model.PhaseAssassination, Event: EvRestartVoteCast},
	{From: model.PhaseFinished, To: model.PhaseFinished, Event: EvRestartVoteCast},

	{From: model.PhaseProposal, To: model.PhaseProposal, Event: EvRestartAccepted},
	{From: model.PhaseTeamVote, To: model.PhaseProposal, Event: EvRestartAccepted},
	{From: model.PhaseQuestVote, To: model.PhaseProposal, Event: EvRestartAccepted},
	{From: model.PhaseAssassination, To: model.PhaseProposal, Event: EvRestartAccepted},
	{From: model.PhaseFinished, To: model.PhaseProposal, Event: EvRestartAccepted},
}

// TransitionFor returns the allowed transition for a given phase+event.
func TransitionFor(from model.Phase, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
