// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/avalon/internal/domain/session/model"

const (
	ForbiddenLobbyClosed    = "lobby_closed"
	ForbiddenGameInProgress = "game_in_progress"
	ForbiddenNotStarted     = "not_started"
	ForbiddenAlreadyStarted = "already_started"
	ForbiddenOutOfOrder     = "out_of_order"
	ForbiddenGameOver       = "game_over"
)

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable defines an explicit decision for every Phase×Event combination.
var decisionTable = map[model.Phase]map[EventKind]Decision{
	model.PhaseWaiting: {
		EvJoin:            allowed(),
		EvLeave:           allowed(),
		EvCancel:          allowed(),
		EvTeamVoteCast:    forbid(ForbiddenNotStarted),
		EvQuestVoteCast:   forbid(ForbiddenNotStarted),
		EvOpenRestart:     forbid(ForbiddenNotStarted),
		EvRestartVoteCast: forbid(ForbiddenNotStarted),
		EvStart:           allowed(),
		EvPropose:         forbid(ForbiddenNotStarted),
		EvTeamApproved:    forbid(ForbiddenNotStarted),
		EvTeamRejected:    forbid(ForbiddenNotStarted),
		EvRejectionLimit:  forbid(ForbiddenNotStarted),
		EvQuestContinue:   forbid(ForbiddenNotStarted),
		EvQuestEvilWins:   forbid(ForbiddenNotStarted),
		EvQuestGoodWins:   forbid(ForbiddenNotStarted),
		EvAssassinate:     forbid(ForbiddenNotStarted),
		EvRestartAccepted: forbid(ForbiddenNotStarted),
	},
	model.PhaseProposal: {
		EvJoin:            forbid(ForbiddenLobbyClosed),
		EvLeave:           forbid(ForbiddenGameInProgress),
		EvCancel:          forbid(ForbiddenGameInProgress),
		EvTeamVoteCast:    forbid(ForbiddenOutOfOrder),
		EvQuestVoteCast:   forbid(ForbiddenOutOfOrder),
		EvOpenRestart:     allowed(),
		EvRestartVoteCast: allowed(),
		EvStart:           forbid(ForbiddenAlreadyStarted),
		EvPropose:         allowed(),
		EvTeamApproved:    forbid(ForbiddenOutOfOrder),
		EvTeamRejected:    forbid(ForbiddenOutOfOrder),
		EvRejectionLimit:  forbid(ForbiddenOutOfOrder),
		EvQuestContinue:   forbid(ForbiddenOutOfOrder),
		EvQuestEvilWins:   forbid(ForbiddenOutOfOrder),
		EvQuestGoodWins:   forbid(ForbiddenOutOfOrder),
		EvAssassinate:     forbid(ForbiddenOutOfOrder),
		EvRestartAccepted: allowed(),
	},
	model.PhaseTeamVote: {
		EvJoin:            forbid(ForbiddenLobbyClosed),
		EvLeave:           forbid(ForbiddenGameInProgress),
		EvCancel:          forbid(ForbiddenGameInProgress),
		EvTeamVoteCast:    allowed(),
		EvQuestVoteCast:   forbid(ForbiddenOutOfOrder),
		EvOpenRestart:     allowed(),
		EvRestartVoteCast: allowed(),
		EvStart:           forbid(ForbiddenAlreadyStarted),
		EvPropose:         forbid(ForbiddenOutOfOrder),
		EvTeamApproved:    allowed(),
		EvTeamRejected:    allowed(),
		EvRejectionLimit:  allowed(),
		EvQuestContinue:   forbid(ForbiddenOutOfOrder),
		EvQuestEvilWins:   forbid(ForbiddenOutOfOrder),
		EvQuestGoodWins:   forbid(ForbiddenOutOfOrder),
		EvAssassinate:     forbid(ForbiddenOutOfOrder),
		EvRestartAccepted: allowed(),
	},
	model.PhaseQuestVote: {
		EvJoin:            forbid(ForbiddenLobbyClosed),
		EvLeave:           forbid(ForbiddenGameInProgress),
		EvCancel:          forbid(ForbiddenGameInProgress),
		EvTeamVoteCast:    forbid(ForbiddenOutOfOrder),
		EvQuestVoteCast:   allowed(),
		EvOpenRestart:     allowed(),
		EvRestartVoteCast: allowed(),
		EvStart:           forbid(ForbiddenAlreadyStarted),
		EvPropose:         forbid(ForbiddenOutOfOrder),
		EvTeamApproved:    forbid(ForbiddenOutOfOrder),
		EvTeamRejected:    forbid(ForbiddenOutOfOrder),
		EvRejectionLimit:  forbid(ForbiddenOutOfOrder),
		EvQuestContinue:   allowed(),
		EvQuestEvilWins:   allowed(),
		EvQuestGoodWins:   allowed(),
		EvAssassinate:     forbid(ForbiddenOutOfOrder),
		EvRestartAccepted: allowed(),
	},
	model.PhaseAssassination: {
		EvJoin:            forbid(ForbiddenLobbyClosed),
		EvLeave:           forbid(ForbiddenGameInProgress),
		EvCancel:          forbid(ForbiddenGameInProgress),
		EvTeamVoteCast:    forbid(ForbiddenOutOfOrder),
		EvQuestVoteCast:   forbid(ForbiddenOutOfOrder),
		EvOpenRestart:     allowed(),
		EvRestartVoteCast: allowed(),
		EvStart:           forbid(ForbiddenAlreadyStarted),
		EvPropose:         forbid(ForbiddenOutOfOrder),
		EvTeamApproved:    forbid(ForbiddenOutOfOrder),
		EvTeamRejected:    forbid(ForbiddenOutOfOrder),
		EvRejectionLimit:  forbid(ForbiddenOutOfOrder),
		EvQuestContinue:   forbid(ForbiddenOutOfOrder),
		EvQuestEvilWins:   forbid(ForbiddenOutOfOrder),
		EvQuestGoodWins:   forbid(ForbiddenOutOfOrder),
		EvAssassinate:     allowed(),
		EvRestartAccepted: allowed(),
	},
	model.PhaseFinished: {
		EvJoin:            forbid(ForbiddenLobbyClosed),
		EvLeave:           allowed(),
		EvCancel:          allowed(),
		EvTeamVoteCast:    forbid(ForbiddenGameOver),
		EvQuestVoteCast:   forbid(ForbiddenGameOver),
		EvOpenRestart:     allowed(),
		EvRestartVoteCast: allowed(),
		EvStart:           forbid(ForbiddenAlreadyStarted),
		EvPropose:         forbid(ForbiddenGameOver),
		EvTeamApproved:    forbid(ForbiddenGameOver),
		EvTeamRejected:    forbid(ForbiddenGameOver),
		EvRejectionLimit:  forbid(ForbiddenGameOver),
		EvQuestContinue:   forbid(ForbiddenGameOver),
		EvQuestEvilWins:   forbid(ForbiddenGameOver),
		EvQuestGoodWins:   forbid(ForbiddenGameOver),
		EvAssassinate:     forbid(ForbiddenGameOver),
		EvRestartAccepted: allowed(),
	},
}

// DecisionFor returns the explicit decision for phase+event.
func DecisionFor(phase model.Phase, ev EventKind) (Decision, bool) {
	row, ok := decisionTable[phase]
	if !ok {
		return Decision{}, false
	}
	d, ok := row[ev]
	return d, ok
}
