// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/avalon/internal/domain/session/model"

// ApplyTransition moves the session to tr.To and performs the entry
// bookkeeping that belongs to the edge. Timers are the engine's concern.
func ApplyTransition(s *model.Session, tr Transition) {
	switch tr.Event {
	case EvStart, EvRestartAccepted:
		s.Round = 1
		s.ProposalNumber = 0
		s.QuestResults = nil
		s.Outcome = nil
		clearTeam(s)
		s.ClearRestartVote()

	case EvPropose:
		s.TeamVotes = map[model.PlayerID]model.TeamVote{}

	case EvTeamApproved:
		s.TeamVotes = map[model.PlayerID]model.TeamVote{}
		s.QuestVotes = map[model.PlayerID]model.QuestVote{}
		s.QuestEpoch++

	case EvTeamRejected:
		s.ProposalNumber++
		clearTeam(s)
		s.AdvanceLeader()

	case EvRejectionLimit:
		s.ProposalNumber++
		clearTeam(s)

	case EvQuestContinue:
		s.Round++
		s.ProposalNumber = 0
		clearTeam(s)
		s.AdvanceLeader()

	case EvQuestGoodWins, EvQuestEvilWins:
		clearTeam(s)
	}
	s.Phase = tr.To
}

func clearTeam(s *model.Session) {
	s.CurrentTeam = nil
	s.TeamVotes = map[model.PlayerID]model.TeamVote{}
	s.QuestVotes = map[model.PlayerID]model.QuestVote{}
}
