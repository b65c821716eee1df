// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"testing"
	"time"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(phase model.Phase, players int) *model.Session {
	s := model.New(model.SessionKey{GuildID: "g", ChannelID: "c"}, model.Player{ID: "p0", DisplayName: "p0"}, time.Unix(0, 0))
	for i := 1; i < players; i++ {
		id := model.PlayerID(string(rune('a' + i)))
		s.Players = append(s.Players, model.Player{ID: id, DisplayName: string(id)})
	}
	s.Phase = phase
	return s
}

func TestDispatch_ForbiddenLeavesSessionUntouched(t *testing.T) {
	s := newSession(model.PhaseWaiting, 5)
	before := s.Snapshot()

	_, err := Dispatch(s, EvPropose)
	require.ErrorIs(t, err, ErrIllegalTransition)

	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, ForbiddenNotStarted, ite.Reason)
	assert.Equal(t, before, s.Snapshot())
}

func TestDispatch_TeamRejectedAdvancesLeader(t *testing.T) {
	s := newSession(model.PhaseTeamVote, 5)
	s.Round = 1
	s.LeaderIndex = 4
	s.CurrentTeam = []model.PlayerID{"p0", "b"}
	s.TeamVotes = map[model.PlayerID]model.TeamVote{"p0": model.Reject}

	tr, err := Dispatch(s, EvTeamRejected)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseProposal, tr.To)
	assert.Equal(t, 0, s.LeaderIndex)
	assert.Equal(t, 1, s.ProposalNumber)
	assert.Empty(t, s.CurrentTeam)
	assert.Empty(t, s.TeamVotes)
}

func TestDispatch_TeamApprovedBumpsEpoch(t *testing.T) {
	s := newSession(model.PhaseTeamVote, 5)
	epoch := s.QuestEpoch

	_, err := Dispatch(s, EvTeamApproved)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseQuestVote, s.Phase)
	assert.Equal(t, epoch+1, s.QuestEpoch)
}

func TestDispatch_QuestContinueNextRound(t *testing.T) {
	s := newSession(model.PhaseQuestVote, 5)
	s.Round = 2
	s.ProposalNumber = 3
	s.LeaderIndex = 1
	s.CurrentTeam = []model.PlayerID{"p0", "b", "c"}

	_, err := Dispatch(s, EvQuestContinue)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Round)
	assert.Equal(t, 0, s.ProposalNumber)
	assert.Equal(t, 2, s.LeaderIndex)
	assert.Equal(t, model.PhaseProposal, s.Phase)
}

func TestDispatch_RestartResetsGame(t *testing.T) {
	s := newSession(model.PhaseFinished, 5)
	s.Round = 5
	s.ProposalNumber = 2
	s.QuestResults = []rules.QuestResult{rules.QuestFail, rules.QuestFail, rules.QuestFail}
	s.Outcome = &model.Outcome{Winner: rules.Evil, Reason: model.EndQuestsEvil}
	s.RestartVoteActive = true
	s.RestartVotes = map[model.PlayerID]bool{"p0": true}

	_, err := Dispatch(s, EvRestartAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseProposal, s.Phase)
	assert.Equal(t, 1, s.Round)
	assert.Zero(t, s.ProposalNumber)
	assert.Empty(t, s.QuestResults)
	assert.Nil(t, s.Outcome)
	assert.False(t, s.RestartVoteActive)
	assert.Empty(t, s.RestartVotes)
}

func TestCheck_LeaveOnlyInIdlePhases(t *testing.T) {
	for _, phase := range model.AllPhases {
		err := Check(phase, EvLeave)
		if phase.Idle() {
			assert.NoError(t, err, phase)
		} else {
			assert.ErrorIs(t, err, ErrIllegalTransition, phase)
		}
	}
}
