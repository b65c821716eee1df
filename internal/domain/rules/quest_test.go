// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamSize_Table(t *testing.T) {
	want := map[int][]int{
		5:  {2, 3, 2, 3, 3},
		6:  {2, 3, 4, 3, 4},
		7:  {2, 3, 3, 4, 4},
		8:  {3, 4, 4, 5, 5},
		9:  {3, 4, 4, 5, 5},
		10: {3, 4, 4, 5, 5},
	}
	for players, sizes := range want {
		for round := 1; round <= MaxRounds; round++ {
			got, err := TeamSize(players, round)
			require.NoError(t, err)
			assert.Equal(t, sizes[round-1], got, "players=%d round=%d", players, round)
		}
	}
}

func TestTeamSize_OutOfTable(t *testing.T) {
	_, err := TeamSize(4, 1)
	require.ErrorIs(t, err, ErrUnsupportedPlayerCount)
	_, err = TeamSize(11, 1)
	require.ErrorIs(t, err, ErrUnsupportedPlayerCount)
	_, err = TeamSize(5, 0)
	require.ErrorIs(t, err, ErrInvalidRound)
	_, err = TeamSize(5, 6)
	require.ErrorIs(t, err, ErrInvalidRound)
}

func TestIsMajorityApprove(t *testing.T) {
	assert.False(t, IsMajorityApprove(3, 6), "exact half rejects")
	assert.True(t, IsMajorityApprove(4, 6))
	assert.True(t, IsMajorityApprove(3, 5))
	assert.False(t, IsMajorityApprove(2, 5))
	assert.False(t, IsMajorityApprove(0, 5))
}

func TestNeedsTwoFails(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		for round := 1; round <= MaxRounds; round++ {
			want := players >= 7 && round == 4
			assert.Equal(t, want, NeedsTwoFails(players, round), "players=%d round=%d", players, round)
		}
	}
}

func TestIsQuestFailed(t *testing.T) {
	assert.False(t, IsQuestFailed(0, 5, 1))
	assert.True(t, IsQuestFailed(1, 5, 1))
	assert.True(t, IsQuestFailed(1, 6, 4))

	assert.False(t, IsQuestFailed(1, 7, 4), "one fail is not enough on the fourth quest")
	assert.True(t, IsQuestFailed(2, 7, 4))
	assert.True(t, IsQuestFailed(1, 7, 5))
}

func TestCheckWinCondition(t *testing.T) {
	S, F := QuestSuccess, QuestFail

	assert.Equal(t, WinEvil, CheckWinCondition([]QuestResult{F, F, F}))
	assert.Equal(t, WinGoodAssassination, CheckWinCondition([]QuestResult{S, S, S}))
	assert.Equal(t, WinContinue, CheckWinCondition(nil))
	assert.Equal(t, WinContinue, CheckWinCondition([]QuestResult{S, F, S, F}))
	assert.Equal(t, WinEvil, CheckWinCondition([]QuestResult{S, F, S, F, F}))
	assert.Equal(t, WinGoodAssassination, CheckWinCondition([]QuestResult{F, S, F, S, S}))
}

// Simulates an incremental caller: the check runs after each append and the
// game stops at the first terminal verdict.
func TestCheckWinCondition_Incremental(t *testing.T) {
	S, F := QuestSuccess, QuestFail
	sequences := []struct {
		plays []QuestResult
		want  WinState
		after int
	}{
		{plays: []QuestResult{S, S, F, S, F}, want: WinGoodAssassination, after: 4},
		{plays: []QuestResult{F, S, F, S, F}, want: WinEvil, after: 5},
		{plays: []QuestResult{F, F, F, S, S}, want: WinEvil, after: 3},
		{plays: []QuestResult{S, S, S, F, F}, want: WinGoodAssassination, after: 3},
	}

	for _, seq := range sequences {
		var record []QuestResult
		verdict := WinContinue
		for _, r := range seq.plays {
			record = append(record, r)
			verdict = CheckWinCondition(record)
			if verdict != WinContinue {
				break
			}
		}
		assert.Equal(t, seq.want, verdict)
		assert.Len(t, record, seq.after)
	}
}

func TestCheckWinCondition_FailsCheckedFirst(t *testing.T) {
	S, F := QuestSuccess, QuestFail
	assert.Equal(t, WinEvil, CheckWinCondition([]QuestResult{S, S, S, F, F, F}))
}
