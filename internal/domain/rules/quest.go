// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rules

import "fmt"

var teamSizes = map[int][MaxRounds]int{
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

// TeamSize is the number of players sent on the quest for round (1-based).
func TeamSize(players, round int) (int, error) {
	sizes, ok := teamSizes[players]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedPlayerCount, players)
	}
	if round < 1 || round > MaxRounds {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}
	return sizes[round-1], nil
}

// IsMajorityApprove reports a strict majority of approvals. A tie rejects.
func IsMajorityApprove(approves, total int) bool {
	return approves*2 > total
}

// NeedsTwoFails is the fourth-quest rule for tables of seven or more.
func NeedsTwoFails(players, round int) bool {
	return players >= 7 && round == 4
}

// IsQuestFailed applies the fail threshold for the given table and round.
func IsQuestFailed(fails, players, round int) bool {
	if NeedsTwoFails(players, round) {
		return fails >= 2
	}
	return fails >= 1
}

// QuestResult is the outcome of one quest.
type QuestResult string

const (
	QuestSuccess QuestResult = "success"
	QuestFail    QuestResult = "fail"
)

// WinState is the verdict after a quest resolves.
type WinState string

const (
	WinContinue          WinState = "continue"
	WinEvil              WinState = "evil_wins"
	WinGoodAssassination WinState = "good_wins_assassination"
)

// CheckWinCondition evaluates the quest record. Three fails are checked before
// three successes.
func CheckWinCondition(results []QuestResult) WinState {
	var fails, successes int
	for _, r := range results {
		switch r {
		case QuestFail:
			fails++
		case QuestSuccess:
			successes++
		}
	}
	if fails >= 3 {
		return WinEvil
	}
	if successes >= 3 {
		return WinGoodAssassination
	}
	return WinContinue
}
