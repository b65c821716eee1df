// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"errors"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/rules"
)

// ErrInvariantViolation marks a session that broke one of its structural rules.
var ErrInvariantViolation = errors.New("session invariant violation")

// Validate checks the structural invariants. Caller holds the lock.
func (s *Session) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...))
	}

	n := len(s.Players)
	if n > rules.MaxPlayers {
		fail("%d players seated", n)
	}
	if n > 0 && (s.LeaderIndex < 0 || s.LeaderIndex >= n) {
		fail("leader index %d out of range for %d players", s.LeaderIndex, n)
	}

	seen := make(map[PlayerID]struct{}, n)
	for _, p := range s.Players {
		if _, dup := seen[p.ID]; dup {
			fail("player %s seated twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if s.Phase != PhaseWaiting && len(s.Roles) > 0 {
		if len(s.Roles) != n {
			fail("%d roles for %d players", len(s.Roles), n)
		}
		for id := range s.Roles {
			if _, ok := seen[id]; !ok {
				fail("role held by unseated %s", id)
			}
		}
	}

	for _, id := range s.CurrentTeam {
		if _, ok := seen[id]; !ok {
			fail("team member %s not seated", id)
		}
	}
	if s.Phase == PhaseTeamVote || s.Phase == PhaseQuestVote {
		want, err := s.TeamSize()
		if err != nil {
			fail("team size: %v", err)
		} else if len(s.CurrentTeam) != want {
			fail("team of %d, round %d requires %d", len(s.CurrentTeam), s.Round, want)
		}
	}

	for id := range s.TeamVotes {
		if _, ok := seen[id]; !ok {
			fail("team vote from unseated %s", id)
		}
	}
	for id := range s.QuestVotes {
		if !s.OnTeam(id) {
			fail("quest vote from non-member %s", id)
		}
	}

	if len(s.QuestResults) > rules.MaxRounds {
		fail("%d quest results", len(s.QuestResults))
	}
	verdict := rules.CheckWinCondition(s.QuestResults)
	if verdict != rules.WinContinue && (s.Phase == PhaseProposal || s.Phase == PhaseTeamVote || s.Phase == PhaseQuestVote) {
		fail("quest record decided (%s) but phase is %s", verdict, s.Phase)
	}

	if s.QuestTimer.Active() && s.Phase != PhaseQuestVote {
		fail("quest timer active in %s", s.Phase)
	}
	if s.CleanupTimer.Active() && !s.Phase.Idle() {
		fail("cleanup timer active in %s", s.Phase)
	}

	return errors.Join(errs...)
}
