// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/lifecycle"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/log"
)

// OpenRestart starts a vote to redeal with the same roster. Any member may
// open one once the game has started; only one runs at a time.
func (e *Engine) OpenRestart(ctx context.Context, key model.SessionKey, actor model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "restart", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvOpenRestart); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if s.RestartVoteActive {
			return ErrRestartActive
		}
		if len(s.Players) < rules.MinPlayers {
			return fmt.Errorf("%w: %d seated, %d required", ErrNotEnoughPlayers, len(s.Players), rules.MinPlayers)
		}
		s.RestartVotes = map[model.PlayerID]bool{}
		s.RestartVoteActive = true
		ob.reply = "Restart vote opened."
		ob.post(msgRestartOpened(s, actor))
		return nil
	})
}

// VoteRestart records one restart ballot. A strict majority of yes votes
// (floor(n/2)+1) redeals immediately; a majority of no votes, or all votes in
// without a majority, rejects and only clears the vote.
func (e *Engine) VoteRestart(ctx context.Context, key model.SessionKey, actor model.PlayerID, yes bool) (Result, error) {
	return e.run(ctx, action{op: "vote_restart", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvRestartVoteCast); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if !s.RestartVoteActive {
			return ErrNoRestartVote
		}
		if _, voted := s.RestartVotes[actor]; voted {
			return ErrAlreadyVoted
		}
		n := len(s.Players)
		need := n/2 + 1
		yesCount, noCount := 0, 0
		if yes {
			yesCount++
		} else {
			noCount++
		}
		for _, v := range s.RestartVotes {
			if v {
				yesCount++
			} else {
				noCount++
			}
		}
		ob.reply = "Restart vote recorded."

		if yesCount >= need {
			return e.acceptRestart(s, ob, yesCount, noCount)
		}
		s.RestartVotes[actor] = yes
		if noCount >= need || len(s.RestartVotes) >= n {
			s.ClearRestartVote()
			ob.post(msgRestartRejected(yesCount, noCount))
			e.logger.Info().
				Str(log.FieldEvent, "restart.rejected").
				Str(log.FieldGuildID, s.Key.GuildID).
				Str(log.FieldChannelID, s.Key.ChannelID).
				Msg("restart vote rejected")
		}
		return nil
	})
}

func (e *Engine) acceptRestart(s *model.Session, ob *outbox, yes, no int) error {
	if err := e.deal(s, lifecycle.EvRestartAccepted, ob); err != nil {
		return err
	}
	ob.post(msgRestartAccepted(yes, no))
	ob.post(msgRoundStart(s))
	e.logger.Info().
		Str(log.FieldEvent, "restart.accepted").
		Str(log.FieldGuildID, s.Key.GuildID).
		Str(log.FieldChannelID, s.Key.ChannelID).
		Int("players", len(s.Players)).
		Msg("restart vote accepted")
	return nil
}
