// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/lifecycle"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/log"
)

// maxProposals is the number of rejected proposals in one round that hands
// the game to evil.
const maxProposals = 5

// Propose puts team up for a vote. Leader only.
func (e *Engine) Propose(ctx context.Context, key model.SessionKey, actor model.PlayerID, team []model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "propose", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvPropose); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if leader, _ := s.Leader(); leader.ID != actor {
			return ErrNotLeader
		}
		want, err := s.TeamSize()
		if err != nil {
			return err
		}
		if len(team) != want {
			return fmt.Errorf("%w: round %d needs %d, got %d", ErrTeamSize, s.Round, want, len(team))
		}
		seen := make(map[model.PlayerID]struct{}, len(team))
		for _, id := range team {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateTeamMember, id)
			}
			seen[id] = struct{}{}
			if !s.HasPlayer(id) {
				return fmt.Errorf("%w: %s", ErrNotMember, id)
			}
		}

		if _, err := lifecycle.Dispatch(s, lifecycle.EvPropose); err != nil {
			return wrongPhase(err)
		}
		s.CurrentTeam = append([]model.PlayerID(nil), team...)
		ob.reply = "Team proposed."
		ob.post(msgProposed(s))
		return nil
	})
}

// VoteTeam records actor's ballot on the proposed team. The ballot that
// completes the vote resolves it.
func (e *Engine) VoteTeam(ctx context.Context, key model.SessionKey, actor model.PlayerID, approve bool) (Result, error) {
	return e.run(ctx, action{op: "vote_team", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvTeamVoteCast); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if _, voted := s.TeamVotes[actor]; voted {
			return ErrAlreadyVoted
		}
		s.TeamVotes[actor] = model.TeamVote(approve)
		if approve {
			ob.reply = "You voted to approve."
		} else {
			ob.reply = "You voted to reject."
		}
		if len(s.TeamVotes) < len(s.Players) {
			return nil
		}
		return e.resolveTeamVote(s, ob)
	})
}

func (e *Engine) resolveTeamVote(s *model.Session, ob *outbox) error {
	approves := s.CountApprovals()
	rejects := len(s.TeamVotes) - approves

	if rules.IsMajorityApprove(approves, len(s.Players)) {
		if _, err := lifecycle.Dispatch(s, lifecycle.EvTeamApproved); err != nil {
			return err
		}
		e.scheduleQuestTimer(s)
		ob.post(msgTeamApproved(s, approves, rejects))
		for _, id := range s.CurrentTeam {
			ob.dm(id, msgQuestPrompt(s, id))
		}
		return nil
	}

	if s.ProposalNumber+1 >= maxProposals {
		if _, err := lifecycle.Dispatch(s, lifecycle.EvRejectionLimit); err != nil {
			return err
		}
		ob.post(msgRejectionLimit(approves, rejects))
		e.finish(s, ob, model.Outcome{Winner: rules.Evil, Reason: model.EndRejection})
		return nil
	}

	if _, err := lifecycle.Dispatch(s, lifecycle.EvTeamRejected); err != nil {
		return err
	}
	ob.post(msgTeamRejected(s, approves, rejects))
	return nil
}

// VoteQuest records a team member's quest ballot. Good players may only
// vote success. The ballot that completes the team resolves the quest.
func (e *Engine) VoteQuest(ctx context.Context, key model.SessionKey, actor model.PlayerID, success bool) (Result, error) {
	return e.run(ctx, action{op: "vote_quest", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvQuestVoteCast); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if !s.OnTeam(actor) {
			return ErrNotTeamMember
		}
		if _, voted := s.QuestVotes[actor]; voted {
			return ErrAlreadyVoted
		}
		if !success && !s.Roles[actor].IsEvil() {
			return ErrGoodCannotFail
		}
		s.QuestVotes[actor] = model.QuestVote(success)
		if success {
			ob.reply = "You voted success."
		} else {
			ob.reply = "You voted fail."
		}
		if len(s.QuestVotes) < len(s.CurrentTeam) {
			return nil
		}
		s.QuestTimer.Clear()
		return e.resolveQuest(s, ob)
	})
}

// resolveQuest tallies the quest and moves the game on. It runs exactly once
// per quest epoch: the phase leaves quest_vote here, so a later caller (the
// last ballot or the deadline timer) fails its phase check.
func (e *Engine) resolveQuest(s *model.Session, ob *outbox) error {
	fails := s.CountFails()
	result := rules.QuestSuccess
	if rules.IsQuestFailed(fails, len(s.Players), s.Round) {
		result = rules.QuestFail
	}
	s.QuestResults = append(s.QuestResults, result)
	ob.post(msgQuestResult(s, result, fails))

	e.logger.Info().
		Str(log.FieldEvent, "quest.resolved").
		Str(log.FieldGuildID, s.Key.GuildID).
		Str(log.FieldChannelID, s.Key.ChannelID).
		Int(log.FieldRound, s.Round).
		Uint64(log.FieldEpoch, s.QuestEpoch).
		Str("result", string(result)).
		Msg("quest resolved")

	switch rules.CheckWinCondition(s.QuestResults) {
	case rules.WinEvil:
		if _, err := lifecycle.Dispatch(s, lifecycle.EvQuestEvilWins); err != nil {
			return err
		}
		ob.post(msgQuestsEvil())
		e.finish(s, ob, model.Outcome{Winner: rules.Evil, Reason: model.EndQuestsEvil})
	case rules.WinGoodAssassination:
		if _, err := lifecycle.Dispatch(s, lifecycle.EvQuestGoodWins); err != nil {
			return err
		}
		ob.post(msgAssassinationPhase())
		if assassin, ok := rules.AssassinID(s.Roles); ok {
			ob.dm(assassin, msgAssassinPrompt(s, assassin))
		}
	default:
		if _, err := lifecycle.Dispatch(s, lifecycle.EvQuestContinue); err != nil {
			return err
		}
		ob.post(msgRoundStart(s))
	}
	return nil
}

// Assassinate ends the game. The assassin names one other player; naming
// Merlin wins it for evil. Every role is revealed in the channel.
func (e *Engine) Assassinate(ctx context.Context, key model.SessionKey, actor, target model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "assassinate", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvAssassinate); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if s.Roles[actor] != rules.Assassin {
			return ErrNotAssassin
		}
		if target == actor {
			return ErrSelfTarget
		}
		if !s.HasPlayer(target) {
			return fmt.Errorf("%w: %s", ErrNotMember, target)
		}

		hit := s.Roles[target] == rules.Merlin
		if _, err := lifecycle.Dispatch(s, lifecycle.EvAssassinate); err != nil {
			return wrongPhase(err)
		}
		ob.reply = "Target chosen."
		ob.post(msgAssassination(s, actor, target, hit))
		if hit {
			e.finish(s, ob, model.Outcome{Winner: rules.Evil, Reason: model.EndAssassinationSuccess})
		} else {
			e.finish(s, ob, model.Outcome{Winner: rules.Good, Reason: model.EndAssassinationFailed})
		}
		return nil
	})
}

// finish records the definitive outcome and queues the history record.
// Called once per terminal transition.
func (e *Engine) finish(s *model.Session, ob *outbox, outcome model.Outcome) {
	s.QuestTimer.Clear()
	s.Outcome = &outcome
	ob.record = e.buildRecord(s)
	gamesFinishedTotal.WithLabelValues(string(outcome.Reason)).Inc()
	e.logger.Info().
		Str(log.FieldEvent, "game.finished").
		Str(log.FieldGuildID, s.Key.GuildID).
		Str(log.FieldChannelID, s.Key.ChannelID).
		Str(log.FieldWinner, string(outcome.Winner)).
		Str(log.FieldEndReason, string(outcome.Reason)).
		Int(log.FieldRound, s.Round).
		Msg("game finished")
}

func (e *Engine) buildRecord(s *model.Session) *history.GameRecord {
	rec := &history.GameRecord{
		GuildID:      s.Key.GuildID,
		ChannelID:    s.Key.ChannelID,
		Winner:       s.Outcome.Winner,
		EndReason:    s.Outcome.Reason,
		PlayerCount:  len(s.Players),
		QuestResults: append([]rules.QuestResult(nil), s.QuestResults...),
		EndedAt:      e.clock.Now(),
		Players:      make([]history.PlayerRecord, 0, len(s.Players)),
	}
	for _, p := range s.Players {
		role := s.Roles[p.ID]
		rec.Players = append(rec.Players, history.PlayerRecord{
			UserID:    p.ID,
			Role:      role,
			Alignment: role.Alignment(),
		})
	}
	return rec
}
