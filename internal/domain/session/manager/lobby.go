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

// Create opens a lobby on key with host seated.
func (e *Engine) Create(ctx context.Context, key model.SessionKey, host model.Player) (Result, error) {
	a := action{op: "create", key: key, actor: host.ID}
	ctx, span := e.startSpan(ctx, a)
	defer span.End()

	if err := key.Validate(); err != nil {
		return Result{}, e.reject(span, a, err)
	}
	host, err := model.NewPlayer(host.ID, host.DisplayName)
	if err != nil {
		return Result{}, e.reject(span, a, err)
	}

	s := model.New(key, host, e.clock.Now())
	s.Lock()
	if err := e.registry.Create(s); err != nil {
		s.Unlock()
		return Result{}, e.reject(span, a, err)
	}
	ob := newOutbox(key)
	ob.reply = "Lobby created."
	ob.post(msgCreated(s))
	e.logger.Info().
		Str(log.FieldEvent, "session.created").
		Str(log.FieldGuildID, key.GuildID).
		Str(log.FieldChannelID, key.ChannelID).
		Str(log.FieldPlayerID, string(host.ID)).
		Msg("lobby created")
	res, invErr := e.commit(s, model.PhaseWaiting, ob, true)
	s.Unlock()

	e.flush(ctx, ob, &res)
	actionsTotal.WithLabelValues(a.op, "ok").Inc()
	if invErr != nil {
		return res, &ActionError{Op: a.op, Key: key, Actor: host.ID, Err: invErr}
	}
	return res, nil
}

// Join seats p in the lobby.
func (e *Engine) Join(ctx context.Context, key model.SessionKey, p model.Player) (Result, error) {
	return e.run(ctx, action{op: "join", key: key, actor: p.ID}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvJoin); err != nil {
			return wrongPhase(err)
		}
		player, err := model.NewPlayer(p.ID, p.DisplayName)
		if err != nil {
			return err
		}
		if s.HasPlayer(player.ID) {
			return ErrAlreadyJoined
		}
		if len(s.Players) >= rules.MaxPlayers {
			return ErrLobbyFull
		}
		s.Players = append(s.Players, player)
		ob.reply = "You joined the lobby."
		ob.post(msgJoined(s, player))
		return nil
	})
}

// Leave unseats actor. A leaving host dissolves the room. Leaving while a
// restart vote runs calls the vote off.
func (e *Engine) Leave(ctx context.Context, key model.SessionKey, actor model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "leave", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvLeave); err != nil {
			return wrongPhase(err)
		}
		p, ok := s.Player(actor)
		if !ok {
			return ErrNotMember
		}
		ob.reply = "You left the room."
		if actor == s.HostID {
			e.deleteSession(s, "host_left")
			ob.post(msgHostLeft(p))
			return nil
		}
		s.RemovePlayer(actor)
		ob.post(msgLeft(s, p))
		if s.RestartVoteActive {
			s.ClearRestartVote()
			ob.post(msgRestartAbandoned(p))
		}
		return nil
	})
}

// Cancel dissolves the room. Host only, outside active play.
func (e *Engine) Cancel(ctx context.Context, key model.SessionKey, actor model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "cancel", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvCancel); err != nil {
			return wrongPhase(err)
		}
		p, ok := s.Player(actor)
		if !ok {
			return ErrNotMember
		}
		if actor != s.HostID {
			return ErrNotHost
		}
		e.deleteSession(s, "cancelled")
		ob.reply = "Room cancelled."
		ob.post(msgCancelled(p))
		return nil
	})
}

// Start deals roles and opens round one. Host only, 5 to 10 players.
func (e *Engine) Start(ctx context.Context, key model.SessionKey, actor model.PlayerID) (Result, error) {
	return e.run(ctx, action{op: "start", key: key, actor: actor}, func(s *model.Session, ob *outbox) error {
		if err := lifecycle.Check(s.Phase, lifecycle.EvStart); err != nil {
			return wrongPhase(err)
		}
		if !s.HasPlayer(actor) {
			return ErrNotMember
		}
		if actor != s.HostID {
			return ErrNotHost
		}
		if len(s.Players) < rules.MinPlayers {
			return fmt.Errorf("%w: %d seated, %d required", ErrNotEnoughPlayers, len(s.Players), rules.MinPlayers)
		}
		if err := e.deal(s, lifecycle.EvStart, ob); err != nil {
			return err
		}
		ob.reply = "Game started."
		ob.post(msgGameStarted(s))
		return nil
	})
}

// deal assigns fresh roles for the seated roster, picks a random leader,
// applies ev and queues every player's knowledge DM. Nothing is mutated when
// the deal fails.
func (e *Engine) deal(s *model.Session, ev lifecycle.EventKind, ob *outbox) error {
	ids := s.PlayerIDs()
	roles, err := rules.AssignRoles(ids, len(ids), e.shuffler)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEnoughPlayers, err)
	}
	if err := lifecycle.Check(s.Phase, ev); err != nil {
		return wrongPhase(err)
	}
	s.QuestTimer.Clear()
	if _, err := lifecycle.Dispatch(s, ev); err != nil {
		return wrongPhase(err)
	}
	s.Roles = roles
	s.LeaderIndex = e.shuffler.IntN(len(ids))
	for _, id := range ids {
		ob.dm(id, msgKnowledge(s, id))
	}
	return nil
}
