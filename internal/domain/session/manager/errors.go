// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"errors"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/domain/session/store"
)

// Validation failures. None of them mutate the session.
var (
	ErrWrongPhase          = errors.New("action not allowed in current phase")
	ErrNotHost             = errors.New("only the host can do that")
	ErrNotLeader           = errors.New("only the current leader can propose")
	ErrNotMember           = errors.New("player is not in this session")
	ErrNotTeamMember       = errors.New("player is not on the quest team")
	ErrAlreadyVoted        = errors.New("player already voted")
	ErrTeamSize            = errors.New("wrong team size")
	ErrDuplicateTeamMember = errors.New("team lists a player twice")
	ErrNotAssassin         = errors.New("only the assassin can choose a target")
	ErrSelfTarget          = errors.New("assassin cannot target themselves")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrAlreadyJoined       = errors.New("player already joined")
	ErrNotEnoughPlayers    = errors.New("not enough players")
	ErrRestartActive       = errors.New("a restart vote is already running")
	ErrNoRestartVote       = errors.New("no restart vote is running")
	ErrGoodCannotFail      = errors.New("good players can only vote success")

	ErrSessionExists   = store.ErrSessionExists
	ErrSessionNotFound = store.ErrSessionNotFound

	ErrInvariantViolation = model.ErrInvariantViolation
)

// ActionError wraps a rejected or faulted engine action.
type ActionError struct {
	Op    string
	Key   model.SessionKey
	Actor model.PlayerID
	Err   error
}

func (e *ActionError) Error() string {
	if e.Actor == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s by %s: %v", e.Op, e.Key, e.Actor, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// wrongPhase keeps the lifecycle error reachable next to ErrWrongPhase.
func wrongPhase(err error) error {
	return fmt.Errorf("%w: %w", ErrWrongPhase, err)
}
