// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/avalon/internal/domain/session/model"

// Check reports whether ev may be applied in phase without mutating anything.
func Check(phase model.Phase, ev EventKind) error {
	decision, ok := DecisionFor(phase, ev)
	if !ok {
		return &IllegalTransitionError{Phase: phase, Event: ev, Reason: ForbiddenOutOfOrder}
	}
	if !decision.Allowed {
		return &IllegalTransitionError{Phase: phase, Event: ev, Reason: decision.Reason}
	}
	return nil
}

// Dispatch validates ev against the tables and applies it to the session.
// It is the only place a session's phase changes. Caller holds the lock.
func Dispatch(s *model.Session, ev EventKind) (Transition, error) {
	if err := Check(s.Phase, ev); err != nil {
		return Transition{}, err
	}
	tr, ok := TransitionFor(s.Phase, ev)
	if !ok {
		return Transition{}, &IllegalTransitionError{Phase: s.Phase, Event: ev, Reason: ForbiddenOutOfOrder}
	}
	ApplyTransition(s, tr)
	return tr, nil
}
