// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/session/model"
)

// ErrIllegalTransition is returned for any event the decision table forbids.
var ErrIllegalTransition = errors.New("illegal transition")

// IllegalTransitionError carries the phase, event and forbid reason.
type IllegalTransitionError struct {
	Phase  model.Phase
	Event  EventKind
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s + %s (%s)", e.Phase, e.Event, e.Reason)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }
