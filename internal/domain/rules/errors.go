// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rules

import "errors"

var (
	ErrUnsupportedPlayerCount = errors.New("unsupported player count")
	ErrInvalidRound           = errors.New("invalid round")
)
