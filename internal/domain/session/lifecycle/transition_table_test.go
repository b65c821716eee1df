// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"testing"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable_Coverage(t *testing.T) {
	allowedEdges := map[model.Phase]map[EventKind]struct{}{}
	for _, tr := range transitionsTable {
		if _, ok := allowedEdges[tr.From]; !ok {
			allowedEdges[tr.From] = map[EventKind]struct{}{}
		}
		if _, exists := allowedEdges[tr.From][tr.Event]; exists {
			t.Fatalf("duplicate transition: %s + %v", tr.From, tr.Event)
		}
		allowedEdges[tr.From][tr.Event] = struct{}{}
	}

	for _, phase := range model.AllPhases {
		for _, ev := range AllEvents {
			decision, ok := DecisionFor(phase, ev)
			require.True(t, ok, "missing decision for %s + %v", phase, ev)
			if _, ok := allowedEdges[phase][ev]; ok {
				require.True(t, decision.Allowed, "allowed transition must be marked allowed for %s + %v", phase, ev)
				continue
			}
			require.False(t, decision.Allowed, "forbidden transition must be marked forbidden for %s + %v", phase, ev)
			require.NotEmpty(t, decision.Reason, "forbidden transition must have reason for %s + %v", phase, ev)
		}
	}
}

func TestEventNames_Complete(t *testing.T) {
	for _, ev := range AllEvents {
		require.NotEqual(t, "unknown", ev.String(), "event %d has no name", int(ev))
	}
}
