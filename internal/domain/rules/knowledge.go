// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rules

import (
	"cmp"
	"slices"
)

// KnowledgeReason says why a player appears in someone's private disclosure.
type KnowledgeReason string

const (
	// Merlin sees evil players, Mordred excepted.
	ReasonEvilSeenByMerlin KnowledgeReason = "evil_seen_by_merlin"
	// Percival sees Merlin and Morgana without telling them apart.
	ReasonMerlinOrMorgana KnowledgeReason = "merlin_or_morgana"
	// Evil players (Oberon excepted) see each other.
	ReasonEvilTeammate KnowledgeReason = "evil_teammate"
)

// Knowledge is one entry of a private disclosure.
type Knowledge[ID cmp.Ordered] struct {
	PlayerID ID
	Reason   KnowledgeReason
}

// BuildKnowledge computes what self, holding role, learns about the table.
// The result is sorted by player ID and never includes self.
func BuildKnowledge[ID cmp.Ordered](self ID, role Role, all map[ID]Role) []Knowledge[ID] {
	var out []Knowledge[ID]
	add := func(id ID, reason KnowledgeReason) {
		out = append(out, Knowledge[ID]{PlayerID: id, Reason: reason})
	}

	for id, other := range all {
		if id == self {
			continue
		}
		switch {
		case role == Merlin:
			if other.IsEvil() && other != Mordred {
				add(id, ReasonEvilSeenByMerlin)
			}
		case role == Percival:
			if other == Merlin || other == Morgana {
				add(id, ReasonMerlinOrMorgana)
			}
		case role == Oberon:
			// sees no one
		case role.IsEvil():
			if other.IsEvil() && other != Oberon {
				add(id, ReasonEvilTeammate)
			}
		}
	}

	slices.SortFunc(out, func(a, b Knowledge[ID]) int { return cmp.Compare(a.PlayerID, b.PlayerID) })
	return out
}
