// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ten-player table: every special role is present
var tenTable = map[string]Role{
	"a": Merlin,
	"b": Percival,
	"c": LoyalServant,
	"d": LoyalServant,
	"e": LoyalServant,
	"f": LoyalServant,
	"g": Assassin,
	"h": Morgana,
	"i": Mordred,
	"j": Oberon,
}

func ids(ks []Knowledge[string]) []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.PlayerID)
	}
	return out
}

func TestBuildKnowledge(t *testing.T) {
	tests := []struct {
		self   string
		want   []string
		reason KnowledgeReason
	}{
		{self: "a", want: []string{"g", "h", "j"}, reason: ReasonEvilSeenByMerlin},
		{self: "b", want: []string{"a", "h"}, reason: ReasonMerlinOrMorgana},
		{self: "c", want: []string{}},
		{self: "g", want: []string{"h", "i"}, reason: ReasonEvilTeammate},
		{self: "h", want: []string{"g", "i"}, reason: ReasonEvilTeammate},
		{self: "i", want: []string{"g", "h"}, reason: ReasonEvilTeammate},
		{self: "j", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tenTable[tt.self]), func(t *testing.T) {
			got := BuildKnowledge(tt.self, tenTable[tt.self], tenTable)
			assert.Equal(t, tt.want, ids(got))
			for _, k := range got {
				assert.Equal(t, tt.reason, k.Reason)
			}
		})
	}
}

func TestBuildKnowledge_MinionSeesTeam(t *testing.T) {
	table := map[string]Role{
		"a": Merlin, "b": Percival, "c": LoyalServant, "d": LoyalServant,
		"e": LoyalServant, "f": Assassin, "g": Morgana, "h": Minion,
	}
	assert.Equal(t, []string{"f", "g"}, ids(BuildKnowledge("h", Minion, table)))
	assert.Equal(t, []string{"f", "g", "h"}, ids(BuildKnowledge("a", Merlin, table)))
}
