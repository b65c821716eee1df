// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package rules holds the static Avalon rule tables: role compositions,
// knowledge disclosure and quest configuration. Everything here is pure.
package rules

import (
	"fmt"
	"math/rand/v2"
)

const (
	MinPlayers = 5
	MaxPlayers = 10
	MaxRounds  = 5
)

// Alignment is the side a role plays for.
type Alignment string

const (
	Good Alignment = "good"
	Evil Alignment = "evil"
)

// Role is a character card.
type Role string

const (
	Merlin       Role = "Merlin"
	Percival     Role = "Percival"
	LoyalServant Role = "LoyalServant"
	Assassin     Role = "Assassin"
	Morgana      Role = "Morgana"
	Mordred      Role = "Mordred"
	Oberon       Role = "Oberon"
	Minion       Role = "Minion"
)

type roleInfo struct {
	label     string
	alignment Alignment
}

var catalog = map[Role]roleInfo{
	Merlin:       {label: "Merlin", alignment: Good},
	Percival:     {label: "Percival", alignment: Good},
	LoyalServant: {label: "Loyal Servant of Arthur", alignment: Good},
	Assassin:     {label: "Assassin", alignment: Evil},
	Morgana:      {label: "Morgana", alignment: Evil},
	Mordred:      {label: "Mordred", alignment: Evil},
	Oberon:       {label: "Oberon", alignment: Evil},
	Minion:       {label: "Minion of Mordred", alignment: Evil},
}

// Alignment returns the fixed side of the role. Unknown roles report Good.
func (r Role) Alignment() Alignment {
	if info, ok := catalog[r]; ok {
		return info.alignment
	}
	return Good
}

// IsEvil reports whether the role plays for evil.
func (r Role) IsEvil() bool { return r.Alignment() == Evil }

// Label is the human readable card name.
func (r Role) Label() string {
	if info, ok := catalog[r]; ok {
		return info.label
	}
	return string(r)
}

// Valid reports whether r is one of the catalog roles.
func (r Role) Valid() bool {
	_, ok := catalog[r]
	return ok
}

var roleTables = map[int][]Role{
	5:  {Merlin, Percival, LoyalServant, Assassin, Morgana},
	6:  {Merlin, Percival, LoyalServant, LoyalServant, Assassin, Morgana},
	7:  {Merlin, Percival, LoyalServant, LoyalServant, Assassin, Morgana, Oberon},
	8:  {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Minion},
	9:  {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Mordred},
	10: {Merlin, Percival, LoyalServant, LoyalServant, LoyalServant, LoyalServant, Assassin, Morgana, Mordred, Oberon},
}

// Composition returns a copy of the role table for count players.
func Composition(count int) ([]Role, error) {
	table, ok := roleTables[count]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPlayerCount, count)
	}
	out := make([]Role, len(table))
	copy(out, table)
	return out, nil
}

// Shuffler is the randomness source for role assignment. *rand.Rand satisfies it.
type Shuffler interface {
	IntN(n int) int
}

type globalShuffler struct{}

func (globalShuffler) IntN(n int) int { return rand.IntN(n) }

// DefaultShuffler draws from the process-wide random source.
var DefaultShuffler Shuffler = globalShuffler{}

// AssignRoles shuffles the composition for count and zips it against ids in order.
// ids must hold exactly count entries.
func AssignRoles[ID comparable](ids []ID, count int, rng Shuffler) (map[ID]Role, error) {
	roles, err := Composition(count)
	if err != nil {
		return nil, err
	}
	if len(ids) != count {
		return nil, fmt.Errorf("%w: %d ids for %d seats", ErrUnsupportedPlayerCount, len(ids), count)
	}
	if rng == nil {
		rng = DefaultShuffler
	}

	// Fisher-Yates
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	out := make(map[ID]Role, count)
	for i, id := range ids {
		out[id] = roles[i]
	}
	return out, nil
}

func findRole[ID comparable](roles map[ID]Role, want Role) (ID, bool) {
	for id, r := range roles {
		if r == want {
			return id, true
		}
	}
	var zero ID
	return zero, false
}

// AssassinID returns the holder of the Assassin card.
func AssassinID[ID comparable](roles map[ID]Role) (ID, bool) {
	return findRole(roles, Assassin)
}

// MerlinID returns the holder of the Merlin card.
func MerlinID[ID comparable](roles map[ID]Role) (ID, bool) {
	return findRole(roles, Merlin)
}
