// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package model holds the Avalon session entity and its invariants.
package model

import (
	"slices"
	"sync"
	"time"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/timers"
)

// Session is one game room. All fields are guarded by the session lock;
// callers outside the engine only ever see a Snapshot.
type Session struct {
	mu sync.Mutex

	Key       SessionKey
	HostID    PlayerID
	Phase     Phase
	Players   []Player
	CreatedAt time.Time

	Round          int
	LeaderIndex    int
	ProposalNumber int

	Roles        map[PlayerID]rules.Role
	CurrentTeam  []PlayerID
	TeamVotes    map[PlayerID]TeamVote
	QuestVotes   map[PlayerID]QuestVote
	QuestResults []rules.QuestResult
	Outcome      *Outcome

	RestartVotes      map[PlayerID]bool
	RestartVoteActive bool

	LastActivityAt time.Time

	// QuestEpoch increments each time a quest vote opens.
	QuestEpoch uint64
	// Generation increments on every committed mutation.
	Generation uint64
	// Removed is set once the session left the registry.
	Removed bool

	QuestTimer   timers.Slot
	CleanupTimer timers.Slot
}

// New creates a lobby with the host seated.
func New(key SessionKey, host Player, now time.Time) *Session {
	return &Session{
		Key:            key,
		HostID:         host.ID,
		Phase:          PhaseWaiting,
		Players:        []Player{host},
		CreatedAt:      now,
		LastActivityAt: now,
		TeamVotes:      map[PlayerID]TeamVote{},
		QuestVotes:     map[PlayerID]QuestVote{},
		RestartVotes:   map[PlayerID]bool{},
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// PlayerIDs returns ids in join order.
func (s *Session) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.ID
	}
	return ids
}

// IndexOf returns the seat of id or -1.
func (s *Session) IndexOf(id PlayerID) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == id })
}

// HasPlayer reports whether id is seated.
func (s *Session) HasPlayer(id PlayerID) bool { return s.IndexOf(id) >= 0 }

// Player returns the seated player with id.
func (s *Session) Player(id PlayerID) (Player, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.Players[i], true
	}
	return Player{}, false
}

// Leader returns the current proposer.
func (s *Session) Leader() (Player, bool) {
	if s.LeaderIndex < 0 || s.LeaderIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.LeaderIndex], true
}

// OnTeam reports whether id is on the current quest team.
func (s *Session) OnTeam(id PlayerID) bool { return slices.Contains(s.CurrentTeam, id) }

// AdvanceLeader rotates leadership by one seat.
func (s *Session) AdvanceLeader() {
	if len(s.Players) == 0 {
		s.LeaderIndex = 0
		return
	}
	s.LeaderIndex = (s.LeaderIndex + 1) % len(s.Players)
}

// RemovePlayer unseats id and clamps the leader pointer to 0 when it falls off the end.
func (s *Session) RemovePlayer(id PlayerID) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.Players = slices.Delete(s.Players, i, i+1)
	delete(s.Roles, id)
	delete(s.TeamVotes, id)
	delete(s.RestartVotes, id)
	if s.LeaderIndex >= len(s.Players) {
		s.LeaderIndex = 0
	}
	return true
}

// TeamSize is the required team size for the current round.
func (s *Session) TeamSize() (int, error) {
	return rules.TeamSize(len(s.Players), s.Round)
}

// CountApprovals tallies team approvals.
func (s *Session) CountApprovals() int {
	n := 0
	for _, v := range s.TeamVotes {
		if v == Approve {
			n++
		}
	}
	return n
}

// CountFails tallies fail ballots on the current quest.
func (s *Session) CountFails() int {
	n := 0
	for _, v := range s.QuestVotes {
		if v == Fail {
			n++
		}
	}
	return n
}

// ClearRestartVote drops revote bookkeeping.
func (s *Session) ClearRestartVote() {
	s.RestartVotes = map[PlayerID]bool{}
	s.RestartVoteActive = false
}

// Touch records player activity and bumps the generation.
func (s *Session) Touch(now time.Time) {
	s.LastActivityAt = now
	s.Generation++
}

// Snapshot is a read-only copy without roles.
type Snapshot struct {
	Key               SessionKey          `json:"key"`
	HostID            PlayerID            `json:"hostId"`
	Phase             Phase               `json:"phase"`
	Players           []Player            `json:"players"`
	Round             int                 `json:"round"`
	Leader            *Player             `json:"leader,omitempty"`
	ProposalNumber    int                 `json:"proposalNumber"`
	TeamSize          int                 `json:"teamSize,omitempty"`
	CurrentTeam       []PlayerID          `json:"currentTeam,omitempty"`
	TeamVotesCast     int                 `json:"teamVotesCast"`
	QuestVotesCast    int                 `json:"questVotesCast"`
	QuestResults      []rules.QuestResult `json:"questResults"`
	RestartVoteActive bool                `json:"restartVoteActive"`
	RestartVotesCast  int                 `json:"restartVotesCast"`
	Outcome           *Outcome            `json:"outcome,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	LastActivityAt    time.Time           `json:"lastActivityAt"`
}

// Snapshot copies the public view. Caller holds the lock.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Key:               s.Key,
		HostID:            s.HostID,
		Phase:             s.Phase,
		Players:           slices.Clone(s.Players),
		Round:             s.Round,
		ProposalNumber:    s.ProposalNumber,
		CurrentTeam:       slices.Clone(s.CurrentTeam),
		TeamVotesCast:     len(s.TeamVotes),
		QuestVotesCast:    len(s.QuestVotes),
		QuestResults:      slices.Clone(s.QuestResults),
		RestartVoteActive: s.RestartVoteActive,
		RestartVotesCast:  len(s.RestartVotes),
		CreatedAt:         s.CreatedAt,
		LastActivityAt:    s.LastActivityAt,
	}
	if s.Phase != PhaseWaiting {
		if leader, ok := s.Leader(); ok {
			snap.Leader = &leader
		}
		if size, err := s.TeamSize(); err == nil && s.Phase.InGame() {
			snap.TeamSize = size
		}
	}
	if s.Outcome != nil {
		out := *s.Outcome
		snap.Outcome = &out
	}
	return snap
}
