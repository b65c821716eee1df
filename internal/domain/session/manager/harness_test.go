// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/domain/session/timers"
	"github.com/ManuGH/avalon/internal/history"
)

var (
	t0      = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	testKey = model.SessionKey{GuildID: "g1", ChannelID: "c1"}
)

// fixedShuffler keeps the role table in order and picks the last seat as
// leader: with five players p1..p5 that is Merlin, Percival, Loyal Servant,
// Assassin, Morgana and leader p5.
type fixedShuffler struct{}

func (fixedShuffler) IntN(n int) int { return n - 1 }

type fakeNotifier struct {
	mu     sync.Mutex
	dms    map[model.PlayerID][]string
	posts  []string
	failDM map[model.PlayerID]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{dms: map[model.PlayerID][]string{}, failDM: map[model.PlayerID]bool{}}
}

func (n *fakeNotifier) SendDirectMessage(_ context.Context, player model.PlayerID, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failDM[player] {
		return fmt.Errorf("dm to %s refused", player)
	}
	n.dms[player] = append(n.dms[player], content)
	return nil
}

func (n *fakeNotifier) PostToChannel(_ context.Context, _ model.SessionKey, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, content)
	return nil
}

func (n *fakeNotifier) DMs(id model.PlayerID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.dms[id]...)
}

// PostsContaining counts channel posts that contain sub.
func (n *fakeNotifier) PostsContaining(sub string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, p := range n.posts {
		if strings.Contains(p, sub) {
			count++
		}
	}
	return count
}

type failingHistory struct{}

func (failingHistory) SaveGame(context.Context, history.GameRecord) (string, error) {
	return "", errors.New("disk full")
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	e      *Engine
	clock  *timers.FakeClock
	notify *fakeNotifier
	hist   *history.MemoryStore
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		ctx:    context.Background(),
		clock:  timers.NewFakeClock(t0),
		notify: newFakeNotifier(),
		hist:   history.NewMemoryStore(),
	}
	base := []Option{
		WithClock(h.clock),
		WithNotifier(h.notify),
		WithHistory(h.hist),
		WithShuffler(fixedShuffler{}),
	}
	h.e = New(append(base, opts...)...)
	t.Cleanup(h.e.Close)
	return h
}

func pid(i int) model.PlayerID { return model.PlayerID(fmt.Sprintf("p%d", i)) }

func player(i int) model.Player {
	return model.Player{ID: pid(i), DisplayName: string(pid(i))}
}

func ids(in ...string) []model.PlayerID {
	out := make([]model.PlayerID, len(in))
	for i, s := range in {
		out[i] = model.PlayerID(s)
	}
	return out
}

// lobby creates a room hosted by p1 with n players seated.
func (h *harness) lobby(n int) {
	h.t.Helper()
	_, err := h.e.Create(h.ctx, testKey, player(1))
	require.NoError(h.t, err)
	for i := 2; i <= n; i++ {
		_, err := h.e.Join(h.ctx, testKey, player(i))
		require.NoError(h.t, err)
	}
}

func (h *harness) started(n int) Result {
	h.t.Helper()
	h.lobby(n)
	res, err := h.e.Start(h.ctx, testKey, "p1")
	require.NoError(h.t, err)
	return res
}

func (h *harness) status() model.Snapshot {
	h.t.Helper()
	snap, err := h.e.Status(h.ctx, testKey)
	require.NoError(h.t, err)
	return snap
}

func (h *harness) propose(leader string, team ...string) {
	h.t.Helper()
	_, err := h.e.Propose(h.ctx, testKey, model.PlayerID(leader), ids(team...))
	require.NoError(h.t, err)
}

// voteTeam has every seated player vote; players listed in approve approve,
// the rest reject. Returns the result of the final ballot.
func (h *harness) voteTeam(approve ...string) Result {
	h.t.Helper()
	yes := map[model.PlayerID]bool{}
	for _, id := range approve {
		yes[model.PlayerID(id)] = true
	}
	var res Result
	for _, p := range h.status().Players {
		var err error
		res, err = h.e.VoteTeam(h.ctx, testKey, p.ID, yes[p.ID])
		require.NoError(h.t, err)
	}
	return res
}

func (h *harness) approveAll() Result {
	h.t.Helper()
	var all []string
	for _, p := range h.status().Players {
		all = append(all, string(p.ID))
	}
	return h.voteTeam(all...)
}

func (h *harness) voteQuest(id string, success bool) Result {
	h.t.Helper()
	res, err := h.e.VoteQuest(h.ctx, testKey, model.PlayerID(id), success)
	require.NoError(h.t, err)
	return res
}

// rejectFive burns five proposals in round one, ending the game.
func (h *harness) rejectFive() Result {
	h.t.Helper()
	var res Result
	for range 5 {
		leader := h.status().Leader
		require.NotNil(h.t, leader)
		h.propose(string(leader.ID), "p1", "p2")
		res = h.voteTeam()
	}
	return res
}
