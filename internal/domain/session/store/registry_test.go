// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/domain/session/timers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newSession(guild, channel string) *model.Session {
	return model.New(model.SessionKey{GuildID: guild, ChannelID: channel}, model.Player{ID: "host", DisplayName: "host"}, start)
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := NewRegistry()
	s := newSession("g", "c")

	require.NoError(t, r.Create(s))
	require.ErrorIs(t, r.Create(newSession("g", "c")), ErrSessionExists)

	got, ok := r.Get(s.Key)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	s.Lock()
	assert.True(t, r.Delete(s))
	s.Unlock()
	assert.True(t, s.Removed)
	assert.False(t, r.Has(s.Key))
}

func TestRegistry_DeleteCancelsBothTimers(t *testing.T) {
	clock := timers.NewFakeClock(start)
	r := NewRegistry()
	s := newSession("g", "c")
	require.NoError(t, r.Create(s))

	fired := 0
	s.Lock()
	s.QuestTimer.Set(clock.AfterFunc(time.Minute, func() { fired++ }))
	s.CleanupTimer.Set(clock.AfterFunc(time.Minute, func() { fired++ }))
	r.Delete(s)
	s.Unlock()

	clock.Advance(time.Hour)
	assert.Zero(t, fired)
	assert.Zero(t, clock.Pending())
}

func TestRegistry_StaleDeleteKeepsReplacement(t *testing.T) {
	r := NewRegistry()
	old := newSession("g", "c")
	require.NoError(t, r.Create(old))

	old.Lock()
	require.True(t, r.Delete(old))
	old.Unlock()

	replacement := newSession("g", "c")
	require.NoError(t, r.Create(replacement))

	old.Lock()
	assert.False(t, r.Delete(old))
	old.Unlock()

	got, ok := r.Get(replacement.Key)
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestRegistry_ConcurrentDistinctKeys(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := newSession("g", fmt.Sprintf("c%d", i))
			assert.NoError(t, r.Create(s))
			_, ok := r.Get(s.Key)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 64, r.Len())

	r.Close()
	assert.Zero(t, r.Len())
}
