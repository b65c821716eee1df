// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewFakeClock(epoch)
	var order []string
	c.AfterFunc(3*time.Minute, func() { order = append(order, "late") })
	c.AfterFunc(time.Minute, func() { order = append(order, "early") })
	c.AfterFunc(time.Minute, func() { order = append(order, "early-2") })

	c.Advance(2 * time.Minute)
	assert.Equal(t, []string{"early", "early-2"}, order)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Minute)
	assert.Equal(t, []string{"early", "early-2", "late"}, order)
	assert.Equal(t, epoch.Add(3*time.Minute), c.Now())
}

func TestFakeClock_Stop(t *testing.T) {
	c := NewFakeClock(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, tm.Stop())
	require.False(t, tm.Stop())
	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, c.Pending())
}

func TestFakeClock_CallbackSeesDeadlineTime(t *testing.T) {
	c := NewFakeClock(epoch)
	var seen time.Time
	c.AfterFunc(time.Minute, func() { seen = c.Now() })
	c.Advance(10 * time.Minute)
	assert.Equal(t, epoch.Add(time.Minute), seen)
}

func TestFakeClock_NestedScheduleInsideWindow(t *testing.T) {
	c := NewFakeClock(epoch)
	count := 0
	c.AfterFunc(time.Minute, func() {
		count++
		c.AfterFunc(time.Minute, func() { count++ })
	})
	c.Advance(5 * time.Minute)
	assert.Equal(t, 2, count)
}

func TestSlot_ClearBeforeSet(t *testing.T) {
	c := NewFakeClock(epoch)
	var s Slot
	var fired []int

	s.Set(c.AfterFunc(time.Minute, func() { fired = append(fired, 1) }))
	s.Set(c.AfterFunc(time.Minute, func() { fired = append(fired, 2) }))
	assert.Equal(t, 1, c.Pending(), "previous timer must be stopped")

	c.Advance(time.Minute)
	assert.Equal(t, []int{2}, fired)

	s.Release()
	assert.False(t, s.Active())
	assert.False(t, s.Clear())
}

func TestDurations_WithDefaults(t *testing.T) {
	d := Durations{LobbyIdle: time.Second}.WithDefaults()
	assert.Equal(t, DefaultQuestVote, d.QuestVote)
	assert.Equal(t, time.Second, d.LobbyIdle)
	assert.Equal(t, DefaultFinishedIdle, d.FinishedIdle)
}
