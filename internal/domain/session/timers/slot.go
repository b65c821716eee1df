// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timers

// Slot owns at most one scheduled timer. Setting a new timer stops the
// previous one first. Slot is not safe for concurrent use; the owning
// session's lock guards it.
type Slot struct {
	t Timer
}

// Set replaces the active timer.
func (s *Slot) Set(t Timer) {
	s.Clear()
	s.t = t
}

// Clear stops the active timer, reporting whether one was pending.
func (s *Slot) Clear() bool {
	if s.t == nil {
		return false
	}
	stopped := s.t.Stop()
	s.t = nil
	return stopped
}

// Active reports whether a timer is held.
func (s *Slot) Active() bool { return s.t != nil }

// Release forgets the held timer without stopping it. A callback calls this
// on its own slot once it has fired.
func (s *Slot) Release() { s.t = nil }
