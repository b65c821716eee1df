// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/log"
)

// scheduleQuestTimer arms the quest deadline for the current epoch. Caller
// holds the lock.
func (e *Engine) scheduleQuestTimer(s *model.Session) {
	key, epoch := s.Key, s.QuestEpoch
	s.QuestTimer.Set(e.clock.AfterFunc(e.Durations().QuestVote, func() {
		e.onQuestTimeout(key, s, epoch)
	}))
}

// onQuestTimeout counts missing quest ballots as success and resolves the
// quest, unless the session or the quest moved on since scheduling.
func (e *Engine) onQuestTimeout(key model.SessionKey, scheduled *model.Session, epoch uint64) {
	s, ok := e.registry.Get(key)
	if !ok || s != scheduled {
		e.stale("quest", key, "session gone")
		return
	}
	s.Lock()
	if s.Removed || s.Phase != model.PhaseQuestVote || s.QuestEpoch != epoch {
		s.Unlock()
		e.stale("quest", key, "quest already resolved")
		return
	}
	s.QuestTimer.Release()

	from := s.Phase
	ob := newOutbox(key)
	missing := 0
	for _, id := range s.CurrentTeam {
		if _, voted := s.QuestVotes[id]; !voted {
			s.QuestVotes[id] = model.Success
			missing++
		}
	}
	questTimeoutsTotal.Inc()
	e.logger.Info().
		Str(log.FieldEvent, "quest.timer_fired").
		Str(log.FieldGuildID, key.GuildID).
		Str(log.FieldChannelID, key.ChannelID).
		Uint64(log.FieldEpoch, epoch).
		Int("missing_votes", missing).
		Msg("quest vote deadline reached")
	ob.post(msgQuestTimedOut(missing))

	if err := e.resolveQuest(s, ob); err != nil {
		e.logger.Error().
			Str(log.FieldEvent, "quest.resolve_failed").
			Str(log.FieldGuildID, key.GuildID).
			Str(log.FieldChannelID, key.ChannelID).
			Err(err).
			Msg("quest resolution after timeout failed")
	}
	res, _ := e.commit(s, from, ob, false)
	s.Unlock()

	ctx, cancel := e.timerContext()
	defer cancel()
	e.flush(ctx, ob, &res)
}

// scheduleCleanup re-arms the idle cleanup timer for the session's phase:
// the lobby window while waiting, the shorter window once finished, none
// during play. The previous timer is always cancelled first.
func (e *Engine) scheduleCleanup(s *model.Session) {
	s.CleanupTimer.Clear()
	d := e.Durations()
	var wait time.Duration
	switch s.Phase {
	case model.PhaseWaiting:
		wait = d.LobbyIdle
	case model.PhaseFinished:
		wait = d.FinishedIdle
	default:
		return
	}
	key, gen := s.Key, s.Generation
	s.CleanupTimer.Set(e.clock.AfterFunc(wait, func() {
		e.onCleanup(key, s, gen)
	}))
}

// onCleanup deletes an idle session and tells its channel, unless anything
// happened since the timer was armed.
func (e *Engine) onCleanup(key model.SessionKey, scheduled *model.Session, gen uint64) {
	s, ok := e.registry.Get(key)
	if !ok || s != scheduled {
		e.stale("cleanup", key, "session gone")
		return
	}
	s.Lock()
	if s.Removed || s.Generation != gen || !s.Phase.Idle() {
		s.Unlock()
		e.stale("cleanup", key, "session active again")
		return
	}
	s.CleanupTimer.Release()

	from := s.Phase
	e.deleteSession(s, "idle")
	cleanupDeletionsTotal.WithLabelValues(string(from)).Inc()
	e.logger.Info().
		Str(log.FieldEvent, "cleanup.fired").
		Str(log.FieldGuildID, key.GuildID).
		Str(log.FieldChannelID, key.ChannelID).
		Str(log.FieldPhase, string(from)).
		Msg("idle session removed")

	ob := newOutbox(key)
	ob.post(msgAutoCancel)
	res, _ := e.commit(s, from, ob, false)
	s.Unlock()

	ctx, cancel := e.timerContext()
	defer cancel()
	e.flush(ctx, ob, &res)
}

// stale records a timer callback that lost the race. This is expected.
func (e *Engine) stale(timer string, key model.SessionKey, why string) {
	staleTimerFiresTotal.WithLabelValues(timer).Inc()
	e.logger.Debug().
		Str(log.FieldEvent, timer+".stale").
		Str(log.FieldGuildID, key.GuildID).
		Str(log.FieldChannelID, key.ChannelID).
		Str("reason", why).
		Msg("timer fired after session moved on")
}
