// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ManuGH/avalon/internal/domain/session/model"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_engine_actions_total",
			Help: "Engine actions by operation and result (ok, rejected).",
		},
		[]string{"op", "result"},
	)

	phaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_phase_transitions_total",
			Help: "Session phase transitions.",
		},
		[]string{"from", "to"},
	)

	gamesFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_games_finished_total",
			Help: "Games that reached a definitive outcome, by end reason.",
		},
		[]string{"reason"},
	)

	questTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "avalon_quest_timeouts_total",
			Help: "Quest votes resolved by the deadline timer.",
		},
	)

	staleTimerFiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_stale_timer_fires_total",
			Help: "Timer callbacks that found the session had moved on.",
		},
		[]string{"timer"},
	)

	cleanupDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_cleanup_deletions_total",
			Help: "Idle sessions deleted by the cleanup timer, by phase.",
		},
		[]string{"phase"},
	)

	dmFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "avalon_dm_failures_total",
			Help: "Direct messages that could not be delivered.",
		},
	)

	historySaveFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "avalon_history_save_failures_total",
			Help: "Completed games that could not be persisted.",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "avalon_active_sessions",
			Help: "Live sessions in the registry.",
		},
	)
)

func recordTransition(from, to model.Phase) {
	phaseTransitions.WithLabelValues(string(from), string(to)).Inc()
}
