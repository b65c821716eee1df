// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package manager drives Avalon sessions through their phases. Every entry
// point locks one session, validates, mutates, reschedules timers and then
// performs notification and persistence I/O after the lock is released.
package manager

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/domain/session/store"
	"github.com/ManuGH/avalon/internal/domain/session/timers"
	"github.com/ManuGH/avalon/internal/log"
	"github.com/ManuGH/avalon/internal/telemetry"
)

const (
	defaultFanout    = 8
	defaultIOTimeout = 10 * time.Second
)

// Engine is the phase transition engine. It is safe for concurrent use;
// distinct sessions never contend.
type Engine struct {
	registry  *store.Registry
	clock     timers.Clock
	notifier  Notifier
	history   HistoryWriter
	shuffler  rules.Shuffler
	durations atomic.Pointer[timers.Durations]
	fanout    int
	ioTimeout time.Duration

	tracer trace.Tracer
	logger zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithRegistry(r *store.Registry) Option { return func(e *Engine) { e.registry = r } }
func WithClock(c timers.Clock) Option       { return func(e *Engine) { e.clock = c } }
func WithNotifier(n Notifier) Option        { return func(e *Engine) { e.notifier = n } }
func WithHistory(h HistoryWriter) Option    { return func(e *Engine) { e.history = h } }

// WithShuffler fixes the randomness used for role deals and leader picks.
func WithShuffler(s rules.Shuffler) Option { return func(e *Engine) { e.shuffler = s } }

func WithDurations(d timers.Durations) Option {
	return func(e *Engine) { e.SetDurations(d) }
}

// WithFanout bounds concurrent DM deliveries per action.
func WithFanout(n int) Option { return func(e *Engine) { e.fanout = n } }

// WithIOTimeout bounds the notification and persistence work done by timer callbacks.
func WithIOTimeout(d time.Duration) Option { return func(e *Engine) { e.ioTimeout = d } }

// New creates an Engine. Unset collaborators default to no-ops, the real
// clock and the default timings.
func New(opts ...Option) *Engine {
	e := &Engine{
		fanout:    defaultFanout,
		ioTimeout: defaultIOTimeout,
		tracer:    telemetry.Tracer("avalon.engine"),
		logger:    log.WithComponent("engine"),
	}
	e.SetDurations(timers.DefaultDurations())
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = store.NewRegistry()
	}
	if e.clock == nil {
		e.clock = timers.RealClock{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.history == nil {
		e.history = nopHistory{}
	}
	if e.shuffler == nil {
		e.shuffler = rules.DefaultShuffler
	}
	if e.fanout <= 0 {
		e.fanout = defaultFanout
	}
	if e.ioTimeout <= 0 {
		e.ioTimeout = defaultIOTimeout
	}
	return e
}

// SetDurations swaps the timer lengths. Timers already scheduled keep theirs.
func (e *Engine) SetDurations(d timers.Durations) {
	d = d.WithDefaults()
	e.durations.Store(&d)
}

// Durations returns the timer lengths used for newly scheduled timers.
func (e *Engine) Durations() timers.Durations {
	return *e.durations.Load()
}

// Registry exposes the live session table.
func (e *Engine) Registry() *store.Registry { return e.registry }

// Close drops every session and cancels all timers.
func (e *Engine) Close() {
	e.registry.Close()
	activeSessions.Set(0)
}

// Result reports a committed action.
type Result struct {
	Phase model.Phase `json:"phase"`
	// Session is nil once the action deleted the session.
	Session *model.Snapshot `json:"session,omitempty"`
	Deleted bool            `json:"deleted,omitempty"`
	// Reply is the private acknowledgement for the actor.
	Reply      string           `json:"reply,omitempty"`
	RecordID   string           `json:"recordId,omitempty"`
	DMFailures []model.PlayerID `json:"dmFailures,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// StatusView is the public, role-free view of a session.
type StatusView = model.Snapshot

// Status returns the current view of the session on key.
func (e *Engine) Status(ctx context.Context, key model.SessionKey) (StatusView, error) {
	_, span := e.tracer.Start(ctx, "avalon.engine.status", trace.WithAttributes(telemetry.SessionAttributes(key.GuildID, key.ChannelID)...))
	defer span.End()

	s, ok := e.registry.Get(key)
	if !ok {
		return StatusView{}, &ActionError{Op: "status", Key: key, Err: ErrSessionNotFound}
	}
	s.Lock()
	defer s.Unlock()
	if s.Removed {
		return StatusView{}, &ActionError{Op: "status", Key: key, Err: ErrSessionNotFound}
	}
	return s.Snapshot(), nil
}

type action struct {
	op    string
	key   model.SessionKey
	actor model.PlayerID
}

func (e *Engine) startSpan(ctx context.Context, a action) (context.Context, trace.Span) {
	attrs := telemetry.ActionAttributes(a.key.GuildID, a.key.ChannelID, a.op, string(a.actor))
	return e.tracer.Start(ctx, "avalon.engine."+a.op, trace.WithAttributes(attrs...))
}

// reject wraps a validation failure. Rejections are expected traffic and
// logged at debug only.
func (e *Engine) reject(span trace.Span, a action, err error) error {
	actionsTotal.WithLabelValues(a.op, "rejected").Inc()
	span.SetStatus(codes.Error, err.Error())
	e.logger.Debug().
		Str(log.FieldEvent, "action.rejected").
		Str(log.FieldAction, a.op).
		Str(log.FieldGuildID, a.key.GuildID).
		Str(log.FieldChannelID, a.key.ChannelID).
		Str(log.FieldPlayerID, string(a.actor)).
		Err(err).
		Msg("action rejected")
	return &ActionError{Op: a.op, Key: a.key, Actor: a.actor, Err: err}
}

// run executes fn against the live session on a.key under its lock and
// flushes the collected effects afterwards.
func (e *Engine) run(ctx context.Context, a action, fn func(*model.Session, *outbox) error) (Result, error) {
	ctx, span := e.startSpan(ctx, a)
	defer span.End()

	s, ok := e.registry.Get(a.key)
	if !ok {
		return Result{}, e.reject(span, a, ErrSessionNotFound)
	}
	s.Lock()
	if s.Removed {
		s.Unlock()
		return Result{}, e.reject(span, a, ErrSessionNotFound)
	}
	from := s.Phase
	ob := newOutbox(a.key)
	if err := fn(s, ob); err != nil {
		s.Unlock()
		return Result{}, e.reject(span, a, err)
	}
	res, invErr := e.commit(s, from, ob, true)
	s.Unlock()

	e.flush(ctx, ob, &res)
	actionsTotal.WithLabelValues(a.op, "ok").Inc()
	if invErr != nil {
		span.RecordError(invErr)
		span.SetStatus(codes.Error, "invariant violation")
		return res, &ActionError{Op: a.op, Key: a.key, Actor: a.actor, Err: invErr}
	}
	return res, nil
}

// commit finalises a mutation while the lock is still held: it bumps the
// generation, re-evaluates the cleanup timer and checks invariants.
// Player actions also refresh the activity timestamp.
func (e *Engine) commit(s *model.Session, from model.Phase, ob *outbox, playerAction bool) (Result, error) {
	if playerAction {
		s.Touch(e.clock.Now())
	} else {
		s.Generation++
	}
	if !s.Removed {
		e.scheduleCleanup(s)
	}
	activeSessions.Set(float64(e.registry.Len()))

	if s.Phase != from {
		recordTransition(from, s.Phase)
		e.logger.Info().
			Str(log.FieldEvent, "session.transition").
			Str(log.FieldGuildID, s.Key.GuildID).
			Str(log.FieldChannelID, s.Key.ChannelID).
			Str(log.FieldOldPhase, string(from)).
			Str(log.FieldNewPhase, string(s.Phase)).
			Int(log.FieldRound, s.Round).
			Msg("phase changed")
	}

	res := Result{Phase: s.Phase, Reply: ob.reply}
	if s.Removed {
		res.Deleted = true
		return res, nil
	}
	snap := s.Snapshot()
	res.Session = &snap

	if err := s.Validate(); err != nil {
		e.logger.Error().
			Str(log.FieldEvent, "session.invariant_violation").
			Str(log.FieldGuildID, s.Key.GuildID).
			Str(log.FieldChannelID, s.Key.ChannelID).
			Str(log.FieldPhase, string(s.Phase)).
			Err(err).
			Msg("session invariant violated")
		return res, err
	}
	return res, nil
}

// deleteSession removes s from the registry. Caller holds s's lock.
func (e *Engine) deleteSession(s *model.Session, reason string) {
	e.registry.Delete(s)
	e.logger.Info().
		Str(log.FieldEvent, "session.deleted").
		Str(log.FieldGuildID, s.Key.GuildID).
		Str(log.FieldChannelID, s.Key.ChannelID).
		Str(log.FieldPhase, string(s.Phase)).
		Str("reason", reason).
		Msg("session deleted")
}

// timerContext bounds the I/O a timer callback performs after committing.
func (e *Engine) timerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.ioTimeout)
}
