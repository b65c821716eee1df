// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/telemetry"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avalon_history_operations_total",
		Help: "History store operations by backend, operation and result",
	}, []string{"backend", "op", "result"})

	opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avalon_history_operation_duration_seconds",
		Help:    "History store operation latency",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"backend", "op"})
)

// Instrumented wraps a Store with a span and metrics per call.
type Instrumented struct {
	next    Store
	backend string
	tracer  trace.Tracer
}

// Instrument wraps store. backend labels metrics and spans.
func Instrument(store Store, backend string) *Instrumented {
	if backend == "" {
		backend = BackendMemory
	}
	return &Instrumented{next: store, backend: backend, tracer: telemetry.Tracer("avalon.history")}
}

// observe starts a span and returns the function that ends it.
func (s *Instrumented) observe(ctx context.Context, op, guildID string, limit int) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "history."+op,
		trace.WithAttributes(telemetry.HistoryAttributes(s.backend, guildID, limit)...))
	return ctx, func(err error) {
		opDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
			errType := "backend"
			switch {
			case errors.Is(err, ErrInvalidRecord):
				errType = "invalid_record"
			case errors.Is(err, ErrClosed):
				errType = "closed"
			case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
				errType = "context"
			}
			span.SetAttributes(telemetry.ErrorAttributes(errType)...)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		opsTotal.WithLabelValues(s.backend, op, result).Inc()
		span.End()
	}
}

func (s *Instrumented) SaveGame(ctx context.Context, rec GameRecord) (id string, err error) {
	ctx, done := s.observe(ctx, "save", rec.GuildID, 0)
	defer func() { done(err) }()
	return s.next.SaveGame(ctx, rec)
}

func (s *Instrumented) History(ctx context.Context, guildID string, limit int) (games []GameRecord, err error) {
	ctx, done := s.observe(ctx, "history", guildID, limit)
	defer func() { done(err) }()
	return s.next.History(ctx, guildID, limit)
}

func (s *Instrumented) PlayerStats(ctx context.Context, player model.PlayerID, guildID string) (stats PlayerStats, err error) {
	ctx, done := s.observe(ctx, "stats", guildID, 0)
	defer func() { done(err) }()
	return s.next.PlayerStats(ctx, player, guildID)
}

func (s *Instrumented) Ping(ctx context.Context) (err error) {
	ctx, done := s.observe(ctx, "ping", "", 0)
	defer func() { done(err) }()
	return s.next.Ping(ctx)
}

func (s *Instrumented) Close() error { return s.next.Close() }
