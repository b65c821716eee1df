// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ManuGH/avalon/internal/telemetry"
)

func TestInstrumented_CountsAndTraces(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	ctx := context.Background()
	s := Instrument(NewMemoryStore(), "") // empty backend labels as memory

	okSaves := testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "save", "ok"))
	badSaves := testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "save", "error"))

	_, err := s.SaveGame(ctx, fiveSeat("g1", baseTime))
	require.NoError(t, err)
	_, err = s.SaveGame(ctx, GameRecord{})
	require.ErrorIs(t, err, ErrInvalidRecord)

	games, err := s.History(ctx, "g1", 5)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	assert.Equal(t, okSaves+1, testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "save", "ok")))
	assert.Equal(t, badSaves+1, testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "save", "error")))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "history.save", spans[0].Name)
	assert.Equal(t, "history.history", spans[2].Name)

	failed := spans[1]
	var errType string
	for _, kv := range failed.Attributes {
		if string(kv.Key) == telemetry.ErrorTypeKey {
			errType = kv.Value.AsString()
		}
	}
	assert.Equal(t, "invalid_record", errType)
}

func TestInstrumented_ClosedStore(t *testing.T) {
	s := Instrument(NewMemoryStore(), BackendMemory)
	require.NoError(t, s.Close())

	before := testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "ping", "error"))
	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)
	assert.Equal(t, before+1, testutil.ToFloat64(opsTotal.WithLabelValues(BackendMemory, "ping", "error")))
}
