// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestKeyed_BurstThenDeny(t *testing.T) {
	k := NewKeyed("test_burst", Config{Rate: 0.001, Burst: 3, IdleTTL: time.Hour})

	allowed := 0
	for range 10 {
		if k.Allow("p1") {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("expected 3 requests to pass with burst=3, got %d", allowed)
	}
	if got := testutil.ToFloat64(rateLimitExceeded.WithLabelValues("test_burst")); got != 7 {
		t.Errorf("expected 7 rejections recorded, got %v", got)
	}
}

func TestKeyed_KeysAreIndependent(t *testing.T) {
	k := NewKeyed("test_keys", Config{Rate: 0.001, Burst: 1, IdleTTL: time.Hour})

	if !k.Allow("p1") {
		t.Fatal("first event for p1 should pass")
	}
	if k.Allow("p1") {
		t.Error("second event for p1 should be limited")
	}
	if !k.Allow("p2") {
		t.Error("p2 has its own bucket")
	}
	if k.Len() != 2 {
		t.Errorf("expected 2 tracked keys, got %d", k.Len())
	}
}

func TestKeyed_Unlimited(t *testing.T) {
	k := NewKeyed("test_unlimited", Config{})
	for range 1000 {
		if !k.Allow("p1") {
			t.Fatal("zero rate must not limit")
		}
	}
	if k.Len() != 0 {
		t.Errorf("unlimited config should not track keys, got %d", k.Len())
	}
}

func TestKeyed_WaitHonoursContext(t *testing.T) {
	k := NewKeyed("test_wait", Config{Rate: 0.001, Burst: 1, IdleTTL: time.Hour})

	if err := k.Wait(context.Background(), "p1"); err != nil {
		t.Fatalf("first wait should pass immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := k.Wait(ctx, "p1"); err == nil {
		t.Error("expected wait to fail once the bucket is empty and the deadline is short")
	}
}

func TestKeyed_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k := NewKeyed("test_sweep", Config{Rate: 1, Burst: 1, IdleTTL: time.Minute})
	k.now = func() time.Time { return now }
	k.lastSweep = now

	k.Allow("p1")
	now = now.Add(30 * time.Second)
	k.Allow("p2")

	now = now.Add(45 * time.Second)
	k.Allow("p3")

	// p1 idle for 75s is dropped, p2 idle for 45s survives.
	if k.Len() != 2 {
		t.Errorf("expected 2 tracked keys after sweep, got %d", k.Len())
	}
}
