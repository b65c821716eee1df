// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://bridge.example.com/hook", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://example.com:8080", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("notify.webhookURL", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{":8080", false},
		{"127.0.0.1:0", false},
		{"[::1]:9000", false},
		{"localhost", true},
		{":http", true},
		{":70000", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			v := New()
			v.ListenAddr("api.listenAddr", tt.addr)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("ListenAddr(%q) error = %v, want %v (%v)", tt.addr, got, tt.wantErr, v.Err())
			}
		})
	}
}

func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"at min", 1, false},
		{"at max", 100, false},
		{"below", 0, true},
		{"above", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Range("history.limit", tt.value, 1, 100)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("Range(%d) error = %v, want %v", tt.value, got, tt.wantErr)
			}
		})
	}
}

func TestValidator_FloatRange(t *testing.T) {
	v := New()
	v.FloatRange("telemetry.samplingRate", 0.5, 0, 1)
	v.FloatRange("telemetry.samplingRate", 1.5, 0, 1)
	v.FloatRange("telemetry.samplingRate", -0.1, 0, 1)

	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", got, v.Err())
	}
}

func TestValidator_Duration(t *testing.T) {
	v := New()
	v.Duration("game.questTimeout", 5*time.Minute, time.Second, time.Hour)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v.Duration("game.questTimeout", 0, time.Second, time.Hour)
	v.Duration("game.lobbyIdle", 48*time.Hour, time.Second, 24*time.Hour)
	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
	if !strings.Contains(v.Errors()[0].Message, "0s") {
		t.Errorf("message should name the bad value: %q", v.Errors()[0].Message)
	}
}

func TestValidator_ParentDirectory(t *testing.T) {
	tmp := t.TempDir()

	t.Run("creates missing parent", func(t *testing.T) {
		v := New()
		path := filepath.Join(tmp, "data", "nested", "history.db")
		v.ParentDirectory("history.path", path)
		if !v.IsValid() {
			t.Fatalf("unexpected error: %v", v.Err())
		}
		if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
			t.Fatalf("parent not created: %v", err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		file := filepath.Join(tmp, "plain")
		if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		v := New()
		v.ParentDirectory("history.path", filepath.Join(file, "history.db"))
		if v.IsValid() {
			t.Fatal("expected error for file parent")
		}
	})

	t.Run("traversal", func(t *testing.T) {
		v := New()
		v.ParentDirectory("history.path", "../../etc/history.db")
		if v.IsValid() {
			t.Fatal("expected traversal error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		v := New()
		v.ParentDirectory("history.path", "")
		if v.IsValid() {
			t.Fatal("expected empty path error")
		}
	})
}

func TestValidator_NotEmpty(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"avalon", false},
		{"", true},
		{"   ", true},
		{"\t\n", true},
	}

	for _, tt := range tests {
		v := New()
		v.NotEmpty("field", tt.value)
		if got := !v.IsValid(); got != tt.wantErr {
			t.Errorf("NotEmpty(%q) error = %v, want %v", tt.value, got, tt.wantErr)
		}
	}
}

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"memory", "sqlite", "redis"}

	v := New()
	v.OneOf("history.backend", "sqlite", allowed)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v.OneOf("history.backend", "mongo", allowed)
	if v.IsValid() {
		t.Fatal("expected error for unknown value")
	}
	if !strings.Contains(v.Err().Error(), `"mongo"`) {
		t.Errorf("error should quote the bad value: %v", v.Err())
	}
}

func TestValidator_PositiveAndNonNegative(t *testing.T) {
	v := New()
	v.Positive("notify.dmBurst", 1)
	v.NonNegative("history.redis.db", 0)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v.Positive("notify.dmBurst", 0)
	v.NonNegative("history.redis.db", -1)
	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
}

func TestValidator_LogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		v := New()
		v.LogLevel("log.level", level)
		if !v.IsValid() {
			t.Errorf("level %q rejected: %v", level, v.Err())
		}
	}

	v := New()
	v.LogLevel("log.level", "verbose")
	if v.IsValid() {
		t.Fatal("expected error for unknown level")
	}
}

func TestValidator_Custom(t *testing.T) {
	v := New()
	v.Custom("cassandra.hosts", []string{}, func(value any) error {
		if len(value.([]string)) == 0 {
			return errors.New("at least one host required")
		}
		return nil
	})

	if v.IsValid() {
		t.Fatal("expected custom validation to fail")
	}
	if got := v.Errors()[0].Message; got != "at least one host required" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestValidator_MultipleErrors(t *testing.T) {
	v := New()
	v.NotEmpty("a", "")
	v.Positive("b", -1)
	v.OneOf("c", "x", []string{"y"})

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if got := len(verr.Errors()); got != 3 {
		t.Fatalf("expected 3 errors, got %d", got)
	}
	if got := strings.Count(err.Error(), ";"); got != 2 {
		t.Errorf("expected errors joined by '; ', got %q", err.Error())
	}

	// Err snapshots, later additions do not leak into it.
	v.NotEmpty("d", "")
	if got := len(verr.Errors()); got != 3 {
		t.Errorf("snapshot changed to %d errors", got)
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New()
	if err := v.Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if (ValidationError{}).Error() != "" {
		t.Error("empty ValidationError should render empty")
	}
}

func TestParseLogLevel(t *testing.T) {
	if got, err := ParseLogLevel("warn"); err != nil || got != LogLevelWarn {
		t.Fatalf("ParseLogLevel(warn) = %v, %v", got, err)
	}
	if _, err := ParseLogLevel("WARN"); err == nil {
		t.Fatal("levels are case sensitive")
	}
}
