package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		enabled       zapcore.Level
		disabled      zapcore.Level
	}{
		{"info", "json", zapcore.InfoLevel, zapcore.DebugLevel},
		{"DEBUG", "console", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn", "", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tt.level, tt.format, err)
		}
		if !logger.Core().Enabled(tt.enabled) {
			t.Errorf("level %s should enable %s", tt.level, tt.enabled)
		}
		if logger.Core().Enabled(tt.disabled) {
			t.Errorf("level %s should not enable %s", tt.level, tt.disabled)
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("postgres://monitor:hunter2@db:5432/launches?sslmode=disable")
	if strings.Contains(got, "hunter2") {
		t.Errorf("password not redacted: %s", got)
	}
	if !strings.Contains(got, "monitor:redacted@db:5432") {
		t.Errorf("unexpected redacted url: %s", got)
	}

	if got := RedactURL("redis://localhost:6379/0"); got != "redis://localhost:6379/0" {
		t.Errorf("url without password changed: %s", got)
	}
}
