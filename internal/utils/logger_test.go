package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stdout)
	fn()
	return buf.String()
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger := NewLogger()

	out := captureLog(t, func() {
		logger.Debug("hidden")
		logger.Info("shown")
	})

	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[INFO]") {
		t.Errorf("info message missing: %q", out)
	}
}

func TestGlobalLevelOverride(t *testing.T) {
	logger := NewLogger()

	SetLogLevel(ErrorLevel)
	defer SetLogLevel(InfoLevel)

	out := captureLog(t, func() {
		logger.Info("suppressed")
		logger.Errorf("broke: %d", 7)
	})

	if strings.Contains(out, "suppressed") {
		t.Error("info message logged despite error-level override")
	}
	if !strings.Contains(out, "broke: 7") {
		t.Errorf("error message missing: %q", out)
	}
}

func TestComponentLoggerCarriesField(t *testing.T) {
	logger := NewComponentLogger("fetch")

	out := captureLog(t, func() {
		logger.Warn("slow response")
	})

	if !strings.Contains(out, "component=fetch") {
		t.Errorf("component field missing: %q", out)
	}
	if !strings.Contains(out, "[WARN]") {
		t.Errorf("level tag missing: %q", out)
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	parent := NewComponentLogger("pipeline")
	child := parent.WithFields(map[string]interface{}{"url": "https://x.example/"})

	out := captureLog(t, func() {
		parent.Info("parent line")
	})
	if strings.Contains(out, "url=") {
		t.Error("child field leaked into parent logger")
	}

	out = captureLog(t, func() {
		child.Info("child line")
	})
	if !strings.Contains(out, "url=https://x.example/") || !strings.Contains(out, "component=pipeline") {
		t.Errorf("child fields missing: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
