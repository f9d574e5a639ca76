package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// captureOutput swaps the package logger for one writing into buf.
func captureOutput(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	mu.Lock()
	orig := sugar
	sugar = newSugar(zapcore.AddSync(buf))
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		sugar = orig
		mu.Unlock()
		Init("info")
	})
}

func TestInitAndLevelString(t *testing.T) {
	defer Init("info")
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFilteringAndPrintln(t *testing.T) {
	var buf bytes.Buffer
	captureOutput(t, &buf)

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") {
		t.Fatalf("debug messages should be suppressed at warn level")
	}
	if strings.Contains(out, "info-msg") {
		t.Fatalf("info messages should be suppressed at warn level")
	}
	if !strings.Contains(out, "warn-msg") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "error-msg") {
		t.Fatalf("error message missing: %q", out)
	}

	buf.Reset()
	Println("hello")
	if strings.Contains(buf.String(), "hello") {
		t.Fatalf("Println should be suppressed at warn level")
	}

	Init("info")
	buf.Reset()
	Println("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("Println expected at info level, got: %q", buf.String())
	}
}

func TestWithAddsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	captureOutput(t, &buf)

	With("provider", "tmdb").Infof("upstream ok")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["provider"] != "tmdb" {
		t.Fatalf("provider field missing: %v", entry)
	}
	if entry["msg"] != "upstream ok" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
}
