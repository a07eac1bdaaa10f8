package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: zapcore.WarnLevel})

	log.Info("hidden")
	log.Warn("shown", zap.String("k", "v"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"k": "v"`) {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: zapcore.DebugLevel, Format: "json"})
	log.Debug("hello")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected json output, got %q", buf.String())
	}
}
