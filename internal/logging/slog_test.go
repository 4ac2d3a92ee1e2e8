package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "tick", "remaining", 29)
	log.Info(ctx, "anchor charged", "charge_type", "initial_quick")
	log.Warn(ctx, "sync rejected", "action", "activate")
	log.Error(ctx, "push failed", "anchor_id", "a-1")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=tick", "remaining=29",
		"level=INFO", `msg="anchor charged"`, "charge_type=initial_quick",
		"level=WARN", `msg="sync rejected"`, "action=activate",
		"level=ERROR", `msg="push failed"`, "anchor_id=a-1",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelWarn)

	log.Info(context.Background(), "anchor listed")
	log.Warn(context.Background(), "offline")

	assert.NotContains(t, buf.String(), "anchor listed")
	assert.Contains(t, buf.String(), "msg=offline")
}

func TestJSONLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo).With("module", "anchor_service")

	log.Info(context.Background(), "anchor burned", "anchor_id", "a-2", "version", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "anchor burned", rec["msg"])
	assert.Equal(t, "anchor_service", rec["module"])
	assert.Equal(t, "a-2", rec["anchor_id"])
	assert.Equal(t, float64(7), rec["version"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNop_DiscardsEverything(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	assert.NotPanics(t, func() {
		log.Error(ctx, "ignored", "k", strings.Repeat("x", 10))
		log.With("module", "ritual").Info(ctx, "ignored")
	})
}
