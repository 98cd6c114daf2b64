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

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewJSONLogger(&buf, slog.LevelDebug), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "session resolved", "sid", "s1")
	log.Info(ctx, "user registered", "user_id", "u1")
	log.Warn(ctx, "link verification failed", "purpose", "reset")
	log.Error(ctx, "signup create failed", "error", "boom")

	got := lines(t, buf)
	require.Len(t, got, 4)
	want := []struct{ level, msg, key string }{
		{"DEBUG", "session resolved", "sid"},
		{"INFO", "user registered", "user_id"},
		{"WARN", "link verification failed", "purpose"},
		{"ERROR", "signup create failed", "error"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, got[i]["level"])
		assert.Equal(t, w.msg, got[i]["msg"])
		assert.Contains(t, got[i], w.key)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "accounts").Info(context.Background(), "password changed", "user_id", "u1")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "accounts", got[0]["module"])
	assert.Equal(t, "u1", got[0]["user_id"])
}

func TestSlogLogger_ContextAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	ctx := ContextWith(context.Background(), "actor_id", "admin-1")
	ctx = ContextWith(ctx, "route", "/role/{uid}")
	log.Info(ctx, "role changed", "user_id", "u2")
	log.Info(context.Background(), "no actor")

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "admin-1", got[0]["actor_id"])
	assert.Equal(t, "/role/{uid}", got[0]["route"])
	assert.Equal(t, "u2", got[0]["user_id"])
	assert.NotContains(t, got[1], "actor_id")
}

func TestContextWith_DoesNotLeakIntoParent(t *testing.T) {
	parent := ContextWith(context.Background(), "a", 1)
	_ = ContextWith(parent, "b", 2)
	assert.Equal(t, []any{"a", 1}, contextArgs(parent))
}

func TestNewJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNopLogger_Discards(t *testing.T) {
	var l Logger = NewNopLogger()
	assert.NotPanics(t, func() {
		l.With("a", 1).Error(context.TODO(), "nothing")
	})
}
