package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(WithWriter(&buf), WithLevel(slog.LevelWarn))
		l.Info("hidden")
		l.Warn("fallback factory replaced", "function", "qsort_kernel")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `msg="fallback factory replaced"`)
		assert.Contains(t, out, "function=qsort_kernel")
	})

	t.Run("json with source", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(WithWriter(&buf), WithJSON(true), WithSource(true))
		l.Info("descriptor built")

		assert.Contains(t, buf.String(), `"msg":"descriptor built"`)
		assert.Contains(t, buf.String(), `"source":`)
	})

	t.Run("nil writer keeps default", func(t *testing.T) {
		cfg := defaultHandlerConfig()
		WithWriter(nil)(&cfg)
		assert.NotNil(t, cfg.w)
	})
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}

func TestCapture(t *testing.T) {
	c := NewCapture(slog.LevelDebug)
	l := c.Logger().With("function", "fib").WithGroup("call")

	l.Debug("specialization rejected", "kernel", "fib_J", "arity", 1)
	l.Info("fallback", "error", errors.New("boom"), "took", time.Second, "ok", true, "ratio", 0.5)

	entries := c.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, slog.LevelDebug, entries[0].Level)
	assert.Equal(t, "fib", entries[0].Attrs["function"])
	assert.Equal(t, "fib_J", entries[0].Attrs["call.kernel"])
	assert.Equal(t, "1", entries[0].Attrs["call.arity"])

	e, ok := c.Find("fallback")
	require.True(t, ok)
	assert.Equal(t, "boom", e.Attrs["call.error"])
	assert.Equal(t, "1s", e.Attrs["call.took"])
	assert.Equal(t, "true", e.Attrs["call.ok"])
	assert.Equal(t, "0.5", e.Attrs["call.ratio"])

	_, ok = c.Find("missing")
	assert.False(t, ok)
}

func TestCapture_Level(t *testing.T) {
	c := NewCapture(slog.LevelInfo)
	c.Logger().Debug("dropped")
	assert.Empty(t, c.Entries())
}

func TestAttrString(t *testing.T) {
	tests := []struct {
		name string
		v    slog.Value
		want string
	}{
		{"string", slog.StringValue("v"), "v"},
		{"uint64", slog.Uint64Value(7), "7"},
		{"time", slog.TimeValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "2024-01-01T00:00:00Z"},
		{"nil", slog.AnyValue(nil), "<nil>"},
		{"json", slog.AnyValue(map[string]int{"a": 1}), `{"a":1}`},
		{"unmarshalable", slog.AnyValue(func() {}), "<func>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attrString(tt.v)
			if tt.name == "unmarshalable" {
				assert.NotEmpty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
