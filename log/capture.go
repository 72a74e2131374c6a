package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Entry is one captured log record with its attributes rendered as strings.
type Entry struct {
	Attrs   map[string]string
	Message string
	Level   slog.Level
}

// Capture is a slog.Handler that keeps records in memory. Tests use it to
// assert what a component logged.
type Capture struct {
	state *captureState
	attrs []slog.Attr
	group string
	level slog.Level
}

type captureState struct {
	entries []Entry
	mu      sync.Mutex
}

// NewCapture returns a Capture that keeps records at or above level.
func NewCapture(level slog.Level) *Capture {
	return &Capture{state: &captureState{}, level: level}
}

// Logger returns a logger writing to c.
func (c *Capture) Logger() *slog.Logger { return slog.New(c) }

// Enabled implements slog.Handler.
func (c *Capture) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level
}

// Handle implements slog.Handler.
func (c *Capture) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	for _, a := range c.attrs {
		addAttr(e.Attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(e.Attrs, c.group, a)
		return true
	})

	c.state.mu.Lock()
	c.state.entries = append(c.state.entries, e)
	c.state.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (c *Capture) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *c
	n.attrs = append(slices.Clip(slices.Clone(c.attrs)), qualify(c.group, attrs)...)
	return &n
}

// WithGroup implements slog.Handler.
func (c *Capture) WithGroup(name string) slog.Handler {
	n := *c
	if n.group != "" {
		name = n.group + "." + name
	}
	n.group = name
	return &n
}

// Entries returns a copy of everything captured so far.
func (c *Capture) Entries() []Entry {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return slices.Clone(c.state.entries)
}

// Find returns the first entry with the given message.
func (c *Capture) Find(msg string) (Entry, bool) {
	for _, e := range c.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

func qualify(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + "." + a.Key, Value: a.Value}
	}
	return out
}

func addAttr(dst map[string]string, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			addAttr(dst, key, ga)
		}
		return
	}
	dst[key] = attrString(a.Value)
}

// attrString renders a resolved value.
func attrString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindFloat64:
		return fmt.Sprintf("%g", v.Float64())
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		x := v.Any()
		if x == nil {
			return "<nil>"
		}
		if err, isErr := x.(error); isErr {
			return err.Error()
		}
		if s, ok := x.(fmt.Stringer); ok {
			return s.String()
		}
		if data, err := json.Marshal(x); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", x)
	}
	return fmt.Sprintf("%v", v.Any())
}
