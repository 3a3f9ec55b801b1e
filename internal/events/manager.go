package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/groblegark/loom/internal/ui"
)

// LineFormat selects how a logger renders events.
type LineFormat int

const (
	LineText LineFormat = iota
	LineJSON
)

// Filter decides whether a logger writes an event.
type Filter func(Event) bool

// LoggerConfig describes one output attached to a Manager.
type LoggerConfig struct {
	Out      io.Writer
	Format   LineFormat
	MinLevel Level
	Filter   Filter
	UseColor bool
}

type lineLogger struct {
	cfg LoggerConfig
}

// jsonLine is the wire shape of a JSON-formatted log line. Event data is
// flattened under "data" so consumers need no per-event schema.
type jsonLine struct {
	Name         string         `json:"name"`
	Level        string         `json:"level"`
	Ts           time.Time      `json:"ts"`
	InvocationID string         `json:"invocation_id"`
	Msg          string         `json:"msg"`
	Data         map[string]any `json:"data,omitempty"`
}

func (l *lineLogger) write(m *Manager, e Event) {
	if !l.cfg.MinLevel.Covers(e.Level()) {
		return
	}
	if l.cfg.Filter != nil && !l.cfg.Filter(e) {
		return
	}

	switch l.cfg.Format {
	case LineJSON:
		line, err := json.Marshal(jsonLine{
			Name:         e.Name(),
			Level:        e.Level().String(),
			Ts:           m.now().UTC(),
			InvocationID: m.invocationID,
			Msg:          e.Message(),
			Data:         e.Data(),
		})
		if err != nil {
			return
		}
		fmt.Fprintln(l.cfg.Out, string(line))
	default:
		ts := m.now().Format("15:04:05")
		msg := e.Message()
		if l.cfg.UseColor {
			switch e.Level() {
			case LevelWarn:
				msg = ui.RenderWarn(msg)
			case LevelError:
				msg = ui.RenderError(msg)
			}
			ts = ui.RenderMuted(ts)
		}
		fmt.Fprintf(l.cfg.Out, "%s  %s\n", ts, msg)
	}
}

// Manager fans events out to loggers and callbacks. One Manager lives for
// the duration of a CLI invocation and carries its invocation ID.
type Manager struct {
	mu           sync.Mutex
	loggers      []*lineLogger
	callbacks    []func(Event)
	invocationID string
	now          func() time.Time
}

// NewManager creates a manager for the given invocation ID.
func NewManager(invocationID string) *Manager {
	return &Manager{
		invocationID: invocationID,
		now:          time.Now,
	}
}

// InvocationID returns the ID shared by every event of this invocation.
func (m *Manager) InvocationID() string {
	return m.invocationID
}

// AddLogger attaches an output to the manager.
func (m *Manager) AddLogger(cfg LoggerConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, &lineLogger{cfg: cfg})
}

// AddCallback registers a function invoked for every fired event, after the
// loggers have written it.
func (m *Manager) AddCallback(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Fire writes the event to every logger, then invokes every callback.
func (m *Manager) Fire(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loggers {
		l.write(m, e)
	}
	for _, fn := range m.callbacks {
		fn(e)
	}
}

// envelope is the JSON payload published for an event.
type envelope struct {
	InvocationID string         `json:"invocation_id"`
	Name         string         `json:"name"`
	Level        string         `json:"level"`
	Ts           time.Time      `json:"ts"`
	Msg          string         `json:"msg"`
	Data         map[string]any `json:"data,omitempty"`
}

// PublisherCallback returns a callback that forwards every event to a
// Publisher under its Subject. Publish failures are dropped; event delivery
// never blocks a run.
func PublisherCallback(p Publisher, invocationID string) func(Event) {
	return func(e Event) {
		_ = p.Publish(context.Background(), Subject(e), envelope{
			InvocationID: invocationID,
			Name:         e.Name(),
			Level:        e.Level().String(),
			Ts:           time.Now().UTC(),
			Msg:          e.Message(),
			Data:         e.Data(),
		})
	}
}
