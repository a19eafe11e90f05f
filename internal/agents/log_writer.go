package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Event types emitted during a run.
const (
	EventAgentStart       = "agent_start"
	EventTool             = "tool"
	EventToolOutput       = "tool_output"
	EventHandoff          = "handoff"
	EventAssistantMessage = "assistant_message"
	EventError            = "error"
	EventLeadDone         = "lead_done"
)

// LogEvent represents a single event of an agent run.
type LogEvent struct {
	// Type is one of the Event* constants.
	Type string `json:"type"`

	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// Lead is the lead being processed, set by WithLead.
	Lead string `json:"lead,omitempty"`

	// Agent is the agent that produced the event.
	Agent string `json:"agent,omitempty"`

	// Content is the message content (for assistant_message, tool_output and error)
	Content string `json:"content,omitempty"`

	// Tool is the tool name (for tool events)
	Tool string `json:"tool,omitempty"`

	// Target is the receiving agent of a handoff.
	Target string `json:"target,omitempty"`

	// Status is "ok" or "error" on lead_done.
	Status string `json:"status,omitempty"`

	Duration time.Duration `json:"duration,omitempty"`
}

// LogWriter writes log events.
type LogWriter interface {
	Write(event LogEvent) error
}

// IOStreamLogWriter writes log events to an io.Writer as JSON lines.
type IOStreamLogWriter struct {
	w      io.Writer
	indent string
}

// NewIOStreamLogWriter creates a new log writer that writes to an io.Writer.
func NewIOStreamLogWriter(w io.Writer) *IOStreamLogWriter {
	return &IOStreamLogWriter{w: w}
}

// SetIndent sets the indentation prefix for log output.
func (l *IOStreamLogWriter) SetIndent(indent string) {
	l.indent = indent
}

// Write writes a log event to the underlying writer.
func (l *IOStreamLogWriter) Write(event LogEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}
	if l.indent != "" {
		data = append([]byte(l.indent), data...)
	}
	data = append(data, '\n')
	_, err = l.w.Write(data)
	return err
}

// MultiLogWriter writes to multiple log writers.
type MultiLogWriter struct {
	writers []LogWriter
}

// NewMultiLogWriter creates a new multi-log writer. Nil writers are skipped.
func NewMultiLogWriter(writers ...LogWriter) *MultiLogWriter {
	m := &MultiLogWriter{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// Write writes the event to all underlying writers.
func (m *MultiLogWriter) Write(event LogEvent) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-writer errors: %w", errors.Join(errs...))
	}
	return nil
}

// NullLogWriter is a no-op log writer.
type NullLogWriter struct{}

// Write does nothing.
func (NullLogWriter) Write(event LogEvent) error {
	return nil
}

// FuncLogWriter adapts a function to the LogWriter interface.
type FuncLogWriter func(event LogEvent) error

// Write calls f.
func (f FuncLogWriter) Write(event LogEvent) error {
	return f(event)
}

type leadLogWriter struct {
	lead   string
	writer LogWriter
}

// WithLead returns a writer that stamps every event with the lead name.
func WithLead(writer LogWriter, lead string) LogWriter {
	if writer == nil {
		return NullLogWriter{}
	}
	return &leadLogWriter{lead: lead, writer: writer}
}

func (l *leadLogWriter) Write(event LogEvent) error {
	if event.Lead == "" {
		event.Lead = l.lead
	}
	return l.writer.Write(event)
}

type lockedLogWriter struct {
	mu     sync.Mutex
	writer LogWriter
}

// NewLockedLogWriter serializes writes so one writer can be shared by
// concurrent runs.
func NewLockedLogWriter(writer LogWriter) LogWriter {
	return normalizeLogWriter(writer)
}

func (l *lockedLogWriter) Write(event LogEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Write(event)
}

func normalizeLogWriter(writer LogWriter) LogWriter {
	switch writer.(type) {
	case nil:
		return NullLogWriter{}
	case NullLogWriter, *lockedLogWriter:
		return writer
	}
	return &lockedLogWriter{writer: writer}
}
