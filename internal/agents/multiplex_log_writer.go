package agents

import (
	"fmt"
	"io"
	"sync"
)

// MultiplexedLogWriter writes plain-text events from concurrent runs, each
// line prefixed with the lead name to tell interleaved output apart.
type MultiplexedLogWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewMultiplexedLogWriter creates a new multiplexed log writer.
func NewMultiplexedLogWriter(w io.Writer) *MultiplexedLogWriter {
	return &MultiplexedLogWriter{writer: w}
}

// Write writes a log event with a "[lead] " prefix.
func (m *MultiplexedLogWriter) Write(event LogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Lead != "" {
		if _, err := fmt.Fprintf(m.writer, "[%s] ", event.Lead); err != nil {
			return fmt.Errorf("write prefix: %w", err)
		}
	}

	var err error
	switch event.Type {
	case EventAgentStart:
		_, err = fmt.Fprintf(m.writer, "→ %s\n", event.Agent)
	case EventHandoff:
		_, err = fmt.Fprintf(m.writer, "🔄 %s → %s\n", event.Agent, event.Target)
	case EventTool:
		_, err = fmt.Fprintf(m.writer, "%s: calling %s\n", event.Agent, event.Tool)
	case EventToolOutput:
		_, err = fmt.Fprintf(m.writer, "%s: %s returned %d bytes\n", event.Agent, event.Tool, len(event.Content))
	case EventAssistantMessage:
		_, err = fmt.Fprintf(m.writer, "%s: %s\n", event.Agent, firstLine(event.Content))
	case EventError:
		_, err = fmt.Fprintf(m.writer, "ERROR: %s\n", event.Content)
	case EventLeadDone:
		_, err = fmt.Fprintf(m.writer, "done (%s) in %s\n", event.Status, event.Duration.Round(1e6))
	default:
		_, err = fmt.Fprintf(m.writer, "{type=%s timestamp=%s}\n", event.Type, event.Timestamp.Format("15:04:05"))
	}
	return err
}
