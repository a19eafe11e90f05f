package agents

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ConsoleLogOptions holds configuration for console logging.
type ConsoleLogOptions struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultConsoleLogOptions returns default options for console logging.
func DefaultConsoleLogOptions() ConsoleLogOptions {
	return ConsoleLogOptions{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    "prospector",
	}
}

// ConsoleLogWriter implements LogWriter using charmbracelet/log for
// colorful, leveled, human-readable console output.
type ConsoleLogWriter struct {
	logger *log.Logger
}

// NewConsoleLogWriter creates a new console log writer with the given options.
func NewConsoleLogWriter(opts ConsoleLogOptions) *ConsoleLogWriter {
	return &ConsoleLogWriter{logger: NewConsoleLogger(os.Stderr, opts)}
}

// NewConsoleLogger builds the charmbracelet logger used for console output.
func NewConsoleLogger(w io.Writer, opts ConsoleLogOptions) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// NewConsoleLogWriterWithLogger creates a new console log writer with a custom logger.
func NewConsoleLogWriterWithLogger(logger *log.Logger) *ConsoleLogWriter {
	return &ConsoleLogWriter{logger: logger}
}

// Logger returns the underlying logger.
func (c *ConsoleLogWriter) Logger() *log.Logger {
	return c.logger
}

// Write writes a log event to the console using charmbracelet/log.
func (c *ConsoleLogWriter) Write(event LogEvent) error {
	msg := formatMessage(event)
	fields := extractFields(event)

	switch event.Type {
	case EventError:
		c.logger.Error(msg, fields...)
	case EventHandoff, EventLeadDone, EventAgentStart:
		c.logger.Info(msg, fields...)
	default:
		c.logger.Debug(msg, fields...)
	}
	return nil
}

// extractFields extracts structured fields from a LogEvent for charmbracelet/log.
func extractFields(event LogEvent) []any {
	var fields []any
	if event.Lead != "" {
		fields = append(fields, "lead", event.Lead)
	}
	if event.Agent != "" {
		fields = append(fields, "agent", event.Agent)
	}
	if event.Tool != "" {
		fields = append(fields, "tool", event.Tool)
	}
	if event.Target != "" {
		fields = append(fields, "to", event.Target)
	}
	if event.Status != "" {
		fields = append(fields, "status", event.Status)
	}
	if event.Duration > 0 {
		fields = append(fields, "duration", event.Duration.Round(1e6))
	}
	return fields
}

// formatMessage formats a log message from a LogEvent.
func formatMessage(event LogEvent) string {
	switch event.Type {
	case EventAgentStart:
		return "Agent started"
	case EventHandoff:
		return "🔄 Handoff"
	case EventTool:
		return "Using tool"
	case EventToolOutput:
		return "Tool finished"
	case EventLeadDone:
		if event.Status == "error" {
			return "Lead failed"
		}
		return "Lead done"
	}
	if event.Content != "" {
		return firstLine(event.Content)
	}
	switch event.Type {
	case EventError:
		return "Error"
	case EventAssistantMessage:
		return "Assistant message"
	default:
		return event.Type
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
func ParseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ConsoleLogOptionsFromConfig builds options from string configuration values.
func ConsoleLogOptionsFromConfig(level, format string, timestamps, caller bool, prefix string) ConsoleLogOptions {
	return ConsoleLogOptions{
		Level:           ParseLogLevel(level),
		Formatter:       ParseLogFormatter(format),
		ReportTimestamp: timestamps,
		ReportCaller:    caller,
		Prefix:          prefix,
	}
}

// NewTestConsoleLogWriter creates a console log writer that writes to a specific writer
// for testing purposes. It uses minimal formatting for easier test assertions.
func NewTestConsoleLogWriter(w io.Writer) *ConsoleLogWriter {
	logger := log.NewWithOptions(w, log.Options{
		Level:     log.DebugLevel,
		Formatter: log.TextFormatter,
	})
	return &ConsoleLogWriter{logger: logger}
}
