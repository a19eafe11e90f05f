// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/prospector/internal/agents"
)

// LeadStatus is the progress state of one lead.
type LeadStatus string

const (
	StatusQueued  LeadStatus = "queued"
	StatusRunning LeadStatus = "running"
	StatusDone    LeadStatus = "done"
	StatusFailed  LeadStatus = "failed"
)

// RunFunc runs the batch, reporting its events to w.
type RunFunc func(ctx context.Context, w agents.LogWriter) error

// Option configures RunProgress.
type Option func(*progressConfig)

type progressConfig struct {
	output    io.Writer
	input     io.Reader
	altScreen bool
}

// WithOutput renders the interface to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(c *progressConfig) {
		c.output = w
	}
}

// WithInput reads keys from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(c *progressConfig) {
		c.input = r
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *progressConfig) {
		c.altScreen = enabled
	}
}

// RunProgress shows a live table of leads while run executes. Quitting the
// interface cancels run. The error of run is returned.
func RunProgress(ctx context.Context, leads []string, run RunFunc, opts ...Option) error {
	c := &progressConfig{output: os.Stdout, input: os.Stdin}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(c.output), tea.WithInput(c.input)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	model := newProgressModel(leads)
	program := tea.NewProgram(model, programOpts...)

	errCh := make(chan error, 1)
	go func() {
		err := run(ctx, EventWriter(program.Send))
		errCh <- err
		program.Send(runDoneMsg{err: err})
	}()

	_, progErr := program.Run()
	cancel()
	err := <-errCh
	if err != nil {
		return err
	}
	if progErr != nil && !isContextError(progErr) {
		return progErr
	}
	return nil
}

func isContextError(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled)
}

// EventWriter adapts a message sink, such as (*tea.Program).Send, to the
// agents.LogWriter interface.
func EventWriter(send func(tea.Msg)) agents.LogWriter {
	return agents.FuncLogWriter(func(event agents.LogEvent) error {
		send(eventMsg(event))
		return nil
	})
}

type eventMsg agents.LogEvent

type runDoneMsg struct {
	err error
}

type tickMsg time.Time

type leadRow struct {
	name     string
	status   LeadStatus
	agent    string
	tool     string
	lastErr  string
	started  time.Time
	duration time.Duration
}

type progressModel struct {
	rows   []*leadRow
	index  map[string]*leadRow
	done   bool
	runErr error
	now    func() time.Time
}

func newProgressModel(leads []string) *progressModel {
	m := &progressModel{
		index: make(map[string]*leadRow, len(leads)),
		now:   time.Now,
	}
	for _, name := range leads {
		row := &leadRow{name: name, status: StatusQueued}
		m.rows = append(m.rows, row)
		if _, exists := m.index[name]; !exists {
			m.index[name] = row
		}
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tickCmd()
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case eventMsg:
		m.apply(agents.LogEvent(msg))
	case runDoneMsg:
		m.done = true
		m.runErr = msg.err
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	}
	return m, nil
}

// apply folds one run event into the lead's row.
func (m *progressModel) apply(event agents.LogEvent) {
	row, ok := m.index[event.Lead]
	if !ok {
		return
	}
	if row.status == StatusQueued {
		row.status = StatusRunning
		row.started = m.now()
	}

	switch event.Type {
	case agents.EventAgentStart:
		row.agent = event.Agent
		row.tool = ""
	case agents.EventHandoff:
		row.agent = event.Target
		row.tool = ""
	case agents.EventTool:
		row.tool = event.Tool
	case agents.EventToolOutput:
		row.tool = ""
	case agents.EventError:
		row.lastErr = firstLine(event.Content)
	case agents.EventLeadDone:
		row.tool = ""
		row.duration = event.Duration
		if event.Status == "error" {
			row.status = StatusFailed
			if event.Content != "" {
				row.lastErr = firstLine(event.Content)
			}
		} else {
			row.status = StatusDone
		}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	nameStyle    = lipgloss.NewStyle().Width(28)
)

func (m *progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Prospector"))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		b.WriteString(statusIcon(row.status))
		b.WriteString(" ")
		b.WriteString(nameStyle.Render(truncate(row.name, 27)))
		b.WriteString(" ")
		b.WriteString(m.describe(row))
		b.WriteString("\n")
	}

	counts := m.counts()
	b.WriteString("\n")
	summary := fmt.Sprintf("%d/%d done", counts[StatusDone], len(m.rows))
	if n := counts[StatusFailed]; n > 0 {
		summary += failedStyle.Render(fmt.Sprintf(", %d failed", n))
	}
	b.WriteString(summary)
	if !m.done {
		b.WriteString(mutedStyle.Render(" | q to quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) describe(row *leadRow) string {
	switch row.status {
	case StatusQueued:
		return mutedStyle.Render("queued")
	case StatusRunning:
		s := row.agent
		if row.tool != "" {
			s += " → " + row.tool
		}
		elapsed := m.now().Sub(row.started).Truncate(time.Second)
		return runningStyle.Render(s) + mutedStyle.Render(fmt.Sprintf(" (%s)", elapsed))
	case StatusDone:
		return doneStyle.Render("done") + mutedStyle.Render(fmt.Sprintf(" (%s)", row.duration.Truncate(100*time.Millisecond)))
	case StatusFailed:
		return failedStyle.Render("failed: " + row.lastErr)
	}
	return ""
}

func (m *progressModel) counts() map[LeadStatus]int {
	counts := make(map[LeadStatus]int, 4)
	for _, row := range m.rows {
		counts[row.status]++
	}
	return counts
}

func statusIcon(status LeadStatus) string {
	switch status {
	case StatusRunning:
		return runningStyle.Render("●")
	case StatusDone:
		return doneStyle.Render("✓")
	case StatusFailed:
		return failedStyle.Render("✗")
	}
	return mutedStyle.Render("·")
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
