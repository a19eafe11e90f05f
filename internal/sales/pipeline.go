package sales

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/prospector/internal/agents"
	"github.com/nibzard/prospector/internal/leads"
	"github.com/nibzard/prospector/internal/llm"
	"github.com/nibzard/prospector/internal/metrics"
	"github.com/nibzard/prospector/internal/parallel"
	"github.com/nibzard/prospector/internal/report"
)

// Pipeline processes leads through the team and writes the report.
type Pipeline struct {
	Client      llm.Client
	Team        *Team
	MaxTurns    int
	Temperature *float64

	// MaxConcurrency bounds the leads processed at once; zero is unbounded.
	MaxConcurrency int

	// LogWriter receives the events of every run, stamped with the lead.
	LogWriter agents.LogWriter
	Metrics   *metrics.Recorder

	// Logger prints the batch banner. Nil disables it.
	Logger *log.Logger

	Report *report.Generator

	// Out receives the console output of each lead. Defaults to stdout.
	Out io.Writer

	// Observer is called as each lead finishes, in completion order.
	Observer func(parallel.TaskResult)
}

// BatchResult is the outcome of ProcessAll.
type BatchResult struct {
	Results    []*agents.RunResult
	ReportPath string
}

// out returns Out guarded by a mutex, so concurrent leads can share it.
func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return &lockedWriter{w: os.Stdout}
	}
	return &lockedWriter{w: p.Out}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(b)
}

func (p *Pipeline) logWriter() agents.LogWriter {
	var writers []agents.LogWriter
	if p.LogWriter != nil {
		writers = append(writers, p.LogWriter)
	}
	if p.Metrics != nil {
		writers = append(writers, p.Metrics)
	}
	return agents.NewLockedLogWriter(agents.NewMultiLogWriter(writers...))
}

// ProcessLead runs the team for one lead, starting at the team lead.
func (p *Pipeline) ProcessLead(ctx context.Context, lead leads.Lead) (*agents.RunResult, error) {
	return p.processLead(ctx, p.out(), p.logWriter(), lead)
}

func (p *Pipeline) processLead(ctx context.Context, out io.Writer, logWriter agents.LogWriter, lead leads.Lead) (*agents.RunResult, error) {
	if p.Team == nil {
		return nil, fmt.Errorf("pipeline has no team")
	}

	// One write per banner keeps leads from interleaving.
	var banner strings.Builder
	fmt.Fprintf(&banner, "\n🔍 Procesando lead: %s (%s)\n", lead.Name, lead.LinkedInURL)
	if lead.Description != "" {
		fmt.Fprintf(&banner, "   📝 Descripción: %s\n", lead.Description)
	}
	if lead.Email != "" {
		fmt.Fprintf(&banner, "   ✉️ Email: %s\n", lead.Email)
	}
	_, _ = io.WriteString(out, banner.String())

	w := agents.WithLead(logWriter, lead.Name)
	runner := &agents.Runner[Context]{
		Client:      p.Client,
		MaxTurns:    p.MaxTurns,
		Temperature: p.Temperature,
		LogWriter:   w,
	}

	started := time.Now()
	result, err := runner.Run(ctx, p.Team.Lead, Input(lead), NewContext(lead))

	done := agents.LogEvent{
		Type:      agents.EventLeadDone,
		Timestamp: time.Now().UTC(),
		Status:    metrics.StatusOK,
		Duration:  time.Since(started),
	}
	if err != nil {
		done.Status = metrics.StatusError
		done.Content = err.Error()
	} else {
		done.Agent = result.LastAgentName
	}
	_ = w.Write(done)

	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", lead.Name, err)
	}
	return result, nil
}

// ProcessAll runs every lead concurrently, prints each result in input
// order once all of them finished, and writes the report. If any lead
// fails the batch fails and no report is written.
func (p *Pipeline) ProcessAll(ctx context.Context, leadList []leads.Lead) (*BatchResult, error) {
	out := p.out()
	fmt.Fprintln(out, "\n===== Sistema Multi-Agente de Prospección de Ventas =====")

	logWriter := p.logWriter()
	process := func(ctx context.Context, lead leads.Lead) (*agents.RunResult, error) {
		return p.processLead(ctx, out, logWriter, lead)
	}
	display := func(lead leads.Lead, result *agents.RunResult) {
		DisplayResult(out, lead, result)
	}

	opts := []parallel.Option{parallel.WithMaxConcurrency(p.MaxConcurrency)}
	if p.Logger != nil {
		opts = append(opts, parallel.WithProgress(p.Logger))
	}
	if p.Observer != nil {
		opts = append(opts, parallel.WithObserver(p.Observer))
	}

	results, err := parallel.RunTasks(ctx, process, leadList, display, opts...)
	if err != nil {
		return nil, err
	}

	gen := p.Report
	if gen == nil {
		gen = report.NewGenerator()
	}
	path, err := gen.Generate(results, leadList)
	if err != nil {
		return &BatchResult{Results: results}, err
	}
	fmt.Fprintf(out, "\nReporte generado: %s\n", path)
	return &BatchResult{Results: results, ReportPath: path}, nil
}

// DisplayResult prints the outcome of one lead's run.
func DisplayResult(w io.Writer, lead leads.Lead, result *agents.RunResult) {
	if result == nil {
		return
	}
	fmt.Fprintln(w, "Resultados finales:")
	fmt.Fprintf(w, "\n    Input: %s\n", result.Input)
	fmt.Fprintf(w, "    Mensaje final del agente: %s\n", result.FinalOutput)
	fmt.Fprintf(w, "    Último agente: %s\n\n", result.LastAgentName)
}
