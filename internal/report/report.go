// Package report renders processed leads into a markdown report.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/nibzard/prospector/internal/agents"
	"github.com/nibzard/prospector/internal/leads"
)

// DefaultPath is where the report is written, relative to the working directory.
var DefaultPath = filepath.Join("output", "report.md")

// NoEmailMarker is written for leads without an email draft.
const NoEmailMarker = "no email generated"

const timestampLayout = "2006-01-02 15:04:05"

// Generator writes reports to a filesystem.
type Generator struct {
	Fs   afero.Fs
	Path string
	Now  func() time.Time
}

// NewGenerator returns a generator writing DefaultPath on the OS filesystem.
func NewGenerator() *Generator {
	return &Generator{Fs: afero.NewOsFs(), Path: DefaultPath, Now: time.Now}
}

// Generate writes the report to DefaultPath and returns the path.
func Generate(results []*agents.RunResult, leadList []leads.Lead) (string, error) {
	return NewGenerator().Generate(results, leadList)
}

// Generate renders one section per result, in order, and overwrites the
// report file. Only filesystem failures are errors.
func (g *Generator) Generate(results []*agents.RunResult, leadList []leads.Lead) (string, error) {
	fs := g.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	path := g.Path
	if path == "" {
		path = DefaultPath
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	content := Render(results, leadList, now())

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Render returns the report markdown.
func Render(results []*agents.RunResult, leadList []leads.Lead, generated time.Time) string {
	var b strings.Builder
	b.WriteString("# Lead Prospecting Report\n\n")
	fmt.Fprintf(&b, "*Generated: %s*\n\n", generated.Format(timestampLayout))
	b.WriteString("---\n\n")

	for i, result := range results {
		writeSection(&b, i+1, Extract(result), leadList)
	}
	return b.String()
}

func writeSection(b *strings.Builder, index int, f Fields, leadList []leads.Lead) {
	fmt.Fprintf(b, "## Lead %d: %s\n\n", index, f.Name)

	if lead, ok := leads.Find(leadList, f.Name); ok {
		if lead.Email != "" {
			fmt.Fprintf(b, "**Email:** %s\n\n", lead.Email)
		}
		if lead.Description != "" {
			fmt.Fprintf(b, "**Description:** %s\n\n", lead.Description)
		}
	}

	fmt.Fprintf(b, "**Last Agent:** %s\n\n", f.LastAgent)

	if len(f.Profile) > 0 {
		b.WriteString("### Lead Profile\n\n")
		for _, line := range f.Profile {
			fmt.Fprintf(b, "- %s\n", strings.TrimSpace(strings.TrimPrefix(line, "•")))
		}
		b.WriteString("\n")
	}

	if f.HasEmail {
		b.WriteString("### Generated Email\n\n")
		fmt.Fprintf(b, "**Subject:** %s\n\n", f.Subject)
		b.WriteString("```\n")
		b.WriteString(f.Body)
		b.WriteString("\n```\n\n")
	} else {
		fmt.Fprintf(b, "_%s for this lead_\n\n", NoEmailMarker)
	}

	b.WriteString("---\n\n")
}
