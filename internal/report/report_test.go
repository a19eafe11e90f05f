package report

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/nibzard/prospector/internal/agents"
	"github.com/nibzard/prospector/internal/leads"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func newTestGenerator() (*Generator, afero.Fs) {
	fs := afero.NewMemMapFs()
	return &Generator{Fs: fs, Path: DefaultPath, Now: fixedNow}, fs
}

func readReport(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return string(data)
}

func sectionHeaders(report string) []string {
	var headers []string
	for _, line := range strings.Split(report, "\n") {
		if strings.HasPrefix(line, "## ") {
			headers = append(headers, line)
		}
	}
	return headers
}

func TestGenerate_TwoLeads(t *testing.T) {
	g, fs := newTestGenerator()
	leadList := []leads.Lead{
		{Name: "Ada", LinkedInURL: "a", Email: "ada@example.com", Description: "math"},
		{Name: "Grace", LinkedInURL: "g", Description: "compilers"},
	}
	results := []*agents.RunResult{
		{Input: "Tenemos un nuevo lead: Ada (a).", LastAgentName: "Sales Team Lead", FinalOutput: "no email"},
		{Input: "Tenemos un nuevo lead: Grace (g).", LastAgentName: "Cold Email Specialist", FinalOutput: "nothing"},
	}

	path, err := g.Generate(results, leadList)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if path != DefaultPath {
		t.Errorf("path: got %q, want %q", path, DefaultPath)
	}

	report := readReport(t, fs, path)
	headers := sectionHeaders(report)
	want := []string{"## Lead 1: Ada", "## Lead 2: Grace"}
	if len(headers) != 2 || headers[0] != want[0] || headers[1] != want[1] {
		t.Fatalf("headers: got %v, want %v", headers, want)
	}

	if !strings.HasPrefix(report, "# Lead Prospecting Report\n\n*Generated: 2026-03-04 05:06:07*\n") {
		t.Errorf("unexpected preamble: %q", report[:80])
	}

	ada := report[strings.Index(report, want[0]):strings.Index(report, want[1])]
	grace := report[strings.Index(report, want[1]):]
	for _, s := range []string{"**Email:** ada@example.com", "**Description:** math", "**Last Agent:** Sales Team Lead"} {
		if !strings.Contains(ada, s) {
			t.Errorf("Ada section missing %q:\n%s", s, ada)
		}
	}
	if strings.Contains(grace, "**Email:**") {
		t.Errorf("Grace has no email but section shows one:\n%s", grace)
	}
	if !strings.Contains(grace, "**Description:** compilers") {
		t.Errorf("Grace section missing description:\n%s", grace)
	}
}

func TestGenerate_EmailSection(t *testing.T) {
	g, fs := newTestGenerator()
	results := []*agents.RunResult{{
		Input:       "lead: Ada (a)",
		FinalOutput: "--- Asunto: Quick question ---\nBody text\n---",
	}}

	path, err := g.Generate(results, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	report := readReport(t, fs, path)

	if !strings.Contains(report, "**Subject:** Quick question\n") {
		t.Errorf("expected subject line, got:\n%s", report)
	}
	fence := report[strings.Index(report, "```\n")+4:]
	fence = fence[:strings.Index(fence, "```")]
	if strings.Contains(fence, "Asunto:") {
		t.Errorf("fenced body must not contain the subject line: %q", fence)
	}
	if strings.Contains(fence, "Body text") {
		t.Errorf("fenced body must stop at the second delimiter: %q", fence)
	}
	if strings.Contains(report, NoEmailMarker) {
		t.Error("no-email marker present despite email")
	}
}

func TestGenerate_NoEmail(t *testing.T) {
	g, fs := newTestGenerator()
	results := []*agents.RunResult{{Input: "lead: Ada (a)", FinalOutput: "I could not write an email."}}

	path, err := g.Generate(results, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	report := readReport(t, fs, path)

	if !strings.Contains(report, NoEmailMarker) {
		t.Errorf("expected %q marker, got:\n%s", NoEmailMarker, report)
	}
	if strings.Contains(report, "```") {
		t.Errorf("expected no fenced block, got:\n%s", report)
	}
}

func TestGenerate_Overwrites(t *testing.T) {
	g, fs := newTestGenerator()

	first := []*agents.RunResult{{Input: "lead: FirstRunLead (a)"}, {Input: "lead: Another (b)"}}
	second := []*agents.RunResult{{Input: "lead: SecondRunLead (c)"}}

	if _, err := g.Generate(first, nil); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	path, err := g.Generate(second, nil)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	report := readReport(t, fs, path)
	if strings.Contains(report, "FirstRunLead") || strings.Contains(report, "Another") {
		t.Errorf("report contains residue from first run:\n%s", report)
	}
	if headers := sectionHeaders(report); len(headers) != 1 || headers[0] != "## Lead 1: SecondRunLead" {
		t.Errorf("headers: got %v", headers)
	}
}

func TestGenerate_MalformedResults(t *testing.T) {
	g, fs := newTestGenerator()
	results := []*agents.RunResult{
		nil,
		{},
		{NewItems: []agents.RunItem{{}, {RawItem: &agents.RawItem{}}}},
	}

	path, err := g.Generate(results, []leads.Lead{{Name: "Ada"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	report := readReport(t, fs, path)

	if got := len(sectionHeaders(report)); got != 3 {
		t.Errorf("sections: got %d, want 3", got)
	}
	if got := strings.Count(report, "**Last Agent:** Unknown"); got != 3 {
		t.Errorf("unknown agent placeholders: got %d, want 3", got)
	}
	if got := strings.Count(report, "## Lead 1: Unknown"); got != 1 {
		t.Errorf("expected unknown name placeholder, got:\n%s", report)
	}
}

func TestGenerate_ProfileSection(t *testing.T) {
	g, fs := newTestGenerator()
	results := []*agents.RunResult{{
		Input: "lead: Ada (a)",
		NewItems: []agents.RunItem{{
			RawItem: &agents.RawItem{Output: "📋 Resumen del Perfil del Lead:\n  • Rol actual: CTO en Acme\n  • Industria: Software\n✅ Investigación completada"},
		}},
	}}

	path, err := g.Generate(results, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	report := readReport(t, fs, path)
	if !strings.Contains(report, "### Lead Profile\n\n- Rol actual: CTO en Acme\n- Industria: Software\n") {
		t.Errorf("expected profile list, got:\n%s", report)
	}
}

func TestGenerate_Empty(t *testing.T) {
	g, fs := newTestGenerator()
	path, err := g.Generate(nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if headers := sectionHeaders(readReport(t, fs, path)); len(headers) != 0 {
		t.Errorf("expected no sections, got %v", headers)
	}
}

func TestGenerate_FilesystemError(t *testing.T) {
	g := &Generator{Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Path: DefaultPath, Now: fixedNow}
	if _, err := g.Generate(nil, nil); err == nil {
		t.Error("expected error on read-only filesystem")
	}
}
