package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nibzard/prospector/internal/config"
	"github.com/nibzard/prospector/internal/leads"
	"github.com/nibzard/prospector/internal/llm"
	"github.com/nibzard/prospector/internal/secret"
)

// lockedBuffer collects output written from concurrent runs.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// setup isolates the test from the user's config, environment and
// keyring, and captures the command output.
func setup(t *testing.T, env map[string]string) (dir string, out *lockedBuffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{"PROSPECTOR_UI", "PROSPECTOR_LEADS", "PROSPECTOR_LOG_DIR", "PROSPECTOR_RESEARCH_MODE", "PROSPECTOR_LLM_PROVIDER"} {
		t.Setenv(name, "")
	}
	t.Chdir(t.TempDir())
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	resolverEnv := map[string]string{}
	for k, v := range env {
		resolverEnv[k] = v
	}
	oldResolver := newResolver
	newResolver = func() *secret.Resolver {
		return &secret.Resolver{
			LookupEnv: func(name string) (string, bool) {
				v, ok := resolverEnv[name]
				return v, ok
			},
			DisableKeyring: true,
		}
	}

	out = &lockedBuffer{}
	oldStdout, oldStderr := stdout, stderr
	stdout, stderr = out, out
	t.Cleanup(func() {
		newResolver = oldResolver
		stdout, stderr = oldStdout, oldStderr
	})
	return dir, out
}

func writeExampleLeads(t *testing.T, dir string) string {
	t.Helper()
	data, err := leads.ExampleJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, config.DefaultLeadsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type replyClient struct {
	reply string
}

func (c replyClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: c.reply}, nil
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "help flag", args: []string{"-h"}, want: "Commands:"},
		{name: "help command", args: []string{"help"}, want: "doctor"},
		{name: "version flag", args: []string{"-version"}, want: "prospector version dev"},
		{name: "version command", args: []string{"version"}, want: "prospector version dev"},
		{name: "unknown command", args: []string{"unknown-command"}, wantErr: "unknown command"},
		{name: "invalid flag value", args: []string{"-research-mode", "carrier-pigeon"}, wantErr: "research_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := setup(t, nil)
			err := Run(context.Background(), tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRunCommand(t *testing.T) {
	dir, out := setup(t, map[string]string{secret.OpenAIAPIKey: "sk-test"})
	writeExampleLeads(t, dir)

	oldClient := newLLMClient
	newLLMClient = func(provider, apiKey string, opts llm.Options) (llm.Client, error) {
		if apiKey != "sk-test" {
			t.Errorf("api key: got %q, want sk-test", apiKey)
		}
		return replyClient{reply: "Lead procesado"}, nil
	}
	t.Cleanup(func() { newLLMClient = oldClient })

	logDir := filepath.Join(dir, "logs")
	metricsFile := filepath.Join(dir, "metrics.prom")
	err := Run(context.Background(), []string{"-ui", "plain", "-log-dir", logDir, "-metrics-file", metricsFile, "run"})
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}

	reportPath := filepath.Join(dir, config.DefaultReportFile)
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	report := string(data)
	for _, want := range []string{"## Lead 1: Ada Lovelace", "## Lead 2: Grace Hopper", "**Last Agent:** Sales Team Lead"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if !strings.Contains(out.String(), "Reporte generado: "+reportPath) {
		t.Errorf("output missing report path:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[Ada Lovelace]") {
		t.Errorf("plain output should prefix events with the lead:\n%s", out.String())
	}

	metrics, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(metrics), "prospector_leads_processed_total") {
		t.Errorf("unexpected metrics:\n%s", metrics)
	}

	results, err := filepath.Glob(filepath.Join(logDir, "*", "*.result.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 result files, got %v", results)
	}
}

func TestRunCommand_LeadsFileArgument(t *testing.T) {
	dir, _ := setup(t, map[string]string{secret.OpenAIAPIKey: "sk-test"})
	path := filepath.Join(dir, "prospects.yaml")
	if err := os.WriteFile(path, []byte("- name: Ada Lovelace\n  linkedin_url: https://www.linkedin.com/in/ada\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	oldClient := newLLMClient
	newLLMClient = func(string, string, llm.Options) (llm.Client, error) {
		return replyClient{reply: "ok"}, nil
	}
	t.Cleanup(func() { newLLMClient = oldClient })

	if err := Run(context.Background(), []string{"-log-dir", filepath.Join(dir, "logs"), "prospects.yaml"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, config.DefaultReportFile))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "Ada Lovelace") {
		t.Errorf("report missing lead:\n%s", data)
	}
}

func TestRunCommand_MissingAPIKey(t *testing.T) {
	dir, _ := setup(t, nil)
	writeExampleLeads(t, dir)

	err := Run(context.Background(), []string{"run"})
	if err == nil {
		t.Fatal("expected error without an API key")
	}
	if !strings.Contains(err.Error(), secret.OpenAIAPIKey) {
		t.Errorf("error should name the missing key, got %v", err)
	}
}

func TestRunCommand_MissingLeadsFile(t *testing.T) {
	setup(t, map[string]string{secret.OpenAIAPIKey: "sk-test"})

	err := Run(context.Background(), []string{"run"})
	if err == nil || !strings.Contains(err.Error(), "read leads file") {
		t.Fatalf("expected leads file error, got %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	dir, out := setup(t, nil)

	if err := Run(context.Background(), []string{"init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{ProjectConfigFile, config.DefaultLeadsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := leads.Load(filepath.Join(dir, config.DefaultLeadsFile)); err != nil {
		t.Errorf("example leads do not load: %v", err)
	}

	// The written config must load cleanly.
	if _, err := config.Load(nil, nil); err != nil {
		t.Errorf("example config does not load: %v", err)
	}

	// A second run keeps the files.
	if err := os.WriteFile(filepath.Join(dir, config.DefaultLeadsFile), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), []string{"init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, config.DefaultLeadsFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("existing leads file was overwritten: %q", data)
	}
	if !strings.Contains(out.String(), "skipping") {
		t.Errorf("expected skip notice:\n%s", out.String())
	}

	if err := Run(context.Background(), []string{"init", "-force"}); err != nil {
		t.Fatalf("init -force: %v", err)
	}
	if _, err := leads.Load(filepath.Join(dir, config.DefaultLeadsFile)); err != nil {
		t.Errorf("-force should rewrite the leads file: %v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		dir, out := setup(t, map[string]string{
			secret.OpenAIAPIKey: "sk-test",
			secret.TavilyAPIKey: "tvly-test",
		})
		writeExampleLeads(t, dir)

		if err := Run(context.Background(), []string{"-max-turns", "7", "doctor"}); err != nil {
			t.Fatalf("doctor: %v\n%s", err, out.String())
		}
		for _, want := range []string{
			"✅ OPENAI_API_KEY (env)",
			"✅ TAVILY_API_KEY (env)",
			"⚠️  SCRAPER_API_KEY: not set (unused)",
			"✅ 2 leads",
			"max_turns = 7 (flag)",
			"✅ All checks passed!",
		} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("missing key and leads fail", func(t *testing.T) {
		_, out := setup(t, nil)

		err := Run(context.Background(), []string{"doctor"})
		if err == nil || !strings.Contains(err.Error(), "failed") {
			t.Fatalf("expected doctor failure, got %v", err)
		}
		for _, want := range []string{"❌ OPENAI_API_KEY: not set", "❌ TAVILY_API_KEY: not set", "read leads file"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("scrape mode requires the scraper key", func(t *testing.T) {
		dir, out := setup(t, map[string]string{secret.OpenAIAPIKey: "sk-test"})
		writeExampleLeads(t, dir)

		err := Run(context.Background(), []string{"-research-mode", "scrape", "doctor"})
		if err == nil {
			t.Fatal("expected doctor failure")
		}
		if !strings.Contains(out.String(), "❌ SCRAPER_API_KEY: not set") {
			t.Errorf("output missing scraper key failure:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "⚠️  TAVILY_API_KEY: not set (unused)") {
			t.Errorf("search key should be optional in scrape mode:\n%s", out.String())
		}
	})
}

func TestKeysCommand(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		_, out := setup(t, map[string]string{secret.TavilyAPIKey: "tvly-test"})
		if err := Run(context.Background(), []string{"keys", "status"}); err != nil {
			t.Fatalf("keys status: %v", err)
		}
		if !strings.Contains(out.String(), "TAVILY_API_KEY     env") {
			t.Errorf("unexpected status:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "OPENAI_API_KEY     not set") {
			t.Errorf("unexpected status:\n%s", out.String())
		}
	})

	t.Run("errors", func(t *testing.T) {
		setup(t, nil)
		tests := []struct {
			args    []string
			wantErr string
		}{
			{[]string{"keys"}, "usage"},
			{[]string{"keys", "set"}, "usage"},
			{[]string{"keys", "set", "GITHUB_TOKEN"}, "unknown key"},
			{[]string{"keys", "rotate"}, "unknown keys command"},
		}
		for _, tt := range tests {
			err := Run(context.Background(), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("%v: expected error containing %q, got %v", tt.args, tt.wantErr, err)
			}
		}
	})

	t.Run("set rejects empty input", func(t *testing.T) {
		setup(t, nil)
		oldStdin := stdin
		stdin = strings.NewReader("\n")
		t.Cleanup(func() { stdin = oldStdin })

		err := Run(context.Background(), []string{"keys", "set", "tavily_api_key"})
		if err == nil || !strings.Contains(err.Error(), "empty value for TAVILY_API_KEY") {
			t.Fatalf("expected empty value error, got %v", err)
		}
	})
}

func TestTailCommand(t *testing.T) {
	t.Run("no logs", func(t *testing.T) {
		dir, out := setup(t, nil)
		if err := Run(context.Background(), []string{"-log-dir", filepath.Join(dir, "logs"), "tail"}); err != nil {
			t.Fatalf("tail: %v", err)
		}
		if !strings.Contains(out.String(), "No log files found.") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("latest run log", func(t *testing.T) {
		dir, out := setup(t, map[string]string{secret.OpenAIAPIKey: "sk-test"})
		writeExampleLeads(t, dir)
		oldClient := newLLMClient
		newLLMClient = func(string, string, llm.Options) (llm.Client, error) {
			return replyClient{reply: "ok"}, nil
		}
		t.Cleanup(func() { newLLMClient = oldClient })

		logDir := filepath.Join(dir, "logs")
		if err := Run(context.Background(), []string{"-log-dir", logDir, "run"}); err != nil {
			t.Fatalf("run: %v", err)
		}
		if err := Run(context.Background(), []string{"-log-dir", logDir, "tail", "-n", "1"}); err != nil {
			t.Fatalf("tail: %v", err)
		}
		if !strings.Contains(out.String(), "Tailing: ") || !strings.Contains(out.String(), `"type":"lead_done"`) {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q, want short", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("got %q, want abcd…", got)
	}
}
