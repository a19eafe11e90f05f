package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/prospector/internal/config"
	"github.com/nibzard/prospector/internal/leads"
	"github.com/nibzard/prospector/internal/llm"
	"github.com/nibzard/prospector/internal/sales"
	"github.com/nibzard/prospector/internal/secret"
)

// doctorCommand checks configuration, API keys and the leads file.
func doctorCommand(cws *config.ConfigWithSources, resolver *secret.Resolver, args []string) error {
	fs := flag.NewFlagSet("prospector doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := cws.Config
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	leadsPath := cfg.LeadsFile
	if len(remaining) == 1 {
		leadsPath = remaining[0]
	}
	if !filepath.IsAbs(leadsPath) {
		leadsPath = filepath.Join(cfg.ProjectRoot, leadsPath)
	}

	fmt.Fprintln(stdout, "Prospector Doctor")
	fmt.Fprintln(stdout, "=================")
	fmt.Fprintln(stdout)

	allOK := true

	// Config files and settings
	fmt.Fprintln(stdout, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  Files: none (defaults)")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(stdout, "  File: %s\n", f)
	}
	for _, key := range config.Keys() {
		source := cws.Sources[key]
		if source == config.SourceDefault && !*verbose {
			continue
		}
		fmt.Fprintf(stdout, "  %s = %s (%s)\n", key, truncate(cfg.Value(key), 60), source)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ Valid")
	}
	fmt.Fprintln(stdout)

	// API keys
	fmt.Fprintln(stdout, "API keys:")
	mode, _ := sales.ParseResearchMode(cfg.ResearchMode)
	if !checkKey(resolver, llm.KeyName(cfg.LLM.Provider), true) {
		allOK = false
	}
	if !checkKey(resolver, secret.TavilyAPIKey, mode == sales.ResearchSearch) {
		allOK = false
	}
	if !checkKey(resolver, secret.ScraperAPIKey, mode == sales.ResearchScrape) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	// Leads file
	fmt.Fprintf(stdout, "Leads file: %s\n", leadsPath)
	leadList, err := leads.Load(leadsPath)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ %d leads\n", len(leadList))
		if *verbose {
			for _, l := range leadList {
				fmt.Fprintf(stdout, "    - %s (%s)\n", l.Name, l.LinkedInURL)
			}
		}
	}
	fmt.Fprintln(stdout)

	// Output locations
	for _, dir := range []struct{ label, path string }{
		{"Log directory", cfg.LogDir},
		{"Report directory", filepath.Dir(cfg.ReportFile)},
	} {
		fmt.Fprintf(stdout, "%s: %s\n", dir.label, dir.path)
		info, err := os.Stat(dir.path)
		switch {
		case os.IsNotExist(err):
			fmt.Fprintln(stdout, "  ⚠️  Not found (will be created on run)")
		case err != nil:
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		case !info.IsDir():
			fmt.Fprintln(stdout, "  ❌ Error: path is not a directory")
			allOK = false
		default:
			fmt.Fprintln(stdout, "  ✅ OK")
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Prospector may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkKey reports whether a secret is configured. Missing optional keys
// only warn.
func checkKey(resolver *secret.Resolver, name string, required bool) bool {
	_, source, err := resolver.Lookup(name)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "  ✅ %s (%s)\n", name, source)
		return true
	case !secret.IsNotFound(err):
		fmt.Fprintf(stdout, "  ❌ %s: %v\n", name, err)
		return !required
	case required:
		fmt.Fprintf(stdout, "  ❌ %s: not set\n", name)
		return false
	default:
		fmt.Fprintf(stdout, "  ⚠️  %s: not set (unused)\n", name)
		return true
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
