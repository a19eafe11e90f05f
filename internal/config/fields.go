package config

import (
	"fmt"
	"strconv"
	"strings"
)

// field describes one configurable value and the places it can be set.
type field struct {
	key   string // dotted TOML key, also the name used for source tracking
	env   string
	flag  string
	usage string
	ptr   func(c *Config) any
}

func fields() []field {
	return []field{
		{"leads_file", "PROSPECTOR_LEADS", "leads", "Path to the leads file (json, yaml or toml)", func(c *Config) any { return &c.LeadsFile }},
		{"report_file", "PROSPECTOR_REPORT", "report", "Path of the generated markdown report", func(c *Config) any { return &c.ReportFile }},
		{"log_dir", "PROSPECTOR_LOG_DIR", "log-dir", "Log directory", func(c *Config) any { return &c.LogDir }},
		{"metrics_file", "PROSPECTOR_METRICS_FILE", "metrics-file", "Write Prometheus metrics to this file after a run", func(c *Config) any { return &c.MetricsFile }},
		{"max_turns", "PROSPECTOR_MAX_TURNS", "max-turns", "Maximum model turns per lead", func(c *Config) any { return &c.MaxTurns }},
		{"max_concurrency", "PROSPECTOR_MAX_CONCURRENCY", "max-concurrency", "Maximum leads processed at once (0 = all)", func(c *Config) any { return &c.MaxConcurrency }},
		{"research_mode", "PROSPECTOR_RESEARCH_MODE", "research-mode", "How leads are researched (search, scrape)", func(c *Config) any { return &c.ResearchMode }},
		{"show_progress", "PROSPECTOR_SHOW_PROGRESS", "progress", "Log a banner when the batch starts", func(c *Config) any { return &c.ShowProgress }},
		{"ui", "PROSPECTOR_UI", "ui", "Console output (log, plain, tui)", func(c *Config) any { return &c.UI }},
		{"llm.provider", "PROSPECTOR_LLM_PROVIDER", "provider", "LLM provider (openai, anthropic)", func(c *Config) any { return &c.LLM.Provider }},
		{"llm.model", "PROSPECTOR_MODEL", "model", "Model used by the agents", func(c *Config) any { return &c.LLM.Model }},
		{"llm.tool_model", "PROSPECTOR_TOOL_MODEL", "tool-model", "Model used for profile extraction and email writing", func(c *Config) any { return &c.LLM.ToolModel }},
		{"llm.temperature", "PROSPECTOR_TEMPERATURE", "temperature", "Sampling temperature of agent turns", func(c *Config) any { return &c.LLM.Temperature }},
		{"llm.base_url", "PROSPECTOR_LLM_BASE_URL", "llm-base-url", "Base URL of an API compatible endpoint", func(c *Config) any { return &c.LLM.BaseURL }},
		{"llm.max_retries", "PROSPECTOR_LLM_MAX_RETRIES", "llm-max-retries", "Retries of failed LLM requests", func(c *Config) any { return &c.LLM.MaxRetries }},
		{"search.max_results", "PROSPECTOR_SEARCH_MAX_RESULTS", "search-max-results", "Results per web search query", func(c *Config) any { return &c.Search.MaxResults }},
		{"search.depth", "PROSPECTOR_SEARCH_DEPTH", "search-depth", "Web search depth (basic, advanced)", func(c *Config) any { return &c.Search.Depth }},
		{"search.cache_ttl_seconds", "PROSPECTOR_SEARCH_CACHE_TTL", "search-cache-ttl", "Seconds web search results are cached (0 disables)", func(c *Config) any { return &c.Search.CacheTTLSeconds }},
		{"search.base_url", "PROSPECTOR_SEARCH_BASE_URL", "search-base-url", "Web search API base URL", func(c *Config) any { return &c.Search.BaseURL }},
		{"scraper.base_url", "PROSPECTOR_SCRAPER_BASE_URL", "scraper-base-url", "Scraper API base URL", func(c *Config) any { return &c.Scraper.BaseURL }},
		{"scraper.output_format", "PROSPECTOR_SCRAPER_OUTPUT_FORMAT", "scraper-output-format", "Scraper output format", func(c *Config) any { return &c.Scraper.OutputFormat }},
		{"sender.name", "PROSPECTOR_SENDER_NAME", "sender-name", "Name that signs the emails", func(c *Config) any { return &c.Sender.Name }},
		{"sender.company", "PROSPECTOR_SENDER_COMPANY", "sender-company", "Company of the sender", func(c *Config) any { return &c.Sender.Company }},
		{"sender.company_context", "PROSPECTOR_SENDER_COMPANY_CONTEXT", "", "", func(c *Config) any { return &c.Sender.CompanyContext }},
		{"log_level", "PROSPECTOR_LOG_LEVEL", "log-level", "Log level (debug, info, warn, error)", func(c *Config) any { return &c.LogLevel }},
		{"log_format", "PROSPECTOR_LOG_FORMAT", "log-format", "Log format (text, json, logfmt)", func(c *Config) any { return &c.LogFormat }},
		{"log_timestamps", "PROSPECTOR_LOG_TIMESTAMPS", "log-timestamps", "Show timestamps in logs", func(c *Config) any { return &c.LogTimestamps }},
		{"log_caller", "PROSPECTOR_LOG_CALLER", "log-caller", "Show caller location in logs", func(c *Config) any { return &c.LogCaller }},
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	all := fields()
	names := make([]string, 0, len(all))
	for _, f := range all {
		names = append(names, f.key)
	}
	return names
}

// setValue parses raw into the value behind ptr.
func setValue(ptr any, raw string) error {
	switch p := ptr.(type) {
	case *string:
		*p = raw
	case *int:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		*p = i
	case *bool:
		*p = boolFromString(raw)
	case **float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		*p = &f
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return nil
}

// formatValue renders the value behind ptr for display.
func formatValue(ptr any) string {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *int:
		return strconv.Itoa(*p)
	case *bool:
		return strconv.FormatBool(*p)
	case **float64:
		if *p == nil {
			return ""
		}
		return strconv.FormatFloat(**p, 'f', -1, 64)
	}
	return ""
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
