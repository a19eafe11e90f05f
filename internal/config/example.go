package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Prospector configuration file
# Values can be overridden by PROSPECTOR_* environment variables or CLI flags.
# API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY, TAVILY_API_KEY, SCRAPER_API_KEY)
# are read from the environment, a .env file or the OS keyring, never from here.

# Leads file (json, yaml or toml; relative to the working directory)
leads_file = "leads.json"

# Markdown report written after a successful run
report_file = "output/report.md"

# Run logs (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.prospector"

# Prometheus textfile written after each run
# metrics_file = "output/metrics.prom"

# Maximum model turns per lead
max_turns = 15

# Maximum leads processed at once (0 = all at once)
max_concurrency = 0

# How leads are researched: "search" (web search) or "scrape" (LinkedIn page)
research_mode = "search"

# Log a banner when the batch starts
show_progress = true

# Console output: "log", "plain" or "tui"
ui = "log"

# Logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

[llm]
provider = "openai"
model = "gpt-4o"
tool_model = "gpt-4o-mini"
# temperature = 0.7
# base_url = ""
max_retries = 2

[search]
max_results = 3
depth = "basic"
cache_ttl_seconds = 600

[scraper]
output_format = "markdown"

[sender]
# name = "Pedro Cisternas"
# company = "Ficticia Inc"
# company_context = "What your company does, in a few sentences."
`
}
