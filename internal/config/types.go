package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultLeadsFile    = "leads.json"
	DefaultReportFile   = "output/report.md"
	DefaultLogDir       = "~/.prospector"
	DefaultMaxTurns     = 15
	DefaultResearchMode = "search"
	DefaultUI           = "log"
	DefaultProvider     = "openai"
	DefaultModel        = "gpt-4o"
	DefaultToolModel    = "gpt-4o-mini"
	DefaultMaxResults   = 3
	DefaultSearchDepth  = "basic"
	DefaultOutputFormat = "markdown"
	DefaultCacheTTL     = 600
)

// UI modes.
const (
	UILog   = "log"
	UIPlain = "plain"
	UITUI   = "tui"
)

// Config holds the full configuration for prospector.
type Config struct {
	// Paths
	LeadsFile   string `toml:"leads_file"`
	ReportFile  string `toml:"report_file"`
	LogDir      string `toml:"log_dir"`
	MetricsFile string `toml:"metrics_file"`

	// Run settings
	MaxTurns       int    `toml:"max_turns"`
	MaxConcurrency int    `toml:"max_concurrency"`
	ResearchMode   string `toml:"research_mode"`
	ShowProgress   bool   `toml:"show_progress"`
	UI             string `toml:"ui"`

	LLM     LLMConfig     `toml:"llm"`
	Search  SearchConfig  `toml:"search"`
	Scraper ScraperConfig `toml:"scraper"`
	Sender  SenderConfig  `toml:"sender"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// LLMConfig selects the model provider and models.
type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`

	// ToolModel is used inside tools: profile extraction and email writing.
	ToolModel string `toml:"tool_model"`

	// Temperature of agent turns. Nil uses the provider default.
	Temperature *float64 `toml:"temperature"`

	// BaseURL points the client at a compatible endpoint.
	BaseURL    string `toml:"base_url"`
	MaxRetries int    `toml:"max_retries"`
}

// SearchConfig configures web search.
type SearchConfig struct {
	MaxResults      int    `toml:"max_results"`
	Depth           string `toml:"depth"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	BaseURL         string `toml:"base_url"`
}

// ScraperConfig configures the page scraper.
type ScraperConfig struct {
	BaseURL      string `toml:"base_url"`
	OutputFormat string `toml:"output_format"`
}

// SenderConfig identifies who signs the generated emails.
type SenderConfig struct {
	Name           string `toml:"name"`
	Company        string `toml:"company"`
	CompanyContext string `toml:"company_context"`
}
