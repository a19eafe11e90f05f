package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"prospector.toml", ".prospector.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.prospector/prospector.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".prospector", "prospector.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "prospector", "prospector.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.LeadsFile = DefaultLeadsFile
	cfg.ReportFile = DefaultReportFile
	cfg.LogDir = DefaultLogDir
	cfg.MaxTurns = DefaultMaxTurns
	cfg.MaxConcurrency = 0
	cfg.ResearchMode = DefaultResearchMode
	cfg.ShowProgress = true
	cfg.UI = DefaultUI

	cfg.LLM = LLMConfig{
		Provider:   DefaultProvider,
		Model:      DefaultModel,
		ToolModel:  DefaultToolModel,
		MaxRetries: 2,
	}
	cfg.Search = SearchConfig{
		MaxResults:      DefaultMaxResults,
		Depth:           DefaultSearchDepth,
		CacheTTLSeconds: DefaultCacheTTL,
	}
	cfg.Scraper = ScraperConfig{OutputFormat: DefaultOutputFormat}

	// Logging defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
