// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.prospector/prospector.toml or OS-specific config directory)
// 3. Project config file (prospector.toml or .prospector.toml in the working directory)
// 4. Environment variables (PROSPECTOR_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.prospector/prospector.toml (preferred)
// - Windows: %APPDATA%\prospector\prospector.toml
// - macOS: ~/Library/Application Support/prospector/prospector.toml
// - Linux/BSD: $XDG_CONFIG_HOME/prospector/prospector.toml or ~/.config/prospector/prospector.toml
//
// API keys are not configuration. They are resolved by the secret package
// from the environment or the OS keyring. A .env file in the working
// directory can be loaded into the environment with LoadDotEnv.
package config
