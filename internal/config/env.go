package config

import (
	"fmt"
	"os"
)

// loadFromEnv overrides config from PROSPECTOR_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, f := range fields() {
		v, ok := os.LookupEnv(f.env)
		if !ok || v == "" {
			continue
		}
		if err := setValue(f.ptr(cfg), v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		if sources != nil {
			sources[f.key] = SourceEnv
		}
	}
	return nil
}
