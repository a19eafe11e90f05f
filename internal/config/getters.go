package config

import "time"

// CacheTTL returns how long web search results are cached.
func (c *Config) CacheTTL() time.Duration {
	if c.Search.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Search.CacheTTLSeconds) * time.Second
}

// ToolModel returns the model used inside tools, falling back to the
// agent model.
func (c *Config) ToolModel() string {
	if c.LLM.ToolModel != "" {
		return c.LLM.ToolModel
	}
	return c.LLM.Model
}

// Value returns a setting by its dotted key for display. Unknown keys
// yield "".
func (c *Config) Value(key string) string {
	for _, f := range fields() {
		if f.key == key {
			return formatValue(f.ptr(c))
		}
	}
	return ""
}

// Keys returns every setting key in display order.
func Keys() []string {
	return configFields()
}
