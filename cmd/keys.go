package cmd

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/nibzard/prospector/internal/secret"
)

var knownKeys = []string{
	secret.OpenAIAPIKey,
	secret.AnthropicAPIKey,
	secret.TavilyAPIKey,
	secret.ScraperAPIKey,
}

// keysCommand stores API keys in the OS keyring and shows where each key
// is found.
func keysCommand(resolver *secret.Resolver, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: prospector keys set NAME | prospector keys status")
	}

	switch args[0] {
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: prospector keys set NAME")
		}
		name := strings.ToUpper(args[1])
		if !slices.Contains(knownKeys, name) {
			return fmt.Errorf("unknown key %s (expected one of %s)", name, strings.Join(knownKeys, ", "))
		}

		fmt.Fprintf(stderr, "Enter %s: ", name)
		line, err := bufio.NewReader(stdin).ReadString('\n')
		value := strings.TrimSpace(line)
		if value == "" {
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			return fmt.Errorf("empty value for %s", name)
		}
		if err := resolver.Store(name, value); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✅ Stored %s in the keyring\n", name)
		return nil
	case "status":
		for _, name := range knownKeys {
			_, source, err := resolver.Lookup(name)
			switch {
			case err == nil:
				fmt.Fprintf(stdout, "%-18s %s\n", name, source)
			case secret.IsNotFound(err):
				fmt.Fprintf(stdout, "%-18s not set\n", name)
			default:
				fmt.Fprintf(stdout, "%-18s error: %v\n", name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown keys command: %s", args[0])
	}
}
