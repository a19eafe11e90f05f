// Package secret resolves API credentials from the environment and the OS
// keyring. Credentials never live in the config file.
package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name secrets are stored under.
const KeyringService = "prospector"

// Names of the credentials the pipeline uses.
const (
	OpenAIAPIKey    = "OPENAI_API_KEY"
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
	TavilyAPIKey    = "TAVILY_API_KEY"
	ScraperAPIKey   = "SCRAPER_API_KEY"
)

// NotFoundError is returned when a secret is in neither source.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret %s not found in environment or keyring (service %q)", e.Name, KeyringService)
}

// TooLargeError is returned when the keyring rejects a value.
type TooLargeError struct {
	Name string
	Err  error
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("secret %s is too large for the keyring: %v", e.Name, e.Err)
}

func (e *TooLargeError) Unwrap() error {
	return e.Err
}

// Source names where a secret was found.
type Source string

const (
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// Resolver looks secrets up in the environment, then the keyring.
type Resolver struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// DisableKeyring skips the keyring lookup.
	DisableKeyring bool
}

// NewResolver returns a resolver using the process environment.
func NewResolver() *Resolver {
	return &Resolver{LookupEnv: os.LookupEnv}
}

// Get returns the secret value.
func (r *Resolver) Get(name string) (string, error) {
	value, _, err := r.Lookup(name)
	return value, err
}

// Lookup returns the secret value and where it was found.
func (r *Resolver) Lookup(name string) (string, Source, error) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), SourceEnv, nil
	}

	if !r.DisableKeyring {
		v, err := keyring.Get(KeyringService, name)
		if err == nil && v != "" {
			return v, SourceKeyring, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", "", fmt.Errorf("read keyring secret %s: %w", name, err)
		}
	}
	return "", "", &NotFoundError{Name: name}
}

// Optional returns the secret or "" when it is not configured.
func (r *Resolver) Optional(name string) string {
	v, err := r.Get(name)
	if err != nil {
		return ""
	}
	return v
}

// Store saves a secret in the keyring.
func (r *Resolver) Store(name, value string) error {
	if err := keyring.Set(KeyringService, name, value); err != nil {
		if errors.Is(err, keyring.ErrSetDataTooBig) {
			return &TooLargeError{Name: name, Err: err}
		}
		return fmt.Errorf("store secret %s: %w", name, err)
	}
	return nil
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
