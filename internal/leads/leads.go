// Package leads loads the sales leads a batch run processes.
package leads

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/prospector/internal/schema"
)

// ErrNoLeads is returned when a leads file holds no leads.
var ErrNoLeads = errors.New("no leads to process")

//go:embed schema.json
var schemaDocument []byte

var validator = schema.MustCompile("leads.schema.json", schemaDocument)

// Lead is one prospect.
type Lead struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	LinkedInURL string `json:"linkedin_url" yaml:"linkedin_url" toml:"linkedin_url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty"`
}

// file is the wrapped form accepted by every format: {"leads": [...]}.
type file struct {
	Leads []Lead `json:"leads" yaml:"leads" toml:"leads"`
}

// Load reads leads from a .json, .yaml, .yml or .toml file.
func Load(path string) ([]Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leads file: %w", err)
	}
	leads, err := Parse(data, Format(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return leads, nil
}

// Format returns the file format implied by the path extension.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Parse decodes leads in the given format ("json", "yaml" or "toml") and
// validates them. JSON and YAML accept a top-level list or a {leads: [...]}
// object; TOML requires [[leads]] tables.
func Parse(data []byte, format string) ([]Lead, error) {
	var leads []Lead
	var err error
	switch format {
	case "yaml":
		leads, err = parseYAML(data)
	case "toml":
		var f file
		_, err = toml.Decode(string(data), &f)
		leads = f.Leads
	default:
		leads, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if len(leads) == 0 {
		return nil, ErrNoLeads
	}
	if err := Validate(leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func parseJSON(data []byte) ([]Lead, error) {
	var leads []Lead
	if err := json.Unmarshal(data, &leads); err == nil {
		return leads, nil
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Leads, nil
}

func parseYAML(data []byte) ([]Lead, error) {
	var leads []Lead
	if err := yaml.Unmarshal(data, &leads); err == nil {
		return leads, nil
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Leads, nil
}

// Validate checks leads against the embedded schema.
func Validate(leads []Lead) error {
	if err := validator.ValidateValue(leads); err != nil {
		return fmt.Errorf("invalid leads: %w", err)
	}
	return nil
}

// Find returns the first lead whose name matches exactly.
func Find(leads []Lead, name string) (Lead, bool) {
	for _, l := range leads {
		if l.Name == name {
			return l, true
		}
	}
	return Lead{}, false
}

// Record is the map form of a lead.
type Record = map[string]any

// ToRecord converts a lead to its map form. Empty optional fields are omitted.
func (l Lead) ToRecord() Record {
	r := Record{"name": l.Name, "linkedin_url": l.LinkedInURL}
	if l.Description != "" {
		r["description"] = l.Description
	}
	if l.Email != "" {
		r["email"] = l.Email
	}
	return r
}

// FromRecord converts a map to a lead. Non-string values are ignored.
func FromRecord(r Record) Lead {
	str := func(key string) string {
		s, _ := r[key].(string)
		return s
	}
	return Lead{
		Name:        str("name"),
		LinkedInURL: str("linkedin_url"),
		Description: str("description"),
		Email:       str("email"),
	}
}

// ToRecords converts leads to their map form.
func ToRecords(leads []Lead) []Record {
	records := make([]Record, len(leads))
	for i, l := range leads {
		records[i] = l.ToRecord()
	}
	return records
}

// Example returns sample leads used by `prospector init`.
func Example() []Lead {
	return []Lead{
		{
			Name:        "Ada Lovelace",
			LinkedInURL: "https://www.linkedin.com/in/ada-lovelace",
			Description: "Analista de datos interesada en automatización",
			Email:       "ada@example.com",
		},
		{
			Name:        "Grace Hopper",
			LinkedInURL: "https://www.linkedin.com/in/grace-hopper",
			Description: "Directora de ingeniería en una empresa de software",
		},
	}
}

// ExampleJSON renders Example as an indented JSON document.
func ExampleJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Example(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
