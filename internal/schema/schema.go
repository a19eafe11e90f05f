// Package schema compiles JSON schemas and reports the first validation
// failure with a readable path.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Validator validates documents against one compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document. name is used as the resource URL.
func Compile(name string, document []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	url := "mem://" + name
	if err := compiler.AddResource(url, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Validator{schema: compiled}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(name string, document []byte) *Validator {
	v, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a decoded JSON value (maps, slices, float64, ...).
func (v *Validator) Validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return firstError(err)
	}
	return nil
}

// ValidateJSON decodes raw JSON and validates it.
func (v *Validator) ValidateJSON(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return v.Validate(doc)
}

// ValidateValue validates any Go value by round-tripping it through JSON.
func (v *Validator) ValidateValue(value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return v.ValidateJSON(data)
}

// firstError converts a jsonschema error to the first leaf ValidationError.
func firstError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{Path: PointerToPath(ve.InstanceLocation), Message: ve.Message}
}

// PointerToPath converts a JSON Pointer to a dot-notation path,
// e.g. "/leads/0/name" becomes "leads[0].name".
func PointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
