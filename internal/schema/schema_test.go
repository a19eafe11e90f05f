package schema

import (
	"errors"
	"testing"
)

const personSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

func TestValidator(t *testing.T) {
	v := MustCompile("person.json", []byte(personSchema))

	tests := []struct {
		name     string
		doc      string
		wantPath string
		wantErr  bool
	}{
		{name: "valid", doc: `{"name":"Ada","tags":["x"]}`},
		{name: "missing name", doc: `{}`, wantErr: true},
		{name: "empty name", doc: `{"name":""}`, wantPath: "name", wantErr: true},
		{name: "bad tag", doc: `{"name":"Ada","tags":["x",3]}`, wantPath: "tags[1]", wantErr: true},
		{name: "not json", doc: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateJSON([]byte(tt.doc))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if tt.wantPath != "" && ve.Path != tt.wantPath {
				t.Errorf("path: got %q, want %q", ve.Path, tt.wantPath)
			}
		})
	}
}

func TestValidateValue(t *testing.T) {
	v := MustCompile("person.json", []byte(personSchema))
	type person struct {
		Name string `json:"name"`
	}
	if err := v.ValidateValue(person{Name: "Grace"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := v.ValidateValue(person{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile("bad.json", []byte(`{"type": 12}`)); err == nil {
		t.Error("expected compile error")
	}
}

func TestPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"#":                "",
		"/name":            "name",
		"#/leads/0/name":   "leads[0].name",
		"/a~1b/c~0d":       "a/b.c~d",
		"/experience/2":    "experience[2]",
	}
	for in, want := range tests {
		if got := PointerToPath(in); got != want {
			t.Errorf("PointerToPath(%q): got %q, want %q", in, got, want)
		}
	}
}
