package leads

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/prospector/internal/schema"
)

var ada = Lead{
	Name:        "Ada",
	LinkedInURL: "https://linkedin.com/in/ada",
	Description: "math",
	Email:       "ada@example.com",
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"json list", "json", `[{"name":"Ada","linkedin_url":"https://linkedin.com/in/ada","description":"math","email":"ada@example.com"}]`},
		{"json wrapped", "json", `{"leads":[{"name":"Ada","linkedin_url":"https://linkedin.com/in/ada","description":"math","email":"ada@example.com"}]}`},
		{"yaml list", "yaml", "- name: Ada\n  linkedin_url: https://linkedin.com/in/ada\n  description: math\n  email: ada@example.com\n"},
		{"yaml wrapped", "yaml", "leads:\n  - name: Ada\n    linkedin_url: https://linkedin.com/in/ada\n    description: math\n    email: ada@example.com\n"},
		{"toml", "toml", "[[leads]]\nname = \"Ada\"\nlinkedin_url = \"https://linkedin.com/in/ada\"\ndescription = \"math\"\nemail = \"ada@example.com\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff([]Lead{ada}, got); diff != "" {
				t.Errorf("leads mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		if _, err := Parse([]byte(`[]`), "json"); !errors.Is(err, ErrNoLeads) {
			t.Errorf("expected ErrNoLeads, got %v", err)
		}
	})

	t.Run("missing linkedin url", func(t *testing.T) {
		_, err := Parse([]byte(`[{"name":"Ada"}]`), "json")
		var ve *schema.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if ve.Path != "[0].linkedin_url" {
			t.Errorf("path: got %q, want %q", ve.Path, "[0].linkedin_url")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := Parse([]byte(`{`), "json"); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.yml")
	if err := os.WriteFile(path, []byte("- name: Ada\n  linkedin_url: u\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ada" {
		t.Errorf("got %+v", got)
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "read leads file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"leads.json": "json",
		"leads.YAML": "yaml",
		"leads.yml":  "yaml",
		"leads.toml": "toml",
		"leads":      "json",
	}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Errorf("Format(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestFind(t *testing.T) {
	list := []Lead{{Name: "Ada", Email: "first"}, {Name: "Ada", Email: "second"}, {Name: "Grace"}}

	got, ok := Find(list, "Ada")
	if !ok || got.Email != "first" {
		t.Errorf("Find: got %+v, %v; want first match", got, ok)
	}
	if _, ok := Find(list, "ada"); ok {
		t.Error("Find must match names exactly")
	}
}

func TestRecords(t *testing.T) {
	r := ada.ToRecord()
	want := Record{
		"name":         "Ada",
		"linkedin_url": "https://linkedin.com/in/ada",
		"description":  "math",
		"email":        "ada@example.com",
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if got := FromRecord(r); got != ada {
		t.Errorf("FromRecord: got %+v, want %+v", got, ada)
	}

	bare := Lead{Name: "Grace", LinkedInURL: "u"}.ToRecord()
	if _, ok := bare["email"]; ok {
		t.Error("empty email should be omitted")
	}
	if got := FromRecord(Record{"name": 3}); got.Name != "" {
		t.Errorf("non-string name should be ignored, got %q", got.Name)
	}
	if len(ToRecords([]Lead{ada, ada})) != 2 {
		t.Error("ToRecords length mismatch")
	}
}

func TestExampleIsValid(t *testing.T) {
	data, err := ExampleJSON()
	if err != nil {
		t.Fatalf("ExampleJSON: %v", err)
	}
	got, err := Parse(data, "json")
	if err != nil {
		t.Fatalf("example leads invalid: %v", err)
	}
	if diff := cmp.Diff(Example(), got); diff != "" {
		t.Errorf("example mismatch (-want +got):\n%s", diff)
	}
}
