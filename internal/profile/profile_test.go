package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/prospector/internal/llm"
)

type fakeClient struct {
	content string
	err     error
	last    llm.Request
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

func TestSchema(t *testing.T) {
	s := Schema()
	if s["type"] != "object" {
		t.Errorf("type: got %v, want object", s["type"])
	}
	if s["additionalProperties"] != false {
		t.Errorf("additionalProperties: got %v, want false", s["additionalProperties"])
	}
	if _, ok := s["$schema"]; ok {
		t.Error("schema must not carry a $schema version")
	}

	required, _ := s["required"].([]any)
	var got []string
	for _, r := range required {
		got = append(got, r.(string))
	}
	want := []string{"current_role", "company", "industry", "experience", "education", "interests", "recent_activity"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	valid := `{"current_role":"CTO","company":"Acme","industry":"Software",
		"experience":[{"title":"CTO","company":"Acme","duration":"2020 - Present"}],
		"education":["BSc at MIT"],"interests":["AI"],"recent_activity":"Posted about agents"}`

	p, err := Parse([]byte(valid))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.CurrentRole != "CTO" || p.Experience[0].Duration != "2020 - Present" {
		t.Errorf("unexpected profile: %+v", p)
	}

	if _, err := Parse([]byte(`{"current_role":"CTO"}`)); err == nil {
		t.Error("expected validation error for incomplete profile")
	}
	if _, err := Parse([]byte(`{"current_role":"CTO","extra":1}`)); err == nil {
		t.Error("expected validation error for unknown field")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want *Profile
	}{
		{
			name: "empty reply",
			raw:  map[string]any{},
			want: &Profile{
				CurrentRole:    Unknown,
				Company:        Unknown,
				Industry:       Unknown,
				Experience:     []Experience{{Title: Unknown, Company: Unknown, Duration: Unknown}},
				Education:      []string{Unknown},
				Interests:      []string{Unknown},
				RecentActivity: NoRecentActivity,
			},
		},
		{
			name: "nested profile with headline and dated experience",
			raw: map[string]any{"profile": map[string]any{
				"headline": "Head of Data",
				"experience": []any{
					map[string]any{"title": "Head of Data", "company": "Initech", "start_date": "2021"},
					"not an object",
				},
				"education": []any{
					map[string]any{"degree": "MSc", "institution": "ETH"},
					map[string]any{"institution": "MIT"},
					"Bootcamp",
				},
				"interests":       []any{"AI", 42},
				"recent_activity": "Spoke at a conference",
			}},
			want: &Profile{
				CurrentRole:    "Head of Data",
				Company:        "Initech",
				Industry:       Unknown,
				Experience:     []Experience{{Title: "Head of Data", Company: "Initech", Duration: "2021 - Present"}},
				Education:      []string{"MSc at ETH", "Degree at MIT", "Bootcamp"},
				Interests:      []string{"AI", "42"},
				RecentActivity: "Spoke at a conference",
			},
		},
		{
			name: "interests not a list",
			raw:  map[string]any{"current_role": "CEO", "company": "Acme", "interests": "golf"},
			want: &Profile{
				CurrentRole:    "CEO",
				Company:        "Acme",
				Industry:       Unknown,
				Experience:     []Experience{{Title: Unknown, Company: Unknown, Duration: Unknown}},
				Education:      []string{Unknown},
				Interests:      []string{Unknown},
				RecentActivity: NoRecentActivity,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Normalize(tt.raw)); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	p := &Profile{
		CurrentRole: "CTO",
		Company:     "Acme",
		Industry:    "Software",
		Education:   []string{"BSc at MIT"},
		Interests:   []string{"AI", "Go", "Sales", "Chess"},
	}
	want := "📋 Resumen del Perfil del Lead:\n" +
		"  • Rol actual: CTO en Acme\n" +
		"  • Industria: Software\n" +
		"  • Educación: BSc at MIT\n" +
		"  • Intereses clave: AI, Go, Sales\n" +
		"✅ Investigación del lead completada"
	if got := Summary(p); got != want {
		t.Errorf("Summary:\ngot  %q\nwant %q", got, want)
	}

	lines := SummaryLines(Fallback(errors.New("x")))
	if len(lines) != 2 {
		t.Errorf("fallback summary should skip unknown education and interests, got %v", lines)
	}
}

func TestExtractor_FromSearch(t *testing.T) {
	client := &fakeClient{content: `{"current_role":"CTO","company":"Acme"}`}
	e := &Extractor{Client: client, Model: "gpt-4o-mini"}

	p, err := e.FromSearch(context.Background(), "Ada", "results")
	if err != nil {
		t.Fatalf("FromSearch: %v", err)
	}
	if p.CurrentRole != "CTO" || p.Company != "Acme" {
		t.Errorf("unexpected profile: %+v", p)
	}
	if !client.last.JSONObject || client.last.Model != "gpt-4o-mini" {
		t.Errorf("request: got %+v", client.last)
	}
	if !strings.Contains(client.last.Messages[0].Content, "sobre Ada") {
		t.Errorf("prompt should name the lead: %q", client.last.Messages[0].Content)
	}
}

func TestExtractor_FromSearchFallback(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"llm error", &fakeClient{err: errors.New("rate limited")}},
		{"invalid json", &fakeClient{content: "not json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Extractor{Client: tt.client, Model: "m"}
			p, err := e.FromSearch(context.Background(), "Ada", "")
			if err == nil {
				t.Error("expected error to be reported")
			}
			if p == nil || p.CurrentRole != Unknown {
				t.Fatalf("expected fallback profile, got %+v", p)
			}
			if !strings.HasPrefix(p.RecentActivity, "Error al extraer información del perfil") {
				t.Errorf("recent activity: got %q", p.RecentActivity)
			}
		})
	}
}

func TestExtractor_FromPage(t *testing.T) {
	client := &fakeClient{content: `{"current_role":"CTO","company":"Acme","industry":"Software",
		"experience":[],"education":[],"interests":[],"recent_activity":""}`}
	e := &Extractor{Client: client, Model: "gpt-4o-mini"}

	p, err := e.FromPage(context.Background(), "# Ada\nCTO at Acme")
	if err != nil {
		t.Fatalf("FromPage: %v", err)
	}
	if p.Company != "Acme" {
		t.Errorf("company: got %q", p.Company)
	}
	if client.last.JSONSchema == nil || client.last.JSONSchema.Name != "linkedin_profile" {
		t.Errorf("expected strict schema request, got %+v", client.last.JSONSchema)
	}

	client.content = `{"current_role":"CTO"}`
	if _, err := e.FromPage(context.Background(), "page"); err == nil {
		t.Error("expected validation error")
	}
}
