// Package profile extracts structured professional profiles of leads from
// scraped pages and web search results.
package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/nibzard/prospector/internal/schema"
)

// Unknown fills fields that could not be determined.
const Unknown = "Unknown"

// NoRecentActivity is used when the profile has no recent activity.
const NoRecentActivity = "No hay información de actividad reciente disponible"

// Experience is one position in a career.
type Experience struct {
	Title    string `json:"title" jsonschema:"description=Job title"`
	Company  string `json:"company" jsonschema:"description=Employer name"`
	Duration string `json:"duration" jsonschema:"description=Time in the role, e.g. 2019 - Present"`
}

// Profile is the structured record of a lead.
type Profile struct {
	CurrentRole    string       `json:"current_role" jsonschema:"description=Current job title"`
	Company        string       `json:"company" jsonschema:"description=Current employer"`
	Industry       string       `json:"industry" jsonschema:"description=Industry of the current employer"`
	Experience     []Experience `json:"experience" jsonschema:"description=Work history, most recent first"`
	Education      []string     `json:"education" jsonschema:"description=Degrees and institutions"`
	Interests      []string     `json:"interests" jsonschema:"description=Professional interests"`
	RecentActivity string       `json:"recent_activity" jsonschema:"description=Summary of recent posts or activity"`
}

var (
	schemaOnce      sync.Once
	schemaMap       map[string]any
	schemaDocument  []byte
	schemaValidator *schema.Validator
)

func loadSchema() {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	s := reflector.Reflect(&Profile{})
	s.Version = ""
	s.ID = ""

	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("marshal profile schema: %v", err))
	}
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		panic(fmt.Sprintf("unmarshal profile schema: %v", err))
	}
	schemaDocument = data
	schemaValidator = schema.MustCompile("profile.schema.json", data)
}

// Schema returns the strict JSON schema of Profile.
func Schema() map[string]any {
	schemaOnce.Do(loadSchema)
	return schemaMap
}

// SchemaJSON returns Schema as a JSON document.
func SchemaJSON() []byte {
	schemaOnce.Do(loadSchema)
	return schemaDocument
}

// Parse decodes and validates a profile document.
func Parse(raw []byte) (*Profile, error) {
	schemaOnce.Do(loadSchema)
	if err := schemaValidator.ValidateJSON(raw); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Fallback returns the profile used when extraction fails.
func Fallback(err error) *Profile {
	return &Profile{
		CurrentRole:    Unknown,
		Company:        Unknown,
		Industry:       Unknown,
		Experience:     []Experience{{Title: Unknown, Company: Unknown, Duration: Unknown}},
		Education:      []string{Unknown},
		Interests:      []string{Unknown},
		RecentActivity: fmt.Sprintf("Error al extraer información del perfil. Error: %v", err),
	}
}

// SummaryHeader opens the profile summary block.
const SummaryHeader = "📋 Resumen del Perfil del Lead:"

// SummaryFooter closes the profile summary block.
const SummaryFooter = "✅ Investigación del lead completada"

// SummaryLines renders the bullet lines of the profile summary.
func SummaryLines(p *Profile) []string {
	if p == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("  • Rol actual: %s en %s", orUnknown(p.CurrentRole), orUnknown(p.Company)),
		fmt.Sprintf("  • Industria: %s", orUnknown(p.Industry)),
	}
	if len(p.Education) > 0 && p.Education[0] != Unknown {
		lines = append(lines, "  • Educación: "+p.Education[0])
	}
	if len(p.Interests) > 0 && p.Interests[0] != Unknown {
		interests := p.Interests
		if len(interests) > 3 {
			interests = interests[:3]
		}
		lines = append(lines, "  • Intereses clave: "+strings.Join(interests, ", "))
	}
	return lines
}

// Summary renders the full summary block: header, bullets and footer.
func Summary(p *Profile) string {
	var b strings.Builder
	b.WriteString(SummaryHeader)
	b.WriteString("\n")
	for _, line := range SummaryLines(p) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(SummaryFooter)
	return b.String()
}

// JSON renders the profile as indented JSON.
func (p *Profile) JSON() string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
