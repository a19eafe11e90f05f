package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nibzard/prospector/internal/llm"
)

const pageSystemPrompt = "Eres un experto en examinar la página de LinkedIn de una persona y extraer información relevante."

const searchSystemPrompt = `Eres un experto en extraer información profesional sobre personas a partir de resultados de búsqueda web.
Extrae información sobre la carrera, educación, intereses y actividades profesionales de la persona.
Formatea la información para que coincida con la estructura de un perfil de LinkedIn.
Por favor, devuelve la información como un objeto JSON con estos campos exactos en el nivel superior (NO los anides bajo una clave 'profile'):
- current_role: su cargo actual
- company: su empresa actual
- industry: su industria
- experience: array de objetos con campos title, company y duration
- education: array de strings
- interests: array de strings
- recent_activity: string

Si la información no está disponible, haz una suposición razonable basada en el contexto pero indica incertidumbre.`

// Extractor turns unstructured text into profiles with an LLM.
type Extractor struct {
	Client llm.Client
	Model  string
}

// FromPage extracts a profile from a scraped profile page using strict
// structured output.
func (e *Extractor) FromPage(ctx context.Context, page string) (*Profile, error) {
	resp, err := e.Client.Complete(ctx, llm.Request{
		Model:       e.Model,
		System:      pageSystemPrompt,
		Messages:    []llm.Message{llm.UserMessage(page)},
		Temperature: llm.Float(0.5),
		JSONSchema:  &llm.Schema{Name: "linkedin_profile", Schema: Schema()},
	})
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}
	return Parse([]byte(resp.Content))
}

// FromSearch extracts a profile of name from web search results. It never
// fails: on any error the Fallback profile is returned together with the
// error for logging.
func (e *Extractor) FromSearch(ctx context.Context, name, results string) (*Profile, error) {
	resp, err := e.Client.Complete(ctx, llm.Request{
		Model:  e.Model,
		System: searchSystemPrompt,
		Messages: []llm.Message{llm.UserMessage(fmt.Sprintf(
			"Aquí están los resultados de búsqueda web sobre %s. Extrae información profesional y devuélvela como un objeto JSON formateado como un perfil de LinkedIn con los campos exactos especificados:\n\n%s",
			name, results))},
		Temperature: llm.Float(0.7),
		JSONObject:  true,
	})
	if err != nil {
		return Fallback(err), err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(resp.Content), &raw); err != nil {
		err = fmt.Errorf("decode profile: %w", err)
		return Fallback(err), err
	}
	return Normalize(raw), nil
}
