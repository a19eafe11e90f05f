package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/prospector/internal/agents"
	"github.com/nibzard/prospector/internal/llm"
	"github.com/nibzard/prospector/internal/parallel"
	"github.com/nibzard/prospector/internal/profile"
)

// Tool names.
const (
	ExtractProfileTool = "extract_linkedin_profile"
	ResearchLeadTool   = "research_lead_with_tavily"
	GenerateEmailTool  = "generate_email"
)

// MissingProfileMessage is returned by generate_email before research ran.
const MissingProfileMessage = "Error: No hay datos de perfil de LinkedIn disponibles. Por favor, extraiga los datos del perfil primero."

// Searcher runs web searches and returns formatted results.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) string
}

// Fetcher returns a web page as markdown.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Toolbox holds the dependencies of the team's tools.
type Toolbox struct {
	Search      Searcher
	Scraper     Fetcher
	Extractor   *profile.Extractor
	Writer      llm.Client
	WriterModel string
	Sender      Sender
	MaxResults  int
	Logger      *log.Logger
}

func (t *Toolbox) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}

type extractProfileArgs struct {
	LinkedInURL string `json:"linkedin_url" jsonschema:"description=URL of the lead's LinkedIn profile"`
}

// ExtractProfile scrapes the lead's LinkedIn page and extracts a profile.
func (t *Toolbox) ExtractProfile() agents.Tool[Context] {
	return agents.NewTool(ExtractProfileTool, "Extraer datos de perfil de una URL de LinkedIn",
		func(ctx context.Context, state *Context, args extractProfileArgs) (string, error) {
			url := args.LinkedInURL
			if url == "" {
				url = state.LinkedInURL
			}
			t.logger().Info("Scraping LinkedIn profile", "lead", state.Name, "url", url)

			page, err := t.Scraper.Fetch(ctx, url)
			if err != nil {
				return "", err
			}
			p, err := t.Extractor.FromPage(ctx, page)
			if err != nil {
				return "", err
			}
			state.Profile = p
			return profileOutput(p), nil
		})
}

type researchLeadArgs struct {
	Name        string `json:"name" jsonschema:"description=Full name of the lead"`
	LinkedInURL string `json:"linkedin_url,omitempty" jsonschema:"description=URL of the lead's LinkedIn profile, if known"`
}

// ResearchLead searches the web for the lead and extracts a profile from
// the results. Extraction failures yield a placeholder profile.
func (t *Toolbox) ResearchLead() agents.Tool[Context] {
	return agents.NewTool(ResearchLeadTool, "Investigar un lead utilizando la búsqueda web de Tavily y formatear los resultados similar a un perfil de LinkedIn",
		func(ctx context.Context, state *Context, args researchLeadArgs) (string, error) {
			name := args.Name
			if name == "" {
				name = state.Name
			}
			url := args.LinkedInURL
			if url == "" {
				url = state.LinkedInURL
			}
			queries := SearchQueries(name, state.Description, url)
			t.logger().Info("Researching lead on the web", "lead", name, "queries", len(queries))

			maxResults := t.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			search := func(ctx context.Context, query string) (string, error) {
				return t.Search.Search(ctx, query, maxResults), nil
			}
			results, err := parallel.RunTasks(ctx, search, queries, nil)
			if err != nil {
				return "", err
			}
			combined := "\n\n" + strings.Join(results, "\n\n")

			p, err := t.Extractor.FromSearch(ctx, name, combined)
			if err != nil {
				t.logger().Error("Profile extraction failed, using placeholder profile", "lead", name, "err", err)
			}
			state.Profile = p
			return profileOutput(p), nil
		})
}

// GenerateEmail writes a cold email from the profile in the run state.
func (t *Toolbox) GenerateEmail() agents.Tool[Context] {
	return agents.NewTool(GenerateEmailTool, "Generar un correo electrónico de ventas personalizado basado en los datos del perfil de LinkedIn",
		func(ctx context.Context, state *Context, _ struct{}) (string, error) {
			if state.Profile == nil {
				return MissingProfileMessage, nil
			}
			resp, err := t.Writer.Complete(ctx, llm.Request{
				Model:       t.WriterModel,
				System:      emailSystemPrompt,
				Messages:    []llm.Message{llm.UserMessage(emailPrompt(state.Name, state.Profile.JSON(), t.Sender.withDefaults()))},
				Temperature: llm.Float(0.7),
				MaxTokens:   2048,
			})
			if err != nil {
				return "", fmt.Errorf("generate email: %w", err)
			}
			state.EmailDraft = resp.Content
			return resp.Content, nil
		})
}

// SearchQueries returns the web queries used to research a lead.
func SearchQueries(name, description, linkedInURL string) []string {
	var queries []string
	if description != "" {
		queries = []string{
			fmt.Sprintf("%s %s", name, description),
			fmt.Sprintf("%s %s background", name, description),
			fmt.Sprintf("%s %s experience", name, description),
			fmt.Sprintf("%s %s education", name, description),
		}
	} else {
		queries = []string{
			name + " professional background",
			name + " current job position",
			name + " career history",
			name + " education background",
			name + " professional interests",
		}
	}
	if username := linkedInUsername(linkedInURL); username != "" {
		queries = append(queries, fmt.Sprintf("%s %s professional background", name, username))
	}
	return queries
}

// linkedInUsername returns the last non-empty path segment of a profile URL.
func linkedInUsername(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) <= 2 {
		return ""
	}
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return parts[len(parts)-2]
}

// profileOutput is the tool output for a researched profile: the summary
// block followed by the full profile as JSON.
func profileOutput(p *profile.Profile) string {
	return profile.Summary(p) + "\n\n" + p.JSON()
}
