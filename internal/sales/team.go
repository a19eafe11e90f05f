package sales

import (
	"context"
	"fmt"

	"github.com/nibzard/prospector/internal/agents"
)

// Agent names.
const (
	TeamLeadName            = "Sales Team Lead"
	DevelopmentRepName      = "Sales Development Rep"
	SearchRepName           = "Sales Development Rep with Tavily"
	ColdEmailSpecialistName = "Cold Email Specialist"
)

// ResearchMode selects how leads are researched.
type ResearchMode string

const (
	// ResearchSearch researches leads with web search.
	ResearchSearch ResearchMode = "search"
	// ResearchScrape scrapes the lead's LinkedIn page.
	ResearchScrape ResearchMode = "scrape"
)

// ParseResearchMode validates a research mode name. Empty selects search.
func ParseResearchMode(s string) (ResearchMode, error) {
	switch ResearchMode(s) {
	case "", ResearchSearch:
		return ResearchSearch, nil
	case ResearchScrape:
		return ResearchScrape, nil
	default:
		return "", fmt.Errorf("unknown research mode %q (want search or scrape)", s)
	}
}

// TeamOptions configures NewTeam.
type TeamOptions struct {
	Mode  ResearchMode
	Model string
}

// Team is the wired set of agents for one research mode.
type Team struct {
	Lead     *agents.Agent[Context]
	Research *agents.Agent[Context]
	Email    *agents.Agent[Context]
	Registry *agents.Registry[Context]
}

// NewTeam wires the team lead to a research rep and the cold email
// specialist. Both specialists hand back to the team lead.
func NewTeam(tools *Toolbox, opts TeamOptions) *Team {
	mode := opts.Mode
	if mode == "" {
		mode = ResearchSearch
	}

	lead := &agents.Agent[Context]{
		Name:         TeamLeadName,
		Instructions: agents.PromptWithHandoffInstructions(salesTeamLeadInstructions),
		Model:        opts.Model,
	}

	research := &agents.Agent[Context]{
		Model:              opts.Model,
		HandoffDescription: "Investiga el lead y obtiene los datos de su perfil profesional.",
	}
	switch mode {
	case ResearchScrape:
		research.Name = DevelopmentRepName
		research.Instructions = agents.PromptWithHandoffInstructions(salesDevelopmentRepInstructions)
		research.Tools = []agents.Tool[Context]{tools.ExtractProfile()}
	default:
		research.Name = SearchRepName
		research.Instructions = agents.PromptWithHandoffInstructions(salesDevelopmentRepSearchInstructions)
		research.Tools = []agents.Tool[Context]{tools.ResearchLead()}
	}

	email := &agents.Agent[Context]{
		Name:               ColdEmailSpecialistName,
		Instructions:       agents.PromptWithHandoffInstructions(coldEmailSpecialistInstructions),
		HandoffDescription: "Redacta un correo electrónico de prospección personalizado.",
		Model:              opts.Model,
		Tools:              []agents.Tool[Context]{tools.GenerateEmail()},
	}

	lead.Handoffs = []agents.Handoff[Context]{handoffTo(research), handoffTo(email)}
	research.Handoffs = []agents.Handoff[Context]{handoffTo(lead)}
	email.Handoffs = []agents.Handoff[Context]{handoffTo(lead)}

	return &Team{
		Lead:     lead,
		Research: research,
		Email:    email,
		Registry: agents.NewRegistry(lead, research, email),
	}
}

func handoffTo(target *agents.Agent[Context]) agents.Handoff[Context] {
	return agents.Handoff[Context]{
		Agent: target,
		OnHandoff: func(_ context.Context, state *Context) error {
			state.Handoffs++
			return nil
		},
	}
}
