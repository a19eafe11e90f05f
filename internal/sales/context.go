// Package sales runs the prospecting team: a team lead that delegates lead
// research and cold email writing to specialist agents.
package sales

import (
	"github.com/nibzard/prospector/internal/leads"
	"github.com/nibzard/prospector/internal/profile"
)

// Context is the state shared by the agents and tools of one lead's run.
type Context struct {
	Name        string
	LinkedInURL string
	Description string
	Email       string

	// Profile is set by the research tools.
	Profile *profile.Profile

	// EmailDraft is set by generate_email.
	EmailDraft string

	Handoffs int
}

// NewContext returns the initial run state for a lead.
func NewContext(lead leads.Lead) *Context {
	return &Context{
		Name:        lead.Name,
		LinkedInURL: lead.LinkedInURL,
		Description: lead.Description,
		Email:       lead.Email,
	}
}
