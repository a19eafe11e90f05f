package report

import (
	"regexp"
	"strings"

	"github.com/nibzard/prospector/internal/agents"
)

// Placeholders used when a field cannot be extracted.
const (
	UnknownPlaceholder    = "Unknown"
	NoSubjectPlaceholder  = "No especificado"
	ProfileBulletPrefix   = "  • "
	emailDelimiter        = "---"
	leadMarker            = "lead:"
	profileSectionEndings = `(?:✅|\n\n)`
)

// Pattern is a named extraction rule with its documented fallback.
type Pattern struct {
	Name     string
	Re       *regexp.Regexp
	Fallback string
}

// SubjectPatterns find the email subject, tried in order. The first
// capture group is the subject. Fallback: NoSubjectPlaceholder.
var SubjectPatterns = []Pattern{
	{Name: "plain", Re: regexp.MustCompile(`Asunto: ([^\n]+)`), Fallback: NoSubjectPlaceholder},
	{Name: "bold", Re: regexp.MustCompile(`\*\*Asunto:\*\* ([^\n]+)`), Fallback: NoSubjectPlaceholder},
}

// ProfilePatterns find the profile summary block, tried in order. The
// block runs from the header to a checkmark or a blank line. Fallback: no
// profile section.
var ProfilePatterns = []Pattern{
	{Name: "summary-with-icon", Re: regexp.MustCompile(`(?s)📋 Resumen del Perfil del Lead:(.*?)` + profileSectionEndings)},
	{Name: "summary", Re: regexp.MustCompile(`(?s)Resumen del Perfil del Lead:(.*?)` + profileSectionEndings)},
	{Name: "profile", Re: regexp.MustCompile(`(?s)Perfil del Lead:(.*?)` + profileSectionEndings)},
}

// subjectLine matches lines removed from the email body.
var subjectLine = regexp.MustCompile(`(A|a)sunto:`)

// Fields holds everything extracted from one run result.
type Fields struct {
	Name      string
	LastAgent string

	// HasEmail reports whether an email draft was found.
	HasEmail bool
	Subject  string
	Body     string

	// Profile holds the bullet lines of the profile summary, if any.
	Profile []string
}

// Extract pulls report fields out of a run result. It never fails:
// missing data falls back to placeholders.
func Extract(result *agents.RunResult) Fields {
	if result == nil {
		return Fields{Name: UnknownPlaceholder, LastAgent: UnknownPlaceholder, Subject: NoSubjectPlaceholder}
	}

	f := Fields{
		Name:      LeadName(result.Input),
		LastAgent: result.LastAgentName,
		Subject:   NoSubjectPlaceholder,
	}
	if f.LastAgent == "" {
		f.LastAgent = UnknownPlaceholder
	}

	if draft, ok := EmailDraft(result.FinalOutput); ok {
		f.HasEmail = true
		f.Subject = Subject(draft)
		f.Body = CleanBody(draft)
	}
	f.Profile = ProfileLines(SearchText(result))
	return f
}

// LeadName returns the text after "lead:" up to the next "(", trimmed.
func LeadName(input string) string {
	_, rest, ok := strings.Cut(input, leadMarker)
	if !ok {
		return UnknownPlaceholder
	}
	name, _, _ := strings.Cut(rest, "(")
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownPlaceholder
	}
	return name
}

// EmailDraft returns the segment after the first "---" delimiter. At
// least two delimiters are required; text after the second is ignored.
func EmailDraft(output string) (string, bool) {
	parts := strings.Split(output, emailDelimiter)
	if len(parts) < 3 {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Subject returns the first subject found by SubjectPatterns.
func Subject(draft string) string {
	for _, p := range SubjectPatterns {
		if m := p.Re.FindStringSubmatch(draft); m != nil {
			// An inline subject may run into the closing delimiter.
			s, _, _ := strings.Cut(m[1], emailDelimiter)
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return NoSubjectPlaceholder
}

// CleanBody drops every subject line, then any leftover bold subject
// markers.
func CleanBody(draft string) string {
	var kept []string
	for _, line := range strings.Split(draft, "\n") {
		if !subjectLine.MatchString(line) {
			kept = append(kept, line)
		}
	}
	body := strings.Join(kept, "\n")
	return strings.TrimSpace(strings.ReplaceAll(body, "**Asunto:**", ""))
}

// SearchText joins the final output with the string outputs of every run
// item and raw item.
func SearchText(result *agents.RunResult) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(result.FinalOutput)
	for _, item := range result.NewItems {
		if s, ok := item.Output.(string); ok {
			b.WriteString("\n")
			b.WriteString(s)
		}
		if item.RawItem != nil {
			if s, ok := item.RawItem.Output.(string); ok {
				b.WriteString("\n")
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

// ProfileLines returns the bullet lines of the first profile block found
// by ProfilePatterns, or nil.
func ProfileLines(text string) []string {
	for _, p := range ProfilePatterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var lines []string
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimRight(line, " \t\r")
			if strings.HasPrefix(line, ProfileBulletPrefix) {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}
