package profile

import (
	"fmt"
	"strings"
)

// Normalize maps a loosely structured model reply onto a Profile. A
// nested "profile" object is unwrapped; missing values become Unknown.
func Normalize(raw map[string]any) *Profile {
	if nested, ok := raw["profile"].(map[string]any); ok {
		raw = nested
	}

	experience, _ := raw["experience"].([]any)

	p := &Profile{
		CurrentRole: firstNonEmpty(text(raw["current_role"]), text(raw["headline"]), Unknown),
		Industry:    firstNonEmpty(text(raw["industry"]), Unknown),
	}

	company := text(raw["company"])
	if company == "" && len(experience) > 0 {
		if first, ok := experience[0].(map[string]any); ok {
			company = text(first["company"])
		}
	}
	p.Company = firstNonEmpty(company, Unknown)

	for _, item := range experience {
		exp, ok := item.(map[string]any)
		if !ok {
			continue
		}
		duration := text(exp["duration"])
		if duration == "" {
			duration = fmt.Sprintf("%s - %s", text(exp["start_date"]), firstNonEmpty(text(exp["end_date"]), "Present"))
		}
		p.Experience = append(p.Experience, Experience{
			Title:    firstNonEmpty(text(exp["title"]), Unknown),
			Company:  firstNonEmpty(text(exp["company"]), Unknown),
			Duration: duration,
		})
	}
	if len(p.Experience) == 0 {
		p.Experience = []Experience{{Title: Unknown, Company: Unknown, Duration: Unknown}}
	}

	if education, ok := raw["education"].([]any); ok {
		p.Education = []string{}
		for _, item := range education {
			switch edu := item.(type) {
			case map[string]any:
				p.Education = append(p.Education, fmt.Sprintf("%s at %s",
					firstNonEmpty(text(edu["degree"]), "Degree"),
					firstNonEmpty(text(edu["institution"]), "Institution")))
			case string:
				p.Education = append(p.Education, edu)
			}
		}
	} else {
		p.Education = []string{Unknown}
	}

	if interests, ok := raw["interests"].([]any); ok {
		p.Interests = []string{}
		for _, item := range interests {
			if s := text(item); s != "" {
				p.Interests = append(p.Interests, s)
			}
		}
	} else {
		p.Interests = []string{Unknown}
	}

	p.RecentActivity = firstNonEmpty(text(raw["recent_activity"]), NoRecentActivity)
	return p
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
