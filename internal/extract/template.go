package extract

import (
	"regexp"
	"strings"

	"tailor-engine/internal/domain"
)

// templateRule maps a normalised title to a resume template. Rules are tried
// in order and the first hit wins.
type templateRule struct {
	choice  domain.TemplateChoice
	phrases []string
	match   func(title string) bool
}

var (
	reSeniorIC = regexp.MustCompile(`\b(?:senior|staff|principal|lead)\b.*\b(?:engineer|developer|programmer|sre)\b`)
	reManager  = regexp.MustCompile(`\bmanager\b`)
	reEngDev   = regexp.MustCompile(`\b(?:software development|software engineering|engineering|development)\b`)
)

var templateRules = []templateRule{
	{
		choice: domain.TemplateSeniorEngineeringManager,
		phrases: []string{
			"senior engineering manager", "senior eng manager", "senior software engineering manager",
			"engineering director", "director of engineering", "director engineering",
			"senior director engineering", "senior director of engineering",
			"vp engineering", "vp of engineering", "vice president engineering", "vice president of engineering",
			"head of engineering", "principal engineering manager",
			"senior manager engineering", "senior manager of engineering", "senior manager software engineering",
		},
	},
	{
		choice: domain.TemplateDataEngineeringManager,
		phrases: []string{
			"data engineering manager", "data eng manager",
			"manager data engineering", "manager of data engineering",
			"head of data engineering", "director data engineering", "director of data engineering",
			"data platform manager", "manager data platform",
			"analytics engineering manager", "data infrastructure manager",
		},
	},
	{
		choice: domain.TemplateEngineeringManager,
		phrases: []string{
			"engineering manager", "eng manager", "software engineering manager", "software eng manager",
			"team lead", "tech lead manager", "development manager",
			"manager software engineering", "manager software development", "manager of engineering",
		},
		match: func(t string) bool {
			return reManager.MatchString(t) && reEngDev.MatchString(t)
		},
	},
	{
		choice: domain.TemplateSeniorSoftwareEngineer,
		phrases: []string{
			"senior software engineer", "senior engineer", "staff engineer", "principal engineer",
			"senior developer", "senior software developer", "lead engineer", "lead software engineer",
			"senior data engineer", "senior backend engineer", "senior frontend engineer",
			"senior full stack engineer", "senior platform engineer", "senior sre", "senior devops engineer",
			"staff software engineer", "principal software engineer", "tech lead", "technical lead",
		},
		match: reSeniorIC.MatchString,
	},
	{
		choice: domain.TemplateSeniorSoftwareEngineer,
		phrases: []string{
			"software engineer", "engineer", "engineers", "engineering", "developer", "programmer",
			"data engineer", "platform engineer", "full stack", "devops", "sre",
			"machine learning", "ml engineer", "analyst", "scientist", "architect",
		},
	},
}

var titleWordSwaps = map[string]string{
	"sr":  "senior",
	"mgr": "manager",
	"&":   "and",
}

// normalizeTitle lower-cases a title and reduces punctuation to single spaces,
// so "Manager, Data Engineering" reads "manager data engineering".
func normalizeTitle(title string) string {
	title = strings.ToLower(title)
	title = strings.Map(func(r rune) rune {
		switch r {
		case ',', '/', '-', '–', '—', '(', ')', '|', ':', ';', '.':
			return ' '
		}
		return r
	}, title)
	words := strings.Fields(title)
	for i, w := range words {
		if s, ok := titleWordSwaps[w]; ok {
			words[i] = s
		}
	}
	return strings.Join(words, " ")
}

func containsPhrase(padded, phrase string) bool {
	return strings.Contains(padded, " "+phrase+" ")
}

// SelectResumeTemplate picks the resume template for a position title.
func SelectResumeTemplate(title string) domain.TemplateChoice {
	t := normalizeTitle(title)
	if t == "" {
		return domain.TemplateNone
	}
	padded := " " + t + " "
	for _, r := range templateRules {
		for _, p := range r.phrases {
			if containsPhrase(padded, p) {
				return r.choice
			}
		}
		if r.match != nil && r.match(t) {
			return r.choice
		}
	}
	return domain.TemplateNone
}
