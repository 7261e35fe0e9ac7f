package extract

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"tailor-engine/internal/domain"
)

// employerDomains maps career-site hosts straight to a canonical employer name.
var employerDomains = map[string]string{
	"google.com":      "Google",
	"microsoft.com":   "Microsoft",
	"amazon.com":      "Amazon",
	"amazon.jobs":     "Amazon",
	"meta.com":        "Meta",
	"metacareers.com": "Meta",
	"facebook.com":    "Meta",
	"apple.com":       "Apple",
	"netflix.com":     "Netflix",
	"tesla.com":       "Tesla",
	"uber.com":        "Uber",
	"airbnb.com":      "Airbnb",
	"linkedin.com":    "LinkedIn",
	"salesforce.com":  "Salesforce",
	"oracle.com":      "Oracle",
	"ibm.com":         "IBM",
	"intel.com":       "Intel",
	"nvidia.com":      "NVIDIA",
	"adobe.com":       "Adobe",
	"stripe.com":      "Stripe",
	"github.com":      "GitHub",
	"gitlab.com":      "GitLab",
	"atlassian.com":   "Atlassian",
	"shopify.com":     "Shopify",
	"zoom.us":         "Zoom",
	"slack.com":       "Slack",
	"twilio.com":      "Twilio",
	"palantir.com":    "Palantir",
	"databricks.com":  "Databricks",
	"snowflake.com":   "Snowflake",
	"confluent.io":    "Confluent",
}

// jobBoard is a hosted ATS. company pulls the employer token out of
// "host/path?query"; position is a heading hint for the posting HTML.
type jobBoard struct {
	name     string
	domain   string
	company  *regexp.Regexp
	position *regexp.Regexp
}

var (
	reH1 = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	reH2 = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)
)

var jobBoards = []jobBoard{
	{"greenhouse", "greenhouse.io", regexp.MustCompile(`greenhouse\.io/(?:embed/[^?]*\?(?:.*&)?for=([^&#]+)|([^/?#]+))`), reH1},
	{"lever", "lever.co", regexp.MustCompile(`^jobs\.(?:eu\.)?lever\.co/([^/?#]+)`), reH2},
	{"workday", "myworkdayjobs.com", regexp.MustCompile(`^([^./]+)\.wd\d+\.myworkdayjobs\.com`), reH1},
	{"jobvite", "jobvite.com", regexp.MustCompile(`^(?:jobs|hire)\.jobvite\.com/([^/?#]+)`), reH1},
	{"bamboohr", "bamboohr.com", regexp.MustCompile(`^([^./]+)\.bamboohr\.com`), reH2},
	{"ashby", "ashbyhq.com", regexp.MustCompile(`^jobs\.ashbyhq\.com/([^/?#]+)`), reH1},
	{"smartrecruiters", "smartrecruiters.com", regexp.MustCompile(`^(?:jobs|careers)\.smartrecruiters\.com/([^/?#]+)`), reH1},
	{"workable", "workable.com", regexp.MustCompile(`^apply\.workable\.com/([^/?#]+)`), reH1},
	{"icims", "icims.com", regexp.MustCompile(`^(?:careers-)?([^./]+)\.icims\.com`), reH1},
	{"breezy", "breezy.hr", regexp.MustCompile(`^([^./]+)\.breezy\.hr`), reH1},
}

// aggregators name themselves in the host, never the employer.
var aggregators = []string{
	"indeed.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"monster.com",
	"careerbuilder.com",
	"simplyhired.com",
	"builtin.com",
	"wellfound.com",
	"dice.com",
	"levels.fyi",
	"crunchbase.com",
	"wikipedia.org",
}

var genericLabels = map[string]bool{
	"www": true, "jobs": true, "job": true, "careers": true, "career": true,
	"boards": true, "apply": true, "app": true, "hire": true, "hiring": true,
	"work": true, "join": true, "talent": true, "recruiting": true, "team": true,
	"about": true, "en": true, "us": true, "m": true, "mobile": true, "api": true,
	"static": true, "cdn": true, "go": true, "portal": true, "embed": true,
	"opportunities": true, "employment": true, "j": true, "ats": true,
}

var reLabelSuffix = regexp.MustCompile(`(?:labs|inc|corp|llc|ltd)$`)

// parseJobURL lower-cases the URL and tolerates a missing scheme.
func parseJobURL(raw string) (*url.URL, string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return nil, "", false
	}
	return u, host, true
}

func hostIs(host, d string) bool {
	return host == d || strings.HasSuffix(host, "."+d)
}

func isAggregator(host, path string) bool {
	for _, d := range aggregators {
		if hostIs(host, d) {
			return true
		}
	}
	if hostIs(host, "linkedin.com") && (strings.HasPrefix(path, "/jobs") || strings.HasPrefix(path, "/comm/jobs")) {
		return true
	}
	return false
}

func boardFor(host string) (jobBoard, bool) {
	for _, b := range jobBoards {
		if hostIs(host, b.domain) {
			return b, true
		}
	}
	return jobBoard{}, false
}

func registrableDomain(host string) string {
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return reg
}

// ExtractFromURL derives the employer from a posting URL. The URL never yields
// a position; see PositionFromURLPath for the script-rendered fallback.
func ExtractFromURL(raw string) (*domain.CompanyCandidate, *domain.PositionCandidate) {
	c, _ := companyFromURL(raw)
	return c, nil
}

func companyFromURL(raw string) (*domain.CompanyCandidate, string) {
	u, host, ok := parseJobURL(raw)
	if !ok || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return nil, ""
	}
	if isAggregator(host, u.Path) {
		return nil, "aggregator"
	}

	reg := registrableDomain(host)
	if name, ok := employerDomains[host]; ok {
		return &domain.CompanyCandidate{Name: name, Source: domain.CompanyFromURLDomain}, "employer-domain"
	}
	if name, ok := employerDomains[reg]; ok {
		return &domain.CompanyCandidate{Name: name, Source: domain.CompanyFromURLDomain}, "employer-domain"
	}

	if b, ok := boardFor(host); ok {
		target := host + u.Path
		if u.RawQuery != "" {
			target += "?" + u.RawQuery
		}
		if m := b.company.FindStringSubmatch(target); m != nil {
			for _, g := range m[1:] {
				tok, err := url.PathUnescape(g)
				if err != nil {
					tok = g
				}
				if len(tok) < 2 || genericLabels[tok] {
					continue
				}
				if name := titleCase(tok); name != "" {
					return &domain.CompanyCandidate{Name: name, Source: domain.CompanyFromURLPath}, "board:" + b.name
				}
			}
		}
		// Board hosts like boards.greenhouse.io say nothing about the employer.
		return nil, "board:" + b.name
	}

	if host != reg && strings.HasSuffix(host, "."+reg) {
		sub := strings.TrimSuffix(host, "."+reg)
		first := strings.Split(sub, ".")[0]
		if len(first) > 1 && !genericLabels[first] {
			if name := titleCase(first); name != "" {
				return &domain.CompanyCandidate{Name: name, Source: domain.CompanyFromSubdomain}, "subdomain"
			}
		}
	}

	label := strings.SplitN(reg, ".", 2)[0]
	label = strings.Trim(reLabelSuffix.ReplaceAllString(label, ""), "-_")
	if len(label) <= 2 {
		return nil, ""
	}
	return &domain.CompanyCandidate{Name: titleCase(label), Source: domain.CompanyFromURLDomain}, "registrable-domain"
}

var reIDToken = regexp.MustCompile(`^(?:\d+|[0-9a-f]{8,}|[a-z]*\d[a-z0-9]{5,})$`)

var pathNoise = map[string]bool{
	"job": true, "jobs": true, "careers": true, "career": true, "position": true,
	"positions": true, "opening": true, "openings": true, "apply": true, "details": true,
	"view": true, "posting": true, "postings": true, "en": true, "us": true,
}

// PositionFromURLPath reads a title out of a slug such as
// /jobs/senior-backend-engineer-4821. Only segments carrying a role noun count.
func PositionFromURLPath(raw string) *domain.PositionCandidate {
	u, _, ok := parseJobURL(raw)
	if !ok {
		return nil
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		seg, err := url.PathUnescape(segs[i])
		if err != nil {
			seg = segs[i]
		}
		var words []string
		for _, w := range strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' || r == '+' || r == ' ' || r == '.' }) {
			if reIDToken.MatchString(w) || pathNoise[w] {
				continue
			}
			words = append(words, w)
		}
		phrase := strings.Join(words, " ")
		if !hasRoleNoun(phrase) {
			continue
		}
		if title := cleanPosition(titleCase(phrase), maxTitleLen); title != "" {
			return &domain.PositionCandidate{Title: title, Source: domain.PositionURLPath}
		}
	}
	return nil
}
