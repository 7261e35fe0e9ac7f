package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tailor-engine/internal/domain"
	"tailor-engine/internal/scrape/util"
)

const (
	maxTitleLen    = 80
	maxBodyRoleLen = 60
	minRoleLen     = 5
	companyWindow  = 200
)

// knownTitles are matched case-insensitively on word boundaries, longest first.
var knownTitles = []string{
	"Senior Software Engineer",
	"Software Engineer",
	"Senior Engineer",
	"Staff Engineer",
	"Principal Engineer",
	"Engineering Manager",
	"Software Engineering Manager",
	"Manager, Software Engineering",
	"Senior Engineering Manager",
	"Director of Engineering",
	"VP of Engineering",
	"CTO",
	"Tech Lead",
	"Technical Lead",
	"Lead Software Engineer",
	"Data Engineer",
	"Senior Data Engineer",
	"Data Engineering Manager",
	"Manager, Data Engineering",
	"Staff Data Engineer",
	"Principal Data Engineer",
	"Data Scientist",
	"Senior Data Scientist",
	"Machine Learning Engineer",
	"ML Engineer",
	"Product Manager",
	"Senior Product Manager",
	"Principal Product Manager",
	"Director of Product",
	"VP of Product",
	"DevOps Engineer",
	"Site Reliability Engineer",
	"SRE",
	"Platform Engineer",
	"Infrastructure Engineer",
	"Frontend Engineer",
	"Backend Engineer",
	"Full Stack Engineer",
	"Full-Stack Engineer",
}

var knownTitleRules = func() []rule[string] {
	titles := append([]string(nil), knownTitles...)
	sort.SliceStable(titles, func(i, j int) bool { return len(titles[i]) > len(titles[j]) })
	out := make([]rule[string], 0, len(titles))
	for _, t := range titles {
		title := t
		out = append(out, rule[string]{
			name:   "known:" + title,
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(title) + `\b`),
			handle: func([]string) (string, bool) { return title, true },
		})
	}
	return out
}()

const roleNouns = `(?i:Engineer|Manager|Developer|Analyst|Scientist|Lead|Director|VP|CTO)`

var (
	reNextLabel = regexp.MustCompile(`\s+[A-Z][A-Za-z ]{1,24}:`)

	bodyTitleRules = []rule[string]{
		{name: "leading-phrase", re: regexp.MustCompile(`^((?:[A-Z][A-Za-z0-9&/+'-]*,?\s+){1,6}` + roleNouns + `)\b`), handle: leadingTitle},
		{name: "position-label", re: regexp.MustCompile(`(?i)\bposition\s*:\s*([^.!?|]{5,60})`), handle: bodyTitle},
		{name: "role-label", re: regexp.MustCompile(`(?i)\brole\s*:\s*([^.!?|]{5,60})`), handle: bodyTitle},
		{name: "job-title-label", re: regexp.MustCompile(`(?i)\bjob\s+title\s*:\s*([^.!?|]{5,60})`), handle: bodyTitle},
		{name: "looking-for", re: regexp.MustCompile(`(?i)\bwe\s+are\s+looking\s+for\s+an?\s+([^.!?]{5,60}?(?:Engineer|Manager|Developer|Analyst|Scientist))\b`), handle: bodyTitle},
	}
)

// leadingTitle accepts an opening run of capitalised words of 10 to 60
// characters.
func leadingTitle(m []string) (string, bool) {
	if len([]rune(m[1])) < 10 {
		return "", false
	}
	return bodyTitle(m)
}

func bodyTitle(m []string) (string, bool) {
	s := m[1]
	if i := reNextLabel.FindStringIndex(s); i != nil {
		s = s[:i[0]]
	}
	s = cleanPosition(s, maxBodyRoleLen)
	return s, s != ""
}

// Company names in running text: capitalised words, at most five.
const (
	companyName = `([A-Z][A-Za-z0-9&'.-]*(?:\s+(?:[A-Z0-9][A-Za-z0-9&'.-]*|&|of|and)){0,4})`
	labelName   = `([A-Za-z0-9][A-Za-z0-9&'.-]*(?:\s+(?:[A-Z0-9][A-Za-z0-9&'.-]*|&|of|and)){0,4})`
)

var companyRules = []rule[string]{
	{name: "about-join-at", re: regexp.MustCompile(`\b(?i:about|join|at)\s+` + companyName + `\s*(?:[,.:!]|$)`), handle: bodyCompany},
	{name: "company-label", re: regexp.MustCompile(`\b(?i:company|organization|organisation|employer)\s*:\s*` + labelName), handle: bodyCompany},
	{name: "is-hiring", re: regexp.MustCompile(companyName + `\s+(?i:is\s+(?:looking\s+for|seeking|hiring|a\s+leading|an?))\b`), handle: bodyCompany},
	{name: "join-team-at", re: regexp.MustCompile(`\b(?i:join)\s+(?i:the\s+team\s+at\s+)?` + companyName), handle: bodyCompany},
	{name: "work-at", re: regexp.MustCompile(`\b(?i:work\s+(?:at|with))\s+` + companyName), handle: bodyCompany},
	{name: "apply-to", re: regexp.MustCompile(`\b(?i:apply\s+to)\s+` + companyName), handle: bodyCompany},
	{name: "career-at", re: regexp.MustCompile(`\b(?i:careers?\s+(?:opportunity\s+)?at)\s+` + companyName), handle: bodyCompany},
	{name: "leading-subject", re: regexp.MustCompile(`^` + companyName + `\s+(?i:is|seeks|wants|needs)\b`), handle: bodyCompany},
}

func bodyCompany(m []string) (string, bool) {
	s := cleanCompanyName(m[1])
	return s, s != ""
}

var (
	reLeadingThe  = regexp.MustCompile(`(?i)^the\s+`)
	reCorpSuffix  = regexp.MustCompile(`(?i)(?:[\s,]+(?:inc|llc|corp|corporation|ltd|co|gmbh|plc))+\.?$`)
	reSegmentCut  = regexp.MustCompile(`\s+[-–—|]\s+`)
	reHasLetter   = regexp.MustCompile(`\pL`)
	reAllDigits   = regexp.MustCompile(`^[\d\s.,-]+$`)
	titleLeadWord = map[string]bool{
		"senior": true, "junior": true, "staff": true, "principal": true, "lead": true,
		"sr": true, "jr": true, "software": true, "engineer": true, "engineering": true,
		"manager": true, "developer": true, "backend": true, "frontend": true,
		"full": true, "stack": true, "remote": true, "hybrid": true,
	}
)

var companyStopWords = map[string]bool{
	"this": true, "the": true, "we": true, "you": true, "us": true, "our": true, "your": true,
	"all": true, "some": true, "many": true, "most": true, "key": true, "main": true,
	"primary": true, "current": true, "new": true, "next": true, "first": true, "last": true,
	"position": true, "role": true, "job": true, "jobs": true, "career": true, "careers": true,
	"opportunity": true, "team": true, "company": true, "organization": true, "department": true,
	"division": true, "group": true, "candidate": true, "applicant": true, "engineering": true,
	"software": true, "technology": true, "technical": true, "senior": true, "junior": true,
	"full time": true, "part time": true, "remote": true, "onsite": true, "hybrid": true,
	"home": true, "apply": true, "description": true, "job title": true,
}

// cleanCompanyName normalises a company candidate, returning "" when it
// should be rejected.
func cleanCompanyName(s string) string {
	s = util.CleanText(s)
	s = reLeadingThe.ReplaceAllString(s, "")

	words := strings.Fields(s)
	for len(words) > 1 && titleLeadWord[strings.ToLower(strings.Trim(words[0], ".,"))] {
		words = words[1:]
	}
	s = strings.Join(words, " ")

	s = reCorpSuffix.ReplaceAllString(s, "")
	s = strings.Trim(s, " .,;:-!|&")

	switch {
	case len(s) < 2 || len(s) > 50:
		return ""
	case companyStopWords[strings.ToLower(s)]:
		return ""
	case !reHasLetter.MatchString(s) || reAllDigits.MatchString(s):
		return ""
	case hasRoleNoun(s):
		return ""
	}
	return s
}

var genericTitles = map[string]bool{
	"careers": true, "jobs": true, "job": true, "home": true, "apply": true,
	"job details": true, "job application": true, "open positions": true,
	"join us": true, "job board": true, "current openings": true,
	"loading": true, "loading...": true,
}

// cleanPosition trims a title candidate and enforces the length window.
func cleanPosition(s string, limit int) string {
	s = util.CleanText(s)
	s = strings.Trim(s, " -–—|:,;")
	n := len([]rune(s))
	if n < minRoleLen || n > limit {
		return ""
	}
	if !reHasLetter.MatchString(s) || genericTitles[strings.ToLower(s)] {
		return ""
	}
	return s
}

type contentSignals struct {
	company      *domain.CompanyCandidate
	position     *domain.PositionCandidate
	companyRule  string
	positionRule string
}

// ExtractFromContent finds the company and position in a posting's HTML or
// text. The URL, when given, fills in a company the page does not name.
func ExtractFromContent(text, rawURL string) (*domain.CompanyCandidate, *domain.PositionCandidate) {
	s := extractContent(loadDocument(text), text, rawURL)
	if s.company == nil && rawURL != "" {
		s.company, _ = companyFromURL(rawURL)
	}
	return s.company, s.position
}

func loadDocument(text string) *goquery.Document {
	if !strings.Contains(text, "<") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}
	return doc
}

func extractContent(doc *goquery.Document, text, rawURL string) contentSignals {
	var out contentSignals
	if strings.TrimSpace(text) == "" {
		return out
	}

	if doc != nil {
		title := util.CleanText(doc.Find("title").First().Text())
		out = fromTitleTag(title, rawURL)
	}

	if out.position == nil && rawURL != "" {
		if _, host, ok := parseJobURL(rawURL); ok {
			if b, ok := boardFor(host); ok {
				if m := b.position.FindStringSubmatch(text); m != nil {
					if t := cleanPosition(plainText(m[1]), maxTitleLen); t != "" {
						out.position = &domain.PositionCandidate{Title: t, Source: domain.PositionBoardHeading}
						out.positionRule = "board-heading:" + b.name
					}
				}
			}
		}
	}

	if out.company != nil && out.position != nil {
		return out
	}

	body := bodyText(doc, text)
	if out.position == nil {
		if t, name, ok := firstMatch(knownTitleRules, body); ok {
			out.position = &domain.PositionCandidate{Title: t, Source: domain.PositionKnownPattern}
			out.positionRule = name
		} else if t, name, ok := firstMatch(bodyTitleRules, body); ok {
			out.position = &domain.PositionCandidate{Title: t, Source: domain.PositionBodyHeuristic}
			out.positionRule = name
		}
	}
	if out.company == nil {
		head := truncateRunes(body, companyWindow)
		c, name, ok := firstMatch(companyRules, head)
		if !ok && len(head) < len(body) {
			c, name, ok = firstMatch(companyRules, body)
		}
		if ok {
			out.company = &domain.CompanyCandidate{Name: c, Source: domain.CompanyFromBody}
			out.companyRule = name
		}
	}
	return out
}

// bodyText is the page text outside <head>, so title fragments never run
// into the body heuristics.
func bodyText(doc *goquery.Document, text string) string {
	if doc == nil {
		return plainText(text)
	}
	h, err := doc.Find("body").First().Html()
	if err != nil {
		return plainText(text)
	}
	return plainText(h)
}

// titleShape splits a <title> into (first, second) segments.
type titleShape struct {
	name  string
	split func(title string) (string, string, bool)
}

var (
	reTitleDash  = regexp.MustCompile(`^(.+?)(?:\s+-\s+|\s*[–—]\s*)(.+)$`)
	reTitleAt    = regexp.MustCompile(`(?i)^(.+?)\s+at\s+(.+)$`)
	reTitleColon = regexp.MustCompile(`^([^:]+?):\s+(.+)$`)

	// Greenhouse: "Job Application for <position> at <company>".
	reApplicationPrefix = regexp.MustCompile(`(?i)^job\s+application\s+for\s+`)
)

func splitWith(re *regexp.Regexp) func(string) (string, string, bool) {
	return func(s string) (string, string, bool) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			return "", "", false
		}
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
}

// splitPipe keeps the first and last meaningful segments of "A | Careers | B".
func splitPipe(s string) (string, string, bool) {
	if !strings.Contains(s, "|") {
		return "", "", false
	}
	var segs []string
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(p)
		if p == "" || genericTitles[strings.ToLower(p)] {
			continue
		}
		segs = append(segs, p)
	}
	if len(segs) < 2 {
		return "", "", false
	}
	return segs[0], segs[len(segs)-1], true
}

var titleShapes = []titleShape{
	{"dash", splitWith(reTitleDash)},
	{"at", splitWith(reTitleAt)},
	{"pipe", splitPipe},
	{"colon", splitWith(reTitleColon)},
}

func fromTitleTag(title, rawURL string) contentSignals {
	var out contentSignals
	title = strings.TrimSpace(reApplicationPrefix.ReplaceAllString(title, ""))
	if title == "" {
		return out
	}

	for _, shape := range titleShapes {
		a, b, ok := shape.split(title)
		if !ok || a == "" || b == "" {
			continue
		}

		var company, position string
		switch shape.name {
		case "dash":
			// "Position - Company - Remote": drop the trailing location.
			if mid, rest, ok := splitWith(reTitleDash)(b); ok && looksLikeLocation(rest) && !looksLikeLocation(mid) {
				b = mid
			}
			if looksLikeLocation(b) {
				if p := cleanPosition(a, maxTitleLen); p != "" {
					out.position = &domain.PositionCandidate{Title: p, Source: domain.PositionTitleTag}
					out.positionRule = "title:dash-location"
					out.company, out.companyRule = companyFromURL(rawURL)
					return out
				}
				continue
			}
			company, position = a, b
			if hasRoleNoun(a) && !hasRoleNoun(b) {
				company, position = b, a
			}
		case "at", "pipe":
			company, position = b, a
		case "colon":
			company, position = a, b
		}

		if i := reSegmentCut.FindStringIndex(company); i != nil {
			company = company[:i[0]]
		}
		c := cleanCompanyName(company)
		p := cleanPosition(position, maxTitleLen)
		if c == "" || p == "" {
			continue
		}
		out.company = &domain.CompanyCandidate{Name: c, Source: domain.CompanyFromTitle}
		out.position = &domain.PositionCandidate{Title: p, Source: domain.PositionTitleTag}
		out.companyRule = "title:" + shape.name
		out.positionRule = "title:" + shape.name
		return out
	}

	if rawURL != "" {
		if p := cleanPosition(title, maxTitleLen); p != "" {
			out.position = &domain.PositionCandidate{Title: p, Source: domain.PositionTitleTag}
			out.positionRule = "title:whole"
			out.company, out.companyRule = companyFromURL(rawURL)
		}
	}
	return out
}
