package extract

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tailor-engine/internal/scrape/util"
)

var (
	reComment     = regexp.MustCompile(`(?s)<!--.*?-->`)
	reScriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reTag         = regexp.MustCompile(`<[^>]+>`)

	// Role nouns mark a phrase as a job title rather than an organisation.
	reRoleNoun = regexp.MustCompile(`(?i)\b(?:engineer|manager|developer|analyst|scientist|lead|director|vp|cto|architect|designer|sre|programmer|consultant|specialist|administrator|head of)s?\b`)
)

// plainText turns an HTML document (or plain text) into a single line of
// visible text. Tags become spaces so adjacent blocks do not run together.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	s = reComment.ReplaceAllString(s, " ")
	s = reScriptBlock.ReplaceAllString(s, " ")
	s = reStyleBlock.ReplaceAllString(s, " ")
	s = reTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return util.CleanText(s)
}

func hasRoleNoun(s string) bool {
	return reRoleNoun.MatchString(s)
}

// brandCasing overrides title-casing for employers with irregular capitalisation.
var brandCasing = map[string]string{
	"openai":     "OpenAI",
	"github":     "GitHub",
	"gitlab":     "GitLab",
	"linkedin":   "LinkedIn",
	"ibm":        "IBM",
	"nvidia":     "NVIDIA",
	"doordash":   "DoorDash",
	"hubspot":    "HubSpot",
	"paypal":     "PayPal",
	"youtube":    "YouTube",
	"tiktok":     "TikTok",
	"mongodb":    "MongoDB",
	"dropbox":    "Dropbox",
	"servicenow": "ServiceNow",
	"smartsheet": "Smartsheet",
	"postgresql": "PostgreSQL",
	"aws":        "AWS",
}

// titleCase converts a URL token such as "acme-corp" into "Acme Corp".
func titleCase(token string) string {
	token = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(token)
	token = util.CleanText(token)
	if token == "" {
		return ""
	}
	if v, ok := brandCasing[strings.ToLower(strings.ReplaceAll(token, " ", ""))]; ok {
		return v
	}
	return cases.Title(language.English).String(token)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
