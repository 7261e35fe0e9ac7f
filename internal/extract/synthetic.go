package extract

import (
	"strings"

	"tailor-engine/internal/domain"
)

const syntheticLimit = 5000

var descriptionMeta = []string{
	`meta[property="og:description"]`,
	`meta[name="description"]`,
	`meta[name="twitter:description"]`,
}

// SyntheticDescription assembles a stand-in description for a page whose body
// was never rendered, from the parsed fields plus whatever the page declares
// in its meta tags and JSON-LD.
func SyntheticDescription(html string, rec domain.ParsedJobRecord) string {
	var lines []string
	if t := rec.PositionTitle(); t != "" {
		lines = append(lines, "Position: "+t)
	}
	if c := rec.CompanyName(); c != "" {
		lines = append(lines, "Company: "+c)
	}
	if rec.Salary.Known() {
		lines = append(lines, "Compensation: "+rec.Salary.Display)
	}

	doc := loadDocument(html)
	seen := map[string]bool{}
	add := func(s string) {
		s = plainText(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		lines = append(lines, s)
	}
	if doc != nil {
		for _, sel := range descriptionMeta {
			if v, ok := doc.Find(sel).First().Attr("content"); ok {
				add(v)
			}
		}
		for _, jp := range jobPostings(doc) {
			add(stringOf(jp["description"]))
			if q := stringOf(jp["qualifications"]); q != "" {
				add("Qualifications: " + q)
			}
		}
	}
	return truncateRunes(strings.Join(lines, "\n"), syntheticLimit)
}
