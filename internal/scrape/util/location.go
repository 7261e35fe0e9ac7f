package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var locationSelectors = []string{
	".location",
	".job__location",
	".posting-categories .location",
	".app-title + .location",
	"[data-automation-id='locations']",
	"[data-testid='job-location']",
	"[data-testid='location']",
}

// FindLocation reads a posting's location from the usual ATS markup, then
// from og:description, then from a "Location:" label anywhere in the body.
func FindLocation(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, sel := range locationSelectors {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := LabeledLocation(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	return NormalizeLocation(LabeledLocation(doc.Find("body").Text()))
}

var locationCuts = []string{"\n", "\r", " | ", " · ", "  "}

// LabeledLocation returns the text after a "Location:" style label, up to the
// end of the line.
func LabeledLocation(s string) string {
	low := strings.ToLower(s)
	for _, lab := range []string{"job location:", "locations:", "location:"} {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := strings.TrimLeft(s[i+len(lab):], " \t")
		for _, cut := range locationCuts {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}
