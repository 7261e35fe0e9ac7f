package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"tailor-engine/internal/domain"
)

func TestSyntheticDescription(t *testing.T) {
	html := `<html><head>` +
		`<meta property="og:description" content="Build &amp; run the robot fleet.">` +
		`<meta name="description" content="Build &amp; run the robot fleet.">` +
		`<script type="application/ld+json">{"@type":"JobPosting","description":"<p>Own the control plane.</p>","qualifications":"5+ years of Go"}</script>` +
		`</head><body><div id="root"></div></body></html>`

	lo := int64(150000)
	rec := domain.ParsedJobRecord{
		Company:  &domain.CompanyCandidate{Name: "Acme Robotics"},
		Position: &domain.PositionCandidate{Title: "Senior Platform Engineer"},
		Salary:   domain.SalaryFigure{Kind: domain.SalarySingle, Low: &lo, Display: "$150,000"},
	}

	want := strings.Join([]string{
		"Position: Senior Platform Engineer",
		"Company: Acme Robotics",
		"Compensation: $150,000",
		"Build & run the robot fleet.",
		"Own the control plane.",
		"Qualifications: 5+ years of Go",
	}, "\n")
	if got := SyntheticDescription(html, rec); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSyntheticDescriptionLimits(t *testing.T) {
	rec := domain.ParsedJobRecord{Salary: domain.UnknownSalary()}
	if got := SyntheticDescription("", rec); got != "" {
		t.Fatalf("expected empty description, got %q", got)
	}

	long := strings.Repeat("é", 6000)
	html := `<html><head><meta name="description" content="` + long + `"></head></html>`
	if got := SyntheticDescription(html, rec); utf8.RuneCountInString(got) != syntheticLimit {
		t.Fatalf("expected %d runes, got %d", syntheticLimit, utf8.RuneCountInString(got))
	}
}
