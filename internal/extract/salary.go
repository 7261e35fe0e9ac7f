package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"tailor-engine/internal/domain"
)

// Building blocks for the amount patterns.
const (
	sepRe     = `\s*(?:[-–—]|to)\s*`
	kAmtRe    = `(\d{1,3}(?:\.\d+)?)\s*[kK]`
	fullAmtRe = `(\d{1,3}(?:,\d{3})+|\d{4,7})(?:\.\d{1,2})?\b`
	commaRe   = `(\d{1,3}(?:,\d{3})+)(?:\.\d{1,2})?\b`
	hourAmtRe = `(\d{1,3}(?:\.\d{1,2})?)`
	dollarRe  = `\$\s?`
	optDollar = `\$?\s?`
)

var re401k = regexp.MustCompile(`(?i)\b401\s*\(?k\)?`)

// salaryRules is the direct cascade, most specific first.
var salaryRules = []rule[domain.SalaryFigure]{
	{name: "k-range", re: regexp.MustCompile(dollarRe + kAmtRe + sepRe + optDollar + kAmtRe + `\b`), handle: rangeOf(kValue, kValue)},
	{name: "full-range", re: regexp.MustCompile(dollarRe + fullAmtRe + sepRe + optDollar + fullAmtRe), handle: rangeOf(fullValue, fullValue)},
	{name: "full-k-range", re: regexp.MustCompile(dollarRe + fullAmtRe + sepRe + optDollar + kAmtRe + `\b`), handle: rangeOf(fullValue, kValue)},
	{name: "k-full-range", re: regexp.MustCompile(dollarRe + kAmtRe + sepRe + optDollar + fullAmtRe), handle: rangeOf(kValue, fullValue)},
	{name: "k-single", re: regexp.MustCompile(dollarRe + kAmtRe + `\b`), handle: singleOf(kValue)},
	{name: "full-single", re: regexp.MustCompile(dollarRe + fullAmtRe), handle: singleOf(fullValue)},
	{name: "hourly", re: regexp.MustCompile(`(?i)` + dollarRe + hourAmtRe + `(?:` + sepRe + optDollar + hourAmtRe + `)?\s*(?:/\s*(?:hour|hr)|per\s+hour|an\s+hour|hourly)\b`), handle: hourly},
	{name: "bare-k-range", re: regexp.MustCompile(`\b(\d{2,3})\s*[kK]?` + sepRe + optDollar + `(\d{2,3})\s*[kK]\b`), handle: rangeOf(kValue, kValue)},
	{name: "equity", re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:equity|stock|options|rsus?)\b`), handle: equity},
	{name: "total-comp", re: regexp.MustCompile(`(?i)(?:total\s+(?:cash\s+)?compensation|\btc\b|compensation\s+package)(.{0,80})`), handle: anchored},
	{name: "estimated-comp", re: regexp.MustCompile(`(?i)(?:estimated|expected)\s+(?:total\s+)?(?:cash\s+)?(?:compensation|salary|pay)(.{0,80})`), handle: anchored},
}

// labelRules run on the text after an explicit compensation label ("total
// compensation", "estimated salary"); only there may a comma range go without
// a dollar sign.
var labelRules = []rule[domain.SalaryFigure]{
	{name: "bare-comma-range", re: regexp.MustCompile(optDollar + commaRe + sepRe + optDollar + commaRe), handle: rangeOf(fullValue, fullValue)},
	{name: "bare-k-range", re: regexp.MustCompile(`\b` + optDollar + kAmtRe + sepRe + optDollar + kAmtRe + `\b`), handle: rangeOf(kValue, kValue)},
	{name: "dollar-comma-single", re: regexp.MustCompile(dollarRe + commaRe), handle: singleOf(fullValue)},
	{name: "bare-k-single", re: regexp.MustCompile(`\b(\d{2,3}(?:\.\d+)?)\s*[kK]\b`), handle: singleOf(kValue)},
}

// keywordRules run on the window after a looser salary keyword. Every figure
// needs a dollar sign or a K.
var keywordRules = labelRules[1:]

var reSalaryKeyword = regexp.MustCompile(`(?i)\b(?:compensation|salary|pay|wages?|remuneration|package|total\s+comp|base\s+pay|annual\s+salary)\b(.{0,80})`)

// ExtractSalary returns the display form of the first compensation figure in
// text, or "TBD".
func ExtractSalary(text string) string {
	return ParseSalary(text).Display
}

// ParseSalary is ExtractSalary with the parsed figure.
func ParseSalary(text string) domain.SalaryFigure {
	f, _ := parseSalary(text)
	return f
}

func parseSalary(text string) (domain.SalaryFigure, string) {
	s := salaryText(text)
	if s == "" {
		return domain.UnknownSalary(), ""
	}
	if f, name, ok := firstMatch(salaryRules, s); ok {
		return f, name
	}
	for _, m := range reSalaryKeyword.FindAllStringSubmatch(s, -1) {
		if f, name, ok := firstMatch(keywordRules, m[1]); ok {
			return f, "keyword:" + name
		}
	}
	return domain.UnknownSalary(), ""
}

func salaryText(text string) string {
	s := plainText(text)
	return re401k.ReplaceAllString(s, " ")
}

func anchored(m []string) (domain.SalaryFigure, bool) {
	f, _, ok := firstMatch(labelRules, m[1])
	return f, ok
}

func kValue(s string) (int64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int64(math.Round(v * 1000)), true
}

func fullValue(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// rangeOf rejects reversed ranges instead of swapping them.
func rangeOf(low, high func(string) (int64, bool)) func([]string) (domain.SalaryFigure, bool) {
	return func(m []string) (domain.SalaryFigure, bool) {
		lo, ok1 := low(m[1])
		hi, ok2 := high(m[2])
		if !ok1 || !ok2 || lo > hi {
			return domain.SalaryFigure{}, false
		}
		return rangeFigure(domain.SalaryRange, lo, hi), true
	}
}

func singleOf(parse func(string) (int64, bool)) func([]string) (domain.SalaryFigure, bool) {
	return func(m []string) (domain.SalaryFigure, bool) {
		v, ok := parse(m[1])
		if !ok {
			return domain.SalaryFigure{}, false
		}
		return singleFigure(domain.SalarySingle, v), true
	}
}

func hourly(m []string) (domain.SalaryFigure, bool) {
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil || lo <= 0 {
		return domain.SalaryFigure{}, false
	}
	if m[2] == "" {
		f := singleFigure(domain.SalaryHourly, int64(lo))
		f.Display = "$" + hourAmount(lo)
		return f, true
	}
	hi, err := strconv.ParseFloat(m[2], 64)
	if err != nil || lo > hi {
		return domain.SalaryFigure{}, false
	}
	f := rangeFigure(domain.SalaryHourly, int64(lo), int64(hi))
	f.Display = "$" + hourAmount(lo) + " - $" + hourAmount(hi)
	return f, true
}

func hourAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func equity(m []string) (domain.SalaryFigure, bool) {
	return domain.SalaryFigure{Kind: domain.SalaryEquity, Display: m[1] + "% equity"}, true
}

func dollars(v int64) string {
	return "$" + humanize.Comma(v)
}

func singleFigure(kind domain.SalaryKind, v int64) domain.SalaryFigure {
	return domain.SalaryFigure{Kind: kind, Low: &v, Display: dollars(v)}
}

func rangeFigure(kind domain.SalaryKind, lo, hi int64) domain.SalaryFigure {
	return domain.SalaryFigure{Kind: kind, Low: &lo, High: &hi, Display: dollars(lo) + " - " + dollars(hi)}
}
