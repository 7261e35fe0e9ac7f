package extract

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"tailor-engine/internal/domain"
)

// maxStateDepth bounds the walk through embedded application state.
const maxStateDepth = 3

var reStateGlobal = regexp.MustCompile(`(?:window\.)?(?:__INITIAL_STATE__|__APOLLO_STATE__|__PRELOADED_STATE__|__REDUX_STATE__|__NUXT__|__APP_DATA__)\s*=\s*`)

var salaryKeyWords = map[string]bool{
	"salary": true, "salaries": true, "compensation": true,
	"pay": true, "wage": true, "wages": true,
}

// isSalaryKey matches whole words of a camelCase or snake_case key, so
// "baseSalary" and "pay_from" count while "paymentId" and "database" do not.
// A lone "base" counts; "basePath" does not.
func isSalaryKey(k string) bool {
	words := keyWords(k)
	if len(words) == 1 && words[0] == "base" {
		return true
	}
	for _, w := range words {
		if salaryKeyWords[w] {
			return true
		}
	}
	return false
}

func keyWords(k string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	prevLower := false
	for _, r := range k {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			flush()
		}
		cur = append(cur, r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	flush()
	return words
}

// embeddedStates returns every decodable JSON state blob found in the page.
func embeddedStates(doc *goquery.Document, raw string) []any {
	var out []any
	if doc != nil {
		doc.Find(`script#__NEXT_DATA__, script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
			var v any
			if json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v) == nil {
				out = append(out, v)
			}
		})
	}
	for _, loc := range reStateGlobal.FindAllStringIndex(raw, -1) {
		blob := balancedJSON(raw[loc[1]:])
		if blob == "" {
			continue
		}
		var v any
		if json.Unmarshal([]byte(blob), &v) == nil {
			out = append(out, v)
		}
	}
	return out
}

// balancedJSON returns the object or array literal at the start of s.
func balancedJSON(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	depth := 0
	inStr := false
	esc := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// salaryFromState searches decoded JSON for a salary-named field, descending
// at most maxStateDepth levels.
func salaryFromState(v any, depth int) (domain.SalaryFigure, bool) {
	if depth > maxStateDepth {
		return domain.SalaryFigure{}, false
	}
	switch t := v.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		for _, k := range keys {
			if isSalaryKey(k) {
				if f, ok := salaryFromField(t[k], depth); ok {
					return f, true
				}
			}
		}
		for _, k := range keys {
			if f, ok := salaryFromState(t[k], depth+1); ok {
				return f, true
			}
		}
	case []any:
		for _, e := range t {
			if f, ok := salaryFromState(e, depth+1); ok {
				return f, true
			}
		}
	}
	return domain.SalaryFigure{}, false
}

var (
	minKeys = []string{"minValue", "min", "minimum", "from", "low", "salaryMin", "min_salary"}
	maxKeys = []string{"maxValue", "max", "maximum", "to", "high", "salaryMax", "max_salary"}
)

func numberField(m map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := numberOf(m[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t > 0
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(t), "$"), ",", ""), 64)
		return f, err == nil && f > 0
	}
	return 0, false
}

// salaryFromField normalises one salary-named value: free text goes through
// the cascade, numbers are whole dollars, objects may carry min/max bounds.
func salaryFromField(v any, depth int) (domain.SalaryFigure, bool) {
	switch t := v.(type) {
	case string:
		if f, _ := parseSalary(t); f.Known() {
			return f, true
		}
		if n, ok := numberOf(t); ok && n >= 1000 {
			return singleFigure(domain.SalarySingle, int64(n)), true
		}
	case float64:
		if t >= 1000 {
			return singleFigure(domain.SalarySingle, int64(t)), true
		}
	case map[string]any:
		hourly := strings.EqualFold(stringOf(t["unitText"]), "HOUR")
		lo, okLo := numberField(t, minKeys)
		hi, okHi := numberField(t, maxKeys)
		switch {
		case okLo && okHi && lo <= hi:
			if hourly {
				f := rangeFigure(domain.SalaryHourly, int64(lo), int64(hi))
				f.Display = "$" + hourAmount(lo) + " - $" + hourAmount(hi)
				return f, true
			}
			return rangeFigure(domain.SalaryRange, int64(lo), int64(hi)), true
		case okLo != okHi:
			n := lo
			if okHi {
				n = hi
			}
			if hourly {
				f := singleFigure(domain.SalaryHourly, int64(n))
				f.Display = "$" + hourAmount(n)
				return f, true
			}
			if n >= 1000 {
				return singleFigure(domain.SalarySingle, int64(n)), true
			}
		}
		if n, ok := numberOf(t["value"]); ok && hourly {
			f := singleFigure(domain.SalaryHourly, int64(n))
			f.Display = "$" + hourAmount(n)
			return f, true
		}
		if inner, ok := t["value"]; ok {
			if f, ok := salaryFromField(inner, depth); ok {
				if hourly && f.Kind != domain.SalaryHourly {
					f.Kind = domain.SalaryHourly
				}
				return f, true
			}
		}
		return salaryFromState(t, depth+1)
	}
	return domain.SalaryFigure{}, false
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// jobPostings returns the schema.org JobPosting objects in a page's JSON-LD.
func jobPostings(doc *goquery.Document) []map[string]any {
	if doc == nil {
		return nil
	}
	var out []map[string]any
	var collect func(v any)
	collect = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, e := range t {
				collect(e)
			}
		case map[string]any:
			if isJobPosting(t["@type"]) {
				out = append(out, t)
			}
			if g, ok := t["@graph"]; ok {
				collect(g)
			}
		}
	}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v) == nil {
			collect(v)
		}
	})
	return out
}

func isJobPosting(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, e := range t {
			if stringOf(e) == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func salaryFromJSONLD(doc *goquery.Document) (domain.SalaryFigure, bool) {
	for _, jp := range jobPostings(doc) {
		for _, k := range []string{"baseSalary", "estimatedSalary"} {
			if v, ok := jp[k]; ok {
				if f, ok := salaryFromField(v, 0); ok {
					return f, true
				}
			}
		}
	}
	return domain.SalaryFigure{}, false
}

func salaryFromMeta(doc *goquery.Document) (domain.SalaryFigure, bool) {
	if doc == nil {
		return domain.SalaryFigure{}, false
	}
	var found domain.SalaryFigure
	doc.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		if f, _ := parseSalary(content); f.Known() {
			found = f
			return false
		}
		return true
	})
	return found, found.Known()
}

// salaryFromQuery reads salary-named query parameters, pairing min/max
// parameters into a range.
func salaryFromQuery(rawURL string) (domain.SalaryFigure, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.SalaryFigure{}, false
	}
	q := u.Query()
	bounds := map[string]any{}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !isSalaryKey(k) {
			continue
		}
		v := q.Get(k)
		lk := strings.ToLower(k)
		switch {
		case strings.Contains(lk, "min") || strings.HasSuffix(lk, "_from"):
			bounds["min"] = v
		case strings.Contains(lk, "max") || strings.HasSuffix(lk, "_to"):
			bounds["max"] = v
		default:
			if f, ok := salaryFromField(v, 0); ok {
				return f, true
			}
		}
	}
	if len(bounds) > 0 {
		return salaryFromField(bounds, 0)
	}
	return domain.SalaryFigure{}, false
}
