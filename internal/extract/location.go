package extract

import (
	"regexp"

	"tailor-engine/internal/scrape/util"
)

var (
	reLocationWord = regexp.MustCompile(`(?i)\b(?:anywhere|worldwide|global|usa|u\.s\.?|us|united states|uk|united kingdom|canada|europe|emea|apac|latam|americas|north america|germany|france|india|ireland|netherlands|australia|singapore|japan|brazil|mexico|spain|poland|new york|nyc|san francisco|sf bay area|bay area|london|berlin|toronto|vancouver|seattle|austin|boston|chicago|los angeles|denver|dublin|amsterdam|paris|bangalore|bengaluru|tel aviv|multiple locations)\b`)
	reCityRegion   = regexp.MustCompile(`^[A-Z][A-Za-z .'-]+,\s*[A-Z][A-Za-z .'-]+$`)
)

// looksLikeLocation decides whether a title segment such as "Remote" or
// "Austin, TX" names a place. City-named employers are misread; there is no
// signal in a bare segment to tell them apart.
func looksLikeLocation(seg string) bool {
	seg = util.NormalizeLocation(seg)
	if seg == "" || reCorpSuffix.MatchString(seg) || hasRoleNoun(seg) {
		return false
	}
	if util.InferWorkModeFromText(seg, "", "") != util.WorkModeUnknown {
		return true
	}
	return reLocationWord.MatchString(seg) || reCityRegion.MatchString(seg)
}
