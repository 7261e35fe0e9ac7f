package extract

import "regexp"

// rule is one entry of an ordered extraction cascade. handle turns a submatch
// into a value and may reject it, in which case evaluation moves on to the next
// occurrence and then to the next rule.
type rule[T any] struct {
	name   string
	re     *regexp.Regexp
	handle func(m []string) (T, bool)
}

// firstMatch walks rules in order and returns the first accepted value together
// with the name of the rule that produced it.
func firstMatch[T any](rules []rule[T], s string) (T, string, bool) {
	var zero T
	if s == "" {
		return zero, "", false
	}
	for _, r := range rules {
		for _, m := range r.re.FindAllStringSubmatch(s, -1) {
			if v, ok := r.handle(m); ok {
				return v, r.name, true
			}
		}
	}
	return zero, "", false
}
