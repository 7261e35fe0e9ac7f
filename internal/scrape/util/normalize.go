package util

import "strings"

const (
	WorkModeRemote  = "Remote"
	WorkModeHybrid  = "Hybrid"
	WorkModeOnsite  = "Onsite"
	WorkModeUnknown = "Unknown"
)

// CleanText collapses all whitespace runs (including NBSP) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

var locationLabels = []string{"Location:", "Locations:", "LOCATION:", "LOCATIONS:", "Job Location:"}

// NormalizeLocation drops a leading label and duplicate comma-separated parts.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	for _, l := range locationLabels {
		loc = strings.TrimPrefix(loc, l)
	}
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}

	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(loc, ",") {
		p = CleanText(p)
		k := strings.ToLower(p)
		if p == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// InferWorkModeFromText looks for remote/hybrid/onsite wording, in that order.
func InferWorkModeFromText(parts ...string) string {
	blob := strings.ToLower(strings.Join(parts, " "))

	switch {
	case strings.Contains(blob, "remote"):
		return WorkModeRemote
	case strings.Contains(blob, "hybrid"):
		return WorkModeHybrid
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return WorkModeOnsite
	default:
		return WorkModeUnknown
	}
}
