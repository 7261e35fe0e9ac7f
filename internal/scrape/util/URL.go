package util

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL lower-cases scheme and host, drops the fragment and
// tracking parameters, and orders what is left.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "gh_src" || lk == "lever-source" {
			q.Del(k)
		}
	}

	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	for k := range q {
		sort.Strings(q[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SourceID is the tracker's dedupe key for a posting URL.
func SourceID(raw string) string {
	c := CanonicalizeURL(raw)
	if c == "" {
		return ""
	}
	sum := sha1.Sum([]byte(c))
	return hex.EncodeToString(sum[:])
}

var junkURLParts = []string{
	"unsubscribe",
	"preferences",
	"view-in-browser",
	"viewaswebpage",
	"pixel",
	"beacon",
	"/alerts",
	"/settings",
	"/help",
	"/legal",
	"/privacy",
	"/terms",
}

// IsJunkURL flags links that can never be a posting (mail footers, settings).
func IsJunkURL(raw string) bool {
	lu := strings.ToLower(raw)
	for _, j := range junkURLParts {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}
