package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]`)
)

// CleanText collapses runs of whitespace (including newlines and tabs) into
// single spaces and trims the result. Applying it twice yields the same
// output as applying it once.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeWords lowercases a string, strips everything outside [a-z0-9 ],
// and returns the remaining words. Used for fuzzy title and organization
// comparison.
func NormalizeWords(s string) []string {
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// SourcePath reduces a URL to its path component for use as a natural-key
// candidate: scheme, host, query, and fragment are dropped, a leading slash
// is guaranteed, and a trailing slash is removed.
func SourcePath(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	var path string
	if err != nil {
		path = rawURL
	} else {
		path = u.EscapedPath()
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// trackingParams lists query parameters that vary per visitor and never
// affect page content.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
}

// CanonicalURL normalizes a URL for fetching and comparison: the host is
// lowercased, tracking query parameters and the fragment are removed, and a
// trailing slash on a non-root path is dropped.
func CanonicalURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.RawQuery != "" {
		values := u.Query()
		for param := range values {
			if trackingParams[param] {
				values.Del(param)
			}
		}
		u.RawQuery = values.Encode()
	}

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// ResolveLink resolves a possibly relative href against a base page URL.
// Empty hrefs and pure fragments resolve to an empty string.
func ResolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := baseURL.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// ContainsAny reports whether s contains any of the given substrings.
// Matching is case-sensitive; callers lowercase first.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
