// internal/extract/links.go
package extract

import (
	"sort"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/harvest"
)

// RankedLink is one anchor that matched a priority pattern.
type RankedLink struct {
	Label string
	URL   string
	Score int
}

// LinkHints carries the top-ranked candidate per hint slot. The normalizer
// uses them to repair placeholder link text.
type LinkHints struct {
	Apply        string
	Notification string
	ShortNotice  string
	Website      string
}

// Any returns the first non-empty hint.
func (h LinkHints) Any() string {
	for _, hint := range []string{h.Apply, h.Notification, h.ShortNotice, h.Website} {
		if hint != "" {
			return hint
		}
	}
	return ""
}

// linkPattern scores anchor text. Patterns are tried in priority order and
// the first match wins; they are never summed.
type linkPattern struct {
	score   int
	phrases []string
	hint    func(*LinkHints, string)
}

var linkPatterns = []linkPattern{
	{10, []string{"apply online", "online apply", "apply now", "registration"},
		func(h *LinkHints, u string) { setHint(&h.Apply, u) }},
	{9, []string{"official notification", "download notification", "notification"},
		func(h *LinkHints, u string) { setHint(&h.Notification, u) }},
	{8, []string{"short notice"},
		func(h *LinkHints, u string) { setHint(&h.ShortNotice, u) }},
	{7, []string{"official website"},
		func(h *LinkHints, u string) { setHint(&h.Website, u) }},
	{6, []string{"syllabus"}, nil},
	{5, []string{"admit card"}, nil},
	{3, []string{"click here"}, nil},
}

func setHint(dst *string, url string) {
	if *dst == "" {
		*dst = url
	}
}

// noisePhrases disqualify anchors regardless of pattern match.
var noisePhrases = []string{
	"download sarkari",
	"app now",
	"install app",
	"google play",
}

const (
	minLinkTextLen = 4
	maxLinkTextLen = 99
)

// RankLinks filters and scores every harvested anchor. Anchors are kept
// when their text is 4..99 characters, free of noise phrases, not a
// fragment-only placeholder or app-store target, and not already present
// by resolved target. Output is ordered by descending score; unmatched
// anchors are dropped.
func RankLinks(anchors []harvest.Anchor) ([]RankedLink, LinkHints) {
	var (
		ranked []RankedLink
		hints  LinkHints
		seen   = map[string]bool{}
	)

	for _, anchor := range anchors {
		if !keepAnchor(anchor) {
			continue
		}
		if seen[anchor.Href] {
			continue
		}

		score, apply := matchPattern(strings.ToLower(anchor.Text))
		if score == 0 {
			continue
		}

		seen[anchor.Href] = true
		ranked = append(ranked, RankedLink{
			Label: anchor.Text,
			URL:   anchor.Href,
			Score: score,
		})
		if apply != nil {
			apply(&hints, anchor.Href)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, hints
}

func keepAnchor(anchor harvest.Anchor) bool {
	text := anchor.Text
	if len(text) < minLinkTextLen || len(text) > maxLinkTextLen {
		return false
	}
	if anchor.Unresolved || !strings.HasPrefix(anchor.Href, "http") {
		return false
	}

	lower := strings.ToLower(text)
	for _, noise := range noisePhrases {
		if strings.Contains(lower, noise) {
			return false
		}
	}

	href := strings.ToLower(anchor.Href)
	if strings.Contains(href, "play.google.") || strings.Contains(href, "apps.apple.") {
		return false
	}
	if anchor.FragmentOnly {
		return false
	}
	return true
}

func matchPattern(lowerText string) (int, func(*LinkHints, string)) {
	for _, pattern := range linkPatterns {
		for _, phrase := range pattern.phrases {
			if strings.Contains(lowerText, phrase) {
				return pattern.score, pattern.hint
			}
		}
	}
	return 0, nil
}
