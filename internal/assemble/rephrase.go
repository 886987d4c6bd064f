// internal/assemble/rephrase.go
package assemble

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rephraser rewrites a normalized title deterministically so stored
// postings do not mirror source headlines verbatim: known abbreviations are
// toggled, noise phrases removed, repeated words collapsed, and the year
// stylized.
type Rephraser struct {
	titleCaser cases.Caser
}

// abbreviations toggle direction: a short form found in the title expands,
// a long form contracts.
var abbreviations = map[string]string{
	"govt":          "Government",
	"recruitment":   "Vacancy",
	"notification":  "Notice",
	"application":   "Form",
	"examination":   "Exam",
	"advertisement": "Advt",
}

// noisePhrasesRe strips portal-speak that carries no information.
var noisePhrasesRe = regexp.MustCompile(`(?i)\b(sarkari result|sarkari naukri|latest job|apply online form|check now|direct link)\b`)

var (
	styleYearRe  = regexp.MustCompile(`\b20(\d{2})\b`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// NewRephraser creates a rephraser with English title casing.
func NewRephraser() *Rephraser {
	return &Rephraser{titleCaser: cases.Title(language.English)}
}

// Rephrase rewrites a title. Empty input stays empty; the rewrite is a
// pure function of its input.
func (r *Rephraser) Rephrase(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	out := noisePhrasesRe.ReplaceAllString(title, " ")
	out = r.toggleAbbreviations(out)
	out = collapseRepeats(out)
	out = styleYearRe.ReplaceAllString(out, "2K$1")
	out = multiSpaceRe.ReplaceAllString(out, " ")

	return strings.TrimSpace(out)
}

func (r *Rephraser) toggleAbbreviations(title string) string {
	words := strings.Fields(title)
	for i, word := range words {
		key := strings.ToLower(strings.Trim(word, ".,:;()"))
		if replacement, ok := abbreviations[key]; ok {
			words[i] = replacement
			continue
		}
		// Long form back to short form.
		for short, long := range abbreviations {
			if key == strings.ToLower(long) && short != key {
				words[i] = r.titleCaser.String(short)
				break
			}
		}
	}
	return strings.Join(words, " ")
}

// collapseRepeats drops immediately repeated words, case-insensitive.
func collapseRepeats(title string) string {
	words := strings.Fields(title)
	out := words[:0]
	prev := ""
	for _, word := range words {
		if strings.EqualFold(word, prev) {
			continue
		}
		out = append(out, word)
		prev = word
	}
	return strings.Join(out, " ")
}
