// internal/assemble/normalizer.go
package assemble

import (
	"context"
	"regexp"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/extract"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Normalizer coerces a harvested document into the canonical record shape.
// Implementations must return every canonical field: missing data is
// present-but-empty, never omitted. A Normalizer error is fatal to the
// ingestion unit.
type Normalizer interface {
	Normalize(ctx context.Context, doc *harvest.RawDocument, hints extract.LinkHints) (*types.RecruitmentRecord, error)
}

var (
	orgSuffixRe = regexp.MustCompile(`(?i)^(.*?)\s+(recruitment|vacancy|bharti|notification|exam|admission|result|online form)\b`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// RuleBasedNormalizer is the deterministic offline normalization strategy.
// It derives the title and organization from the document itself and leaves
// everything else for the extractor fragments to fill.
type RuleBasedNormalizer struct{}

// NewRuleBasedNormalizer returns the offline strategy.
func NewRuleBasedNormalizer() *RuleBasedNormalizer {
	return &RuleBasedNormalizer{}
}

func (n *RuleBasedNormalizer) Normalize(ctx context.Context, doc *harvest.RawDocument, hints extract.LinkHints) (*types.RecruitmentRecord, error) {
	record := types.NewRecruitmentRecord()

	record.Title = pickTitle(doc)
	record.Organization = deriveOrganization(record.Title)
	record.SourceURL = doc.SourceURL

	if hints.Apply != "" {
		record.Links["Apply Online"] = hints.Apply
	}
	if hints.Notification != "" {
		record.Links["Official Notification"] = hints.Notification
	}
	if hints.ShortNotice != "" {
		record.Links["Short Notice"] = hints.ShortNotice
	}
	if hints.Website != "" {
		record.Links["Official Website"] = hints.Website
	}

	record.EnsureCollections()
	return record, nil
}

// pickTitle prefers the first h1 over the document title, which often
// carries site branding.
func pickTitle(doc *harvest.RawDocument) string {
	if hs := doc.Headings["h1"]; len(hs) > 0 && hs[0].Text != "" {
		return hs[0].Text
	}
	// Strip a " - Site Name" or " | Site Name" tail from the title tag.
	title := doc.Title
	for _, sep := range []string{" | ", " - ", " – "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return strings.TrimSpace(title)
}

// deriveOrganization takes the words before the first recruitment-style
// keyword as the issuing organization.
func deriveOrganization(title string) string {
	m := orgSuffixRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	org := strings.TrimSpace(m[1])
	org = strings.TrimSpace(yearRe.ReplaceAllString(org, ""))
	return org
}
