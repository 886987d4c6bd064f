// internal/pipeline/pagehash.go
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/harvest"
)

// noiseRe strips volatile fragments (view counters, share prompts,
// timestamps) so cosmetic refreshes hash identically.
var noiseRe = regexp.MustCompile(`(?i)(\d+\s*views?|share\s+this|posted\s+on[^.]*|updated\s+on[^.]*|\d{1,2}:\d{2}\s*(am|pm)?)`)

// PageHash fingerprints the content-bearing sections of a document: table
// rows, paragraphs, and list items, noise-reduced and whitespace-folded.
// An unchanged hash on refresh means the stored record is still current.
func PageHash(doc *harvest.RawDocument) string {
	var sb strings.Builder

	for _, table := range doc.Tables {
		for _, row := range table.Rows {
			sb.WriteString(row.Text())
			sb.WriteString("\n")
		}
	}
	for _, p := range doc.Paragraphs {
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	for _, list := range doc.Lists {
		for _, item := range list.Items {
			sb.WriteString(item.Text)
			sb.WriteString("\n")
		}
	}

	content := strings.ToLower(sb.String())
	content = noiseRe.ReplaceAllString(content, "")
	content = strings.Join(strings.Fields(content), " ")

	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
