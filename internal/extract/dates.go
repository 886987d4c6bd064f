// internal/extract/dates.go
package extract

import (
	"regexp"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// dateLabelRe gates label cells: only rows whose label mentions a date
// milestone keyword are kept. Prose rows misclassified as tabular fail the
// length gate below.
var dateLabelRe = regexp.MustCompile(`(?i)\b(date|start|last|exam|result|admit|apply)`)

const maxDateCellLen = 100

// Dates extracts label/value pairs from a dates table. Anchors found in the
// value cell are forwarded as DateLinks keyed by the row label.
func Dates(ct classify.ClassifiedTable) Fragment {
	frag := Fragment{}

	for _, row := range ct.Table.Rows {
		if len(row.Cells) < 2 {
			continue
		}
		label := row.Cells[0].Text
		value := row.Cells[1].Text

		if label == "" || value == "" {
			continue
		}
		if len(label) >= maxDateCellLen || len(value) >= maxDateCellLen {
			continue
		}
		if !dateLabelRe.MatchString(label) {
			continue
		}

		frag.Dates = append(frag.Dates, types.DateEntry{Label: label, Value: value})

		for _, anchor := range row.Cells[1].Anchors {
			if anchor.Unresolved || !strings.HasPrefix(anchor.Href, "http") {
				continue
			}
			if frag.DateLinks == nil {
				frag.DateLinks = map[string]string{}
			}
			if _, exists := frag.DateLinks[label]; !exists {
				frag.DateLinks[label] = anchor.Href
			}
		}
	}

	return frag
}
