// internal/extract/district.go
package extract

import (
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// District extracts district-wise breakdown rows. The header row is
// skipped; four-column rows map to district, post count, last date, and an
// optional link pulled from the fourth cell's first anchor.
func District(ct classify.ClassifiedTable) Fragment {
	frag := Fragment{}

	for i, row := range ct.Table.Rows {
		if i == 0 || len(row.Cells) < 4 {
			continue
		}

		district := row.Cells[0].Text
		if district == "" {
			continue
		}

		entry := types.DistrictRow{
			District: district,
			Posts:    row.Cells[1].Text,
			LastDate: row.Cells[2].Text,
		}

		for _, anchor := range row.Cells[3].Anchors {
			if !anchor.Unresolved && strings.HasPrefix(anchor.Href, "http") {
				entry.Link = anchor.Href
				break
			}
		}

		frag.Districts = append(frag.Districts, entry)
	}

	return frag
}
