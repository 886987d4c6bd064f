// internal/extract/eligibility.go
package extract

import (
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// minEligibilityLen rejects short cells; real eligibility text is prose.
const minEligibilityLen = 30

// Eligibility extracts qualification text from an eligibility table and
// folds it into the matching vacancy position when the row's post name
// shares its first two words with that position's name. Unmatched rows
// become standalone eligibility fragments or eligibility-only positions.
func Eligibility(ct classify.ClassifiedTable, positions []types.Position) ([]types.Position, []string) {
	var standalone []string

	for i, row := range ct.Table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}

		name := row.Cells[0].Text
		value := row.Cells[1].Text
		if len(value) <= minEligibilityLen {
			continue
		}

		if idx := matchPosition(positions, name); idx >= 0 {
			if positions[idx].Qualification == "" {
				positions[idx].Qualification = value
			}
			continue
		}

		if name != "" {
			positions = append(positions, types.Position{
				Name:          name,
				Qualification: value,
			})
		} else {
			standalone = append(standalone, value)
		}
	}

	return positions, standalone
}

// matchPosition finds a position whose name shares its first two words
// with name.
func matchPosition(positions []types.Position, name string) int {
	key := firstTwoWords(name)
	if key == "" {
		return -1
	}
	for i, pos := range positions {
		if firstTwoWords(pos.Name) == key {
			return i
		}
	}
	return -1
}

func firstTwoWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return words[0]
	}
	return words[0] + " " + words[1]
}
