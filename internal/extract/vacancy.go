// internal/extract/vacancy.go
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var (
	firstIntRe = regexp.MustCompile(`\d+`)
	// headingTotalRe mines totals from heading text such as
	// "Total Posts: 500" or "Total Vacancy - 1200".
	headingTotalRe = regexp.MustCompile(`(?i)total\s+(?:posts?|vacanc(?:y|ies))\s*[:\-]?\s*(\d[\d,]*)`)
)

// Vacancy extracts positions from a vacancy table. The header row is
// skipped; two-column rows are name/count, three-column rows are
// name/area/count. Rows echoing the header text are rejected. The running
// total sums the first integer token of each count cell.
func Vacancy(ct classify.ClassifiedTable) Fragment {
	frag := Fragment{}

	var headerName string
	if len(ct.Table.Rows) > 0 && len(ct.Table.Rows[0].Cells) > 0 {
		headerName = strings.ToLower(ct.Table.Rows[0].Cells[0].Text)
	}

	for i, row := range ct.Table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}

		name := row.Cells[0].Text
		if name == "" || isHeaderEcho(name, headerName) {
			continue
		}

		pos := types.Position{Name: name}
		switch {
		case len(row.Cells) >= 3:
			pos.Area = row.Cells[1].Text
			pos.Count = row.Cells[2].Text
		default:
			pos.Count = row.Cells[1].Text
		}

		frag.Positions = append(frag.Positions, pos)
		if n := firstInt(pos.Count); n > 0 {
			frag.VacancyTotal += n
		}
	}

	return frag
}

// isHeaderEcho rejects body rows that repeat the column headers.
func isHeaderEcho(name, headerName string) bool {
	l := strings.ToLower(name)
	if headerName != "" && l == headerName {
		return true
	}
	return strings.Contains(l, "post name")
}

func firstInt(s string) int {
	token := firstIntRe.FindString(strings.ReplaceAll(s, ",", ""))
	if token == "" {
		return 0
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return n
}

// HeadingTotal mines the largest "total post(s)/vacancy: N" figure from
// heading text. Either the headings or the table rows may under-report;
// the assembler keeps whichever total is larger.
func HeadingTotal(headings map[string][]harvest.Heading) int {
	best := 0
	for _, group := range headings {
		for _, h := range group {
			for _, m := range headingTotalRe.FindAllStringSubmatch(h.Text, -1) {
				if n := parseAmount(m[1]); n > best {
					best = n
				}
			}
		}
	}
	return best
}
