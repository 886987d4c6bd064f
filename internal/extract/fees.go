// internal/extract/fees.go
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var (
	firstNumberRe = regexp.MustCompile(`\d[\d,]*`)
	// listFeeRe matches nested-list fee lines such as "For SC/ST: ₹250"
	// or "For General : Rs. 500".
	listFeeRe = regexp.MustCompile(`(?i)for\s+([^:]+):\s*(?:₹|rs\.?\s*)?\s*(\d[\d,]*)`)
	// paymentNoteRe marks rows that describe how to pay rather than a fee
	// amount.
	paymentNoteRe = regexp.MustCompile(`(?i)(payment mode|pay the exam|debit card|credit card|net banking|upi|e.?challan|offline mode|online mode)`)
)

// Fees extracts fee rows from a fees table. The header row is skipped;
// rows without a positive numeric amount (such as "Exempted") are dropped.
// Nested lists inside any cell are scanned for "For <category>: ₹<amount>"
// lines. Payment-mode text becomes FeeNote instead of a fee entry.
func Fees(ct classify.ClassifiedTable) Fragment {
	frag := Fragment{}

	for i, row := range ct.Table.Rows {
		// Nested lists can appear in any row, header included.
		for _, cell := range row.Cells {
			for _, item := range cell.ListItems {
				if entry, ok := parseListFee(item); ok {
					frag.Fees = append(frag.Fees, entry)
				}
			}
		}

		if i == 0 {
			continue
		}
		if len(row.Cells) < 2 {
			continue
		}

		label := row.Cells[0].Text
		value := row.Cells[1].Text

		if paymentNoteRe.MatchString(label) || paymentNoteRe.MatchString(value) {
			if frag.FeeNote == "" {
				frag.FeeNote = strings.TrimSpace(label + " " + value)
			}
			continue
		}

		if strings.EqualFold(strings.TrimSpace(label), "category") {
			continue
		}

		amount := firstAmount(value)
		if amount <= 0 {
			continue
		}

		frag.Fees = append(frag.Fees, types.FeeEntry{
			Category: label,
			Amount:   amount,
			Note:     amountNote(value),
		})
	}

	return frag
}

func parseListFee(item string) (types.FeeEntry, bool) {
	m := listFeeRe.FindStringSubmatch(item)
	if m == nil {
		return types.FeeEntry{}, false
	}
	amount := parseAmount(m[2])
	if amount <= 0 {
		return types.FeeEntry{}, false
	}
	return types.FeeEntry{
		Category: strings.TrimSpace(m[1]),
		Amount:   amount,
	}, true
}

// firstAmount parses the first numeric token out of a value cell.
func firstAmount(value string) int {
	token := firstNumberRe.FindString(value)
	if token == "" {
		return 0
	}
	return parseAmount(token)
}

func parseAmount(token string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// amountNote keeps the raw value text when it carries more than the bare
// number, so currency and qualifiers survive.
func amountNote(value string) string {
	trimmed := strings.TrimSpace(value)
	if firstNumberRe.FindString(trimmed) == trimmed {
		return ""
	}
	return trimmed
}
