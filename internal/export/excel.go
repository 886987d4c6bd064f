// internal/export/excel.go
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var logger = utils.NewComponentLogger("export")

// maxCellLength is the Excel per-cell character limit.
const maxCellLength = 32767

var headers = []string{
	"Title", "Organization", "Source Path", "Source URL",
	"Application Start", "Application Last", "Exam Date", "Result Date",
	"Total Posts", "Fees", "Age Limit", "Apply Link",
	"Created At", "Updated At",
}

// ExcelWriter flattens stored postings onto one worksheet, one posting per
// row.
type ExcelWriter struct {
	file      *excelize.File
	sheetName string
	row       int
}

// NewExcelWriter prepares a workbook with the header row in place.
func NewExcelWriter(sheetName string) (*ExcelWriter, error) {
	if sheetName == "" {
		sheetName = "Postings"
	}

	file := excelize.NewFile()
	if defaultSheet := file.GetSheetName(0); defaultSheet != sheetName {
		if err := file.SetSheetName(defaultSheet, sheetName); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	w := &ExcelWriter{file: file, sheetName: sheetName, row: 1}
	if err := w.writeRow(headerCells()); err != nil {
		return nil, err
	}
	return w, nil
}

func headerCells() []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

// WritePostings appends one row per posting.
func (w *ExcelWriter) WritePostings(postings []types.StoredPosting) error {
	for i := range postings {
		if err := w.writeRow(flatten(&postings[i])); err != nil {
			return err
		}
	}
	return nil
}

// SaveAs finishes the workbook.
func (w *ExcelWriter) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	logger.Infof("exported %d postings to %s", w.row-1, path)
	return w.file.Close()
}

func (w *ExcelWriter) writeRow(cells []interface{}) error {
	for col, value := range cells {
		cellName, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if s, ok := value.(string); ok && len(s) > maxCellLength {
			value = s[:maxCellLength]
		}
		if err := w.file.SetCellValue(w.sheetName, cellName, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cellName, err)
		}
	}
	w.row++
	return nil
}

func flatten(p *types.StoredPosting) []interface{} {
	r := &p.Record
	return []interface{}{
		r.Title,
		r.Organization,
		r.SourcePath,
		r.SourceURL,
		r.Dates.ApplicationStart,
		r.Dates.ApplicationLast,
		r.Dates.Exam,
		r.Dates.Result,
		r.Vacancy.TotalPosts,
		flattenFees(r.Fees),
		flattenAge(r.Age),
		applyLink(r.Links),
		p.CreatedAt.Format("2006-01-02 15:04:05"),
		p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// applyLink picks the application URL out of the link map. Keys are the
// anchor label texts ("Apply Online", "Apply Online Here"), so the lookup
// matches on the label, lowest label first for a stable choice.
func applyLink(links map[string]string) string {
	labels := make([]string, 0, len(links))
	for label := range links {
		if strings.Contains(strings.ToLower(label), "apply") {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return ""
	}
	sort.Strings(labels)
	return links[labels[0]]
}

func flattenFees(fees []types.FeeEntry) string {
	parts := make([]string, 0, len(fees))
	for _, fee := range fees {
		parts = append(parts, fmt.Sprintf("%s: %d", fee.Category, fee.Amount))
	}
	return strings.Join(parts, "; ")
}

func flattenAge(age types.AgeLimit) string {
	if age.IsEmpty() {
		return ""
	}
	var parts []string
	if age.Min != "" {
		parts = append(parts, "min "+age.Min)
	}
	if age.Max != "" {
		parts = append(parts, "max "+age.Max)
	}
	if age.AsOn != "" {
		parts = append(parts, "as on "+age.AsOn)
	}
	return strings.Join(parts, ", ")
}
