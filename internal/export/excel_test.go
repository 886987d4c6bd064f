package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

func samplePosting(title, path string) types.StoredPosting {
	record := types.NewRecruitmentRecord()
	record.Title = title
	record.Organization = "Staff Selection Board"
	record.SourcePath = path
	record.SourceURL = "https://example.gov.in" + path
	record.Dates.ApplicationStart = "12 Jan 2025"
	record.Dates.ApplicationLast = "10 Feb 2025"
	record.Vacancy.TotalPosts = 500
	record.Fees = []types.FeeEntry{
		{Category: "General", Amount: 500},
		{Category: "SC/ST", Amount: 250},
	}
	record.Age.Min = "18 Years"
	record.Age.Max = "32 Years"
	record.Links["Apply Online Here"] = "https://example.gov.in/apply"
	record.Links["Official Website"] = "https://example.gov.in"

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return types.StoredPosting{ID: "x1", Record: *record, CreatedAt: now, UpdatedAt: now}
}

func TestExcelExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postings.xlsx")

	w, err := NewExcelWriter("")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	postings := []types.StoredPosting{
		samplePosting("Board Clerk Recruitment 2025", "/jobs/clerk-2025"),
		samplePosting("Police Constable Vacancy 2025", "/jobs/constable-2025"),
	}
	if err := w.WritePostings(postings); err != nil {
		t.Fatalf("write postings: %v", err)
	}
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows("Postings")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Title" || rows[0][2] != "Source Path" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "Board Clerk Recruitment 2025" {
		t.Errorf("first title = %q", rows[1][0])
	}
	if rows[1][9] != "General: 500; SC/ST: 250" {
		t.Errorf("fees cell = %q", rows[1][9])
	}
	if rows[1][11] != "https://example.gov.in/apply" {
		t.Errorf("apply link cell = %q", rows[1][11])
	}
	if rows[2][2] != "/jobs/constable-2025" {
		t.Errorf("second path = %q", rows[2][2])
	}
}

func TestApplyLinkMatchesByLabel(t *testing.T) {
	tests := []struct {
		name  string
		links map[string]string
		want  string
	}{
		{
			name:  "plain label",
			links: map[string]string{"Apply Online": "https://example.gov.in/apply"},
			want:  "https://example.gov.in/apply",
		},
		{
			name:  "longer label",
			links: map[string]string{"Apply Online Here": "https://example.gov.in/apply"},
			want:  "https://example.gov.in/apply",
		},
		{
			name: "shortest label wins",
			links: map[string]string{
				"Apply Online Here": "https://example.gov.in/b",
				"Apply Online":      "https://example.gov.in/a",
			},
			want: "https://example.gov.in/a",
		},
		{
			name:  "no apply label",
			links: map[string]string{"Official Website": "https://example.gov.in"},
			want:  "",
		},
		{
			name:  "empty map",
			links: map[string]string{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyLink(tt.links); got != tt.want {
				t.Errorf("applyLink = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcelExportTruncatesOversizeCells(t *testing.T) {
	posting := samplePosting("Oversize", "/jobs/oversize")
	long := make([]byte, maxCellLength+100)
	for i := range long {
		long[i] = 'a'
	}
	posting.Record.Organization = string(long)

	path := filepath.Join(t.TempDir(), "oversize.xlsx")
	w, err := NewExcelWriter("Postings")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WritePostings([]types.StoredPosting{posting}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer file.Close()

	org, err := file.GetCellValue("Postings", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if len(org) != maxCellLength {
		t.Errorf("cell length = %d, want %d", len(org), maxCellLength)
	}
}
