package classify

import (
	"testing"

	"github.com/jobsaddah/jobharvest/internal/harvest"
)

func makeTable(html string, rows [][]string) harvest.Table {
	table := harvest.Table{HTML: html}
	for _, r := range rows {
		row := harvest.Row{}
		for _, c := range r {
			row.Cells = append(row.Cells, harvest.Cell{Tag: "td", Text: c})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name     string
		table    harvest.Table
		expected Category
	}{
		{
			name: "dates table via markup signal",
			table: makeTable(
				`<tr><td>Important Dates</td></tr><tr><td>Application Start</td><td>12 Jan 2025</td></tr>`,
				[][]string{
					{"Application Start", "12 Jan 2025"},
					{"Application Last Date", "10 Feb 2025"},
				},
			),
			expected: CategoryDates,
		},
		{
			name: "fee table via header and currency",
			table: makeTable(
				`<tr><td>Category</td><td>Fee</td></tr>`,
				[][]string{
					{"Category", "Fee"},
					{"General", "₹500"},
					{"SC/ST", "Exempted"},
				},
			),
			expected: CategoryFees,
		},
		{
			name: "age table",
			table: makeTable(
				`<tr><td>Age Limit Details</td></tr>`,
				[][]string{
					{"Minimum Age", "18 Years"},
					{"Maximum Age", "32 Years"},
				},
			),
			expected: CategoryAge,
		},
		{
			name: "vacancy table",
			table: makeTable(
				`<tr><td>Post Name</td><td>Total Post</td></tr>`,
				[][]string{
					{"Post Name", "Total Post"},
					{"Lower Division Clerk", "320"},
				},
			),
			expected: CategoryVacancy,
		},
		{
			name: "eligibility table",
			table: makeTable(
				`<tr><td>Eligibility Criteria</td></tr>`,
				[][]string{
					{"Post", "Education Qualification"},
					{"Clerk", "Bachelor degree in any stream from a recognized university"},
				},
			),
			expected: CategoryEligibility,
		},
		{
			name: "district table",
			table: makeTable(
				`<tr><td>District Wise Vacancy</td></tr>`,
				[][]string{
					{"District", "Posts", "Last Date", "Link"},
					{"Patna", "45", "10 Feb 2025", ""},
				},
			),
			expected: CategoryDistrict,
		},
		{
			name: "links table",
			table: makeTable(
				`<tr><td>Some Useful Link</td></tr>`,
				[][]string{
					{"Useful Link", "Click Here"},
				},
			),
			expected: CategoryLinks,
		},
		{
			name: "no recognized keywords stays unknown",
			table: makeTable(
				`<tr><td>Lorem</td></tr>`,
				[][]string{
					{"Lorem", "Ipsum"},
					{"Dolor", "Sit"},
				},
			),
			expected: CategoryUnknown,
		},
	}

	classifier := New(nil, 0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.table)
			if result.Category != tt.expected {
				t.Errorf("category = %q (score %d), want %q", result.Category, result.Score, tt.expected)
			}
			if tt.expected == CategoryUnknown && result.Score != 0 {
				t.Errorf("unknown table should carry score 0, got %d", result.Score)
			}
			if tt.expected != CategoryUnknown && result.Score < classifier.Threshold() {
				t.Errorf("accepted category below threshold: score %d", result.Score)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := makeTable(
		`<tr><td>Important Dates and Application Fee</td></tr>`,
		[][]string{
			{"Application Last Date", "10 Feb 2025"},
			{"General Fee", "₹500"},
		},
	)

	classifier := New(nil, 0)
	first := classifier.Classify(table)
	for i := 0; i < 50; i++ {
		again := classifier.Classify(table)
		if again.Category != first.Category || again.Score != first.Score {
			t.Fatalf("run %d: got %q/%d, first was %q/%d",
				i, again.Category, again.Score, first.Category, first.Score)
		}
	}
}

func TestClassifyBelowThresholdIsUnknown(t *testing.T) {
	// A single weight-1 signal: aggregate text mentions "last date" only.
	table := makeTable(
		`<tr><td>misc</td></tr>`,
		[][]string{
			{"note", "misc"},
			{"reminder", "submit before the last closing day"},
		},
	)

	// Only the weight-1 aggregate signal can fire.
	table.Rows[1].Cells[1].Text = "submit before the last date"

	result := New(nil, 0).Classify(table)
	if result.Category != CategoryUnknown {
		t.Errorf("score-1 table should stay unknown, got %q score %d", result.Category, result.Score)
	}
}

func TestClassifyCustomWeights(t *testing.T) {
	weights := Weights{
		CategoryDates: {
			{Source: SourceAllRows, Any: []string{"zzz-custom"}, Weight: 5},
		},
	}
	table := makeTable("", [][]string{{"zzz-custom", "x"}})

	result := New(weights, 0).Classify(table)
	if result.Category != CategoryDates || result.Score != 5 {
		t.Errorf("got %q/%d, want dates/5", result.Category, result.Score)
	}
}

func TestClassifyAllPreservesOrder(t *testing.T) {
	tables := []harvest.Table{
		makeTable(`<tr><td>Important Dates</td></tr>`, [][]string{{"Exam Date", "Soon"}}),
		makeTable("", [][]string{{"Lorem", "Ipsum"}}),
	}

	results := New(nil, 0).ClassifyAll(tables)
	if len(results) != 2 {
		t.Fatalf("result count = %d", len(results))
	}
	if results[0].Category != CategoryDates {
		t.Errorf("first = %q", results[0].Category)
	}
	if results[1].Category != CategoryUnknown {
		t.Errorf("second = %q", results[1].Category)
	}
}
