package harvest

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>  SSC CGL   Recruitment 2025 </title>
<meta name="description" content="Staff Selection Commission CGL notice">
<meta name="keywords" content="ssc, cgl , recruitment">
</head>
<body>
<h1>SSC CGL Recruitment 2025</h1>
<h2>Important Dates</h2>
<p>Online applications are invited for Combined Graduate Level posts.</p>
<table>
<tr><td>Application Start</td><td>12 Jan 2025</td></tr>
<tr><td>Last Date</td><td><a href="/apply/cgl">10 Feb 2025</a></td></tr>
</table>
<ul>
<li>Minimum Age: 18 Years</li>
<li><a href="https://ssc.nic.in/notice.pdf">Download Notification</a></li>
</ul>
<a href="/jobs/ssc-cgl">Apply Online</a>
<a href="https://ssc.nic.in">Official Website</a>
<img src="/images/logo.png" alt="SSC Logo">
<div>Exam date will be announced on the official website soon enough.</div>
</body>
</html>`

func TestParseExtractsSections(t *testing.T) {
	doc := Parse(samplePage, "https://example.gov.in/jobs/ssc-cgl")

	if doc.Title != "SSC CGL Recruitment 2025" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.MetaDescription != "Staff Selection Commission CGL notice" {
		t.Errorf("meta description = %q", doc.MetaDescription)
	}
	if len(doc.MetaKeywords) != 3 || doc.MetaKeywords[1] != "cgl" {
		t.Errorf("meta keywords = %v", doc.MetaKeywords)
	}

	if got := len(doc.Headings["h1"]); got != 1 {
		t.Errorf("h1 count = %d", got)
	}
	if got := len(doc.Headings["h2"]); got != 1 {
		t.Errorf("h2 count = %d", got)
	}

	if len(doc.Tables) != 1 {
		t.Fatalf("table count = %d", len(doc.Tables))
	}
	table := doc.Tables[0]
	if len(table.Rows) != 2 {
		t.Fatalf("row count = %d", len(table.Rows))
	}
	if table.Rows[0].Cells[0].Text != "Application Start" {
		t.Errorf("first cell = %q", table.Rows[0].Cells[0].Text)
	}
	if len(table.Rows[1].Cells[1].Anchors) != 1 {
		t.Fatalf("value-cell anchor missing")
	}
	if got := table.Rows[1].Cells[1].Anchors[0].Href; got != "https://example.gov.in/apply/cgl" {
		t.Errorf("cell anchor not resolved: %q", got)
	}

	if len(doc.Lists) != 1 || len(doc.Lists[0].Items) != 2 {
		t.Fatalf("lists = %+v", doc.Lists)
	}

	if len(doc.Paragraphs) != 1 {
		t.Errorf("paragraph count = %d", len(doc.Paragraphs))
	}
	if len(doc.TextBlocks) == 0 {
		t.Error("expected at least one text block")
	}
}

func TestParseResolvesRelativeURLs(t *testing.T) {
	doc := Parse(samplePage, "https://example.gov.in/jobs/ssc-cgl")

	var applyHref string
	for _, a := range doc.Anchors {
		if a.Text == "Apply Online" {
			applyHref = a.Href
		}
		if a.Unresolved {
			t.Errorf("anchor %q unexpectedly unresolved", a.Href)
		}
		if !strings.HasPrefix(a.Href, "http") {
			t.Errorf("anchor %q not absolute", a.Href)
		}
	}
	if applyHref != "https://example.gov.in/jobs/ssc-cgl" {
		t.Errorf("apply href = %q", applyHref)
	}

	if len(doc.Images) != 1 {
		t.Fatalf("image count = %d", len(doc.Images))
	}
	if doc.Images[0].Src != "https://example.gov.in/images/logo.png" {
		t.Errorf("image src = %q", doc.Images[0].Src)
	}
}

func TestParseMalformedMarkupNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"<table><tr><td>orphan",
		"<html><body><a>no href</a><table></table>",
		"not html at all %%% <<<>>>",
		"<ul><li><ul><li>nested</li></ul></li></ul>",
	}

	for _, input := range inputs {
		doc := Parse(input, "https://example.com/x")

		if doc.Anchors == nil || doc.Tables == nil || doc.Lists == nil ||
			doc.Paragraphs == nil || doc.Images == nil || doc.TextBlocks == nil ||
			doc.Headings == nil || doc.MetaKeywords == nil {
			t.Errorf("nil collection for input %q", input)
		}
	}
}

func TestParseInvalidSourceURLMarksUnresolved(t *testing.T) {
	doc := Parse(`<a href="/relative">Link here</a>`, "://bad url")

	if len(doc.Anchors) != 1 {
		t.Fatalf("anchor count = %d", len(doc.Anchors))
	}
	if !doc.Anchors[0].Unresolved {
		t.Error("expected anchor flagged unresolved")
	}
	if doc.Anchors[0].Href != "/relative" {
		t.Errorf("raw href not retained: %q", doc.Anchors[0].Href)
	}
}

func TestParseFlagsFragmentOnlyAnchors(t *testing.T) {
	doc := Parse(`<a href="#">Placeholder link</a><a href="#top">Back to top</a><a href="/page#sec">Section two</a>`,
		"https://example.gov.in/jobs/clerk-2025")

	if len(doc.Anchors) != 3 {
		t.Fatalf("anchor count = %d", len(doc.Anchors))
	}
	for i, want := range []bool{true, true, false} {
		if doc.Anchors[i].FragmentOnly != want {
			t.Errorf("anchor %d fragment_only = %v, want %v", i, doc.Anchors[i].FragmentOnly, want)
		}
	}
	// Resolution still runs; the raw placeholder collapses onto the page.
	if doc.Anchors[0].Href != "https://example.gov.in/jobs/clerk-2025" {
		t.Errorf("placeholder href = %q", doc.Anchors[0].Href)
	}
}

func TestTableTextHelpers(t *testing.T) {
	table := Table{Rows: []Row{
		{Cells: []Cell{{Text: "Post"}, {Text: "Count"}}},
		{Cells: []Cell{{Text: "Clerk"}, {Text: "120"}}},
	}}

	if got := table.Rows[1].Text(); got != "Clerk 120" {
		t.Errorf("row text = %q", got)
	}
	if all := table.AllText(); !strings.Contains(all, "Post Count") || !strings.Contains(all, "Clerk 120") {
		t.Errorf("all text = %q", all)
	}
}
