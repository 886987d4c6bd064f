// internal/harvest/document.go
package harvest

import "time"

// RawDocument is the structure-preserving snapshot of one fetched page.
// It carries no domain interpretation; classification happens downstream.
type RawDocument struct {
	SourceURL string    `json:"source_url"`
	FetchedAt time.Time `json:"fetched_at"`

	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	MetaKeywords    []string `json:"meta_keywords"`

	// Headings is keyed by level tag ("h1".."h6").
	Headings map[string][]Heading `json:"headings"`

	Anchors    []Anchor    `json:"anchors"`
	Images     []Image     `json:"images"`
	Tables     []Table     `json:"tables"`
	Lists      []List      `json:"lists"`
	Paragraphs []string    `json:"paragraphs"`
	TextBlocks []TextBlock `json:"text_blocks"`
}

// Heading is one hN element with its position in document order.
type Heading struct {
	Text  string `json:"text"`
	HTML  string `json:"html"`
	Index int    `json:"index"`
}

// Anchor is an <a> element. Href is resolved against the source URL; when
// resolution fails the raw attribute value is kept and Unresolved is set.
// FragmentOnly marks an anchor whose raw attribute was just a fragment
// ("#", "#apply"); resolution collapses those onto the page URL, so the
// flag is the only record of the placeholder.
type Anchor struct {
	Text         string `json:"text"`
	Href         string `json:"href"`
	Unresolved   bool   `json:"unresolved,omitempty"`
	FragmentOnly bool   `json:"fragment_only,omitempty"`
	Index        int    `json:"index"`
}

// Image is an <img> element with its resolved source.
type Image struct {
	Src        string `json:"src"`
	Alt        string `json:"alt"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

// Table is an ordered grid of cells plus the raw inner markup used by the
// classifier's markup-level signals.
type Table struct {
	HTML  string `json:"html"`
	Rows  []Row  `json:"rows"`
	Index int    `json:"index"`
}

// Row is one table row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Cell is one td/th with its nested anchors and list items.
type Cell struct {
	Tag       string   `json:"tag"`
	Text      string   `json:"text"`
	HTML      string   `json:"html"`
	ColSpan   int      `json:"colspan"`
	RowSpan   int      `json:"rowspan"`
	Anchors   []Anchor `json:"anchors,omitempty"`
	ListItems []string `json:"list_items,omitempty"`
}

// List is a ul/ol outside of tables.
type List struct {
	Ordered bool       `json:"ordered"`
	Items   []ListItem `json:"items"`
}

// ListItem is one li with its nested anchors.
type ListItem struct {
	Text    string   `json:"text"`
	Anchors []Anchor `json:"anchors,omitempty"`
}

// TextBlock is a coarse text-bearing container (div/section/article) whose
// direct text is non-trivial. Used for update-signal mining, not extraction.
type TextBlock struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// AllText concatenates the text of every row in the table.
func (t Table) AllText() string {
	var out string
	for _, row := range t.Rows {
		out += row.Text() + " "
	}
	return out
}

// Text concatenates the text of every cell in the row.
func (r Row) Text() string {
	var out string
	for i, cell := range r.Cells {
		if i > 0 {
			out += " "
		}
		out += cell.Text
	}
	return out
}
