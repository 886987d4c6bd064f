// internal/harvest/harvester.go
package harvest

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobsaddah/jobharvest/internal/utils"
)

var logger = utils.NewComponentLogger("harvest")

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Parse turns raw markup into a RawDocument. It never fails on malformed
// markup: sections that cannot be extracted stay as allocated empty
// collections. All hrefs and image sources are resolved against sourceURL.
func Parse(markup, sourceURL string) *RawDocument {
	doc := newDocument(sourceURL)

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Warnf("markup parse failed for %s: %v", sourceURL, err)
		return doc
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}

	doc.Title = utils.CleanText(gq.Find("title").First().Text())
	doc.MetaDescription, doc.MetaKeywords = extractMeta(gq)

	extractHeadings(gq, doc)
	extractAnchors(gq, base, doc)
	extractImages(gq, base, doc)
	extractTables(gq, base, doc)
	extractLists(gq, base, doc)
	extractParagraphs(gq, doc)
	extractTextBlocks(gq, doc)

	return doc
}

func newDocument(sourceURL string) *RawDocument {
	return &RawDocument{
		SourceURL:    sourceURL,
		FetchedAt:    time.Now().UTC(),
		MetaKeywords: []string{},
		Headings:     map[string][]Heading{},
		Anchors:      []Anchor{},
		Images:       []Image{},
		Tables:       []Table{},
		Lists:        []List{},
		Paragraphs:   []string{},
		TextBlocks:   []TextBlock{},
	}
}

func extractMeta(gq *goquery.Document) (description string, keywords []string) {
	keywords = []string{}

	gq.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		switch strings.ToLower(name) {
		case "description":
			description = utils.CleanText(content)
		case "keywords":
			for _, kw := range strings.Split(content, ",") {
				if kw = utils.CleanText(kw); kw != "" {
					keywords = append(keywords, kw)
				}
			}
		}
	})
	return description, keywords
}

func extractHeadings(gq *goquery.Document, doc *RawDocument) {
	for _, tag := range headingTags {
		gq.Find(tag).Each(func(i int, s *goquery.Selection) {
			text := utils.CleanText(s.Text())
			if text == "" {
				return
			}
			html, _ := s.Html()
			doc.Headings[tag] = append(doc.Headings[tag], Heading{
				Text:  text,
				HTML:  html,
				Index: i,
			})
		})
	}
}

func extractAnchors(gq *goquery.Document, base *url.URL, doc *RawDocument) {
	gq.Find("a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		doc.Anchors = append(doc.Anchors, makeAnchor(s.Text(), href, base, i))
	})
}

// makeAnchor resolves href against base; on failure the raw string is
// retained with Unresolved set.
func makeAnchor(text, href string, base *url.URL, index int) Anchor {
	anchor := Anchor{
		Text:  utils.CleanText(text),
		Href:  strings.TrimSpace(href),
		Index: index,
	}
	anchor.FragmentOnly = strings.HasPrefix(anchor.Href, "#")

	if base == nil {
		anchor.Unresolved = true
		return anchor
	}
	ref, err := url.Parse(anchor.Href)
	if err != nil {
		anchor.Unresolved = true
		return anchor
	}
	anchor.Href = base.ResolveReference(ref).String()
	return anchor
}

func extractImages(gq *goquery.Document, base *url.URL, doc *RawDocument) {
	gq.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		alt, _ := s.Attr("alt")
		img := Image{Src: strings.TrimSpace(src), Alt: utils.CleanText(alt)}

		if base != nil {
			if ref, err := url.Parse(img.Src); err == nil {
				img.Src = base.ResolveReference(ref).String()
			} else {
				img.Unresolved = true
			}
		} else {
			img.Unresolved = true
		}
		doc.Images = append(doc.Images, img)
	})
}

func extractTables(gq *goquery.Document, base *url.URL, doc *RawDocument) {
	gq.Find("table").Each(func(ti int, ts *goquery.Selection) {
		// Skip nested tables; the outer pass captures their markup.
		if ts.ParentsFiltered("table").Length() > 0 {
			return
		}

		html, _ := ts.Html()
		table := Table{HTML: html, Rows: []Row{}, Index: ti}

		ts.Find("tr").Each(func(_ int, rs *goquery.Selection) {
			row := Row{Cells: []Cell{}}
			rs.ChildrenFiltered("td,th").Each(func(_ int, cs *goquery.Selection) {
				row.Cells = append(row.Cells, makeCell(cs, base))
			})
			if len(row.Cells) > 0 {
				table.Rows = append(table.Rows, row)
			}
		})

		doc.Tables = append(doc.Tables, table)
	})
}

func makeCell(cs *goquery.Selection, base *url.URL) Cell {
	html, _ := cs.Html()
	cell := Cell{
		Tag:     goquery.NodeName(cs),
		Text:    utils.CleanText(cs.Text()),
		HTML:    html,
		ColSpan: intAttr(cs, "colspan", 1),
		RowSpan: intAttr(cs, "rowspan", 1),
	}

	cs.Find("a").Each(func(i int, as *goquery.Selection) {
		href, ok := as.Attr("href")
		if !ok {
			return
		}
		cell.Anchors = append(cell.Anchors, makeAnchor(as.Text(), href, base, i))
	})

	cs.Find("li").Each(func(_ int, ls *goquery.Selection) {
		if text := utils.CleanText(ls.Text()); text != "" {
			cell.ListItems = append(cell.ListItems, text)
		}
	})

	return cell
}

func intAttr(s *goquery.Selection, name string, def int) int {
	raw, ok := s.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func extractLists(gq *goquery.Document, base *url.URL, doc *RawDocument) {
	gq.Find("ul,ol").Each(func(_ int, ls *goquery.Selection) {
		// Lists inside tables are captured as cell list items.
		if ls.ParentsFiltered("table").Length() > 0 {
			return
		}

		list := List{
			Ordered: goquery.NodeName(ls) == "ol",
			Items:   []ListItem{},
		}

		ls.ChildrenFiltered("li").Each(func(_ int, is *goquery.Selection) {
			item := ListItem{Text: utils.CleanText(is.Text())}
			is.Find("a").Each(func(i int, as *goquery.Selection) {
				href, ok := as.Attr("href")
				if !ok {
					return
				}
				item.Anchors = append(item.Anchors, makeAnchor(as.Text(), href, base, i))
			})
			if item.Text != "" || len(item.Anchors) > 0 {
				list.Items = append(list.Items, item)
			}
		})

		if len(list.Items) > 0 {
			doc.Lists = append(doc.Lists, list)
		}
	})
}

func extractParagraphs(gq *goquery.Document, doc *RawDocument) {
	gq.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := utils.CleanText(s.Text()); text != "" {
			doc.Paragraphs = append(doc.Paragraphs, text)
		}
	})
}

// extractTextBlocks captures coarse containers whose own (non-child-block)
// text is non-trivial. Keeps the harvest schema-free while giving the
// update-signal miner something to scan.
func extractTextBlocks(gq *goquery.Document, doc *RawDocument) {
	gq.Find("div,section,article").Each(func(_ int, s *goquery.Selection) {
		text := utils.CleanText(ownText(s))
		if len(text) < 20 {
			return
		}
		doc.TextBlocks = append(doc.TextBlocks, TextBlock{
			Tag:  goquery.NodeName(s),
			Text: text,
		})
	})
}

// ownText returns the text of a selection's direct text nodes only.
func ownText(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			sb.WriteString(c.Text())
			sb.WriteString(" ")
		}
	})
	return sb.String()
}
