// internal/discover/discover.go
package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/internal/pipeline"
	"github.com/jobsaddah/jobharvest/internal/utils"
)

var logger = utils.NewComponentLogger("discover")

// Fetcher retrieves listing markup. fetch.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Ingestor processes one discovered post URL.
type Ingestor interface {
	Ingest(ctx context.Context, url string) (*pipeline.Result, error)
}

// Discoverer walks category listing pages, selects post links, follows
// pagination, and hands each post to the ingestor.
type Discoverer struct {
	fetcher  Fetcher
	ingestor Ingestor
	maxPages int
	maxPosts int
}

// Options bounds a category sync. Zero values take the defaults.
type Options struct {
	MaxPages int
	MaxPosts int
}

// NewDiscoverer creates a discoverer.
func NewDiscoverer(fetcher Fetcher, ingestor Ingestor, opts Options) *Discoverer {
	if opts.MaxPages == 0 {
		opts.MaxPages = 5
	}
	if opts.MaxPosts == 0 {
		opts.MaxPosts = 100
	}
	return &Discoverer{
		fetcher:  fetcher,
		ingestor: ingestor,
		maxPages: opts.MaxPages,
		maxPosts: opts.MaxPosts,
	}
}

// SyncStats summarizes one category sync.
type SyncStats struct {
	PagesVisited int
	PostsFound   int
	Created      int
	Merged       int
	Unchanged    int
	Failed       int
}

// SyncCategory crawls one category listing and ingests every discovered
// post. Per-post failures are counted, not fatal.
func (d *Discoverer) SyncCategory(ctx context.Context, categoryURL string) (*SyncStats, error) {
	stats := &SyncStats{}
	seen := map[string]bool{}
	visited := map[string]bool{}
	pageURL := categoryURL

	for page := 0; page < d.maxPages && pageURL != "" && !visited[pageURL]; page++ {
		visited[pageURL] = true
		markup, err := d.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("fetch category %s: %w", categoryURL, err)
			}
			logger.Warnf("pagination fetch failed at %s: %v", pageURL, err)
			break
		}
		stats.PagesVisited++

		doc := harvest.Parse(markup, pageURL)
		for _, anchor := range doc.Anchors {
			if stats.PostsFound >= d.maxPosts {
				break
			}
			if !IsPostLink(anchor, pageURL) {
				continue
			}

			key := jobKey(anchor)
			if seen[key] {
				continue
			}
			seen[key] = true
			stats.PostsFound++

			result, err := d.ingestor.Ingest(ctx, anchor.Href)
			if err != nil {
				stats.Failed++
				logger.Warnf("ingest %s failed: %v", anchor.Href, err)
				continue
			}
			switch result.Action {
			case pipeline.ActionCreated:
				stats.Created++
			case pipeline.ActionMerged:
				stats.Merged++
			default:
				stats.Unchanged++
			}
		}

		pageURL = nextPage(doc, pageURL)
	}

	logger.Infof("category %s: %d posts on %d pages (%d created, %d merged, %d failed)",
		categoryURL, stats.PostsFound, stats.PagesVisited, stats.Created, stats.Merged, stats.Failed)
	return stats, nil
}

var (
	dateSlugRe  = regexp.MustCompile(`/20\d{2}/\d{1,2}/`)
	pageParamRe = regexp.MustCompile(`[?&]p=\d+`)
)

// listing-navigation paths that are never posts.
var nonPostSegments = []string{"/category/", "/tag/", "/page/", "/author/", "/feed", "/wp-admin", "/search"}

// IsPostLink applies the post-link heuristics: same host as the listing,
// not a navigation path, and a URL shape typical of individual postings
// (date slug, post segment, page-id query, or a long hyphenated slug).
func IsPostLink(anchor harvest.Anchor, listingURL string) bool {
	if anchor.Unresolved || !strings.HasPrefix(anchor.Href, "http") {
		return false
	}
	if len(anchor.Text) < 10 {
		return false
	}

	target, err := url.Parse(anchor.Href)
	if err != nil {
		return false
	}
	listing, err := url.Parse(listingURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(target.Host, listing.Host) {
		return false
	}

	lower := strings.ToLower(anchor.Href)
	for _, seg := range nonPostSegments {
		if strings.Contains(lower, seg) {
			return false
		}
	}

	switch {
	case dateSlugRe.MatchString(lower):
		return true
	case strings.Contains(lower, "/post/"),
		strings.Contains(lower, "/jobs/"),
		strings.Contains(lower, "/job/"),
		strings.Contains(lower, "/vacancy/"),
		strings.Contains(lower, "/recruitment"):
		return true
	case pageParamRe.MatchString(lower):
		return true
	case strings.Count(target.Path, "-") >= 3:
		return true
	}
	return false
}

// jobKey dedupes discovered posts by canonical link plus normalized title.
func jobKey(anchor harvest.Anchor) string {
	link, err := utils.CanonicalURL(anchor.Href)
	if err != nil {
		link = anchor.Href
	}
	return link + "|" + strings.Join(utils.NormalizeWords(anchor.Text), " ")
}

// nextPage finds the pagination target: an explicit next link, else the
// lowest numeric page link beyond the current page.
func nextPage(doc *harvest.RawDocument, currentURL string) string {
	for _, anchor := range doc.Anchors {
		text := strings.ToLower(strings.TrimSpace(anchor.Text))
		if text == "next" || text == "next »" || text == "»" || strings.HasPrefix(text, "next ") {
			if anchor.Href != currentURL && strings.HasPrefix(anchor.Href, "http") {
				return anchor.Href
			}
		}
	}

	for _, anchor := range doc.Anchors {
		if !strings.HasPrefix(anchor.Href, "http") || anchor.Href == currentURL {
			continue
		}
		lower := strings.ToLower(anchor.Href)
		if strings.Contains(lower, "/page/") || pageParamRe.MatchString(lower) {
			if _, err := url.Parse(anchor.Href); err == nil {
				return anchor.Href
			}
		}
	}
	return ""
}

// DiscoverCategories mines category listing URLs from a site's navigation
// menus and its sitemap. Anchors under /category/ or whose text matches a
// known section name qualify; the sitemap contributes its /category/
// entries. A missing or malformed sitemap is not an error.
func (d *Discoverer) DiscoverCategories(ctx context.Context, baseURL string) ([]string, error) {
	markup, err := d.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", baseURL, err)
	}

	doc := harvest.Parse(markup, baseURL)
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	sectionNames := map[string]bool{
		"latest jobs": true, "results": true, "admit card": true,
		"answer key": true, "syllabus": true, "admission": true,
	}

	seen := map[string]bool{}
	var categories []string
	for _, anchor := range doc.Anchors {
		if anchor.Unresolved || !strings.HasPrefix(anchor.Href, "http") {
			continue
		}
		target, err := url.Parse(anchor.Href)
		if err != nil || !strings.EqualFold(target.Host, base.Host) {
			continue
		}

		isCategory := strings.Contains(strings.ToLower(target.Path), "/category/") ||
			sectionNames[strings.ToLower(anchor.Text)]
		if !isCategory {
			continue
		}

		canonical, err := utils.CanonicalURL(anchor.Href)
		if err != nil || seen[canonical] {
			continue
		}
		seen[canonical] = true
		categories = append(categories, canonical)
	}

	for _, loc := range d.sitemapCategories(ctx, base) {
		if seen[loc] {
			continue
		}
		seen[loc] = true
		categories = append(categories, loc)
	}

	return categories, nil
}

// sitemap is the minimal urlset shape; index files and extensions are
// ignored.
type sitemap struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

func (d *Discoverer) sitemapCategories(ctx context.Context, base *url.URL) []string {
	sitemapURL := base.Scheme + "://" + base.Host + "/sitemap.xml"
	body, err := d.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		logger.Debugf("no sitemap at %s: %v", sitemapURL, err)
		return nil
	}

	var sm sitemap
	if err := xml.Unmarshal([]byte(body), &sm); err != nil {
		logger.Warnf("malformed sitemap at %s: %v", sitemapURL, err)
		return nil
	}

	var categories []string
	for _, entry := range sm.URLs {
		loc := strings.TrimSpace(entry.Loc)
		target, err := url.Parse(loc)
		if err != nil || !strings.EqualFold(target.Host, base.Host) {
			continue
		}
		if !strings.Contains(strings.ToLower(target.Path), "/category/") {
			continue
		}
		canonical, err := utils.CanonicalURL(loc)
		if err != nil {
			continue
		}
		categories = append(categories, canonical)
	}
	return categories
}
