// internal/assemble/assembler.go
package assemble

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/internal/extract"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var logger = utils.NewComponentLogger("assemble")

// messagingHosts lists chat-service hosts whose deep links are stripped
// from every record. This is a content-policy filter and runs even when
// the normalizer already removed them.
var messagingHosts = []string{
	"whatsapp.com",
	"wa.me",
	"chat.whatsapp",
	"telegram.me",
	"telegram.org",
	"t.me",
	"signal.me",
}

// Assembler turns a harvested document into a canonical RecruitmentRecord
// by classifying its tables, running the field extractors, ranking links,
// and consulting the pluggable normalization strategy.
type Assembler struct {
	classifier *classify.Classifier
	normalizer Normalizer
	rephraser  *Rephraser
	observer   func(category string)
}

// SetClassificationObserver registers a callback invoked with the category
// assigned to each classified table. The pipeline points this at its
// metrics sink.
func (a *Assembler) SetClassificationObserver(fn func(category string)) {
	a.observer = fn
}

// New creates an assembler. A nil classifier gets the default weights; the
// normalizer is required.
func New(classifier *classify.Classifier, normalizer Normalizer) *Assembler {
	if classifier == nil {
		classifier = classify.New(nil, 0)
	}
	return &Assembler{
		classifier: classifier,
		normalizer: normalizer,
		rephraser:  NewRephraser(),
	}
}

// Assemble produces the canonical record for one harvested document.
// Normalizer failure aborts the unit; nothing partial is returned.
func (a *Assembler) Assemble(ctx context.Context, doc *harvest.RawDocument) (*types.RecruitmentRecord, error) {
	frag := a.extractFragments(doc)
	ranked, hints := extract.RankLinks(doc.Anchors)

	record, err := a.normalizer.Normalize(ctx, doc, hints)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", doc.SourceURL, err)
	}
	record.EnsureCollections()

	a.applyFragments(record, frag, doc)
	applyRankedLinks(record, ranked, frag.DateLinks)
	backfillPlaceholders(record, hints)
	stripMessagingLinks(record)

	record.SourceURL = doc.SourceURL
	record.SourcePath = utils.SourcePath(doc.SourceURL)
	record.Title = a.rephraser.Rephrase(record.Title)

	record.EnsureCollections()
	return record, nil
}

// extractFragments classifies every table and runs the matching extractor
// for those at or above the acceptance threshold.
func (a *Assembler) extractFragments(doc *harvest.RawDocument) extract.Fragment {
	var frag extract.Fragment

	for _, ct := range a.classifier.ClassifyAll(doc.Tables) {
		if a.observer != nil {
			a.observer(string(ct.Category))
		}
		switch ct.Category {
		case classify.CategoryDates:
			frag.Merge(extract.Dates(ct))
		case classify.CategoryFees:
			frag.Merge(extract.Fees(ct))
		case classify.CategoryAge:
			frag.Merge(extract.Age(ct))
		case classify.CategoryVacancy:
			frag.Merge(extract.Vacancy(ct))
		case classify.CategoryEligibility:
			var standalone []string
			frag.Positions, standalone = extract.Eligibility(ct, frag.Positions)
			frag.Eligibility = append(frag.Eligibility, standalone...)
		case classify.CategoryDistrict:
			frag.Merge(extract.District(ct))
		case classify.CategoryLinks:
			// Anchors inside link tables reach the ranker through the
			// document anchor list.
		default:
			// Below threshold: dropped, precision over recall.
		}
	}

	if frag.Age.IsEmpty() {
		frag.Merge(extract.AgeFromLists(doc.Lists))
	}

	return frag
}

// applyFragments overlays the deterministic extraction onto the normalized
// record. Extracted values win over normalizer text for structured fields.
func (a *Assembler) applyFragments(record *types.RecruitmentRecord, frag extract.Fragment, doc *harvest.RawDocument) {
	if len(frag.Dates) > 0 {
		record.RawDates = frag.Dates
		mapDateMilestones(record, frag.Dates)
	}
	if len(frag.Fees) > 0 {
		record.Fees = frag.Fees
	}
	if frag.FeeNote != "" {
		record.FeeNote = frag.FeeNote
	}
	if !frag.Age.IsEmpty() {
		record.Age = frag.Age
	}
	if len(frag.Positions) > 0 {
		record.Vacancy.Positions = frag.Positions
	}
	if len(frag.Eligibility) > 0 {
		record.Eligibility = append(record.Eligibility, frag.Eligibility...)
	}
	if len(frag.Districts) > 0 {
		record.Districts = frag.Districts
	}

	// Either total source may under-report; keep the larger.
	record.Vacancy.TotalPosts = frag.VacancyTotal
	if headingTotal := extract.HeadingTotal(doc.Headings); headingTotal > record.Vacancy.TotalPosts {
		record.Vacancy.TotalPosts = headingTotal
	}
}

// milestone keyword sets, checked in order. The first matching entry per
// milestone wins.
var milestoneKeywords = []struct {
	assign   func(*types.ImportantDates, string)
	keywords []string
}{
	{func(d *types.ImportantDates, v string) { setMilestone(&d.ApplicationStart, v) },
		[]string{"start", "begin", "open"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.FeePaymentLast, v) },
		[]string{"fee payment", "payment last"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.ApplicationLast, v) },
		[]string{"last date", "closing", "end date"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.AdmitCard, v) },
		[]string{"admit card"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.AnswerKey, v) },
		[]string{"answer key"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.MeritList, v) },
		[]string{"merit list"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.Result, v) },
		[]string{"result"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.Exam, v) },
		[]string{"exam"}},
	{func(d *types.ImportantDates, v string) { setMilestone(&d.Notification, v) },
		[]string{"notification", "advertise"}},
}

func setMilestone(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func mapDateMilestones(record *types.RecruitmentRecord, entries []types.DateEntry) {
	for _, entry := range entries {
		label := strings.ToLower(entry.Label)
		for _, m := range milestoneKeywords {
			if utils.ContainsAny(label, m.keywords...) {
				m.assign(&record.Dates, entry.Value)
				break
			}
		}
	}
}

// applyRankedLinks merges ranker output and date-row deep links into the
// record without overwriting labels the normalizer already set.
func applyRankedLinks(record *types.RecruitmentRecord, ranked []extract.RankedLink, dateLinks map[string]string) {
	targets := map[string]bool{}
	for _, url := range record.Links {
		targets[url] = true
	}

	add := func(label, url string) {
		if label == "" || url == "" || targets[url] {
			return
		}
		if _, exists := record.Links[label]; exists {
			return
		}
		record.Links[label] = url
		targets[url] = true
	}

	for _, link := range ranked {
		add(link.Label, link.URL)
	}
	for label, url := range dateLinks {
		add(label, url)
	}
}

// backfillPlaceholders replaces any link value that is not an absolute
// http(s) URL with the matching hint, else any hint, else drops it.
func backfillPlaceholders(record *types.RecruitmentRecord, hints extract.LinkHints) {
	for label, url := range record.Links {
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			continue
		}

		replacement := hintForLabel(label, hints)
		if replacement == "" {
			replacement = hints.Any()
		}
		if replacement == "" {
			delete(record.Links, label)
			continue
		}
		record.Links[label] = replacement
	}
}

func hintForLabel(label string, hints extract.LinkHints) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "apply"):
		return hints.Apply
	case strings.Contains(l, "short notice"):
		return hints.ShortNotice
	case strings.Contains(l, "notification"):
		return hints.Notification
	case strings.Contains(l, "website"):
		return hints.Website
	}
	return ""
}

// stripMessagingLinks removes chat-service deep links wherever they appear.
func stripMessagingLinks(record *types.RecruitmentRecord) {
	for label, url := range record.Links {
		if isMessagingLink(url) {
			logger.Debugf("dropping messaging link %q", label)
			delete(record.Links, label)
		}
	}
	for i := range record.Districts {
		if isMessagingLink(record.Districts[i].Link) {
			record.Districts[i].Link = ""
		}
	}
}

func isMessagingLink(url string) bool {
	lower := strings.ToLower(url)
	for _, host := range messagingHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
