// internal/classify/classifier.go
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/harvest"
)

// Category is the semantic kind assigned to a harvested table.
type Category string

const (
	CategoryDates       Category = "dates"
	CategoryFees        Category = "fees"
	CategoryAge         Category = "age"
	CategoryVacancy     Category = "vacancy"
	CategoryEligibility Category = "eligibility"
	CategoryDistrict    Category = "district"
	CategoryLinks       Category = "links"
	CategoryUnknown     Category = "unknown"
)

// ClassifiedTable pairs a harvested table with its assigned category and
// the winning score.
type ClassifiedTable struct {
	Table    harvest.Table
	Category Category
	Score    int
}

// SignalSource selects which text view of the table a signal inspects.
type SignalSource int

const (
	// SourceMarkup is the table's raw inner markup, lower-cased.
	SourceMarkup SignalSource = iota
	// SourceFirstRow is the first row's concatenated cell text, lower-cased.
	SourceFirstRow
	// SourceAllRows is all rows' concatenated cell text, lower-cased.
	SourceAllRows
)

// Signal is one weighted heuristic. It fires when any phrase in Any is
// present (or, if All is set, when every phrase in All is present), or when
// Pattern matches. A fired signal adds Weight to its category's score.
type Signal struct {
	Source  SignalSource
	Any     []string
	All     []string
	Pattern *regexp.Regexp
	Weight  int
}

// Weights maps each category to its ordered signal set. The table is
// injectable so weights can be tuned and unit-tested without touching
// control flow.
type Weights map[Category][]Signal

var largeNumberRe = regexp.MustCompile(`\b\d{3,}\b`)

// DefaultWeights mirrors the production heuristics for recruitment-notice
// tables.
func DefaultWeights() Weights {
	return Weights{
		CategoryDates: {
			{Source: SourceMarkup, Any: []string{"important date", "short notice"}, Weight: 3},
			{Source: SourceFirstRow, Any: []string{"date", "exam", "apply"}, Weight: 2},
			{Source: SourceAllRows, Any: []string{"last date", "exam date"}, Weight: 1},
		},
		CategoryFees: {
			{Source: SourceMarkup, Any: []string{"application fee", "fee detail"}, Weight: 3},
			{Source: SourceAllRows, Any: []string{"₹", "rs.", "rs "}, Weight: 2},
			{Source: SourceFirstRow, All: []string{"category", "fee"}, Weight: 2},
			{Source: SourceAllRows, All: []string{"general", "obc", "sc"}, Weight: 1},
		},
		CategoryAge: {
			{Source: SourceMarkup, Any: []string{"age limit"}, Weight: 3},
			{Source: SourceAllRows, All: []string{"minimum", "maximum"}, Weight: 2},
			{Source: SourceAllRows, All: []string{"years", "age"}, Weight: 1},
		},
		CategoryVacancy: {
			{Source: SourceMarkup, Any: []string{"vacancy", "post detail"}, Weight: 3},
			{Source: SourceFirstRow, Any: []string{"post name"}, Weight: 2},
			{Source: SourceAllRows, Any: []string{"total post"}, Weight: 1},
			{Source: SourceAllRows, Pattern: largeNumberRe, Weight: 1},
		},
		CategoryEligibility: {
			{Source: SourceMarkup, Any: []string{"eligibility", "qualification"}, Weight: 3},
			{Source: SourceFirstRow, Any: []string{"education", "degree"}, Weight: 2},
		},
		CategoryDistrict: {
			{Source: SourceMarkup, Any: []string{"district"}, Weight: 3},
			{Source: SourceFirstRow, Any: []string{"district"}, Weight: 3},
		},
		CategoryLinks: {
			{Source: SourceFirstRow, Any: []string{"link"}, Weight: 2},
			{Source: SourceAllRows, Any: []string{"click here"}, Weight: 2},
		},
	}
}

// DefaultThreshold is the minimum winning score for a table to be accepted
// for extraction. Below it the table stays unknown: a wrong category
// corrupts a canonical field, an ignored table only loses optional detail.
const DefaultThreshold = 2

// Classifier assigns categories to harvested tables.
type Classifier struct {
	weights   Weights
	threshold int
}

// New creates a classifier. Nil weights or a non-positive threshold fall
// back to the defaults.
func New(weights Weights, threshold int) *Classifier {
	if weights == nil {
		weights = DefaultWeights()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{weights: weights, threshold: threshold}
}

// Threshold returns the acceptance threshold in use.
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Classify scores the table against every category and returns the argmax.
// Ties resolve to the category whose longest matched phrase is longer.
// A winning score below the threshold yields CategoryUnknown.
func (c *Classifier) Classify(table harvest.Table) ClassifiedTable {
	markup := strings.ToLower(table.HTML)
	firstRow := ""
	if len(table.Rows) > 0 {
		firstRow = strings.ToLower(table.Rows[0].Text())
	}
	allRows := strings.ToLower(table.AllText())

	type result struct {
		category    Category
		score       int
		specificity int
	}

	results := make([]result, 0, len(c.weights))
	for category, signals := range c.weights {
		score, specificity := scoreSignals(signals, markup, firstRow, allRows)
		if score > 0 {
			results = append(results, result{category, score, specificity})
		}
	}

	// Deterministic order before picking the winner.
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].specificity != results[j].specificity {
			return results[i].specificity > results[j].specificity
		}
		return results[i].category < results[j].category
	})

	if len(results) == 0 || results[0].score < c.threshold {
		return ClassifiedTable{Table: table, Category: CategoryUnknown, Score: 0}
	}

	return ClassifiedTable{
		Table:    table,
		Category: results[0].category,
		Score:    results[0].score,
	}
}

// ClassifyAll classifies every table in document order.
func (c *Classifier) ClassifyAll(tables []harvest.Table) []ClassifiedTable {
	out := make([]ClassifiedTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, c.Classify(t))
	}
	return out
}

// scoreSignals accumulates the category score and tracks the longest phrase
// any fired signal matched, used as the tie-break specificity.
func scoreSignals(signals []Signal, markup, firstRow, allRows string) (score, specificity int) {
	for _, sig := range signals {
		text := markup
		switch sig.Source {
		case SourceFirstRow:
			text = firstRow
		case SourceAllRows:
			text = allRows
		}

		matched, phraseLen := sig.fire(text)
		if !matched {
			continue
		}
		score += sig.Weight
		if phraseLen > specificity {
			specificity = phraseLen
		}
	}
	return score, specificity
}

func (s Signal) fire(text string) (bool, int) {
	if len(s.All) > 0 {
		longest := 0
		for _, phrase := range s.All {
			if !strings.Contains(text, phrase) {
				return false, 0
			}
			if len(phrase) > longest {
				longest = len(phrase)
			}
		}
		return true, longest
	}

	for _, phrase := range s.Any {
		if strings.Contains(text, phrase) {
			return true, len(phrase)
		}
	}

	if s.Pattern != nil && s.Pattern.MatchString(text) {
		return true, 1
	}
	return false, 0
}
