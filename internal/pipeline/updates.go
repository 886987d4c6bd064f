// internal/pipeline/updates.go
package pipeline

import (
	"regexp"
	"strings"

	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// invalidValues are placeholder strings sources publish before a real date
// exists. They never overwrite a stored milestone.
var invalidValues = map[string]bool{
	"notify later":   true,
	"notified later": true,
	"tba":            true,
	"na":             true,
	"n/a":            true,
	"nil":            true,
	"-":              true,
	"--":             true,
	"coming soon":    true,
	"available soon": true,
	"update soon":    true,
	"as per notice":  true,
}

// datePhrase is the loose value shape accepted by update signals: a short
// run of date-ish characters.
const datePhrase = `([0-9]{1,2}[\s./-]*[a-zA-Z0-9]*[\s./-]*[0-9]{2,4}|[a-zA-Z]+\s+[0-9]{4})`

// updateSignals map body-text regexes onto stored date milestones. The
// fast path mines these on refresh instead of re-running normalization.
var updateSignals = []struct {
	re     *regexp.Regexp
	assign func(*types.ImportantDates, string)
}{
	{regexp.MustCompile(`(?i)exam\s+date[\s:–-]+` + datePhrase),
		func(d *types.ImportantDates, v string) { d.Exam = v }},
	{regexp.MustCompile(`(?i)result\s+(?:date|declared(?:\s+on)?)[\s:–-]+` + datePhrase),
		func(d *types.ImportantDates, v string) { d.Result = v }},
	{regexp.MustCompile(`(?i)admit\s+card(?:\s+(?:date|available))?[\s:–-]+` + datePhrase),
		func(d *types.ImportantDates, v string) { d.AdmitCard = v }},
	{regexp.MustCompile(`(?i)answer\s+key[\s:–-]+` + datePhrase),
		func(d *types.ImportantDates, v string) { d.AnswerKey = v }},
	{regexp.MustCompile(`(?i)last\s+date\s+(?:extended(?:\s+(?:to|till|upto))?|is\s+now)[\s:–-]*` + datePhrase),
		func(d *types.ImportantDates, v string) { d.ApplicationLast = v }},
	{regexp.MustCompile(`(?i)merit\s+list[\s:–-]+` + datePhrase),
		func(d *types.ImportantDates, v string) { d.MeritList = v }},
}

// MineUpdates scans the document body for milestone update signals and
// patches them into the record's dates. It reports whether anything
// changed. Placeholder values are skipped.
func MineUpdates(record *types.RecruitmentRecord, doc *harvest.RawDocument) bool {
	body := collectBody(doc)
	changed := false

	for _, signal := range updateSignals {
		m := signal.re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		value := utils.CleanText(m[1])
		if !validUpdateValue(value) {
			continue
		}

		before := record.Dates
		signal.assign(&record.Dates, value)
		if record.Dates != before {
			changed = true
		}
	}

	return changed
}

func validUpdateValue(value string) bool {
	if value == "" {
		return false
	}
	return !invalidValues[strings.ToLower(value)]
}

func collectBody(doc *harvest.RawDocument) string {
	var sb strings.Builder

	for _, table := range doc.Tables {
		sb.WriteString(table.AllText())
		sb.WriteString(" ")
	}
	for _, p := range doc.Paragraphs {
		sb.WriteString(p)
		sb.WriteString(" ")
	}
	for _, list := range doc.Lists {
		for _, item := range list.Items {
			sb.WriteString(item.Text)
			sb.WriteString(" ")
		}
	}
	for _, block := range doc.TextBlocks {
		sb.WriteString(block.Text)
		sb.WriteString(" ")
	}

	return sb.String()
}
