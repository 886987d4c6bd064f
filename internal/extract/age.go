// internal/extract/age.go
package extract

import (
	"strings"

	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Age extracts the age-limit block from an age table. Each row is scanned
// for keyword-triggered fields; known relaxation-category columns get their
// own fields.
func Age(ct classify.ClassifiedTable) Fragment {
	frag := Fragment{}

	for _, row := range ct.Table.Rows {
		if len(row.Cells) < 2 {
			continue
		}
		applyAgeKeywords(&frag.Age, row.Cells[0].Text, row.Cells[1].Text)
	}

	return frag
}

// AgeFromLists repeats the keyword scan over bullet lists. Some sources
// publish age limits as a list rather than a table; this pass runs only
// when the table pass produced nothing.
func AgeFromLists(lists []harvest.List) Fragment {
	frag := Fragment{}

	for _, list := range lists {
		for _, item := range list.Items {
			label, value, ok := splitListItem(item.Text)
			if !ok {
				continue
			}
			applyAgeKeywords(&frag.Age, label, value)
		}
	}

	return frag
}

func splitListItem(text string) (label, value string, ok bool) {
	idx := strings.Index(text, ":")
	if idx <= 0 || idx == len(text)-1 {
		return "", "", false
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:]), true
}

// applyAgeKeywords fills at most one field per label, first match wins.
func applyAgeKeywords(age *types.AgeLimit, label, value string) {
	if value == "" {
		return
	}
	l := strings.ToLower(label)

	switch {
	case strings.Contains(l, "minimum"):
		setIfEmpty(&age.Min, value)
	case strings.Contains(l, "maximum"):
		switch {
		case strings.Contains(l, "obc") || strings.Contains(l, "ebc"):
			setIfEmpty(&age.OBCMax, value)
		case strings.Contains(l, "sc") || strings.Contains(l, "st"):
			setIfEmpty(&age.SCSTMax, value)
		case strings.Contains(l, "general") || strings.Contains(l, "ur"):
			setIfEmpty(&age.GeneralMax, value)
		default:
			setIfEmpty(&age.Max, value)
		}
	case strings.Contains(l, "as on"):
		setIfEmpty(&age.AsOn, value)
	case strings.Contains(l, "relaxation"):
		setIfEmpty(&age.Relaxation, value)
	case strings.Contains(l, "age") && strings.Contains(strings.ToLower(value), "year"):
		setIfEmpty(&age.Max, value)
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
