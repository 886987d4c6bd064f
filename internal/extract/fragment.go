// internal/extract/fragment.go
package extract

import "github.com/jobsaddah/jobharvest/pkg/types"

// Fragment is the partial record produced by one extractor from one
// classified table. The assembler merges fragments in document order.
type Fragment struct {
	Dates []types.DateEntry
	// DateLinks carries anchors found inside date value cells, keyed by the
	// row label. Date rows often double as link sources ("Apply Online"
	// rows whose cell holds the apply link).
	DateLinks map[string]string

	Fees    []types.FeeEntry
	FeeNote string

	Age types.AgeLimit

	Positions    []types.Position
	VacancyTotal int

	Eligibility []string

	Districts []types.DistrictRow
}

// Merge folds other into f. Collections append; scalar fields take the
// other value only when f's is empty, so the first table wins.
func (f *Fragment) Merge(other Fragment) {
	f.Dates = append(f.Dates, other.Dates...)
	for label, href := range other.DateLinks {
		if f.DateLinks == nil {
			f.DateLinks = map[string]string{}
		}
		if _, exists := f.DateLinks[label]; !exists {
			f.DateLinks[label] = href
		}
	}

	f.Fees = append(f.Fees, other.Fees...)
	if f.FeeNote == "" {
		f.FeeNote = other.FeeNote
	}

	mergeAge(&f.Age, other.Age)

	f.Positions = append(f.Positions, other.Positions...)
	if other.VacancyTotal > f.VacancyTotal {
		f.VacancyTotal = other.VacancyTotal
	}

	f.Eligibility = append(f.Eligibility, other.Eligibility...)
	f.Districts = append(f.Districts, other.Districts...)
}

func mergeAge(dst *types.AgeLimit, src types.AgeLimit) {
	if dst.Min == "" {
		dst.Min = src.Min
	}
	if dst.Max == "" {
		dst.Max = src.Max
	}
	if dst.AsOn == "" {
		dst.AsOn = src.AsOn
	}
	if dst.Relaxation == "" {
		dst.Relaxation = src.Relaxation
	}
	if dst.GeneralMax == "" {
		dst.GeneralMax = src.GeneralMax
	}
	if dst.OBCMax == "" {
		dst.OBCMax = src.OBCMax
	}
	if dst.SCSTMax == "" {
		dst.SCSTMax = src.SCSTMax
	}
}
