// internal/dedupe/similarity.go
package dedupe

import (
	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Composite score weights. Title dominates; the source path is a weak
// signal because mirrored postings publish under different paths.
const (
	titleWeight = 0.6
	orgWeight   = 0.3
	pathWeight  = 0.1
)

// Similarity scores two strings 0..100 by word-set overlap: lower-case,
// strip everything outside [a-z0-9 ], split into word sets, then
// |A∩B| / max(|A|,|B|) × 100. Symmetric by construction.
func Similarity(a, b string) float64 {
	wordsA := toSet(utils.NormalizeWords(a))
	wordsB := toSet(utils.NormalizeWords(b))

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0
	for word := range wordsA {
		if wordsB[word] {
			shared++
		}
	}

	max := len(wordsA)
	if len(wordsB) > max {
		max = len(wordsB)
	}
	return float64(shared) / float64(max) * 100
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// CompositeScore is the weighted similarity between an incoming record and
// a stored candidate.
func CompositeScore(incoming *types.RecruitmentRecord, candidate *types.RecruitmentRecord) float64 {
	return titleWeight*Similarity(incoming.Title, candidate.Title) +
		orgWeight*Similarity(incoming.Organization, candidate.Organization) +
		pathWeight*Similarity(incoming.SourcePath, candidate.SourcePath)
}
