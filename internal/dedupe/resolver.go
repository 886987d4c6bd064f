// internal/dedupe/resolver.go
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/jobsaddah/jobharvest/internal/storage"
	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var logger = utils.NewComponentLogger("dedupe")

// MatchPolicy selects how the candidate pool is scanned.
type MatchPolicy string

const (
	// PolicyFirstMatch takes the first candidate over threshold in
	// recency order. This is the default.
	PolicyFirstMatch MatchPolicy = "first-match"
	// PolicyBestMatch scans the whole pool and takes the highest score.
	PolicyBestMatch MatchPolicy = "best-match"
)

const (
	// DefaultThreshold is the composite score above which a candidate is
	// treated as the same real-world posting.
	DefaultThreshold = 65.0
	// DefaultWindow bounds the candidate pool to recently updated
	// postings.
	DefaultWindow = 60 * 24 * time.Hour
)

// Resolver decides merge-vs-create for incoming records.
type Resolver struct {
	store     storage.Store
	threshold float64
	window    time.Duration
	policy    MatchPolicy
}

// Options tunes the resolver. Zero values take the defaults.
type Options struct {
	Threshold float64
	Window    time.Duration
	Policy    MatchPolicy
}

// NewResolver creates a resolver over the given store.
func NewResolver(store storage.Store, opts Options) *Resolver {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Window == 0 {
		opts.Window = DefaultWindow
	}
	if opts.Policy == "" {
		opts.Policy = PolicyFirstMatch
	}
	return &Resolver{
		store:     store,
		threshold: opts.Threshold,
		window:    opts.Window,
		policy:    opts.Policy,
	}
}

// Resolve finds the stored posting the incoming record duplicates, or nil
// when it is new. The fast path is an exact source-path lookup; on a miss
// the recent candidate pool is scanned with the composite fuzzy score.
// Absence of a match is never an error.
func (r *Resolver) Resolve(ctx context.Context, incoming *types.RecruitmentRecord) (*types.StoredPosting, error) {
	if incoming.SourcePath != "" {
		existing, err := r.store.FindBySourcePath(ctx, incoming.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("source path lookup: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	candidates, err := r.store.FindRecentCandidates(ctx, r.window)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	switch r.policy {
	case PolicyBestMatch:
		return r.bestMatch(incoming, candidates), nil
	default:
		return r.firstMatch(incoming, candidates), nil
	}
}

func (r *Resolver) firstMatch(incoming *types.RecruitmentRecord, candidates []types.StoredPosting) *types.StoredPosting {
	for i := range candidates {
		score := CompositeScore(incoming, &candidates[i].Record)
		if score > r.threshold {
			logger.Debugf("fuzzy match %q score=%.1f", candidates[i].Record.Title, score)
			return &candidates[i]
		}
	}
	return nil
}

func (r *Resolver) bestMatch(incoming *types.RecruitmentRecord, candidates []types.StoredPosting) *types.StoredPosting {
	var (
		best      *types.StoredPosting
		bestScore float64
	)
	for i := range candidates {
		score := CompositeScore(incoming, &candidates[i].Record)
		if score > r.threshold && score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best
}

// LockKey derives the advisory-lock key for an incoming record from its
// normalized title and organization.
func LockKey(record *types.RecruitmentRecord) string {
	title := utils.NormalizeWords(record.Title)
	org := utils.NormalizeWords(record.Organization)

	key := ""
	for _, w := range title {
		key += w + "-"
	}
	key += "|"
	for _, w := range org {
		key += w + "-"
	}
	return key
}
