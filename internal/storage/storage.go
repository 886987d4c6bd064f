// internal/storage/storage.go
package storage

import (
	"context"
	"time"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Store is the narrow persistence collaborator of the ingestion pipeline.
// Only these three operations are required: the pipeline never deletes.
type Store interface {
	// FindBySourcePath is the fast-path exact lookup. A miss returns
	// (nil, nil).
	FindBySourcePath(ctx context.Context, path string) (*types.StoredPosting, error)

	// FindRecentCandidates returns postings updated within the window,
	// newest first. The duplicate resolver scans these.
	FindRecentCandidates(ctx context.Context, window time.Duration) ([]types.StoredPosting, error)

	// Upsert inserts or replaces the posting by ID (inserting when ID is
	// empty) and returns the stored form with its ID populated.
	Upsert(ctx context.Context, posting types.StoredPosting) (*types.StoredPosting, error)
}
