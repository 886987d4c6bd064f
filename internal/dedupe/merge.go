// internal/dedupe/merge.go
package dedupe

import (
	"time"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Merge combines an existing stored posting with an incoming record and
// returns a new value; neither input is mutated. Incoming fields win
// field-by-field, except the link map which merges key-wise, and identity
// plus creation time which always carry over from the existing posting.
func Merge(existing types.StoredPosting, incoming types.RecruitmentRecord, now time.Time) types.StoredPosting {
	merged := incoming
	merged.EnsureCollections()

	// Incoming empties fall back to the stored value.
	if merged.Title == "" {
		merged.Title = existing.Record.Title
	}
	if merged.Organization == "" {
		merged.Organization = existing.Record.Organization
	}
	if merged.SourceURL == "" {
		merged.SourceURL = existing.Record.SourceURL
	}
	if merged.SourcePath == "" {
		merged.SourcePath = existing.Record.SourcePath
	}

	merged.Links = mergeLinks(existing.Record.Links, incoming.Links)

	return types.StoredPosting{
		ID:        existing.ID,
		Record:    merged,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: now,
	}
}

// mergeLinks overlays incoming labels onto the existing map. A label
// present only in the existing record survives.
func mergeLinks(existing, incoming map[string]string) map[string]string {
	out := make(map[string]string, len(existing)+len(incoming))
	for label, url := range existing {
		out[label] = url
	}
	for label, url := range incoming {
		out[label] = url
	}
	return out
}
