package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/jobsaddah/jobharvest/internal/storage"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "Bihar Police Constable Recruitment",
			b:        "Bihar Police Constable Recruitment",
			expected: 100,
		},
		{
			name:     "case and punctuation ignored",
			a:        "SSC CGL Recruitment 2025!",
			b:        "ssc cgl recruitment, 2025",
			expected: 100,
		},
		{
			name:     "no overlap",
			a:        "Railway Group D Vacancy",
			b:        "Income Tax Inspector Posts",
			expected: 0,
		},
		{
			name:     "empty input",
			a:        "",
			b:        "anything",
			expected: 0,
		},
		{
			name:     "half overlap against larger set",
			a:        "alpha beta",
			b:        "alpha beta gamma delta",
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got != tt.expected {
				t.Errorf("Similarity = %.1f, want %.1f", got, tt.expected)
			}

			// Symmetric under the defined normalization.
			if rev := Similarity(tt.b, tt.a); rev != got {
				t.Errorf("not symmetric: %.1f vs %.1f", got, rev)
			}
		})
	}
}

func storedPosting(title, org, path string) types.StoredPosting {
	record := *types.NewRecruitmentRecord()
	record.Title = title
	record.Organization = org
	record.SourcePath = path
	return types.StoredPosting{
		Record:    record,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func incomingRecord(title, org, path string) *types.RecruitmentRecord {
	record := types.NewRecruitmentRecord()
	record.Title = title
	record.Organization = org
	record.SourcePath = path
	return record
}

func TestResolveFastPath(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	stored, err := store.Upsert(ctx, storedPosting("Board Clerk Vacancy", "State Board", "/jobs/clerk"))
	if err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(store, Options{})
	match, err := resolver.Resolve(ctx, incomingRecord("Totally Different Title", "Other Org", "/jobs/clerk"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.ID != stored.ID {
		t.Errorf("fast path missed: %+v", match)
	}
}

func TestResolveFuzzyMatchDifferentURL(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	stored, err := store.Upsert(ctx, storedPosting(
		"Bihar Police Constable Recruitment 2025", "Bihar Police", "/jobs/bihar-constable"))
	if err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(store, Options{})
	match, err := resolver.Resolve(ctx, incomingRecord(
		"Bihar Police Constable Recruitment 2025", "Bihar Police", "/posts/constable-bihar-2025"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.ID != stored.ID {
		t.Error("identical title+org with different URL should match")
	}
}

func TestResolveUnrelatedCreates(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, storedPosting(
		"Railway Group D Vacancy", "Indian Railways", "/jobs/railway-group-d")); err != nil {
		t.Fatal(err)
	}

	incoming := incomingRecord("Income Tax Inspector Posts", "Income Tax Department", "/notices/it-inspector")

	existing := storedPosting("Railway Group D Vacancy", "Indian Railways", "/jobs/railway-group-d")
	score := CompositeScore(incoming, &existing.Record)
	if score != 0 {
		t.Errorf("unrelated composite score = %.1f, want 0", score)
	}

	match, err := NewResolver(store, Options{}).Resolve(ctx, incoming)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match != nil {
		t.Errorf("unrelated posting matched: %+v", match)
	}
}

func TestResolveWindowExcludesStale(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	stale := storedPosting("Board Clerk Vacancy 2025", "State Board", "/jobs/old-path")
	stale.UpdatedAt = time.Now().Add(-90 * 24 * time.Hour)
	if _, err := store.Upsert(ctx, stale); err != nil {
		t.Fatal(err)
	}

	match, err := NewResolver(store, Options{}).Resolve(ctx,
		incomingRecord("Board Clerk Vacancy 2025", "State Board", "/jobs/new-path"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match != nil {
		t.Error("posting outside the recent window should not match")
	}
}

func TestResolveBestMatchPolicy(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	older := storedPosting("Board Clerk Vacancy 2025 Apply", "State Board", "/jobs/a")
	older.UpdatedAt = time.Now().Add(-2 * time.Hour)
	if _, err := store.Upsert(ctx, older); err != nil {
		t.Fatal(err)
	}

	exact, err := store.Upsert(ctx, storedPosting("Board Clerk Vacancy 2025", "State Board", "/jobs/b"))
	if err != nil {
		t.Fatal(err)
	}

	match, err := NewResolver(store, Options{Policy: PolicyBestMatch}).Resolve(ctx,
		incomingRecord("Board Clerk Vacancy 2025", "State Board", "/jobs/c"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.ID != exact.ID {
		t.Errorf("best match policy picked %+v", match)
	}
}

func TestMergePreservesIdentityAndLinks(t *testing.T) {
	created := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	existing := storedPosting("Board Clerk Vacancy", "State Board", "/jobs/clerk")
	existing.ID = "posting-1"
	existing.CreatedAt = created
	existing.Record.Links = map[string]string{
		"Official Website": "https://board.gov.in",
		"Apply Online":     "https://board.gov.in/apply-old",
	}

	incoming := *incomingRecord("Board Clerk Vacancy 2025", "State Board", "/jobs/clerk")
	incoming.Links = map[string]string{
		"Apply Online": "https://board.gov.in/apply-new",
	}

	merged := Merge(existing, incoming, now)

	if merged.ID != "posting-1" {
		t.Errorf("identity changed: %q", merged.ID)
	}
	if !merged.CreatedAt.Equal(created) {
		t.Errorf("creation time changed: %v", merged.CreatedAt)
	}
	if !merged.UpdatedAt.Equal(now) {
		t.Errorf("update time = %v, want %v", merged.UpdatedAt, now)
	}

	if merged.Record.Title != "Board Clerk Vacancy 2025" {
		t.Errorf("incoming title should win: %q", merged.Record.Title)
	}
	if merged.Record.Links["Apply Online"] != "https://board.gov.in/apply-new" {
		t.Errorf("incoming link should win: %v", merged.Record.Links)
	}
	if merged.Record.Links["Official Website"] != "https://board.gov.in" {
		t.Errorf("existing-only label should survive: %v", merged.Record.Links)
	}

	// Inputs untouched.
	if existing.Record.Links["Apply Online"] != "https://board.gov.in/apply-old" {
		t.Error("existing posting mutated")
	}
	if incoming.Links["Official Website"] != "" {
		t.Error("incoming record mutated")
	}
}

func TestMergeBackfillsEmptyIncomingFields(t *testing.T) {
	existing := storedPosting("Board Clerk Vacancy", "State Board", "/jobs/clerk")
	existing.ID = "posting-2"

	incoming := *types.NewRecruitmentRecord()
	incoming.Title = "Board Clerk Vacancy 2K25"

	merged := Merge(existing, incoming, time.Now())

	if merged.Record.Organization != "State Board" {
		t.Errorf("organization not carried: %q", merged.Record.Organization)
	}
	if merged.Record.SourcePath != "/jobs/clerk" {
		t.Errorf("source path not carried: %q", merged.Record.SourcePath)
	}
}
