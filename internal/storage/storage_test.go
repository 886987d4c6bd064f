package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

func TestMemoryStoreUpsertAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record := *types.NewRecruitmentRecord()
	record.Title = "Board Clerk Vacancy 2K25"
	record.SourcePath = "/jobs/clerk-2025"

	stored, err := store.Upsert(ctx, types.StoredPosting{
		Record:    record,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("upsert did not assign an ID")
	}

	found, err := store.FindBySourcePath(ctx, "/jobs/clerk-2025")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found == nil || found.ID != stored.ID {
		t.Errorf("found = %+v", found)
	}

	miss, err := store.FindBySourcePath(ctx, "/jobs/other")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if miss != nil {
		t.Errorf("expected nil on miss, got %+v", miss)
	}
}

func TestMemoryStoreRecentCandidatesWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fresh := types.StoredPosting{
		Record:    types.RecruitmentRecord{Title: "fresh"},
		UpdatedAt: time.Now(),
	}
	stale := types.StoredPosting{
		Record:    types.RecruitmentRecord{Title: "stale"},
		UpdatedAt: time.Now().Add(-90 * 24 * time.Hour),
	}

	if _, err := store.Upsert(ctx, fresh); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Upsert(ctx, stale); err != nil {
		t.Fatal(err)
	}

	candidates, err := store.FindRecentCandidates(ctx, 60*24*time.Hour)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Record.Title != "fresh" {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestMemoryStoreUpsertReplacesByID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Upsert(ctx, types.StoredPosting{
		Record:    types.RecruitmentRecord{Title: "v1"},
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	first.Record.Title = "v2"
	second, err := store.Upsert(ctx, *first)
	if err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on replace: %q vs %q", second.ID, first.ID)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d postings, want 1", store.Len())
	}
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		inside    int
		maxInside int
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "same-key")
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("critical section overlap: max concurrent = %d", maxInside)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "key-a")
	if err != nil {
		t.Fatal(err)
	}
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(ctx, "key-b")
		if err == nil {
			releaseB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked")
	}
}

func TestKeyedMutexContextCancel(t *testing.T) {
	locker := NewKeyedMutex()

	release, err := locker.Acquire(context.Background(), "held")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, "held"); err == nil {
		t.Error("expected context error while lock held")
	}

	release()
}
