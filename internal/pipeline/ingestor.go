// internal/pipeline/ingestor.go
package pipeline

import (
	"context"
	"time"

	"github.com/jobsaddah/jobharvest/internal/assemble"
	"github.com/jobsaddah/jobharvest/internal/dedupe"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/internal/monitoring"
	"github.com/jobsaddah/jobharvest/internal/storage"
	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var logger = utils.NewComponentLogger("pipeline")

// Action tags the outcome of one ingestion.
type Action string

const (
	ActionCreated Action = "created"
	ActionMerged  Action = "merged"
	// ActionUnchanged marks a refresh whose page hash matched the stored
	// posting and whose body carried no update signals.
	ActionUnchanged Action = "unchanged"
)

// Result is the success outcome of one ingestion unit.
type Result struct {
	ID         string `json:"id"`
	Action     Action `json:"action"`
	SourcePath string `json:"source_path"`
	Title      string `json:"title"`
}

// Fetcher retrieves page markup. fetch.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Ingestor runs the full unit of work for one page: fetch, harvest,
// assemble, resolve, then merge or create under the advisory lock.
type Ingestor struct {
	fetcher   Fetcher
	assembler *assemble.Assembler
	resolver  *dedupe.Resolver
	store     storage.Store
	locker    storage.Locker
	metrics   *monitoring.Metrics
}

// NewIngestor wires the pipeline. A nil locker gets an in-process keyed
// mutex; a nil metrics sink gets a private registry.
func NewIngestor(fetcher Fetcher, assembler *assemble.Assembler, resolver *dedupe.Resolver, store storage.Store, locker storage.Locker, metrics *monitoring.Metrics) *Ingestor {
	if locker == nil {
		locker = storage.NewKeyedMutex()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics("")
	}
	assembler.SetClassificationObserver(metrics.RecordClassification)
	return &Ingestor{
		fetcher:   fetcher,
		assembler: assembler,
		resolver:  resolver,
		store:     store,
		locker:    locker,
		metrics:   metrics,
	}
}

// Ingest processes one page URL end to end. Every ingestion returns a
// Result or a StageError identifying the failed stage; no partial record
// is ever stored.
func (in *Ingestor) Ingest(ctx context.Context, pageURL string) (*Result, error) {
	start := time.Now()
	in.metrics.IngestionStarted()
	defer func() {
		in.metrics.IngestionFinished()
		in.metrics.ObserveIngest(time.Since(start))
	}()

	result, err := in.ingest(ctx, pageURL)
	if err != nil {
		if se, ok := AsStageError(err); ok {
			in.metrics.RecordStageFailure(string(se.Stage))
		}
		return nil, err
	}

	in.metrics.RecordIngestion(string(result.Action))
	logger.Infof("ingested %s: %s (%s)", pageURL, result.Action, result.ID)
	return result, nil
}

func (in *Ingestor) ingest(ctx context.Context, pageURL string) (*Result, error) {
	canonical, err := utils.CanonicalURL(pageURL)
	if err != nil {
		return nil, stageErr(StageFetch, pageURL, err, false)
	}

	fetchStart := time.Now()
	markup, err := in.fetcher.Fetch(ctx, canonical)
	in.metrics.ObserveFetch(time.Since(fetchStart))
	if err != nil {
		return nil, stageErr(StageFetch, canonical, err, true)
	}

	doc := harvest.Parse(markup, canonical)
	pageHash := PageHash(doc)

	// Fast path: an exact source-path hit whose content hash is unchanged
	// skips normalization entirely; only update signals are mined.
	sourcePath := utils.SourcePath(canonical)
	existing, err := in.store.FindBySourcePath(ctx, sourcePath)
	if err != nil {
		return nil, stageErr(StageResolve, canonical, err, true)
	}
	if existing != nil && existing.Record.PageHash == pageHash {
		return in.refreshExisting(ctx, canonical, existing, doc)
	}

	record, err := in.assembler.Assemble(ctx, doc)
	if err != nil {
		return nil, stageErr(StageNormalize, canonical, err, true)
	}
	record.PageHash = pageHash

	return in.resolveAndStore(ctx, canonical, record, doc)
}

// refreshExisting patches update signals into an unchanged posting.
func (in *Ingestor) refreshExisting(ctx context.Context, url string, existing *types.StoredPosting, doc *harvest.RawDocument) (*Result, error) {
	if !MineUpdates(&existing.Record, doc) {
		return &Result{
			ID:         existing.ID,
			Action:     ActionUnchanged,
			SourcePath: existing.Record.SourcePath,
			Title:      existing.Record.Title,
		}, nil
	}

	existing.UpdatedAt = time.Now().UTC()
	stored, err := in.store.Upsert(ctx, *existing)
	if err != nil {
		return nil, stageErr(StageStore, url, err, true)
	}
	return &Result{
		ID:         stored.ID,
		Action:     ActionMerged,
		SourcePath: stored.Record.SourcePath,
		Title:      stored.Record.Title,
	}, nil
}

// resolveAndStore runs the decide-then-write step under the advisory lock
// keyed by normalized title+organization, closing the concurrent-create
// race.
func (in *Ingestor) resolveAndStore(ctx context.Context, url string, record *types.RecruitmentRecord, doc *harvest.RawDocument) (*Result, error) {
	release, err := in.locker.Acquire(ctx, dedupe.LockKey(record))
	if err != nil {
		return nil, stageErr(StageResolve, url, err, true)
	}
	defer release()

	match, err := in.resolver.Resolve(ctx, record)
	if err != nil {
		return nil, stageErr(StageResolve, url, err, true)
	}

	now := time.Now().UTC()

	var posting types.StoredPosting
	action := ActionCreated
	if match != nil {
		MineUpdates(record, doc)
		posting = dedupe.Merge(*match, *record, now)
		action = ActionMerged
	} else {
		posting = types.StoredPosting{
			Record:    *record,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	stored, err := in.store.Upsert(ctx, posting)
	if err != nil {
		return nil, stageErr(StageStore, url, err, true)
	}

	return &Result{
		ID:         stored.ID,
		Action:     action,
		SourcePath: stored.Record.SourcePath,
		Title:      stored.Record.Title,
	}, nil
}
