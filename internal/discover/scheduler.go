// internal/discover/scheduler.go
package discover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic category syncs on a cron spec with bounded
// per-category concurrency.
type Scheduler struct {
	discoverer  *Discoverer
	categories  []string
	cronSpec    string
	concurrency int
	syncTimeout time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// SchedulerConfig configures the periodic sync.
type SchedulerConfig struct {
	// CronSpec uses standard five-field cron syntax, e.g. "*/30 * * * *".
	CronSpec    string
	Categories  []string
	Concurrency int
	SyncTimeout time.Duration
}

// NewScheduler creates a scheduler. Zero concurrency means 2 categories
// at a time; zero timeout means 10 minutes per run.
func NewScheduler(discoverer *Discoverer, cfg SchedulerConfig) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 10 * time.Minute
	}
	return &Scheduler{
		discoverer:  discoverer,
		categories:  cfg.Categories,
		cronSpec:    cfg.CronSpec,
		concurrency: cfg.Concurrency,
		syncTimeout: cfg.SyncTimeout,
	}
}

// Start schedules the sync job. It does not run an immediate sync; call
// SyncAll for that.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()
		s.SyncAll(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cronSpec, err)
	}

	c.Start()
	s.cron = c
	s.running = true
	logger.Infof("scheduler started: %q over %d categories", s.cronSpec, len(s.categories))
	return nil
}

// Stop halts scheduling and waits for the in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	logger.Info("scheduler stopped")
}

// SyncAll syncs every configured category, at most s.concurrency at a
// time. Per-category failures are logged and aggregated; the combined
// stats cover the categories that succeeded.
func (s *Scheduler) SyncAll(ctx context.Context) *SyncStats {
	total := &SyncStats{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for _, category := range s.categories {
		select {
		case <-ctx.Done():
			logger.Warnf("sync aborted: %v", ctx.Err())
			wg.Wait()
			return total
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			defer func() { <-sem }()

			stats, err := s.discoverer.SyncCategory(ctx, category)
			if err != nil {
				logger.Errorf("sync %s: %v", category, err)
				return
			}

			mu.Lock()
			total.PagesVisited += stats.PagesVisited
			total.PostsFound += stats.PostsFound
			total.Created += stats.Created
			total.Merged += stats.Merged
			total.Unchanged += stats.Unchanged
			total.Failed += stats.Failed
			mu.Unlock()
		}(category)
	}

	wg.Wait()
	return total
}
