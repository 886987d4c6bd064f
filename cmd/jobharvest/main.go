// cmd/jobharvest/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobsaddah/jobharvest/internal/assemble"
	"github.com/jobsaddah/jobharvest/internal/classify"
	"github.com/jobsaddah/jobharvest/internal/config"
	"github.com/jobsaddah/jobharvest/internal/dedupe"
	"github.com/jobsaddah/jobharvest/internal/discover"
	"github.com/jobsaddah/jobharvest/internal/export"
	"github.com/jobsaddah/jobharvest/internal/fetch"
	"github.com/jobsaddah/jobharvest/internal/monitoring"
	"github.com/jobsaddah/jobharvest/internal/pipeline"
	"github.com/jobsaddah/jobharvest/internal/server"
	"github.com/jobsaddah/jobharvest/internal/storage"
	"github.com/jobsaddah/jobharvest/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var logger = utils.NewComponentLogger("main")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "serve":
		runServe(configArg(os.Args[2:]))

	case "ingest":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: page URL required\n")
			fmt.Fprintf(os.Stderr, "Usage: jobharvest ingest <url> [config.yaml]\n")
			os.Exit(1)
		}
		runIngest(os.Args[2], configArg(os.Args[3:]))

	case "sync":
		runSync(configArg(os.Args[2:]))

	case "export":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: output file required\n")
			fmt.Fprintf(os.Stderr, "Usage: jobharvest export <out.xlsx> [config.yaml]\n")
			os.Exit(1)
		}
		runExport(os.Args[2], configArg(os.Args[3:]))

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: jobharvest validate <config.yaml>\n")
			os.Exit(1)
		}
		if _, err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file '%s' is valid\n", os.Args[2])

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runtime holds the wired pipeline components.
type runtime struct {
	cfg       *config.Config
	store     storage.Store
	ingestor  *pipeline.Ingestor
	scheduler *discover.Scheduler
	metrics   *monitoring.Metrics
	shutdown  []func(context.Context) error
}

func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	utils.SetLogLevel(utils.ParseLogLevel(cfg.LogLevel))

	rt := &runtime{cfg: cfg}
	rt.metrics = monitoring.NewMetrics(cfg.Metrics.Namespace)

	fetcher := fetch.NewClient(fetch.ClientConfig{
		Timeout:       cfg.Fetch.Timeout.Std(),
		RetryAttempts: cfg.Fetch.RetryAttempts,
		RetryDelay:    cfg.Fetch.RetryDelay.Std(),
		Headers:       cfg.Fetch.Headers,
		RateLimit:     cfg.Fetch.RequestsPerSecond,
		RateBurst:     cfg.Fetch.Burst,
		MaxBodyBytes:  cfg.Fetch.MaxBodyBytes,
	})

	classifier := classify.New(nil, cfg.Classify.Threshold)

	var normalizer assemble.Normalizer
	if cfg.Normalizer.Mode == "remote" {
		normalizer = assemble.NewRemoteNormalizer(assemble.RemoteConfig{
			Endpoint: cfg.Normalizer.Endpoint,
			APIKey:   cfg.Normalizer.APIKey,
			Model:    cfg.Normalizer.Model,
			Timeout:  cfg.Normalizer.Timeout.Std(),
		})
	} else {
		normalizer = assemble.NewRuleBasedNormalizer()
	}
	assembler := assemble.New(classifier, normalizer)

	if cfg.Storage.MongoURI != "" {
		mongoStore, err := storage.NewMongoStore(ctx, storage.MongoOptions{
			ConnectionString: cfg.Storage.MongoURI,
			Database:         cfg.Storage.Database,
			Collection:       "postings",
		})
		if err != nil {
			return nil, fmt.Errorf("mongo store: %w", err)
		}
		rt.store = mongoStore
		rt.shutdown = append(rt.shutdown, mongoStore.Close)
	} else {
		logger.Warn("no mongo_uri configured, using in-memory store")
		rt.store = storage.NewMemoryStore()
	}

	var locker storage.Locker
	if cfg.Storage.RedisURL != "" {
		redisLocker, err := storage.NewRedisLocker(ctx, cfg.Storage.RedisURL, cfg.Storage.LockTTL.Std())
		if err != nil {
			return nil, fmt.Errorf("redis locker: %w", err)
		}
		locker = redisLocker
	}

	resolver := dedupe.NewResolver(rt.store, dedupe.Options{
		Threshold: cfg.Resolver.Threshold,
		Window:    cfg.Resolver.Window.Std(),
		Policy:    matchPolicy(cfg.Resolver.Policy),
	})

	rt.ingestor = pipeline.NewIngestor(fetcher, assembler, resolver, rt.store, locker, rt.metrics)

	if len(cfg.Discovery.Categories) > 0 {
		discoverer := discover.NewDiscoverer(fetcher, rt.ingestor, discover.Options{
			MaxPages: cfg.Discovery.MaxPages,
			MaxPosts: cfg.Discovery.MaxPosts,
		})
		rt.scheduler = discover.NewScheduler(discoverer, discover.SchedulerConfig{
			CronSpec:    cfg.Discovery.CronSpec,
			Categories:  cfg.Discovery.Categories,
			Concurrency: cfg.Discovery.Concurrency,
			SyncTimeout: cfg.Discovery.SyncTimeout.Std(),
		})
	}

	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	for _, fn := range rt.shutdown {
		if err := fn(ctx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}
}

func matchPolicy(policy string) dedupe.MatchPolicy {
	if policy == "best_match" {
		return dedupe.PolicyBestMatch
	}
	return dedupe.PolicyFirstMatch
}

func runServe(configPath string) {
	cfg := loadConfig(configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if rt.scheduler != nil {
		if err := rt.scheduler.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer rt.scheduler.Stop()
	}

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath)
		if err != nil {
			logger.Warnf("config watcher disabled: %v", err)
		} else {
			watcher.OnChange(func(*config.Config) {
				logger.Warn("configuration changed on disk, restart to apply")
			})
			defer watcher.Close()
		}
	}

	// A nil *Scheduler must stay a nil interface for the sync endpoint's
	// availability check.
	var syncer server.Syncer
	if rt.scheduler != nil {
		syncer = rt.scheduler
	}

	srv := server.New(server.Config{
		Address:   cfg.Server.Address,
		APIKey:    cfg.Server.APIKey,
		RateLimit: rate.Limit(cfg.Server.RateLimit),
		RateBurst: cfg.Server.RateBurst,
	}, rt.ingestor, syncer, rt.store, rt.metrics)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	rt.close(shutdownCtx)
}

func runIngest(pageURL, configPath string) {
	cfg := loadConfig(configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close(context.Background())

	result, err := rt.ingestor.Ingest(ctx, pageURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s (%s)\n", result.Action, result.SourcePath, result.ID)
}

func runSync(configPath string) {
	cfg := loadConfig(configPath)
	if len(cfg.Discovery.Categories) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no discovery categories configured\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close(context.Background())

	syncCtx, cancel := context.WithTimeout(ctx, cfg.Discovery.SyncTimeout.Std())
	defer cancel()

	stats := rt.scheduler.SyncAll(syncCtx)
	fmt.Printf("synced %d categories: %d posts (%d created, %d merged, %d unchanged, %d failed)\n",
		len(cfg.Discovery.Categories), stats.PostsFound, stats.Created, stats.Merged, stats.Unchanged, stats.Failed)
}

// exportWindow bounds the export query; postings untouched for longer
// than a year are left out.
const exportWindow = 365 * 24 * time.Hour

func runExport(outPath, configPath string) {
	cfg := loadConfig(configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close(context.Background())

	postings, err := rt.store.FindRecentCandidates(ctx, exportWindow)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	writer, err := export.NewExcelWriter("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writer.WritePostings(postings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writer.SaveAs(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("exported %d postings to %s\n", len(postings), outPath)
}

func printUsage() {
	fmt.Println("JobHarvest - Recruitment Notice Ingestion Service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  jobharvest serve [config.yaml]          Start the HTTP service and scheduler")
	fmt.Println("  jobharvest ingest <url> [config.yaml]   Ingest a single notice page")
	fmt.Println("  jobharvest sync [config.yaml]           Sync all configured categories once")
	fmt.Println("  jobharvest export <out.xlsx> [config.yaml]  Export recent postings to a workbook")
	fmt.Println("  jobharvest validate <config.yaml>       Validate a configuration file")
	fmt.Println("  jobharvest version                      Show version information")
	fmt.Println("  jobharvest help                         Show this help message")
}

func printVersion() {
	fmt.Printf("JobHarvest %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
