package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/api"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/clock/system"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/config"
	collyfetcher "github.com/Dawn-Aurora/github-trending-crawler/internal/fetcher/colly"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/fetcher/retry"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/id/uuid"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/logging"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/metrics"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/queue"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/storage"
	gcsstore "github.com/Dawn-Aurora/github-trending-crawler/internal/storage/gcs"
	localstore "github.com/Dawn-Aurora/github-trending-crawler/internal/storage/local"
	"github.com/Dawn-Aurora/github-trending-crawler/internal/trending"
)

// newScrapeCmd creates and configures the 'scrape' subcommand, which runs
// the full pipeline exactly once.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape of the trending page",
		Long: `Checks the site's robots policy, fetches the trending page with
bounded retries, extracts repository records, and persists today's snapshot
unless one already exists.`,
		RunE: runScrapeCommand,
	}
}

// runScrapeCommand wires services from configuration and executes one run.
// Construction failures return an error; scrape failures are reported via
// the log and console and still exit normally.
func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, closeNotifier, err := buildNotifier(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	if cfg.Metrics.Enabled {
		server := api.New(cfg.Metrics.ListenAddr, logger)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shut down metrics server", zap.Error(err))
			}
		}()
	}

	fetcher := retry.New(
		collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Crawler.UserAgent,
			Timeout:   cfg.RequestTimeout(),
		}),
		retry.Config{
			MaxRetries:  cfg.HTTP.MaxRetries,
			BackoffBase: cfg.BackoffBase(),
			BackoffMax:  cfg.BackoffMax(),
		},
		logger,
	)
	policy := trending.NewRobotsEnforcer(
		cfg.Crawler.RespectRobots,
		cfg.Crawler.UserAgent,
		cfg.RequestTimeout(),
		logger,
	)

	scraper := trending.NewScraper(
		trending.ScraperConfig{URL: cfg.Crawler.TrendingURL},
		policy,
		fetcher,
		trending.NewParser(logger),
		store,
		notifier,
		system.New(),
		uuid.New(),
		os.Stdout,
		logger,
	)

	scraper.Run(ctx)
	return nil
}

func buildSnapshotStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (trending.SnapshotStore, func(), error) {
	noClose := func() {}
	switch cfg.Storage.Provider {
	case "local":
		store, err := localstore.New(localstore.Config{BaseDir: cfg.Storage.BaseDir})
		if err != nil {
			return nil, nil, fmt.Errorf("init local snapshot store: %w", err)
		}
		return store, noClose, nil
	case "gcs":
		logger.Info("Using GCS snapshot store", zap.String("bucket", cfg.Storage.GCSBucket))
		store, err := gcsstore.New(ctx, cfg.Storage.GCSBucket, cfg.Storage.Prefix, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs snapshot store: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Error closing GCS client", zap.Error(err))
			}
		}, nil
	case "noop":
		logger.Info("Using No-Op snapshot store. Records will be discarded.")
		return storage.NoOpStore{}, noClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

func buildNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (queue.Provider, func(), error) {
	switch cfg.Queue.Provider {
	case "pubsub":
		logger.Info("Connecting to GCP Pub/Sub", zap.String("topic", cfg.Queue.TopicID))
		provider, err := queue.NewPubSubProvider(ctx, cfg.Queue.ProjectID, cfg.Queue.TopicID, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init pubsub notifier: %w", err)
		}
		return provider, func() {
			if err := provider.Close(); err != nil {
				logger.Warn("Error closing pubsub client", zap.Error(err))
			}
		}, nil
	case "noop":
		return queue.NoOpProvider{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue provider: %s", cfg.Queue.Provider)
	}
}
