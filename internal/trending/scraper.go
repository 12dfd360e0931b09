package trending

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Dawn-Aurora/github-trending-crawler/internal/metrics"
)

// Outcome is the terminal state of one scraper run.
type Outcome string

// Run outcomes reported to metrics and the operator.
const (
	OutcomeSaved       Outcome = "saved"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeDenied      Outcome = "denied"
	OutcomeEmpty       Outcome = "empty"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeSaveFailed  Outcome = "save_failed"
	OutcomeError       Outcome = "error"
)

// ScraperConfig captures the orchestrator's own knobs.
type ScraperConfig struct {
	// URL is the trending listing page to scrape.
	URL string
}

// Scraper sequences one run: policy check, fetch, parse, persist. It never
// returns an error; every failure mode maps to an Outcome so the process
// exits normally regardless.
type Scraper struct {
	cfg      ScraperConfig
	policy   RobotsPolicy
	fetcher  Fetcher
	parser   *Parser
	store    SnapshotStore
	notifier Notifier
	clock    Clock
	ids      IDGenerator
	console  io.Writer
	logger   *zap.Logger
}

// NewScraper constructs a Scraper. Console output mirrors the log stream
// with human-readable status markers; nil defaults to stdout.
func NewScraper(
	cfg ScraperConfig,
	policy RobotsPolicy,
	fetcher Fetcher,
	parser *Parser,
	store SnapshotStore,
	notifier Notifier,
	clock Clock,
	ids IDGenerator,
	console io.Writer,
	logger *zap.Logger,
) *Scraper {
	if console == nil {
		console = os.Stdout
	}
	return &Scraper{
		cfg:      cfg,
		policy:   policy,
		fetcher:  fetcher,
		parser:   parser,
		store:    store,
		notifier: notifier,
		clock:    clock,
		ids:      ids,
		console:  console,
		logger:   logger,
	}
}

// Run executes one scrape. The deferred block guarantees the finished
// diagnostic fires on every path, including a recovered panic.
func (s *Scraper) Run(ctx context.Context) (outcome Outcome) {
	logger := s.logger
	if s.ids != nil {
		if runID, err := s.ids.NewID(); err == nil {
			logger = logger.With(zap.String("run_id", runID))
		}
	}

	logger.Info("starting trending scraper", zap.String("url", s.cfg.URL))
	s.printf("Starting trending scraper...")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected error", zap.Any("panic", r))
			s.printf("❌ Unexpected error: %v", r)
			outcome = OutcomeError
		}
		metrics.ObserveRun(string(outcome))
		logger.Info("scraper finished", zap.String("outcome", string(outcome)))
		s.printf("Scraper finished.")
	}()

	return s.run(ctx, logger)
}

func (s *Scraper) run(ctx context.Context, logger *zap.Logger) Outcome {
	if !s.policy.Allowed(ctx, s.cfg.URL) {
		logger.Warn("scraping not allowed by robots policy", zap.String("url", s.cfg.URL))
		s.printf("❌ Scraping not allowed by robots.txt")
		return OutcomeDenied
	}
	logger.Info("robots policy check passed")
	s.printf("✅ Robots policy check passed")

	page, err := s.fetcher.Fetch(ctx, s.cfg.URL)
	if err != nil {
		logger.Error("network error", zap.String("url", s.cfg.URL), zap.Error(err))
		s.printf("❌ Network error: %v", err)
		return OutcomeFetchFailed
	}

	repos, err := s.parser.Parse(string(page.Body))
	if err != nil {
		logger.Error("failed to parse trending page", zap.Error(err))
		s.printf("❌ Parse error: %v", err)
		return OutcomeError
	}
	if len(repos) == 0 {
		logger.Warn("no repositories found on trending page")
		s.printf("⚠️  No repositories found on trending page")
		return OutcomeEmpty
	}

	day := s.clock.Now().UTC().Format("2006-01-02")
	written, err := s.store.Save(ctx, day, repos)
	if err != nil {
		logger.Error("snapshot write failed", zap.String("day", day), zap.Error(err))
		s.printf("❌ Error saving snapshot: %v", err)
		metrics.ObserveSnapshotWrite("failed")
		return OutcomeSaveFailed
	}
	if !written {
		logger.Info("snapshot already exists; skipping save", zap.String("day", day))
		s.printf("ℹ️  Snapshot already exists for %s.", day)
		metrics.ObserveSnapshotWrite("skipped")
		return OutcomeSkipped
	}

	metrics.ObserveSnapshotWrite("written")
	logger.Info("snapshot saved",
		zap.String("day", day),
		zap.Int("repositories", len(repos)),
	)
	s.printf("✅ Successfully scraped %d repositories.", len(repos))

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, day); err != nil {
			logger.Warn("snapshot notification failed", zap.String("day", day), zap.Error(err))
		}
	}
	return OutcomeSaved
}

func (s *Scraper) printf(format string, args ...any) {
	fmt.Fprintf(s.console, format+"\n", args...)
}
