package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/domain"
	"github.com/twquant/tw-screener/internal/modules/marketdata"
	"github.com/twquant/tw-screener/internal/modules/screener"
	"github.com/twquant/tw-screener/internal/notify"
	"github.com/twquant/tw-screener/internal/report"
)

// ScreeningJob orchestrates a full screening cycle: refresh market data,
// run the three scoring layers, write the report, and push notifications.
type ScreeningJob struct {
	log       zerolog.Logger
	collector *marketdata.Collector
	screener  *screener.Screener
	universe  []string
	reportDir string
	notifier  *notify.Service
	onResult  func([]domain.Candidate)

	mu      sync.Mutex
	running bool
}

// ScreeningConfig holds configuration for the screening job.
type ScreeningConfig struct {
	Log       zerolog.Logger
	Collector *marketdata.Collector
	Screener  *screener.Screener
	Universe  []string
	ReportDir string
	Notifier  *notify.Service
	// OnResult receives the final candidate list after each successful run.
	OnResult func([]domain.Candidate)
}

// NewScreeningJob creates a new screening job.
func NewScreeningJob(cfg ScreeningConfig) *ScreeningJob {
	return &ScreeningJob{
		log:       cfg.Log.With().Str("job", "screening").Logger(),
		collector: cfg.Collector,
		screener:  cfg.Screener,
		universe:  cfg.Universe,
		reportDir: cfg.ReportDir,
		notifier:  cfg.Notifier,
		onResult:  cfg.OnResult,
	}
}

// Name returns the job name.
func (j *ScreeningJob) Name() string {
	return "screening"
}

// Run executes one screening cycle.
func (j *ScreeningJob) Run() error {
	if !j.tryAcquire() {
		j.log.Warn().Msg("Screening already running, skipping this cycle")
		return nil
	}
	defer j.release()

	j.log.Info().Int("universe", len(j.universe)).Msg("Starting screening cycle")
	startTime := time.Now()

	// Step 1: Refresh market data (non-critical, per-symbol failures are
	// logged inside the collector).
	if j.collector != nil {
		collected := j.collector.Collect(j.universe)
		j.log.Info().Int("collected", collected).Msg("Data collection completed")
	}

	// Step 2: Run the screening pipeline (CRITICAL).
	if j.screener == nil {
		return fmt.Errorf("screener not available")
	}
	candidates := j.screener.Run(j.universe)

	if j.onResult != nil {
		j.onResult(candidates)
	}

	// Step 3: Write the report (non-critical).
	j.writeReport(startTime, candidates)

	// Step 4: Push notifications (non-critical).
	j.sendNotifications(startTime, candidates)

	j.log.Info().
		Int("candidates", len(candidates)).
		Dur("duration", time.Since(startTime)).
		Msg("Screening cycle completed")

	return nil
}

func (j *ScreeningJob) tryAcquire() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return false
	}
	j.running = true
	return true
}

func (j *ScreeningJob) release() {
	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// writeReport writes the candidate CSV.
// Non-critical - errors are logged but don't fail the cycle.
func (j *ScreeningJob) writeReport(asOf time.Time, candidates []domain.Candidate) {
	if j.reportDir == "" {
		return
	}

	path, err := report.WriteCSV(j.reportDir, asOf, candidates)
	if err != nil {
		j.log.Error().Err(err).Msg("Report write failed")
		return
	}
	j.log.Info().Str("path", path).Msg("Report written")
}

// sendNotifications pushes a summary to configured channels.
// Non-critical - errors are logged but don't fail the cycle.
func (j *ScreeningJob) sendNotifications(asOf time.Time, candidates []domain.Candidate) {
	if j.notifier == nil {
		return
	}

	if err := j.notifier.Broadcast(report.Summary(asOf, candidates)); err != nil {
		j.log.Error().Err(err).Msg("Notification delivery failed")
	}
}
