package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/pkg/logger"
)

const (
	// StaleGenerationMessage is recorded on processing generations failed by the reaper.
	StaleGenerationMessage = "generation timed out while processing"
	// LostGenerationMessage is recorded on pending generations no worker ever claimed.
	LostGenerationMessage = "generation was never picked up by a worker"
)

type staleFailer interface {
	FailStale(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error)
	FailStalePending(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error)
}

// GenerationReaperConfig sets how old a processing (StaleAfter) or pending
// (PendingStaleAfter) record must be before it is failed and how often the
// check runs.
type GenerationReaperConfig struct {
	StaleAfter        time.Duration
	PendingStaleAfter time.Duration
	Interval          time.Duration
}

// GenerationReaper fails generations whose worker died mid-run.
type GenerationReaper struct {
	repo      staleFailer
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       GenerationReaperConfig
	scheduler gocron.Scheduler
	now       func() time.Time
}

// NewGenerationReaper constructs a reaper; Start schedules it.
func NewGenerationReaper(repo staleFailer, metrics *MetricsService, log *zap.Logger, cfg GenerationReaperConfig) *GenerationReaper {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 10 * time.Minute
	}
	if cfg.PendingStaleAfter <= 0 {
		cfg.PendingStaleAfter = time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &GenerationReaper{
		repo:    repo,
		metrics: metrics,
		logger:  log.Named("reaper"),
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Reap fails every processing generation started before now - StaleAfter and
// every pending generation created before now - PendingStaleAfter.
func (r *GenerationReaper) Reap(ctx context.Context) (int, error) {
	now := r.now()
	stale, err := r.repo.FailStale(ctx, now.Add(-r.cfg.StaleAfter), StaleGenerationMessage, now)
	if err != nil {
		return 0, err
	}
	if len(stale) > 0 {
		r.logger.Warn("failed stale generations", zap.Strings("generation_ids", stale))
	}
	lost, err := r.repo.FailStalePending(ctx, now.Add(-r.cfg.PendingStaleAfter), LostGenerationMessage, now)
	if err != nil {
		r.metrics.RecordReaped(len(stale))
		return len(stale), err
	}
	if len(lost) > 0 {
		r.logger.Warn("failed lost pending generations", zap.Strings("generation_ids", lost))
	}
	n := len(stale) + len(lost)
	r.metrics.RecordReaped(n)
	return n, nil
}

// Start schedules Reap every Interval until Stop. Overlapping runs are
// rescheduled rather than stacked.
func (r *GenerationReaper) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.NewGocronLogger(r.logger)),
	)
	if err != nil {
		return fmt.Errorf("create reaper scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(r.cfg.Interval),
		gocron.NewTask(func() {
			if _, err := r.Reap(ctx); err != nil {
				r.logger.Error("reap stale generations", zap.Error(err))
			}
		}),
		gocron.WithName("reap-stale-generations"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule reaper: %w", err)
	}
	r.scheduler = s
	s.Start()
	r.logger.Info("reaper started", zap.Duration("interval", r.cfg.Interval), zap.Duration("stale_after", r.cfg.StaleAfter),
		zap.Duration("pending_stale_after", r.cfg.PendingStaleAfter))
	return nil
}

// Stop shuts the scheduler down, waiting for a running reap.
func (r *GenerationReaper) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}
