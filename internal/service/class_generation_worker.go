package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
	"github.com/noah-isme/swim-planner-api/pkg/jobs"
	"github.com/noah-isme/swim-planner-api/pkg/llm"
)

const (
	maxErrorMessageLen = 1000
	terminalWriteGrace = 10 * time.Second
)

type teachingContextBuilder interface {
	Build(ctx context.Context, groupID int64) (*models.TeachingContext, error)
}

type customPromptReader interface {
	GetCustomPrompt(ctx context.Context, userID string) (*string, error)
}

// ClassGenerationWorker runs one generation job to a terminal status.
type ClassGenerationWorker struct {
	repo      generationStore
	builder   teachingContextBuilder
	prompts   customPromptReader
	generator llm.Generator
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewClassGenerationWorker constructs the worker.
func NewClassGenerationWorker(repo generationStore, builder teachingContextBuilder, prompts customPromptReader, generator llm.Generator, metrics *MetricsService, logger *zap.Logger) *ClassGenerationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassGenerationWorker{
		repo:      repo,
		builder:   builder,
		prompts:   prompts,
		generator: generator,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle is the queue handler. A missing record or a lost claim is a no-op;
// once claimed, every outcome (including a panic) is written as completed or
// failed. Only store errors before the claim are returned.
func (w *ClassGenerationWorker) Handle(ctx context.Context, job jobs.Job[GenerationTask]) error {
	id := job.Payload.GenerationID
	if id == "" {
		id = job.ID
	}
	log := w.logger.With(zap.String("generation_id", id))

	gen, err := w.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("generation no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("load generation %s: %w", id, err)
	}
	log = log.With(zap.Int64("group_id", gen.GroupID))

	claimed, err := w.repo.Claim(ctx, id, w.now())
	if err != nil {
		return fmt.Errorf("claim generation %s: %w", id, err)
	}
	if !claimed {
		log.Info("generation already claimed or finished, skipping", zap.String("status", string(gen.Status)))
		return nil
	}
	log.Info("generation processing")
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", zap.Any("panic", r))
			w.fail(ctx, log, id, appErrors.New(appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("internal error: %v", r)), start)
		}
	}()

	plan, err := w.generate(ctx, log, gen, job.Payload)
	if err != nil {
		w.fail(ctx, log, id, err, start)
		return nil
	}
	w.complete(ctx, log, id, plan, start)
	return nil
}

func (w *ClassGenerationWorker) generate(ctx context.Context, log *zap.Logger, gen *models.ClassGeneration, task GenerationTask) (models.ClassPlan, error) {
	tc, err := w.builder.Build(ctx, gen.GroupID)
	if err != nil {
		return models.ClassPlan{}, err
	}

	cfg := task.Config
	if cfg.DurationMinutes == 0 {
		if stored, err := gen.SessionConfig(); err == nil {
			cfg = stored
		}
	}
	requester := task.RequesterID
	if requester == "" {
		requester = gen.RequestedBy
	}
	cfg.CustomInstructions = w.customInstructions(ctx, log, requester)

	prompt := AssemblePrompt(*tc, cfg)
	text, err := w.generator.Generate(ctx, prompt)
	if err != nil {
		return models.ClassPlan{}, err
	}
	plan, err := ParsePlan(text)
	if err != nil {
		return models.ClassPlan{}, err
	}
	if total := plan.TotalMinutes(); cfg.DurationMinutes > 0 && math.Abs(total-float64(cfg.DurationMinutes)) > 0.5 {
		log.Warn("plan duration differs from requested duration",
			zap.Float64("plan_minutes", total),
			zap.Int("requested_minutes", cfg.DurationMinutes))
	}
	return plan, nil
}

func (w *ClassGenerationWorker) customInstructions(ctx context.Context, log *zap.Logger, userID string) string {
	if userID == "" || w.prompts == nil {
		return ""
	}
	prompt, err := w.prompts.GetCustomPrompt(ctx, userID)
	if err != nil {
		log.Warn("custom prompt unavailable, continuing without it", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return models.Deref(prompt)
}

func (w *ClassGenerationWorker) complete(ctx context.Context, log *zap.Logger, id string, plan models.ClassPlan, start time.Time) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteGrace)
	defer cancel()
	ok, err := w.repo.Complete(wctx, id, plan.Raw, w.now())
	if err != nil {
		log.Error("failed to store completed plan", zap.Error(err))
		w.fail(ctx, log, id, err, start)
		return
	}
	if !ok {
		log.Warn("generation left processing before completion was stored")
		return
	}
	w.metrics.RecordGeneration(models.GenerationCompleted, "", time.Since(start))
	log.Info("generation completed", zap.Int("stages", len(plan.Stages)), zap.Duration("elapsed", time.Since(start)))
}

func (w *ClassGenerationWorker) fail(ctx context.Context, log *zap.Logger, id string, cause error, start time.Time) {
	code := appErrors.FromError(cause).Code
	msg := truncate(cause.Error(), maxErrorMessageLen)

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteGrace)
	defer cancel()
	ok, err := w.repo.Fail(wctx, id, msg, w.now())
	if err != nil {
		log.Error("failed to store generation failure", zap.String("cause", msg), zap.Error(err))
		return
	}
	if !ok {
		log.Warn("generation already terminal, failure not stored", zap.String("cause", msg))
		return
	}
	w.metrics.RecordGeneration(models.GenerationFailed, code, time.Since(start))
	log.Error("generation failed", zap.String("code", code), zap.Error(cause))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
