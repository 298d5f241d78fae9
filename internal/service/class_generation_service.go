package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/internal/dto"
	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
	"github.com/noah-isme/swim-planner-api/pkg/jobs"
)

const (
	// GenerationJobType tags class generation jobs on the queue.
	GenerationJobType = "class_generation"

	// SubmissionMessage is returned once the job has been handed to a worker.
	SubmissionMessage = "Generación iniciada en segundo plano."

	enqueueFailedMessage = "failed to enqueue generation"
	queueFullMessage     = "generation queue is full, try again later"
	enqueueTimeout       = 3 * time.Second
	statusCacheKeyPrefix = "class_generation:status:"
)

// GenerationTask is the typed payload of a class generation job.
type GenerationTask struct {
	GenerationID string               `json:"generation_id"`
	GroupID      int64                `json:"group_id"`
	Config       models.SessionConfig `json:"config"`
	RequesterID  string               `json:"requester_id"`
}

type generationStore interface {
	Create(ctx context.Context, gen *models.ClassGeneration) error
	GetByID(ctx context.Context, id string) (*models.ClassGeneration, error)
	Claim(ctx context.Context, id string, now time.Time) (bool, error)
	Complete(ctx context.Context, id string, content models.JSONContent, now time.Time) (bool, error)
	Fail(ctx context.Context, id string, message string, now time.Time) (bool, error)
	ListPending(ctx context.Context, limit int) ([]models.ClassGeneration, error)
}

type groupChecker interface {
	GroupExists(ctx context.Context, id int64) (bool, error)
}

type statusCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type planRenderer interface {
	Render(gen *models.ClassGeneration, plan models.ClassPlan, format ExportFormat) (*ExportResult, error)
}

// ClassGenerationServiceConfig tunes recovery and caching.
type ClassGenerationServiceConfig struct {
	StatusCacheTTL  time.Duration
	RecoverPageSize int
}

// ClassGenerationService accepts generation requests and serves their status.
type ClassGenerationService struct {
	repo      generationStore
	groups    groupChecker
	queue     jobs.Dispatcher[GenerationTask]
	cache     statusCache
	exporter  planRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ClassGenerationServiceConfig
	now       func() time.Time
}

// NewClassGenerationService constructs the service. cache, exporter and
// metrics may be nil.
func NewClassGenerationService(
	repo generationStore,
	groups groupChecker,
	queue jobs.Dispatcher[GenerationTask],
	cache statusCache,
	exporter planRenderer,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ClassGenerationServiceConfig,
) *ClassGenerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatusCacheTTL <= 0 {
		cfg.StatusCacheTTL = 10 * time.Minute
	}
	if cfg.RecoverPageSize <= 0 {
		cfg.RecoverPageSize = 50
	}
	return &ClassGenerationService{
		repo:      repo,
		groups:    groups,
		queue:     queue,
		cache:     cache,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the request, records it as pending and enqueues the job.
// It never waits for the generation itself.
func (s *ClassGenerationService) Submit(ctx context.Context, req dto.GenerateClassRequest, requesterID string) (*dto.GenerateClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	exists, err := s.groups.GroupExists(ctx, req.GroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Group not found")
	}

	cfg := req.SessionConfig()
	rawConfig, err := json.Marshal(cfg)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session config")
	}
	gen := &models.ClassGeneration{
		GroupID:     req.GroupID,
		RequestedBy: requesterID,
		Status:      models.GenerationPending,
		Config:      models.JSONContent(rawConfig),
	}
	if err := s.repo.Create(ctx, gen); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create generation")
	}

	task := GenerationTask{GenerationID: gen.ID, GroupID: gen.GroupID, Config: cfg, RequesterID: requesterID}
	if err := s.enqueue(ctx, task); err != nil {
		saturated := errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, context.DeadlineExceeded)
		msg := enqueueFailedMessage
		if saturated {
			msg = queueFullMessage
		}
		if _, failErr := s.repo.Fail(context.WithoutCancel(ctx), gen.ID, msg, s.now()); failErr != nil {
			s.logger.Warn("failed to mark unqueued generation as failed", zap.String("generation_id", gen.ID), zap.Error(failErr))
		}
		if saturated {
			s.logger.Warn("generation queue saturated", zap.String("generation_id", gen.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, queueFullMessage)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation")
	}

	s.metrics.RecordSubmission()
	s.logger.Info("class generation submitted",
		zap.String("generation_id", gen.ID),
		zap.Int64("group_id", gen.GroupID),
		zap.String("requested_by", requesterID))
	return &dto.GenerateClassResponse{Success: true, GenerationID: gen.ID, Message: SubmissionMessage}, nil
}

// enqueue hands the task to the queue; it never waits longer than
// enqueueTimeout so a request is not held by a saturated backend.
func (s *ClassGenerationService) enqueue(ctx context.Context, task GenerationTask) error {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()
	return s.queue.Enqueue(ctx, jobs.Job[GenerationTask]{
		ID:      task.GenerationID,
		Type:    GenerationJobType,
		Payload: task,
	})
}

// Status returns the polling payload of a generation. Unknown and malformed
// ids are ErrNotFound. Terminal payloads are cached since they never change.
func (s *ClassGenerationService) Status(ctx context.Context, id string) (*dto.GenerationStatusResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.ErrNotFound
	}

	key := statusCacheKeyPrefix + id
	if s.cache != nil {
		var cached dto.GenerationStatusResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	gen, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := StatusPayload(gen)
	if gen.Status.Terminal() && s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cfg.StatusCacheTTL); err != nil {
			s.logger.Debug("status cache write skipped", zap.String("generation_id", id), zap.Error(err))
		}
	}
	return resp, nil
}

// StatusPayload projects a record onto the status contract: plan only when
// completed, error only when failed.
func StatusPayload(gen *models.ClassGeneration) *dto.GenerationStatusResponse {
	resp := &dto.GenerationStatusResponse{Success: true, Status: gen.Status}
	switch gen.Status {
	case models.GenerationCompleted:
		if !gen.Content.IsNull() {
			resp.Plan = gen.Content
		}
	case models.GenerationFailed:
		msg := models.Deref(gen.ErrorMessage)
		if msg == "" {
			msg = "generation failed"
		}
		resp.Error = &msg
	}
	return resp
}

// RecoverPending re-enqueues records left pending by a previous process. The
// claim step makes a duplicate dispatch harmless.
func (s *ClassGenerationService) RecoverPending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx, s.cfg.RecoverPageSize)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending generations")
	}
	recovered := 0
	for _, gen := range pending {
		cfg, err := gen.SessionConfig()
		if err != nil {
			s.logger.Warn("pending generation has unreadable config", zap.String("generation_id", gen.ID), zap.Error(err))
		}
		task := GenerationTask{GenerationID: gen.ID, GroupID: gen.GroupID, Config: cfg, RequesterID: gen.RequestedBy}
		if err := s.enqueue(ctx, task); err != nil {
			s.logger.Warn("failed to requeue pending generation", zap.String("generation_id", gen.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	if recovered > 0 {
		s.logger.Info("requeued pending generations", zap.Int("count", recovered))
	}
	return recovered, nil
}

// Export renders a completed plan. Records that are not completed are
// ErrConflict.
func (s *ClassGenerationService) Export(ctx context.Context, id string, format ExportFormat) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "export is not available")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.ErrNotFound
	}
	gen, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if gen.Status != models.GenerationCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "generation is not completed")
	}
	plan, err := ParsePlan(string(gen.Content))
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(gen, plan, format)
}

func (s *ClassGenerationService) load(ctx context.Context, id string) (*models.ClassGeneration, error) {
	gen, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation")
	}
	return gen, nil
}
