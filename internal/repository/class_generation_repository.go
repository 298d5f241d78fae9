package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

const generationColumns = `id, group_id, requested_by, status, config, content, error_message, created_at, updated_at, started_at, finished_at`

// ClassGenerationRepository persists generation requests. Status changes are
// compare-and-swap updates so a record only ever moves forward.
type ClassGenerationRepository struct {
	db *sqlx.DB
}

// NewClassGenerationRepository constructs the repository.
func NewClassGenerationRepository(db *sqlx.DB) *ClassGenerationRepository {
	return &ClassGenerationRepository{db: db}
}

// Create inserts a new pending generation with generated defaults.
func (r *ClassGenerationRepository) Create(ctx context.Context, gen *models.ClassGeneration) error {
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}
	if gen.Status == "" {
		gen.Status = models.GenerationPending
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}
	gen.UpdatedAt = gen.CreatedAt
	if gen.Config.IsNull() {
		gen.Config = models.JSONContent(`{}`)
	}
	const query = `INSERT INTO class_generations (id, group_id, requested_by, status, config, created_at, updated_at)
VALUES (:id, :group_id, :requested_by, :status, :config, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, gen); err != nil {
		return fmt.Errorf("create class generation: %w", err)
	}
	return nil
}

// GetByID returns a generation by its identifier.
func (r *ClassGenerationRepository) GetByID(ctx context.Context, id string) (*models.ClassGeneration, error) {
	query := `SELECT ` + generationColumns + ` FROM class_generations WHERE id = $1`
	var gen models.ClassGeneration
	if err := r.db.GetContext(ctx, &gen, query, id); err != nil {
		return nil, fmt.Errorf("get class generation: %w", err)
	}
	return &gen, nil
}

// Claim moves a generation from pending to processing. It returns false when
// another worker already claimed it or the record is no longer pending.
func (r *ClassGenerationRepository) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	const query = `UPDATE class_generations SET status = 'processing', started_at = $2, updated_at = $2
WHERE id = $1 AND status = 'pending'`
	return r.execTransition(ctx, "claim", query, id, now)
}

// Complete stores the plan of a processing generation.
func (r *ClassGenerationRepository) Complete(ctx context.Context, id string, content models.JSONContent, now time.Time) (bool, error) {
	const query = `UPDATE class_generations SET status = 'completed', content = $2, error_message = NULL, finished_at = $3, updated_at = $3
WHERE id = $1 AND status = 'processing'`
	return r.execTransition(ctx, "complete", query, id, content, now)
}

// Fail records the failure cause of a non-terminal generation.
func (r *ClassGenerationRepository) Fail(ctx context.Context, id string, message string, now time.Time) (bool, error) {
	const query = `UPDATE class_generations SET status = 'failed', content = NULL, error_message = $2, finished_at = $3, updated_at = $3
WHERE id = $1 AND status IN ('pending', 'processing')`
	return r.execTransition(ctx, "fail", query, id, message, now)
}

func (r *ClassGenerationRepository) execTransition(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s class generation: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s class generation rows: %w", op, err)
	}
	return affected == 1, nil
}

// ListPending fetches pending generations, oldest first (cold start recovery).
func (r *ClassGenerationRepository) ListPending(ctx context.Context, limit int) ([]models.ClassGeneration, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + generationColumns + ` FROM class_generations WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`
	var gens []models.ClassGeneration
	if err := r.db.SelectContext(ctx, &gens, query, limit); err != nil {
		return nil, fmt.Errorf("list pending class generations: %w", err)
	}
	return gens, nil
}

// FailStale fails every generation stuck in processing since before cutoff and
// returns their ids.
func (r *ClassGenerationRepository) FailStale(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error) {
	const query = `UPDATE class_generations SET status = 'failed', content = NULL, error_message = $2, finished_at = $3, updated_at = $3
WHERE status = 'processing' AND started_at < $1 RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, cutoff, message, now); err != nil {
		return nil, fmt.Errorf("fail stale class generations: %w", err)
	}
	return ids, nil
}

// FailStalePending fails every generation still pending since before cutoff,
// i.e. jobs that were lost before a worker claimed them, and returns their ids.
func (r *ClassGenerationRepository) FailStalePending(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error) {
	const query = `UPDATE class_generations SET status = 'failed', content = NULL, error_message = $2, finished_at = $3, updated_at = $3
WHERE status = 'pending' AND created_at < $1 RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, cutoff, message, now); err != nil {
		return nil, fmt.Errorf("fail stale pending class generations: %w", err)
	}
	return ids, nil
}
