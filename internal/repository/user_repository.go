package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

// UserRepository provides access to instructor accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns an instructor by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT id, name, email, custom_prompt, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.Instructor
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// GetCustomPrompt returns the instructor's saved instructions. A missing user
// or an unset prompt both yield nil.
func (r *UserRepository) GetCustomPrompt(ctx context.Context, id string) (*string, error) {
	const query = `SELECT custom_prompt FROM users WHERE id = $1`
	var prompt sql.NullString
	if err := r.db.GetContext(ctx, &prompt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get custom prompt: %w", err)
	}
	if !prompt.Valid {
		return nil, nil
	}
	return &prompt.String, nil
}

// UpdateCustomPrompt stores (or clears, when prompt is nil) the instructor's
// instructions. Returns sql.ErrNoRows when the user does not exist.
func (r *UserRepository) UpdateCustomPrompt(ctx context.Context, id string, prompt *string, updatedAt time.Time) error {
	const query = `UPDATE users SET custom_prompt = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, prompt, updatedAt)
	if err != nil {
		return fmt.Errorf("update custom prompt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update custom prompt rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
