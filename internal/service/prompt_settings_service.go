package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/internal/dto"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

type customPromptStore interface {
	GetCustomPrompt(ctx context.Context, userID string) (*string, error)
	UpdateCustomPrompt(ctx context.Context, userID string, prompt *string, updatedAt time.Time) error
}

// PromptSettingsService manages the instructor's personal instructions that
// are added to every generated plan.
type PromptSettingsService struct {
	repo      customPromptStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPromptSettingsService constructs the service.
func NewPromptSettingsService(repo customPromptStore, validate *validator.Validate, logger *zap.Logger) *PromptSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptSettingsService{repo: repo, validator: validate, logger: logger}
}

// Get returns the saved prompt, nil when unset.
func (s *PromptSettingsService) Get(ctx context.Context, userID string) (*dto.PromptResponse, error) {
	prompt, err := s.repo.GetCustomPrompt(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load custom prompt")
	}
	return &dto.PromptResponse{Success: true, CustomPrompt: prompt}, nil
}

// Update stores the prompt; a blank prompt clears it.
func (s *PromptSettingsService) Update(ctx context.Context, userID string, req dto.UpdatePromptRequest) (*dto.PromptResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	var prompt *string
	if req.CustomPrompt != nil {
		if trimmed := strings.TrimSpace(*req.CustomPrompt); trimmed != "" {
			prompt = &trimmed
		}
	}
	if err := s.repo.UpdateCustomPrompt(ctx, userID, prompt, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update custom prompt")
	}
	s.logger.Info("custom prompt updated", zap.String("user_id", userID), zap.Bool("cleared", prompt == nil))
	return &dto.PromptResponse{Success: true, CustomPrompt: prompt}, nil
}
