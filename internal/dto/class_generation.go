package dto

import "github.com/noah-isme/swim-planner-api/internal/models"

// GenerateClassRequest captures POST /class-generations payload.
type GenerateClassRequest struct {
	GroupID   int64    `json:"group_id" validate:"required,gt=0"`
	Focus     *string  `json:"focus" validate:"omitempty,max=120"`
	Duration  int      `json:"duration" validate:"required,min=15,max=180"`
	Materials []string `json:"materials" validate:"omitempty,max=50,dive,max=120"`
}

// SessionConfig converts the request into the session settings of the job.
func (r GenerateClassRequest) SessionConfig() models.SessionConfig {
	cfg := models.SessionConfig{DurationMinutes: r.Duration, Materials: r.Materials}
	if r.Focus != nil {
		cfg.Focus = *r.Focus
	}
	return cfg
}

// GenerateClassResponse is returned as soon as the job is queued.
type GenerateClassResponse struct {
	Success      bool   `json:"success"`
	GenerationID string `json:"generationId"`
	Message      string `json:"message"`
}

// GenerationStatusResponse is polled by the client until Status is terminal.
type GenerationStatusResponse struct {
	Success bool                    `json:"success"`
	Status  models.GenerationStatus `json:"status"`
	Plan    models.JSONContent      `json:"plan"`
	Error   *string                 `json:"error"`
}

// UpdatePromptRequest captures PUT /settings/prompt payload.
type UpdatePromptRequest struct {
	CustomPrompt *string `json:"custom_prompt" validate:"omitempty,max=2000"`
}

// PromptResponse exposes the instructor's custom prompt.
type PromptResponse struct {
	Success      bool    `json:"success"`
	CustomPrompt *string `json:"custom_prompt"`
}
