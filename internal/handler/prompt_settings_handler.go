package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/swim-planner-api/internal/dto"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
	"github.com/noah-isme/swim-planner-api/pkg/response"
)

type promptSettingsService interface {
	Get(ctx context.Context, userID string) (*dto.PromptResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdatePromptRequest) (*dto.PromptResponse, error)
}

// PromptSettingsHandler exposes the instructor's custom prompt.
type PromptSettingsHandler struct {
	service promptSettingsService
}

// NewPromptSettingsHandler constructs the handler.
func NewPromptSettingsHandler(svc promptSettingsService) *PromptSettingsHandler {
	return &PromptSettingsHandler{service: svc}
}

// Get godoc
// @Summary Read my custom prompt
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.PromptResponse
// @Router /settings/prompt [get]
func (h *PromptSettingsHandler) Get(c *gin.Context) {
	userID, err := requesterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Update godoc
// @Summary Replace my custom prompt
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePromptRequest true "Prompt"
// @Success 200 {object} dto.PromptResponse
// @Failure 400 {object} response.Failure
// @Router /settings/prompt [put]
func (h *PromptSettingsHandler) Update(c *gin.Context) {
	userID, err := requesterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	resp, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
