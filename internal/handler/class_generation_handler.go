package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/swim-planner-api/internal/dto"
	"github.com/noah-isme/swim-planner-api/internal/service"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
	"github.com/noah-isme/swim-planner-api/pkg/response"
)

type classGenerationService interface {
	Submit(ctx context.Context, req dto.GenerateClassRequest, requesterID string) (*dto.GenerateClassResponse, error)
	Status(ctx context.Context, id string) (*dto.GenerationStatusResponse, error)
	Export(ctx context.Context, id string, format service.ExportFormat) (*service.ExportResult, error)
}

// ClassGenerationHandler exposes class plan generation endpoints.
type ClassGenerationHandler struct {
	service classGenerationService
}

// NewClassGenerationHandler constructs the handler.
func NewClassGenerationHandler(svc classGenerationService) *ClassGenerationHandler {
	return &ClassGenerationHandler{service: svc}
}

// Submit godoc
// @Summary Start generating a class plan
// @Description Records the request and returns its id immediately; poll the status endpoint for the plan.
// @Tags Class Generations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateClassRequest true "Session settings"
// @Success 200 {object} dto.GenerateClassResponse
// @Failure 400 {object} response.Failure
// @Failure 404 {object} response.Failure
// @Router /class-generations [post]
func (h *ClassGenerationHandler) Submit(c *gin.Context) {
	userID, err := requesterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GenerateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	resp, err := h.service.Submit(c.Request.Context(), req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Status godoc
// @Summary Poll a class generation
// @Tags Class Generations
// @Produce json
// @Param id path string true "Generation ID"
// @Success 200 {object} dto.GenerationStatusResponse
// @Failure 404 {object} response.Failure
// @Router /class-generations/{id} [get]
func (h *ClassGenerationHandler) Status(c *gin.Context) {
	resp, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// PDF godoc
// @Summary Download a completed plan as PDF
// @Tags Class Generations
// @Produce application/pdf
// @Param id path string true "Generation ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Failure
// @Failure 409 {object} response.Failure
// @Router /class-generations/{id}/pdf [get]
func (h *ClassGenerationHandler) PDF(c *gin.Context) {
	h.export(c, service.ExportFormatPDF)
}

// CSV godoc
// @Summary Download a completed plan as CSV
// @Tags Class Generations
// @Produce text/csv
// @Param id path string true "Generation ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Failure
// @Failure 409 {object} response.Failure
// @Router /class-generations/{id}/csv [get]
func (h *ClassGenerationHandler) CSV(c *gin.Context) {
	h.export(c, service.ExportFormatCSV)
}

func (h *ClassGenerationHandler) export(c *gin.Context, format service.ExportFormat) {
	result, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
