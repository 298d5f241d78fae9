package service

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
	"github.com/noah-isme/swim-planner-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportResult is a rendered document ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders completed class plans as documents.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService; nil renderers get the defaults.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render builds the plan dataset and renders it in the requested format.
func (s *ExportService) Render(gen *models.ClassGeneration, plan models.ClassPlan, format ExportFormat) (*ExportResult, error) {
	dataset := PlanDataset(gen, plan)
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Plan de clase")
		contentType = "application/pdf"
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		s.logger.Error("plan export failed", zap.String("generation_id", gen.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("plan-clase-%s.%s", gen.ID, format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

// Stage column headers, in rendering order.
const (
	colEtapa        = "Etapa"
	colDescripcion  = "Descripción"
	colOrganizacion = "Organización"
	colMaterial     = "Material"
	colMinutos      = "Minutos"
	colIntensidad   = "Intensidad"
)

// PlanDataset lays the plan stages out as export rows.
func PlanDataset(gen *models.ClassGeneration, plan models.ClassPlan) export.Dataset {
	rows := make([]map[string]string, 0, len(plan.Stages))
	for _, st := range plan.Stages {
		rows = append(rows, map[string]string{
			colEtapa:        st.Etapa,
			colDescripcion:  st.Descripcion,
			colOrganizacion: st.Organizacion,
			colMaterial:     st.Material,
			colMinutos:      st.TiempoMinutos.String(),
			colIntensidad:   st.Intensidad,
		})
	}
	meta := []string{"Grupo #" + strconv.FormatInt(gen.GroupID, 10)}
	if cfg, err := gen.SessionConfig(); err == nil && cfg.DurationMinutes > 0 {
		meta = append(meta,
			fmt.Sprintf("Duración: %d minutos", cfg.DurationMinutes),
			"Enfoque: "+cfg.FocusOrDefault(),
			"Material: "+cfg.MaterialsText())
	}
	if gen.FinishedAt != nil {
		meta = append(meta, "Generado: "+gen.FinishedAt.Format("2006-01-02 15:04"))
	}
	return export.Dataset{
		Meta:    meta,
		Headers: []string{colEtapa, colDescripcion, colOrganizacion, colMaterial, colMinutos, colIntensidad},
		Rows:    rows,
		Footer:  "Total: " + models.Minutes(plan.TotalMinutes()).String() + " minutos",
	}
}
