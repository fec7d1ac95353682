package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sigha-api/internal/models"
	appErrors "github.com/noah-isme/sigha-api/pkg/errors"
	"github.com/noah-isme/sigha-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult captures a rendered timetable file.
type ExportResult struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportService renders the published timetable as CSV or PDF.
type ExportService struct {
	timetables publishedTimetableReader
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(timetables publishedTimetableReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{timetables: timetables, csv: csv, pdf: pdf, logger: logger}
}

// Export renders the published timetable in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	version, err := s.timetables.FindPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no published timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}
	blocks, err := s.timetables.ListBlocks(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable blocks")
	}

	dataset := timetableDataset(blocks)
	title := fmt.Sprintf("Horario General v%d", version.Version)
	timestamp := time.Now().UTC().Format("20060102_150405")

	var payload []byte
	var contentType string
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	return &ExportResult{
		Payload:     payload,
		Filename:    fmt.Sprintf("horario_v%d_%s.%s", version.Version, timestamp, format),
		ContentType: contentType,
	}, nil
}

func timetableDataset(blocks []models.ScheduleBlock) export.Dataset {
	rows := make([]map[string]string, 0, len(blocks))
	for _, block := range blocks {
		rows = append(rows, map[string]string{
			"Día":      block.Day,
			"Inicio":   block.StartTime,
			"Fin":      block.EndTime,
			"Curso":    block.CourseName,
			"Tipo":     string(block.Type),
			"Aula":     block.RoomName,
			"Programa": block.ProgramName,
			"Semestre": fmt.Sprintf("%d", block.Term),
		})
	}
	return export.Dataset{
		Headers: []string{"Día", "Inicio", "Fin", "Curso", "Tipo", "Aula", "Programa", "Semestre"},
		Rows:    rows,
	}
}
