package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/export"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
	FormatICS:  "text/calendar; charset=utf-8",
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the stored events as downloadable files.
type ExportService struct {
	events eventLister
	csv    datasetRenderer
	xlsx   datasetRenderer
	ics    datasetRenderer
	pdf    pdfRenderer
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(events eventLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		events: events,
		csv:    export.NewCSVExporter(),
		xlsx:   export.NewXLSXExporter(),
		ics:    export.NewICSExporter(),
		pdf:    export.NewPDFExporter(),
		now:    time.Now,
		logger: logger,
	}
}

// WithPDFRenderer replaces the default PDF renderer.
func (s *ExportService) WithPDFRenderer(pdf pdfRenderer) *ExportService {
	if pdf != nil {
		s.pdf = pdf
	}
	return s
}

// Export renders every event in format (csv, xlsx, pdf or ics).
func (s *ExportService) Export(ctx context.Context, format string) (*dto.FileResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	events, _, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.Render(events, format)
	if err != nil {
		s.logger.Error("render export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &dto.FileResult{
		Filename:    fmt.Sprintf("events_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

// Render serialises events without touching the store.
func (s *ExportService) Render(events []models.Event, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return s.csv.Render(EventDataset(events, false))
	case FormatXLSX:
		return s.xlsx.Render(EventDataset(events, false))
	case FormatPDF:
		return s.pdf.Render(EventDataset(events, false), "Events")
	case FormatICS:
		return s.ics.Render(EventDataset(events, true))
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// EventDataset converts events into export rows. Colours are written as palette
// names so an exported file imports back to the same hex codes.
func EventDataset(events []models.Event, withID bool) export.Dataset {
	headers := []string{export.ColumnTitle, export.ColumnStartDate, export.ColumnEndDate, export.ColumnColor, export.ColumnDescription}
	if withID {
		headers = append([]string{export.ColumnID}, headers...)
	}
	rows := make([]map[string]string, 0, len(events))
	for _, ev := range events {
		row := map[string]string{
			export.ColumnTitle:       ev.Title,
			export.ColumnStartDate:   ev.StartDate,
			export.ColumnEndDate:     ev.EndDate,
			export.ColumnColor:       models.ColorName(ev.Color),
			export.ColumnDescription: ev.Description,
		}
		if withID {
			row[export.ColumnID] = strconv.FormatInt(ev.ID, 10)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}
