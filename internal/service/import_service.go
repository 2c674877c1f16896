package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/export"
)

// Import formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatICS  = "ics"
)

var requiredImportColumns = []string{export.ColumnTitle, export.ColumnStartDate, export.ColumnEndDate}

// Date layouts accepted on import, normalised to models.DateLayout.
var importDateLayouts = []string{
	models.DateLayout,
	"2006/01/02",
	"2006.01.02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type eventWriter interface {
	Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error)
	ValidateCreate(req dto.CreateEventRequest) error
}

// ImportService loads events in bulk from spreadsheet and calendar files.
type ImportService struct {
	events  eventWriter
	csv     *export.CSVExporter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewImportService constructs an import service.
func NewImportService(events eventWriter, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{events: events, csv: export.NewCSVExporter(), metrics: metrics, logger: logger}
}

// ResolveFormat picks the import format from an explicit value or the file extension.
func ResolveFormat(format, filename string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}
	switch format {
	case FormatCSV, FormatXLSX, FormatICS:
		return format, nil
	case "ical", "ifb", "icalendar":
		return FormatICS, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported import format %q", format))
	}
}

// Import reads every row of r and creates one event per valid row. Rows that fail
// are reported with their 1-based data row number and do not stop the batch.
// With dryRun set the rows are only normalised and validated.
func (s *ImportService) Import(ctx context.Context, r io.Reader, filename, format string, dryRun bool) (*dto.ImportResult, error) {
	format, err := ResolveFormat(format, filename)
	if err != nil {
		return nil, err
	}
	data, err := readDataset(r, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read import file")
	}
	var missing []string
	for _, col := range requiredImportColumns {
		if !data.HasHeader(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required columns: "+strings.Join(missing, ", "))
	}

	result := &dto.ImportResult{
		Format: format,
		DryRun: dryRun,
		Total:  len(data.Rows),
		Failed: []dto.ImportRowError{},
		Events: []models.Event{},
	}
	hasColor := data.HasHeader(export.ColumnColor)
	for i, row := range data.Rows {
		req := NormalizeImportRow(row, hasColor)
		rowErr := func(err error) {
			result.Failed = append(result.Failed, dto.ImportRowError{Row: i + 1, Title: req.Title, Reason: err.Error()})
		}
		if dryRun {
			if err := s.events.ValidateCreate(req); err != nil {
				rowErr(err)
				continue
			}
			result.Events = append(result.Events, models.Event{
				Title: req.Title, StartDate: req.StartDate, EndDate: req.EndDate, Color: req.Color, Description: req.Description,
			})
			continue
		}
		event, err := s.events.Create(ctx, req)
		if err != nil {
			rowErr(err)
			continue
		}
		result.Events = append(result.Events, *event)
		result.Imported++
	}

	if !dryRun {
		s.metrics.RecordImport(format, result.Imported, len(result.Failed))
	}
	s.logger.Info("events import processed",
		zap.String("format", format),
		zap.Bool("dry_run", dryRun),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// NormalizeImportRow converts a raw row into a create request. Dates are
// reformatted when they match a known layout; colours resolve through the
// palette with unknown or empty values falling back to the default colour.
func NormalizeImportRow(row map[string]string, hasColor bool) dto.CreateEventRequest {
	color := models.DefaultColor.Hex
	if hasColor {
		color = models.ColorHex(row[export.ColumnColor])
	}
	return dto.CreateEventRequest{
		Title:       strings.TrimSpace(row[export.ColumnTitle]),
		StartDate:   normalizeDate(row[export.ColumnStartDate]),
		EndDate:     normalizeDate(row[export.ColumnEndDate]),
		Color:       color,
		Description: row[export.ColumnDescription],
	}
}

// Sample returns a CSV template listing the accepted columns.
func (s *ImportService) Sample() (*dto.FileResult, error) {
	data := export.Dataset{
		Headers: []string{export.ColumnTitle, export.ColumnStartDate, export.ColumnEndDate, export.ColumnColor, export.ColumnDescription},
		Rows: []map[string]string{
			{export.ColumnTitle: "프로젝트 시작", export.ColumnStartDate: "2024-11-10", export.ColumnEndDate: "2024-11-10", export.ColumnColor: "빨간색", export.ColumnDescription: "프로젝트 킥오프"},
			{export.ColumnTitle: "중간 발표", export.ColumnStartDate: "2024-11-15", export.ColumnEndDate: "2024-11-15", export.ColumnColor: "파란색", export.ColumnDescription: "중간 진행상황 보고"},
			{export.ColumnTitle: "최종 발표", export.ColumnStartDate: "2024-11-20", export.ColumnEndDate: "2024-11-20", export.ColumnColor: "초록색", export.ColumnDescription: "최종 결과 발표"},
		},
	}
	content, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render sample")
	}
	return &dto.FileResult{Filename: "sample_events.csv", ContentType: "text/csv; charset=utf-8", Data: content}, nil
}

func readDataset(r io.Reader, format string) (export.Dataset, error) {
	switch format {
	case FormatXLSX:
		return export.ReadXLSX(r)
	case FormatICS:
		return export.ReadICS(r)
	default:
		return export.ReadCSV(r)
	}
}

func normalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return trimmed
}
