package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/export"
)

// WeekdayLabels are the Sunday-first column headers of a month grid.
var WeekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type eventLister interface {
	List(ctx context.Context) ([]models.Event, bool, error)
}

type monthImageRenderer interface {
	Render(grid export.MonthGrid) ([]byte, error)
}

// CalendarService projects stored events into calendar, month grid and Gantt views.
type CalendarService struct {
	events   eventLister
	renderer monthImageRenderer
	logger   *zap.Logger
}

// NewCalendarService constructs the calendar view service.
func NewCalendarService(events eventLister, renderer monthImageRenderer, logger *zap.Logger) *CalendarService {
	if renderer == nil {
		renderer = export.NewPNGCalendarRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{events: events, renderer: renderer, logger: logger}
}

// Feed returns every event in the FullCalendar shape.
func (s *CalendarService) Feed(ctx context.Context) ([]dto.CalendarFeedEvent, error) {
	events, _, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	feed := make([]dto.CalendarFeedEvent, 0, len(events))
	for _, ev := range events {
		feed = append(feed, dto.CalendarFeedEvent{
			ID:              ev.ID,
			Title:           ev.Title,
			Start:           ev.StartDate,
			End:             ev.EndDate,
			BackgroundColor: ev.Color,
		})
	}
	return feed, nil
}

// Gantt returns one task row per event.
func (s *CalendarService) Gantt(ctx context.Context) ([]dto.GanttTask, error) {
	events, _, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]dto.GanttTask, 0, len(events))
	for _, ev := range events {
		tasks = append(tasks, dto.GanttTask{
			ID:          ev.ID,
			Task:        ev.Title,
			Start:       ev.StartDate,
			Finish:      ev.EndDate,
			Description: ev.Description,
			Resource:    ev.Title,
			Color:       ev.Color,
		})
	}
	return tasks, nil
}

// Month builds the grid for year/month from the stored events.
func (s *CalendarService) Month(ctx context.Context, year, month int) (*dto.CalendarMonth, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	events, _, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCalendarMonth(events, year, time.Month(month)), nil
}

// MonthImage renders the month grid as a PNG image.
func (s *CalendarService) MonthImage(ctx context.Context, year, month int) (*dto.FileResult, error) {
	grid, err := s.Month(ctx, year, month)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(MonthGridFrom(grid))
	if err != nil {
		s.logger.Error("render month image", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar image")
	}
	return &dto.FileResult{
		Filename:    fmt.Sprintf("calendar_%04d_%02d.png", year, month),
		ContentType: "image/png",
		Data:        data,
	}, nil
}

// BuildCalendarMonth lays out a Sunday-first grid. An event is listed on every
// day d with start_date <= d <= end_date; events keep their input order per day.
func BuildCalendarMonth(events []models.Event, year int, month time.Month) *dto.CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	result := &dto.CalendarMonth{
		Year:  year,
		Month: int(month),
		Title: first.Format("January 2006"),
	}

	week := make([]dto.CalendarDay, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, dto.CalendarDay{Weekday: i, Events: []dto.CalendarDayEvent{}})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1)
		iso := date.Format(models.DateLayout)
		cell := dto.CalendarDay{Day: day, Date: iso, Weekday: int(date.Weekday()), Events: []dto.CalendarDayEvent{}}
		for _, ev := range events {
			if ev.StartDate <= iso && iso <= ev.EndDate {
				cell.Events = append(cell.Events, dto.CalendarDayEvent{ID: ev.ID, Title: ev.Title, Color: ev.Color})
			}
		}
		week = append(week, cell)
		if len(week) == 7 {
			result.Weeks = append(result.Weeks, week)
			week = make([]dto.CalendarDay, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, dto.CalendarDay{Weekday: len(week), Events: []dto.CalendarDayEvent{}})
		}
		result.Weeks = append(result.Weeks, week)
	}
	return result
}

// MonthGridFrom converts a month grid into the renderer layout.
func MonthGridFrom(month *dto.CalendarMonth) export.MonthGrid {
	grid := export.MonthGrid{Title: month.Title, Weekdays: WeekdayLabels}
	for _, week := range month.Weeks {
		row := make([]export.GridCell, 0, len(week))
		for _, day := range week {
			cell := export.GridCell{Weekday: day.Weekday, Blank: day.Day == 0}
			if !cell.Blank {
				cell.Label = fmt.Sprintf("%d", day.Day)
				for _, ev := range day.Events {
					cell.Lines = append(cell.Lines, ev.Title)
				}
			}
			row = append(row, cell)
		}
		grid.Weeks = append(grid.Weeks, row)
	}
	return grid
}

func validateMonth(year, month int) error {
	if year < 1 || year > 9999 {
		return appErrors.Clone(appErrors.ErrValidation, "year must be between 1 and 9999")
	}
	if month < 1 || month > 12 {
		return appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	return nil
}
