package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsDateLayout = "20060102"

// Column names shared by the ICS renderer and reader.
const (
	ColumnID          = "id"
	ColumnTitle       = "title"
	ColumnStartDate   = "start_date"
	ColumnEndDate     = "end_date"
	ColumnColor       = "color"
	ColumnDescription = "description"
)

// ICSExporter renders event rows as all-day VEVENTs.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{productID: "-//event-dashboard//events//EN", now: time.Now}
}

// Render expects rows keyed by the Column* names with ISO dates.
// DTEND is exclusive in iCalendar, so it is written one day after end_date.
func (e *ICSExporter) Render(data Dataset) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)

	stamp := e.now().UTC()
	for i, row := range data.Rows {
		start, err := time.Parse("2006-01-02", row[ColumnStartDate])
		if err != nil {
			return nil, fmt.Errorf("row %d start_date: %w", i+1, err)
		}
		end, err := time.Parse("2006-01-02", row[ColumnEndDate])
		if err != nil {
			return nil, fmt.Errorf("row %d end_date: %w", i+1, err)
		}
		uid := row[ColumnID]
		if uid == "" {
			uid = fmt.Sprintf("row-%d", i+1)
		}

		event := cal.AddEvent(uid + "@event-dashboard")
		event.SetDtStampTime(stamp)
		event.SetSummary(row[ColumnTitle])
		if desc := row[ColumnDescription]; desc != "" {
			event.SetDescription(desc)
		}
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if color := row[ColumnColor]; color != "" {
			event.SetProperty(ical.ComponentProperty("COLOR"), color)
		}
	}

	return []byte(cal.Serialize()), nil
}

// ReadICS converts the VEVENTs of a calendar into event rows.
func ReadICS(r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read ics: %w", err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return Dataset{}, fmt.Errorf("parse ics: %w", err)
	}

	headers := []string{ColumnTitle, ColumnStartDate, ColumnEndDate, ColumnColor, ColumnDescription}
	rows := make([]map[string]string, 0)
	for _, ev := range cal.Events() {
		row := map[string]string{
			ColumnTitle:       strings.TrimSpace(propertyValue(ev, ical.ComponentPropertySummary)),
			ColumnDescription: propertyValue(ev, ical.ComponentPropertyDescription),
			ColumnColor:       strings.TrimSpace(propertyValue(ev, ical.ComponentProperty("COLOR"))),
		}
		start, _, ok := icsDate(strings.TrimSpace(propertyValue(ev, ical.ComponentPropertyDtStart)))
		if ok {
			row[ColumnStartDate] = start.Format("2006-01-02")
		}
		end, allDay, ok := icsDate(strings.TrimSpace(propertyValue(ev, ical.ComponentPropertyDtEnd)))
		switch {
		case !ok:
			row[ColumnEndDate] = row[ColumnStartDate]
		case allDay && end.After(start):
			row[ColumnEndDate] = end.AddDate(0, 0, -1).Format("2006-01-02")
		default:
			row[ColumnEndDate] = end.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return Dataset{Headers: headers, Rows: rows}, nil
}

func propertyValue(ev *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ev.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// icsDate reads the calendar date of a DATE or DATE-TIME value.
func icsDate(value string) (time.Time, bool, bool) {
	if len(value) < len(icsDateLayout) {
		return time.Time{}, false, false
	}
	t, err := time.Parse(icsDateLayout, value[:len(icsDateLayout)])
	if err != nil {
		return time.Time{}, false, false
	}
	return t, !strings.Contains(value, "T"), true
}
