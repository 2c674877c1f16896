package models

// DateLayout is the ISO 8601 calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// Event represents a titled date interval on the dashboard calendar.
type Event struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	StartDate   string `db:"start_date" json:"start_date"`
	EndDate     string `db:"end_date" json:"end_date"`
	Color       string `db:"color" json:"color"`
	Description string `db:"description" json:"description"`
}

// EventSortField enumerates sortable columns.
type EventSortField string

const (
	EventSortStartDate EventSortField = "start_date"
	EventSortEndDate   EventSortField = "end_date"
	EventSortTitle     EventSortField = "title"
)

// Valid reports whether the field maps to a sortable column.
func (f EventSortField) Valid() bool {
	switch f {
	case EventSortStartDate, EventSortEndDate, EventSortTitle:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EventFilter narrows down events for the management view.
// Empty StartDate/EndDate leave that side of the range open.
type EventFilter struct {
	StartDate string
	EndDate   string
	Keyword   string
	SortBy    EventSortField
	Order     SortOrder
}

// EventSummary aggregates dashboard status figures.
type EventSummary struct {
	Total         int    `db:"total" json:"total"`
	EarliestStart string `db:"earliest_start" json:"earliest_start,omitempty"`
	LatestEnd     string `db:"latest_end" json:"latest_end,omitempty"`
}
