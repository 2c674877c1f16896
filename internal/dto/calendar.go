package dto

// CalendarFeedEvent is the shape consumed by FullCalendar-style widgets.
type CalendarFeedEvent struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// CalendarDayEvent is an event occupying a single grid cell.
type CalendarDayEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
}

// CalendarDay is one cell of a month grid. Padding cells have Day == 0.
type CalendarDay struct {
	Day     int                `json:"day"`
	Date    string             `json:"date,omitempty"`
	Weekday int                `json:"weekday"`
	Events  []CalendarDayEvent `json:"events"`
}

// CalendarMonth is a Sunday-first month grid.
type CalendarMonth struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Title string          `json:"title"`
	Weeks [][]CalendarDay `json:"weeks"`
}

// GanttTask is one bar of the Gantt chart.
type GanttTask struct {
	ID          int64  `json:"id"`
	Task        string `json:"task"`
	Start       string `json:"start"`
	Finish      string `json:"finish"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Color       string `json:"color,omitempty"`
}
