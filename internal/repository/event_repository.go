package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-dashboard-api/internal/models"
)

const eventColumns = `id, title, CAST(start_date AS TEXT) AS start_date, CAST(end_date AS TEXT) AS end_date,
COALESCE(color, '') AS color, COALESCE(description, '') AS description`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	color TEXT,
	description TEXT
)`

const postgresSchema = `CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	color TEXT,
	description TEXT
)`

// SampleEvent is inserted by Seed into an empty table.
var SampleEvent = models.Event{
	Title:       "Sample event",
	StartDate:   "2024-11-10",
	EndDate:     "2024-11-15",
	Color:       "#FF6B6B",
	Description: "This is a sample event.",
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// EventRepository persists events in the single events table.
type EventRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithMetrics attaches a query timing observer.
func (r *EventRepository) WithMetrics(metrics queryObserver) *EventRepository {
	r.metrics = metrics
	return r
}

// Ping checks that the underlying storage is reachable.
func (r *EventRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping events storage: %w", err)
	}
	return nil
}

// Initialize creates the events table when it does not exist yet.
func (r *EventRepository) Initialize(ctx context.Context) error {
	defer r.observe("events.initialize", time.Now())
	schema := sqliteSchema
	if r.db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize events table: %w", err)
	}
	return nil
}

// Seed inserts SampleEvent when the table is empty. It reports whether a row was added.
func (r *EventRepository) Seed(ctx context.Context) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	sample := SampleEvent
	if _, err := r.Create(ctx, &sample); err != nil {
		return false, fmt.Errorf("seed events: %w", err)
	}
	return true, nil
}

// Create inserts an event and writes the assigned id back onto it.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (int64, error) {
	defer r.observe("events.create", time.Now())
	query := r.db.Rebind(`INSERT INTO events (title, start_date, end_date, color, description)
VALUES (?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.GetContext(ctx, &id, query, event.Title, event.StartDate, event.EndDate, event.Color, event.Description); err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	event.ID = id
	return id, nil
}

// ListAll returns every event in storage order.
func (r *EventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	defer r.observe("events.list_all", time.Now())
	query := fmt.Sprintf("SELECT %s FROM events ORDER BY id ASC", eventColumns)
	events := make([]models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetByID fetches a single event. It returns sql.ErrNoRows when absent.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	defer r.observe("events.get", time.Now())
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM events WHERE id = ?", eventColumns))
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Update overwrites every mutable field of the event with the same id and
// returns the number of affected rows (zero when the id does not exist).
func (r *EventRepository) Update(ctx context.Context, event *models.Event) (int64, error) {
	defer r.observe("events.update", time.Now())
	query := r.db.Rebind(`UPDATE events SET title = ?, start_date = ?, end_date = ?, color = ?, description = ?
WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, event.Title, event.StartDate, event.EndDate, event.Color, event.Description, event.ID)
	if err != nil {
		return 0, fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update event rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes an event and returns the number of removed rows; deleting a
// missing id is a no-op.
func (r *EventRepository) Delete(ctx context.Context, id int64) (int64, error) {
	defer r.observe("events.delete", time.Now())
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM events WHERE id = ?"), id)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete event rows affected: %w", err)
	}
	return affected, nil
}

// DeleteAll removes every event and returns how many rows were removed.
func (r *EventRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer r.observe("events.delete_all", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM events")
	if err != nil {
		return 0, fmt.Errorf("delete all events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all events rows affected: %w", err)
	}
	return affected, nil
}

// Count returns the number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	defer r.observe("events.count", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events"); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// Summary returns the event count together with the overall date span.
func (r *EventRepository) Summary(ctx context.Context) (*models.EventSummary, error) {
	defer r.observe("events.summary", time.Now())
	const query = `SELECT COUNT(*) AS total,
COALESCE(CAST(MIN(start_date) AS TEXT), '') AS earliest_start,
COALESCE(CAST(MAX(end_date) AS TEXT), '') AS latest_end
FROM events`
	var summary models.EventSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	return &summary, nil
}

// Search returns events inside [StartDate, EndDate] whose title or description
// contains Keyword (case-insensitive), ordered by the requested column with
// storage order breaking ties. Keyword matching runs after the query so that
// case folding covers non-ASCII text on every driver.
func (r *EventRepository) Search(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	defer r.observe("events.search", time.Now())
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StartDate != "" {
		where = append(where, "start_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, "end_date <= ?")
		args = append(args, filter.EndDate)
	}

	sortBy := filter.SortBy
	if !sortBy.Valid() {
		sortBy = models.EventSortStartDate
	}
	direction := "ASC"
	if filter.Order == models.SortDesc {
		direction = "DESC"
	}

	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM events WHERE %s ORDER BY %s %s, id ASC",
		eventColumns, strings.Join(where, " AND "), sortBy, direction))
	events := make([]models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return filterByKeyword(events, filter.Keyword), nil
}

func filterByKeyword(events []models.Event, keyword string) []models.Event {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return events
	}
	matched := events[:0]
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Title), needle) ||
			strings.Contains(strings.ToLower(event.Description), needle) {
			matched = append(matched, event)
		}
	}
	return matched
}

func (r *EventRepository) observe(label string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveDBQuery(label, time.Since(start))
}
