package dto

// CreateEventRequest describes the create payload.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,notblank"`
	StartDate   string `json:"start_date" validate:"required,isodate"`
	EndDate     string `json:"end_date" validate:"required,isodate"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// UpdateEventRequest overwrites every mutable field of an event.
type UpdateEventRequest struct {
	Title       string `json:"title" validate:"required,notblank"`
	StartDate   string `json:"start_date" validate:"required,isodate"`
	EndDate     string `json:"end_date" validate:"required,isodate"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// EventSearchRequest mirrors the management view's advanced search form.
type EventSearchRequest struct {
	StartDate string `form:"start_date" json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `form:"end_date" json:"end_date" validate:"omitempty,isodate"`
	Keyword   string `form:"keyword" json:"keyword"`
	SortBy    string `form:"sort_by" json:"sort_by" validate:"omitempty,oneof=start_date end_date title"`
	Order     string `form:"order" json:"order" validate:"omitempty,oneof=asc desc"`
}

// IsEmpty reports whether no search criteria were supplied.
func (r EventSearchRequest) IsEmpty() bool {
	return r.StartDate == "" && r.EndDate == "" && r.Keyword == "" && r.SortBy == "" && r.Order == ""
}

// PurgeEventsRequest carries the confirmation code for a bulk delete.
type PurgeEventsRequest struct {
	Code string `json:"code"`
}

// PurgeEventsResult reports the outcome of a bulk delete.
type PurgeEventsResult struct {
	Deleted int64 `json:"deleted"`
}
