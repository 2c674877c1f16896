package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
)

type listerStub struct {
	events []models.Event
	err    error
}

func (l listerStub) List(ctx context.Context) ([]models.Event, bool, error) {
	return l.events, false, l.err
}

func TestBuildCalendarMonthPlacement(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "Kickoff", StartDate: "2024-11-10", EndDate: "2024-11-12"},
		{ID: 2, Title: "Review", StartDate: "2024-10-30", EndDate: "2024-11-01"},
		{ID: 3, Title: "Later", StartDate: "2024-12-01", EndDate: "2024-12-02"},
	}
	month := BuildCalendarMonth(events, 2024, time.November)

	assert.Equal(t, "November 2024", month.Title)
	require.Len(t, month.Weeks, 5)
	// 1 November 2024 is a Friday.
	first := month.Weeks[0]
	assert.Equal(t, 0, first[0].Day)
	assert.Equal(t, 1, first[5].Day)
	assert.Equal(t, 5, first[5].Weekday)
	require.Len(t, first[5].Events, 1)
	assert.Equal(t, "Review", first[5].Events[0].Title)

	days := map[int][]string{}
	for _, week := range month.Weeks {
		require.Len(t, week, 7)
		for _, cell := range week {
			for _, ev := range cell.Events {
				days[cell.Day] = append(days[cell.Day], ev.Title)
			}
		}
	}
	assert.Equal(t, []string{"Kickoff"}, days[10])
	assert.Equal(t, []string{"Kickoff"}, days[12])
	assert.Empty(t, days[13])
	last := month.Weeks[4]
	assert.Equal(t, 30, last[6].Day)
}

func TestCalendarServiceMonthValidation(t *testing.T) {
	svc := NewCalendarService(listerStub{}, nil, zap.NewNop())
	_, err := svc.Month(context.Background(), 2024, 13)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = svc.Month(context.Background(), 0, 1)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCalendarServiceFeedAndGantt(t *testing.T) {
	events := []models.Event{{ID: 4, Title: "Launch", StartDate: "2024-05-01", EndDate: "2024-05-03", Color: "#4ECDC4", Description: "go live"}}
	svc := NewCalendarService(listerStub{events: events}, nil, nil)

	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "#4ECDC4", feed[0].BackgroundColor)
	assert.Equal(t, "2024-05-03", feed[0].End)

	tasks, err := svc.Gantt(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Launch", tasks[0].Resource)
	assert.Equal(t, "go live", tasks[0].Description)
}

func TestCalendarServicePropagatesStoreErrors(t *testing.T) {
	svc := NewCalendarService(listerStub{err: appErrors.Persistence(errors.New("locked"), "")}, nil, nil)
	_, err := svc.Feed(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrPersistence))
}

func TestCalendarServiceMonthImage(t *testing.T) {
	events := []models.Event{{ID: 1, Title: "Kickoff", StartDate: "2024-11-10", EndDate: "2024-11-12"}}
	svc := NewCalendarService(listerStub{events: events}, nil, nil)

	file, err := svc.MonthImage(context.Background(), 2024, 11)
	require.NoError(t, err)
	assert.Equal(t, "calendar_2024_11.png", file.Filename)
	assert.Equal(t, "image/png", file.ContentType)
	_, err = png.Decode(bytes.NewReader(file.Data))
	require.NoError(t, err)
}
