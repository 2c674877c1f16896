package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/jobs"
	"github.com/noah-isme/event-dashboard-api/pkg/storage"
)

func seededEvents() []models.Event {
	return []models.Event{
		{Title: "Project Kickoff", StartDate: "2024-11-10", EndDate: "2024-11-10", Color: "#FF6B6B", Description: "kickoff for all hands"},
		{Title: "Mid review", StartDate: "2024-11-15", EndDate: "2024-11-16", Color: "#45B7D1", Description: ""},
		{Title: "Final", StartDate: "2024-11-20", EndDate: "2024-11-22", Color: "#845EC2", Description: "최종 결과 발표"},
	}
}

func stripIDs(events []models.Event) []models.Event {
	out := make([]models.Event, len(events))
	for i, ev := range events {
		ev.ID = 0
		out[i] = ev
	}
	return out
}

func TestImportServiceCSVWithRowFailures(t *testing.T) {
	repo := newEventRepoStub()
	events := NewEventService(repo, nil, nil, nil, nil, nil)
	svc := NewImportService(events, NewMetricsService(), zap.NewNop())

	input := "title,start_date,end_date,color,description\n" +
		"Kickoff,2024-11-10,2024-11-10,파란색,first\n" +
		",2024-11-11,2024-11-11,red,no title\n" +
		"Backwards,2024-11-12,2024-11-01,green,\n" +
		"Slashes,2024/11/13,2024/11/14,unknown,\n"

	result, err := svc.Import(context.Background(), strings.NewReader(input), "events.csv", "", false)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, result.Format)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 2, result.Failed[0].Row)
	assert.Equal(t, 3, result.Failed[1].Row)
	assert.Equal(t, "Backwards", result.Failed[1].Title)

	require.Len(t, repo.events, 2)
	assert.Equal(t, "#45B7D1", repo.events[0].Color)
	assert.Equal(t, "2024-11-13", repo.events[1].StartDate)
	assert.Equal(t, models.DefaultColor.Hex, repo.events[1].Color)
}

func TestImportServiceMissingColumns(t *testing.T) {
	repo := newEventRepoStub()
	svc := NewImportService(NewEventService(repo, nil, nil, nil, nil, nil), nil, nil)

	_, err := svc.Import(context.Background(), strings.NewReader("title,start_date\nA,2024-01-01\n"), "x.csv", "csv", false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "end_date")
	assert.Empty(t, repo.events)
}

func TestImportServiceDryRunDoesNotInsert(t *testing.T) {
	repo := newEventRepoStub()
	svc := NewImportService(NewEventService(repo, nil, nil, nil, nil, nil), nil, nil)

	input := "title,start_date,end_date\nA,2024-01-01,2024-01-02\n"
	result, err := svc.Import(context.Background(), strings.NewReader(input), "x.csv", "", true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 0, result.Imported)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.DefaultColor.Hex, result.Events[0].Color)
	assert.Empty(t, repo.events)
}

func TestImportServiceUnsupportedFormat(t *testing.T) {
	svc := NewImportService(NewEventService(newEventRepoStub(), nil, nil, nil, nil, nil), nil, nil)
	_, err := svc.Import(context.Background(), strings.NewReader(""), "events.json", "", false)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestImportServiceSample(t *testing.T) {
	repo := newEventRepoStub()
	svc := NewImportService(NewEventService(repo, nil, nil, nil, nil, nil), nil, nil)

	sample, err := svc.Sample()
	require.NoError(t, err)
	assert.Equal(t, "sample_events.csv", sample.Filename)

	result, err := svc.Import(context.Background(), bytes.NewReader(sample.Data), sample.Filename, "", false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, "#FF6B6B", repo.events[0].Color)
	assert.Equal(t, "#4ECDC4", repo.events[2].Color)
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatXLSX, FormatICS} {
		t.Run(format, func(t *testing.T) {
			padded := models.Event{Title: "Padded", StartDate: "2024-11-25", EndDate: "2024-11-25", Color: "#FF9671",
				Description: "  indented\nline two, with comma; semi \\ back  "}
			source := newEventRepoStub(append(seededEvents(), padded)...)
			sourceSvc := NewEventService(source, nil, nil, nil, nil, nil)
			exporter := NewExportService(sourceSvc, nil)

			file, err := exporter.Export(context.Background(), format)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(file.Filename, "."+format))
			assert.Equal(t, ContentType(format), file.ContentType)

			target := newEventRepoStub()
			importer := NewImportService(NewEventService(target, nil, nil, nil, nil, nil), nil, nil)
			result, err := importer.Import(context.Background(), bytes.NewReader(file.Data), file.Filename, "", false)
			require.NoError(t, err)
			require.Empty(t, result.Failed)

			assert.Equal(t, stripIDs(source.events), stripIDs(target.events))
		})
	}
}

func TestExportServicePDFAndUnknownFormat(t *testing.T) {
	svc := NewExportService(NewEventService(newEventRepoStub(seededEvents()...), nil, nil, nil, nil, nil), nil)

	file, err := svc.Export(context.Background(), "PDF")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "docx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func newBackupServiceForTest(t *testing.T) (*BackupService, *storage.LocalStorage, *MetricsService) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	events := NewEventService(newEventRepoStub(seededEvents()...), nil, nil, nil, nil, nil)
	metrics := NewMetricsService()
	svc := NewBackupService(events, NewExportService(events, nil), store, storage.NewSignedURLSigner("secret", time.Hour),
		metrics, BackupConfig{APIPrefix: "/api/v1", Format: "csv", Retention: time.Hour}, zap.NewNop())
	return svc, store, metrics
}

func TestBackupServiceSnapshotAndOpen(t *testing.T) {
	svc, _, metrics := newBackupServiceForTest(t)

	result, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/backups/"))
	assert.Greater(t, result.Size, 0)
	assert.Equal(t, uint64(1), metrics.Snapshot().BackupsCreated)

	token := strings.TrimPrefix(result.URL, "/api/v1/backups/")
	file, name, err := svc.Open(token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Equal(t, result.Filename, name)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Project Kickoff")

	_, _, err = svc.Open(token + "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	files, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestBackupServiceHandleJob(t *testing.T) {
	svc, store, _ := newBackupServiceForTest(t)

	require.Error(t, svc.HandleJob(context.Background(), jobs.Job{Type: "other"}))
	require.NoError(t, svc.HandleJob(context.Background(), jobs.Job{ID: "1", Type: JobTypeBackup}))

	files, err := store.List()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
