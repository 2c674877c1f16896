package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/storage"
)

type backupServiceMock struct {
	dir string
}

func (m *backupServiceMock) Snapshot(ctx context.Context) (*dto.BackupResult, error) {
	return &dto.BackupResult{ID: "abc", Filename: "events.csv", URL: "/api/v1/backups/token"}, nil
}

func (m *backupServiceMock) Open(token string) (*os.File, string, error) {
	if token != "good" {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	f, err := os.Open(filepath.Join(m.dir, "events.csv"))
	return f, "events.csv", err
}

func (m *backupServiceMock) List() ([]storage.FileInfo, error) {
	return []storage.FileInfo{{Name: "events.csv", Size: 9, ModTime: time.Now()}}, nil
}

func TestBackupHandlerDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.csv"), []byte("title\nA\n"), 0o600))
	handler := NewBackupHandler(&backupServiceMock{dir: dir})

	c, w := newTestContext(http.MethodGet, "/backups/good", nil)
	c.Params = append(c.Params, ginParam("token", "good"))
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "title\nA\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "events.csv")

	c, w = newTestContext(http.MethodGet, "/backups/bad", nil)
	c.Params = append(c.Params, ginParam("token", "bad"))
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBackupHandlerCreateAndList(t *testing.T) {
	handler := NewBackupHandler(&backupServiceMock{})

	c, w := newTestContext(http.MethodPost, "/backups", nil)
	handler.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodGet, "/backups", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeEnvelope(t, w).Meta["count"])
}
