package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/response"
	"github.com/noah-isme/event-dashboard-api/pkg/storage"
)

type backupService interface {
	Snapshot(ctx context.Context) (*dto.BackupResult, error)
	Open(token string) (*os.File, string, error)
	List() ([]storage.FileInfo, error)
}

// BackupHandler exposes event snapshot endpoints.
type BackupHandler struct {
	service backupService
}

// NewBackupHandler constructs a backup handler.
func NewBackupHandler(svc backupService) *BackupHandler {
	return &BackupHandler{service: svc}
}

// Create godoc
// @Summary Snapshot events now
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	result, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List stored snapshots
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	files, err := h.service.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, map[string]interface{}{"count": len(files)})
}

// Download godoc
// @Summary Download a snapshot
// @Tags Backups
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /backups/{token} [get]
func (h *BackupHandler) Download(c *gin.Context) {
	file, name, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read snapshot"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Cache-Control", "no-store")
	contentType := service.ContentType(strings.TrimPrefix(filepath.Ext(name), "."))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
