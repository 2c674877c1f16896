package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
	"github.com/noah-isme/event-dashboard-api/pkg/response"
)

// MaxImportSize caps uploaded import files.
const MaxImportSize = 10 << 20

type importService interface {
	Import(ctx context.Context, r io.Reader, filename, format string, dryRun bool) (*dto.ImportResult, error)
	Sample() (*dto.FileResult, error)
}

type exportService interface {
	Export(ctx context.Context, format string) (*dto.FileResult, error)
}

// TransferHandler exposes bulk import and export endpoints.
type TransferHandler struct {
	importer importService
	exporter exportService
}

// NewTransferHandler constructs a transfer handler.
func NewTransferHandler(importer importService, exporter exportService) *TransferHandler {
	return &TransferHandler{importer: importer, exporter: exporter}
}

// Import godoc
// @Summary Import events
// @Description Upload a csv, xlsx or ics file. Rows that fail validation are reported and skipped. With dry_run the rows are only validated.
// @Tags Transfer
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Import file"
// @Param format formData string false "csv, xlsx or ics; defaults to the file extension"
// @Param dry_run formData bool false "Validate without inserting"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is required"))
		return
	}
	if header.Size > MaxImportSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d MB", MaxImportSize>>20)))
		return
	}
	dryRun := false
	if raw := c.PostForm("dry_run"); raw != "" {
		if dryRun, err = strconv.ParseBool(raw); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dry_run must be a boolean"))
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to open upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.importer.Import(c.Request.Context(), file, header.Filename, c.PostForm("format"), dryRun)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Sample godoc
// @Summary Download a sample import file
// @Tags Transfer
// @Produce text/csv
// @Success 200 {file} file
// @Router /events/import/sample [get]
func (h *TransferHandler) Sample(c *gin.Context) {
	file, err := h.importer.Sample()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Export godoc
// @Summary Export events
// @Tags Transfer
// @Produce octet-stream
// @Param format query string false "csv, xlsx, pdf or ics" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /events/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
