package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-advisor-api/internal/dto"
	"github.com/noah-isme/degree-advisor-api/internal/service"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/response"
)

type exportService interface {
	ExportPlan(ctx context.Context, studentID string, format service.ExportFormat) (*service.ExportResult, error)
	ResolveDownload(token string) (*os.File, string, service.ExportFormat, error)
}

// ExportHandler renders plan exports and serves signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Export a plan as xlsx, csv or pdf
// @Tags Exports
// @Produce json
// @Param studentId path string true "Student ID"
// @Param format query string false "xlsx (default), csv or pdf"
// @Success 201 {object} response.Envelope
// @Router /plans/{studentId}/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, http.StatusBadRequest, "invalid export request"))
		return
	}
	format, err := service.ParseExportFormat(req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ExportPlan(c.Request.Context(), c.Param("studentId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ExportResponse{
		ExportID:  result.ExportID,
		Format:    string(result.Format),
		URL:       result.URL,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Download godoc
// @Summary Download a rendered export through its signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, format, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
