package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-advisor-api/internal/service"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

type exportServiceMock struct {
	path      string
	format    service.ExportFormat
	requested service.ExportFormat
}

func (m *exportServiceMock) ExportPlan(_ context.Context, _ string, format service.ExportFormat) (*service.ExportResult, error) {
	m.requested = format
	return &service.ExportResult{ExportID: "exp-1", Format: format, URL: "/api/v1/exports/tok", ExpiresAt: time.Unix(0, 0)}, nil
}

func (m *exportServiceMock) ResolveDownload(token string) (*os.File, string, service.ExportFormat, error) {
	if token != "tok" {
		return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "export link is invalid or expired")
	}
	f, err := os.Open(m.path)
	return f, filepath.Base(m.path), m.format, err
}

func TestExportHandlerDefaultsToXLSX(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc)
	c, w := newJSONContext(http.MethodPost, "/plans/s-1/export", nil, gin.Params{{Key: "studentId", Value: "s-1"}})

	handler.Export(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.ExportFormatXLSX, svc.requested)
	assert.Contains(t, w.Body.String(), `"url":"/api/v1/exports/tok"`)
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{})
	c, w := newJSONContext(http.MethodPost, "/plans/s-1/export?format=docx", nil, gin.Params{{Key: "studentId", Value: "s-1"}})

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Student ID,Program\ns-1,EAI\n"), 0o600))
	handler := NewExportHandler(&exportServiceMock{path: path, format: service.ExportFormatCSV})

	c, w := newJSONContext(http.MethodGet, "/exports/tok", nil, gin.Params{{Key: "token", Value: "tok"}})
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="exp-1.csv"`)
	assert.Equal(t, "Student ID,Program\ns-1,EAI\n", w.Body.String())

	c, w = newJSONContext(http.MethodGet, "/exports/forged", nil, gin.Params{{Key: "token", Value: "forged"}})
	handler.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
