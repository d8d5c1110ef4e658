package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/storage"
)

type planLoaderStub struct {
	plan *models.DegreePlan
}

func (s planLoaderStub) Get(_ context.Context, studentID string) (*models.DegreePlan, error) {
	if s.plan == nil || s.plan.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan")
	}
	return s.plan, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	plan := planWith(t, testCatalog(), map[int][]string{1: {"18-661"}, 2: {"18-786"}})
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(planLoaderStub{plan: plan}, store, signer, ExportConfig{APIPrefix: "/api/v1/"}, zap.NewNop())
	return svc, store
}

func TestPlanDatasetColumns(t *testing.T) {
	plan := planWith(t, testCatalog(), map[int][]string{2: {"18-786"}})
	dataset := PlanDataset(plan)
	assert.Equal(t, []string{"Student ID", "Program", "Semester", "Course Code", "Course Name", "Units"}, dataset.Headers)
	assert.Equal(t, [][]string{{"s-1", "EAI", "2", "18-786", "Introduction to Deep Learning", "12"}}, dataset.Rows)
}

func TestExportServiceCSVRoundTrip(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.ExportPlan(context.Background(), "s-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))

	file, name, format, err := svc.ResolveDownload(result.Token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Equal(t, ExportFormatCSV, format)
	assert.Equal(t, result.ExportID+".csv", name)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "s-1,EAI,1,18-661,Introduction to Machine Learning,12")
}

func TestExportServiceXLSXAndPDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	for _, format := range []ExportFormat{ExportFormatXLSX, ExportFormatPDF} {
		result, err := svc.ExportPlan(context.Background(), "s-1", format)
		require.NoError(t, err)
		f, err := store.Open(result.RelativePath)
		require.NoError(t, err)
		info, err := f.Stat()
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
		require.NoError(t, f.Close())
	}
}

func TestExportServiceErrors(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.ExportPlan(context.Background(), "s-1", "docx")
	assert.True(t, errors.Is(err, appErrors.ErrMalformedInput))

	_, err = svc.ExportPlan(context.Background(), "s-9", ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, _, _, err = svc.ResolveDownload("bogus.token.value.sig")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatXLSX, f)

	f, err = ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, f)

	_, err = ParseExportFormat("json")
	assert.Error(t, err)
}
