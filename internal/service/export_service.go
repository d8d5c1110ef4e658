package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/export"
	"github.com/noah-isme/degree-advisor-api/pkg/storage"
)

// ExportFormat names a supported export file type.
type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// PlanExportHeaders are the columns of every plan export.
var PlanExportHeaders = []string{"Student ID", "Program", "Semester", "Course Code", "Course Name", "Units"}

type planLoader interface {
	Get(ctx context.Context, studentID string) (*models.DegreePlan, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a stored export and its signed download link.
type ExportResult struct {
	ExportID     string
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders flattened plans and hands out signed download links.
type ExportService struct {
	plans     planLoader
	storage   fileStorage
	renderers map[ExportFormat]datasetRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService with the CSV, XLSX and PDF renderers.
func NewExportService(plans planLoader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		plans:   plans,
		storage: store,
		renderers: map[ExportFormat]datasetRenderer{
			ExportFormatCSV:  export.NewCSVExporter(),
			ExportFormatXLSX: export.NewXLSXExporter("Degree Plan"),
			ExportFormatPDF:  export.NewPDFExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// ParseExportFormat maps a query value to a format; empty means xlsx.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return ExportFormatXLSX, nil
	case ExportFormatXLSX, ExportFormatCSV, ExportFormatPDF:
		return f, nil
	default:
		return "", appErrors.Clonef(appErrors.ErrMalformedInput, "unsupported export format %q", raw)
	}
}

// PlanDataset flattens a plan into the export table.
func PlanDataset(plan *models.DegreePlan) export.Dataset {
	rows := make([][]string, 0)
	for _, c := range plan.Flatten() {
		rows = append(rows, []string{
			c.StudentID,
			string(c.Program),
			strconv.Itoa(c.Semester),
			c.Code,
			c.Name,
			strconv.Itoa(c.Units),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Degree plan %s (%s)", plan.StudentID, plan.Program),
		Headers: PlanExportHeaders,
		Rows:    rows,
	}
}

// ExportPlan renders the student's plan and stores it for download.
func (s *ExportService) ExportPlan(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clonef(appErrors.ErrMalformedInput, "unsupported export format %q", format)
	}
	plan, err := s.plans.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(PlanDataset(plan))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := filepath.ToSlash(filepath.Join("plans", sanitizeFilename(studentID), fmt.Sprintf("%s.%s", exportID, format)))
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("plan exported",
		zap.String("student_id", studentID),
		zap.String("export_id", exportID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		ExportID:     exportID,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ResolveDownload validates a token and opens the referenced file. The
// caller closes the file.
func (s *ExportService) ResolveDownload(token string) (*os.File, string, ExportFormat, error) {
	parsed, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export link is invalid or expired")
	}
	format, err := ParseExportFormat(strings.TrimPrefix(filepath.Ext(parsed.Path), "."))
	if err != nil {
		return nil, "", "", err
	}
	file, err := s.storage.Open(parsed.Path)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer exists")
	}
	return file, filepath.Base(parsed.Path), format, nil
}

// Cleanup removes exports older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup purges expired exports every interval until ctx is cancelled.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", "_", ".", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
