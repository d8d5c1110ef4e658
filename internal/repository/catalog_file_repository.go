package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

var catalogHeaderAliases = map[string]string{
	"course_code":           "code",
	"code":                  "code",
	"course_name":           "name",
	"name":                  "name",
	"title":                 "name",
	"course_units":          "units",
	"units":                 "units",
	"course_semester":       "terms",
	"semester_availability": "terms",
	"offered_terms":         "terms",
	"prerequisites":         "prerequisites",
	"prerequisite":          "prerequisites",
	"course_discipline":     "discipline",
	"discipline":            "discipline",
	"program":               "discipline",
}

// CatalogFileRepository reads the course catalog from a CSV or XLSX export.
type CatalogFileRepository struct {
	path string
}

// NewCatalogFileRepository builds a file-backed catalog source.
func NewCatalogFileRepository(path string) *CatalogFileRepository {
	return &CatalogFileRepository{path: path}
}

// ListCourses returns the raw catalog rows in file order.
func (r *CatalogFileRepository) ListCourses(ctx context.Context) ([]models.CatalogRow, error) {
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".xlsx":
		return readCatalogXLSX(r.path)
	case ".csv", "":
		f, err := os.Open(r.path)
		if err != nil {
			return nil, fmt.Errorf("open catalog %s: %w", r.path, err)
		}
		defer f.Close() //nolint:errcheck
		return ParseCatalogCSV(f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(r.path))
	}
}

// ParseCatalogCSV decodes catalog rows; columns may appear in any order.
func ParseCatalogCSV(r io.Reader) ([]models.CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	index, err := catalogHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []models.CatalogRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, catalogRowFrom(record, index))
	}
	return rows, nil
}

func readCatalogXLSX(path string) ([]models.CatalogRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read catalog sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	index, err := catalogHeaderIndex(records[0])
	if err != nil {
		return nil, err
	}
	rows := make([]models.CatalogRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, catalogRowFrom(record, index))
	}
	return rows, nil
}

func catalogHeaderIndex(header []string) (map[string]int, error) {
	index := map[string]int{}
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF")))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		if field, ok := catalogHeaderAliases[key]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	if _, ok := index["code"]; !ok {
		return nil, fmt.Errorf("catalog header has no course code column")
	}
	if _, ok := index["units"]; !ok {
		return nil, fmt.Errorf("catalog header has no units column")
	}
	return index, nil
}

func catalogRowFrom(record []string, index map[string]int) models.CatalogRow {
	get := func(field string) string {
		i, ok := index[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	prereq := get("prerequisites")
	if strings.EqualFold(prereq, "nan") || strings.EqualFold(prereq, "none") {
		prereq = ""
	}
	return models.CatalogRow{
		Code:          get("code"),
		Name:          get("name"),
		Units:         get("units"),
		OfferedTerms:  get("terms"),
		Prerequisites: prereq,
		Discipline:    get("discipline"),
	}
}
