package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheet string
}

// NewXLSXExporter builds an exporter writing to the named sheet.
func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = "Plan"
	}
	return &XLSXExporter{sheet: sheet}
}

// Render writes a bold header row followed by the data rows. Cells that parse
// as integers are stored as numbers so spreadsheet sums work.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), e.sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(e.sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	for r, row := range data.Rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			if n, err := strconv.Atoi(v); err == nil {
				values[i] = n
				continue
			}
			values[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(e.sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	for i, h := range data.Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(h)) + 4
		for _, row := range data.Rows {
			if w := float64(len(row[i])) + 2; w > width {
				width = w
			}
		}
		if width > 60 {
			width = 60
		}
		if err := f.SetColWidth(e.sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("size column %s: %w", col, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
