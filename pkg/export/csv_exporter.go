package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a titled table. Each row holds one cell per header, in header order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Validate checks that every row has exactly one value per header.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("dataset row %d has %d cells, want %d", i+1, len(row), len(d.Headers))
		}
	}
	return nil
}

// CSVExporter renders datasets as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the header line followed by every row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(data.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
