package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfUsableWidth = 277.0

// PDFExporter renders datasets into a landscape A4 table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the dataset title and a bordered table. Column widths follow
// the longest value in each column.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	widths := columnWidths(data)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, value := range row {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(data Dataset) []float64 {
	weights := make([]float64, len(data.Headers))
	total := 0.0
	for i, header := range data.Headers {
		longest := len(header)
		for _, row := range data.Rows {
			if len(row[i]) > longest {
				longest = len(row[i])
			}
		}
		weights[i] = float64(longest) + 2
		total += weights[i]
	}
	for i := range weights {
		weights[i] = weights[i] / total * pdfUsableWidth
	}
	return weights
}
