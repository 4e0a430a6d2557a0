// Package report assembles the weekly report PDF from the chart
// screenshots and the generated summary.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// dateLayout is the dd/mm/yyyy format shown on the report
const dateLayout = "02/01/2006"

// Chart is one captured chart image placed on the report
type Chart struct {
	// Title is printed above the image
	Title string
	// PNG holds the screenshot bytes
	PNG []byte
}

// Params describes one report document
type Params struct {
	Company   string
	StartDate time.Time
	EndDate   time.Time
	Summary   string
	Charts    []Chart
}

// Render produces the report PDF
func Render(p Params) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, p.Company, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	weekRange := fmt.Sprintf("%s - %s", p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout))
	pdf.CellFormat(0, 7, fmt.Sprintf("Weekly audit report  |  %s", weekRange), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated on %s", time.Now().Format(dateLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if p.Summary != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, p.Summary, "", "L", false)
		pdf.Ln(4)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	imageWidth := pageWidth - left - right

	for i, chart := range p.Charts {
		name := fmt.Sprintf("chart-%d", i)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(chart.PNG))
		if pdf.Err() {
			return nil, fmt.Errorf("failed to embed chart %q: %w", chart.Title, pdf.Error())
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, chart.Title, "", 1, "L", false, 0, "")
		pdf.ImageOptions(name, left, pdf.GetY(), imageWidth, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}
	return buf.Bytes(), nil
}
