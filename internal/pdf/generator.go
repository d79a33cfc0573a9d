package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/aquacred-registry/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the registration certificate of a single project.
func (g *Generator) Generate(cert model.ProjectCertificate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle(fmt.Sprintf("AquaCred certificate #%d", cert.Project.ProjectID), true)
	pdf.SetCreator("AquaCred Registry Portal", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 12, "AquaCred Blue Carbon Registry", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 13)
	pdf.CellFormat(0, 8, "Certificate of Project Registration", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf(
		"This certifies that the project below is recorded on chain under registry id %d.",
		cert.Project.ProjectID,
	)), "", "L", false)
	pdf.Ln(4)

	widths := []float64{60, 110}
	rows := [][2]string{
		{"Project name", cert.Project.ProjectName},
		{"Location", cert.Project.Location},
		{"Implementing body", cert.Project.ImplementingBody},
		{"Project type", cert.Project.ProjectType},
		{"Area", fmt.Sprintf("%d ha", cert.Project.AreaHectares)},
		{"Start date", cert.StartDate},
		{"Estimated CO2", fmt.Sprintf("%d t per year", cert.EstimatedCO2)},
	}
	for _, row := range rows {
		drawFieldRow(pdf, g.fontName, tr, row[0], row[1], widths)
	}
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "On-chain record", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("Registry contract: %s", safeValue(cert.ContractAddress)), "", "L", false)
	if cert.ContractURL != "" {
		pdf.SetTextColor(0, 70, 160)
		pdf.WriteLinkString(5, cert.ContractURL, cert.ContractURL)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Issued %s", formatDateTime(cert.IssuedAt)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawFieldRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, label, value string, widths []float64) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(widths[0], 8, label, "1", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(widths[1], 8, tr(safeValue(value)), "1", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
