// Package render lays out a compiled report as a PDF and stores it as an
// artifact.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"fcaengine/internal/storage"
	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/go-pdf/fpdf"
)

const contentType = "application/pdf"

type PDFRenderer struct {
	store storage.ArtifactStore
	now   func() time.Time
}

func NewPDFRenderer(store storage.ArtifactStore) *PDFRenderer {
	return &PDFRenderer{store: store, now: time.Now}
}

// ArtifactKey returns a fresh key for an assessment's report artifact.
func ArtifactKey(assessmentID string) string {
	return fmt.Sprintf("reports/%s/%s.pdf", assessmentID, utils.NanoID())
}

// Render builds the PDF for doc, stores it and returns its artifact key.
func (r *PDFRenderer) Render(ctx context.Context, doc types.ReportDocument) (string, error) {
	if doc.Report == nil || doc.Assessment == nil || doc.Building == nil {
		return "", fmt.Errorf("report document is incomplete")
	}

	body, err := r.Build(doc)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := ArtifactKey(doc.Assessment.ID)
	if err := r.store.Put(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("failed to store report artifact: %w", err)
	}

	return key, nil
}

// Build returns the PDF bytes for doc without storing them.
func (r *PDFRenderer) Build(doc types.ReportDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generatedAt := r.now().UTC().Format("January 2, 2006 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated on %s", generatedAt)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	w := &writer{pdf: pdf, tr: tr}

	w.title("Facility Condition Assessment Report")
	w.text(doc.Building.Name)
	w.gap()

	w.heading("Building Information")
	w.field("Name", doc.Building.Name)
	w.field("Type", utils.PtrString(doc.Building.BuildingType))
	w.field("Address", utils.PtrString(doc.Building.Address))
	if doc.Building.YearBuilt != nil {
		w.field("Year Built", fmt.Sprintf("%d", *doc.Building.YearBuilt))
	}
	w.field("Gross Area", fmt.Sprintf("%s sq ft", number(doc.Building.Area)))
	w.field("Replacement Value", money(doc.Report.ReplacementValue))
	w.gap()

	w.heading("Assessment Details")
	w.field("Assessment ID", doc.Assessment.ID)
	w.field("Type", titleCase(string(doc.Assessment.Kind)))
	w.field("Status", titleCase(string(doc.Assessment.Status)))
	w.field("Assessor", utils.PtrString(doc.Assessment.AssignedTo))
	if doc.Assessment.StartedAt != nil {
		w.field("Started", doc.Assessment.StartedAt.UTC().Format("2006-01-02"))
	}
	if doc.Assessment.CompletedAt != nil {
		w.field("Completed", doc.Assessment.CompletedAt.UTC().Format("2006-01-02"))
	}
	w.gap()

	w.heading("Facility Condition Index")
	fciText := "Not available"
	if doc.Report.FCI != nil {
		fciText = fmt.Sprintf("%.2f%%", *doc.Report.FCI*100)
	}
	w.field("FCI", fciText)
	w.field("Condition", string(doc.Report.Classification))
	w.field("Total Repair Cost", money(doc.Report.DeficiencyCost))
	w.field("Policy", doc.Report.PolicyVersion)
	if doc.Description != "" {
		w.paragraph(doc.Description)
	}
	if doc.Recommendation != "" {
		w.paragraph("Recommendation: " + doc.Recommendation)
	}
	w.gap()

	w.heading("Repair Costs by Category")
	for _, c := range types.DeficiencyCategories {
		w.row(c.Title(), money(doc.Report.TotalsByCategory[c]))
	}
	w.gap()

	w.heading("Repair Costs by Urgency")
	for _, u := range types.UrgencyTiers {
		w.row(u.Title(), money(doc.Report.TotalsByUrgency[u]))
	}
	w.gap()

	w.heading("Element Breakdown")
	w.breakdown(doc.Report.Breakdown)

	if notes := utils.PtrString(doc.Assessment.Notes); notes != "" {
		w.gap()
		w.heading("Notes")
		w.paragraph(notes)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) title(s string) {
	w.pdf.SetFont("Helvetica", "B", 18)
	w.pdf.SetTextColor(20, 40, 80)
	w.pdf.CellFormat(0, 10, w.tr(s), "", 1, "L", false, 0, "")
}

func (w *writer) heading(s string) {
	w.pdf.SetFont("Helvetica", "B", 13)
	w.pdf.SetTextColor(20, 40, 80)
	w.pdf.CellFormat(0, 8, w.tr(s), "B", 1, "L", false, 0, "")
	w.pdf.Ln(1)
}

func (w *writer) text(s string) {
	w.pdf.SetFont("Helvetica", "", 11)
	w.pdf.SetTextColor(60, 60, 60)
	w.pdf.CellFormat(0, 6, w.tr(s), "", 1, "L", false, 0, "")
}

func (w *writer) field(label, value string) {
	if value == "" {
		value = "-"
	}
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.CellFormat(45, 6, w.tr(label+":"), "", 0, "L", false, 0, "")
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.CellFormat(0, 6, w.tr(value), "", 1, "L", false, 0, "")
}

func (w *writer) row(label, value string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.CellFormat(120, 6, w.tr(label), "", 0, "L", false, 0, "")
	w.pdf.CellFormat(0, 6, w.tr(value), "", 1, "R", false, 0, "")
}

func (w *writer) paragraph(s string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.SetTextColor(40, 40, 40)
	w.pdf.MultiCell(0, 5, w.tr(s), "", "L", false)
}

func (w *writer) gap() {
	w.pdf.Ln(4)
}

func (w *writer) breakdown(lines []types.ElementBreakdown) {
	if len(lines) == 0 {
		w.paragraph("No elements were rated.")
		return
	}

	widths := []float64{20, 70, 18, 35, 37}
	headers := []string{"Code", "Element", "Rating", "Element Value", "Repair Cost"}

	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(225, 232, 245)
	for i, h := range headers {
		w.pdf.CellFormat(widths[i], 7, w.tr(h), "1", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)

	w.pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		w.pdf.CellFormat(widths[0], 6, w.tr(line.Code), "1", 0, "L", false, 0, "")
		w.pdf.CellFormat(widths[1], 6, w.tr(line.Name), "1", 0, "L", false, 0, "")
		w.pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d", line.Rating), "1", 0, "C", false, 0, "")
		w.pdf.CellFormat(widths[3], 6, w.tr(money(line.ElementValue)), "1", 0, "R", false, 0, "")
		w.pdf.CellFormat(widths[4], 6, w.tr(money(line.RepairCost)), "1", 1, "R", false, 0, "")
	}
}

func money(v float64) string {
	return "$" + number(v)
}

// number formats v with two decimals and thousands separators.
func number(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func titleCase(s string) string {
	parts := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
