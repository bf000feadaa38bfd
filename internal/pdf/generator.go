package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Generator renders adherence reports as printable PDF summaries
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// ReportData contains everything a rendered report needs
type ReportData struct {
	ProfileName string
	Window      model.TimeWindow
	Report      model.AdherenceReport
}

// Generate creates a PDF summary from the provided data
func (g *Generator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating adherence report PDF",
		zap.String("profile_name", data.ProfileName),
	)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	g.addTitle(doc, data)
	g.addSummary(doc, data.Report)
	g.addTopMissed(doc, data.Report.TopMissed)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("adherence report PDF generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func (g *Generator) addTitle(doc *gofpdf.Fpdf, data *ReportData) {
	doc.SetFont("Arial", "B", 18)
	doc.Cell(0, 10, "Medication Adherence Report")
	doc.Ln(12)

	doc.SetFont("Arial", "", 11)
	if data.ProfileName != "" {
		doc.Cell(0, 6, fmt.Sprintf("Patient: %s", data.ProfileName))
		doc.Ln(6)
	}
	doc.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		data.Window.From.Format("2006-01-02"),
		data.Window.To.Format("2006-01-02"),
	))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	doc.Ln(12)
}

func (g *Generator) addSummary(doc *gofpdf.Fpdf, report model.AdherenceReport) {
	doc.SetFont("Arial", "B", 13)
	doc.Cell(0, 8, "Summary")
	doc.Ln(10)

	doc.SetFont("Arial", "", 11)
	rows := []struct {
		label string
		value string
	}{
		{"Adherence rate", fmt.Sprintf("%d%%", report.AdherenceRatePercent)},
		{"Scheduled doses", fmt.Sprintf("%d", report.TotalScheduled)},
		{"Taken", fmt.Sprintf("%d", report.TakenCount)},
		{"Skipped", fmt.Sprintf("%d", report.SkippedCount)},
		{"Missed", fmt.Sprintf("%d", report.MissedCount)},
		{"Pending", fmt.Sprintf("%d", report.PendingCount)},
	}
	for _, row := range rows {
		doc.Cell(60, 7, row.label)
		doc.Cell(0, 7, row.value)
		doc.Ln(7)
	}
	doc.Ln(5)
}

func (g *Generator) addTopMissed(doc *gofpdf.Fpdf, topMissed []model.MissedMedication) {
	doc.SetFont("Arial", "B", 13)
	doc.Cell(0, 8, "Most Missed Medications")
	doc.Ln(10)

	doc.SetFont("Arial", "", 11)
	if len(topMissed) == 0 {
		doc.Cell(0, 7, "No missed doses in this period.")
		doc.Ln(7)
		return
	}

	for i, missed := range topMissed {
		doc.Cell(0, 7, fmt.Sprintf("%d. %s - %d missed", i+1, missed.Label, missed.Count))
		doc.Ln(7)
	}
}
