// Package report renders a finished simulation run as a one-page PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"student-loan-sim/domain"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	chartHeight  = 55.0
)

type rgb struct{ r, g, b int }

var (
	colorBlue  = rgb{0, 104, 201}
	colorRed   = rgb{255, 43, 43}
	colorGreen = rgb{0, 204, 150}
	colorTitle = rgb{0, 51, 102}
	colorText  = rgb{50, 50, 50}
)

// pdfText converts the UTF-8 pound sign to the Latin-1 byte the core fonts
// expect.
func pdfText(s string) string {
	return strings.ReplaceAll(s, "£", "\xa3")
}

// formatPounds renders a whole-pound amount with thousands separators.
func formatPounds(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	digits := d.StringFixed(0)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "£" + b.String()
}

func formatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction*100).StringFixed(1) + "%"
}

type summaryReport struct {
	pdf    *fpdf.Fpdf
	record domain.RunRecord
	now    time.Time
}

// WriteSummaryPDF writes the recommendation, headline figures, inputs and
// outcome histograms of record to w.
func WriteSummaryPDF(w io.Writer, record domain.RunRecord) error {
	r := &summaryReport{
		pdf:    fpdf.New("P", "mm", "A4", ""),
		record: record,
		now:    time.Now(),
	}
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Student loan repayment simulation", false)

	r.pdf.AddPage()
	r.addHeader()
	r.addFigures()
	r.addParameters()
	r.addGainChart()
	r.addDistributionChart()

	return r.pdf.Output(w)
}

// SummaryPDF is WriteSummaryPDF into memory.
func SummaryPDF(record domain.RunRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSummaryPDF(&buf, record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *summaryReport) setColor(c rgb) {
	r.pdf.SetTextColor(c.r, c.g, c.b)
}

func (r *summaryReport) heading(text string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Arial", "B", 12)
	r.setColor(colorTitle)
	r.pdf.CellFormat(contentWidth, 7, pdfText(text), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.setColor(colorText)
}

func (r *summaryReport) addHeader() {
	r.pdf.SetFont("Arial", "B", 20)
	r.setColor(colorTitle)
	r.pdf.CellFormat(contentWidth, 10, "Student Loan Simulation", "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "I", 9)
	r.setColor(colorText)
	r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Run %s - %d paths, seed %d - generated %s",
		r.record.ID, r.record.Summary.Simulations, r.record.Seed, r.now.Format("2 January 2006")),
		"", 1, "L", false, 0, "")

	r.pdf.Ln(3)
	text := "Recommendation: keep your loan and invest the money"
	if r.record.Summary.Recommendation == domain.RecommendPayEarly {
		text = "Recommendation: pay off your loan early"
	}
	r.pdf.SetFillColor(235, 250, 245)
	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 140, 100)
	r.pdf.CellFormat(contentWidth, 10, text, "1", 1, "C", true, 0, "")
}

func (r *summaryReport) addFigures() {
	sum := r.record.Summary
	r.heading("Results summary")

	gainLabel, gain := "Predicted gain from keeping loan", -sum.Gains.Mean
	if sum.Recommendation == domain.RecommendPayEarly {
		gainLabel, gain = "Predicted gain from paying early", sum.Gains.Mean
	}

	rows := [][2]string{
		{"Predicted total loan repayment (mean)", formatPounds(sum.Repayments.Mean)},
		{"Median loan repayment", formatPounds(sum.Repayments.Median)},
		{"Predicted investment value (mean)", formatPounds(sum.Investments.Mean)},
		{"Median investment value", formatPounds(sum.Investments.Median)},
		{gainLabel, formatPounds(gain)},
		{"Paths where the recommendation wins", formatPercent(sum.RecommendedWinFraction)},
		{"Paths where paying early wins", formatPercent(sum.FavorableFraction)},
	}
	r.table(rows)
}

func (r *summaryReport) addParameters() {
	p := r.record.Parameters
	r.heading("Inputs")

	investment := fmt.Sprintf("%s +/- %s", formatPercent(p.InvestmentRate), formatPercent(p.InvestmentRateSigma))
	if r.record.InvestmentTicker != "" {
		investment += " (" + r.record.InvestmentTicker + ")"
	}
	rows := [][2]string{
		{"Salary / outstanding loan", formatPounds(p.InitialSalary) + " / " + formatPounds(p.CurrentLoan)},
		{"Years remaining before write-off", fmt.Sprintf("%d", p.PaybackYears)},
		{"Repayment threshold and rate", formatPounds(p.Threshold) + " at " + formatPercent(p.RepaymentRate)},
		{"Salary growth", fmt.Sprintf("%s +/- %s", formatPercent(p.SalaryGrowth), formatPercent(p.SalaryGrowthSigma))},
		{"Loan interest", fmt.Sprintf("%s +/- %s", formatPercent(p.LoanRate), formatPercent(p.LoanRateSigma))},
		{"Investment return", investment},
		{"Career break probability per year", formatPercent(p.ChildProb)},
	}
	r.table(rows)
}

func (r *summaryReport) table(rows [][2]string) {
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetFillColor(245, 247, 250)
	for i, row := range rows {
		fill := i%2 == 0
		r.pdf.CellFormat(contentWidth*0.6, 6, pdfText(row[0]), "", 0, "L", fill, 0, "")
		r.pdf.CellFormat(contentWidth*0.4, 6, pdfText(row[1]), "", 1, "R", fill, 0, "")
	}
}

func (r *summaryReport) addGainChart() {
	title, hist, mean := recommendedGain(r.record.Summary)
	r.heading(title)
	c := r.newChart(hist.Min, hist.Max)
	c.bars(hist, colorBlue)
	c.marker(0, colorRed, "Break-even")
	c.marker(mean, colorGreen, "Mean "+formatPounds(mean))
	c.finish()
}

// recommendedGain returns the per-path gain of the recommended strategy.
// Gains are stored as paying early minus investing, so they are mirrored
// when keeping the loan is recommended.
func recommendedGain(sum domain.RunSummary) (string, domain.Histogram, float64) {
	if sum.Recommendation == domain.RecommendPayEarly {
		return "Gain from paying early, per simulated path", sum.Gains.Histogram, sum.Gains.Mean
	}
	return "Gain from keeping the loan and investing, per simulated path",
		negateHistogram(sum.Gains.Histogram), -sum.Gains.Mean
}

func negateHistogram(h domain.Histogram) domain.Histogram {
	out := domain.Histogram{
		Min:      -h.Max,
		Max:      -h.Min,
		BinWidth: h.BinWidth,
		Counts:   slices.Clone(h.Counts),
		Density:  slices.Clone(h.Density),
	}
	slices.Reverse(out.Counts)
	slices.Reverse(out.Density)
	return out
}

func (r *summaryReport) addDistributionChart() {
	sum := r.record.Summary
	r.heading("Loan repayments vs investment value")
	lo := min(sum.Repayments.Histogram.Min, sum.Investments.Histogram.Min)
	hi := max(sum.Repayments.Histogram.Max, sum.Investments.Histogram.Max)
	c := r.newChart(lo, hi)
	c.bars(sum.Repayments.Histogram, colorRed)
	c.bars(sum.Investments.Histogram, colorGreen)
	c.marker(r.record.Parameters.CurrentLoan, colorBlue, "Original loan "+formatPounds(r.record.Parameters.CurrentLoan))
	c.finish()
}
