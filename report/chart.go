package report

import (
	"slices"

	"student-loan-sim/domain"
)

// chart draws density histograms on a shared x axis below the cursor.
type chart struct {
	r          *summaryReport
	x, y, w, h float64
	lo, hi     float64
	yMax       float64
	pending    []func()
}

func (r *summaryReport) newChart(lo, hi float64) *chart {
	if hi <= lo {
		hi = lo + 1
	}
	return &chart{
		r:  r,
		x:  marginLeft,
		y:  r.pdf.GetY() + 2,
		w:  contentWidth,
		h:  chartHeight,
		lo: lo,
		hi: hi,
	}
}

func (c *chart) xPos(v float64) float64 {
	return c.x + (v-c.lo)/(c.hi-c.lo)*c.w
}

func (c *chart) bars(h domain.Histogram, col rgb) {
	if len(h.Density) == 0 {
		return
	}
	c.yMax = max(c.yMax, slices.Max(h.Density))
	c.pending = append(c.pending, func() {
		pdf := c.r.pdf
		pdf.SetAlpha(0.6, "Normal")
		pdf.SetFillColor(col.r, col.g, col.b)
		for i, d := range h.Density {
			if d == 0 {
				continue
			}
			left := h.Min + float64(i)*h.BinWidth
			x0, x1 := c.xPos(left), c.xPos(left+h.BinWidth)
			barH := d / c.yMax * c.h
			pdf.Rect(x0, c.y+c.h-barH, x1-x0, barH, "F")
		}
		pdf.SetAlpha(1, "Normal")
	})
}

func (c *chart) marker(v float64, col rgb, label string) {
	if v < c.lo || v > c.hi {
		return
	}
	c.pending = append(c.pending, func() {
		pdf := c.r.pdf
		x := c.xPos(v)
		pdf.SetDrawColor(col.r, col.g, col.b)
		pdf.SetLineWidth(0.5)
		pdf.SetDashPattern([]float64{2, 1}, 0)
		pdf.Line(x, c.y, x, c.y+c.h)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.SetFont("Arial", "", 7)
		pdf.SetTextColor(col.r, col.g, col.b)
		pdf.Text(x+1, c.y+3, pdfText(label))
	})
}

// finish draws everything queued, since bar heights depend on the tallest
// bar of all series, then moves the cursor below the chart.
func (c *chart) finish() {
	pdf := c.r.pdf
	if c.yMax == 0 {
		c.yMax = 1
	}
	for _, draw := range c.pending {
		draw()
	}

	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Line(c.x, c.y+c.h, c.x+c.w, c.y+c.h)

	pdf.SetFont("Arial", "", 7)
	c.r.setColor(colorText)
	pdf.Text(c.x, c.y+c.h+4, pdfText(formatPounds(c.lo)))
	right := pdfText(formatPounds(c.hi))
	pdf.Text(c.x+c.w-pdf.GetStringWidth(right), c.y+c.h+4, right)

	pdf.SetY(c.y + c.h + 6)
}
