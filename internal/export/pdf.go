// Package export writes optimization results to PDF, label sheets,
// spreadsheets, DXF drawings and HTML charts.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/barcut/internal/model"
)

// itemColor is an RGB fill for one demand item.
type itemColor struct {
	R, G, B int
}

var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(item int) itemColor {
	return itemColors[item%len(itemColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	contentWidth = pageWidth - marginLeft - marginRight

	barHeight = 9.0
	barGap    = 8.0
)

// ReportOptions adds context the solution does not carry.
type ReportOptions struct {
	Title     string
	Profile   *model.Profile // bar section for weight and surface, nil to skip
	MinOffcut int            // remnants at least this long are listed as reusable
}

// ExportPDF writes a cutting report: a summary page followed by the
// cutting patterns, bars stacked several per page and plates one per page.
func ExportPDF(path string, sol model.Solution, opts ReportOptions) error {
	if len(sol.Entries) == 0 {
		return fmt.Errorf("no patterns to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	renderSummaryPage(pdf, tr, sol, opts)

	if sol.Stock.Is2D() {
		for i, e := range sol.Entries {
			pdf.AddPage()
			renderPlatePage(pdf, tr, sol, e, i+1)
		}
	} else {
		renderBarPages(pdf, tr, sol)
	}

	return pdf.OutputFileAndClose(path)
}

func title(opts ReportOptions) string {
	if opts.Title != "" {
		return opts.Title
	}
	return "Cutting Plan"
}

// renderSummaryPage draws totals, the demand table and material figures.
func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, sol model.Solution, opts ReportOptions) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, tr(title(opts)), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = section(pdf, "Overall Statistics", y)

	unit := "mm"
	if sol.Stock.Is2D() {
		unit = "mm²"
	}
	summary := [][2]string{
		{"Stock", tr(fmt.Sprintf("%s (%s)", sol.Stock.Label, sol.Stock))},
		{"Units To Buy", fmt.Sprintf("%d", sol.TotalUnits)},
		{"Total Waste", tr(fmt.Sprintf("%d %s (%.1f%%)", sol.TotalWaste, unit, sol.WastePercent()))},
		{"Efficiency", fmt.Sprintf("%.1f%%", sol.Efficiency())},
		{"Algorithm", fmt.Sprintf("%s, %s demand, minimize %s", sol.Algorithm, sol.Demand, sol.Objective)},
		{"Status", status(sol)},
	}
	y = keyValues(pdf, summary, y)

	if opts.Profile != nil || (sol.Stock.Is2D() && sol.Stock.Thickness > 0) {
		var m model.MaterialStats
		name := ""
		if sol.Stock.Is2D() {
			m = sol.PlateMaterial()
			name = fmt.Sprintf("Plate %.0f mm", sol.Stock.Thickness)
		} else {
			m = sol.Material(*opts.Profile)
			name = opts.Profile.Designation
		}
		y += 4
		y = section(pdf, "Material", y)
		y = keyValues(pdf, [][2]string{
			{"Section", tr(name)},
			{"Purchased Weight", fmt.Sprintf("%.1f kg", m.PurchasedWeight)},
			{"Waste Weight", fmt.Sprintf("%.1f kg", m.WasteWeight)},
			{"Coating Surface", tr(fmt.Sprintf("%.2f m² (waste %.2f m²)", m.UsedSurface, m.WasteSurface))},
		}, y)
	}

	y += 4
	y = section(pdf, "Demand", y)
	colWidths := []float64{60, 45, 30, 35, 35}
	headers := []string{"Item", "Size", "Ordered", "Produced", "Surplus"}
	y = tableHeader(pdf, colWidths, headers, y)

	pdf.SetFont("Helvetica", "", 9)
	coverage := sol.Coverage()
	for i, it := range sol.Items {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = tableHeader(pdf, colWidths, headers, marginTop)
			pdf.SetFont("Helvetica", "", 9)
		}
		row := []string{
			tr(it.Name()),
			itemSize(it),
			fmt.Sprintf("%d", it.Quantity),
			fmt.Sprintf("%d", coverage[i]),
			fmt.Sprintf("%d", coverage[i]-it.Quantity),
		}
		y = tableRow(pdf, colWidths, row, i, y)
	}

	if opts.MinOffcut > 0 {
		offcuts := model.DetectAllOffcuts(sol, opts.MinOffcut)
		if len(offcuts) > 0 && y < pageHeight-marginBottom-20 {
			y += 6
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(contentWidth, 6, tr(fmt.Sprintf("%d reusable offcuts, %d %s in total", len(offcuts), model.TotalOffcutSize(offcuts), unit)), "", 0, "L", false, 0, "")
		}
	}

	footer(pdf)
}

func status(sol model.Solution) string {
	switch {
	case sol.TimedOut:
		return "Time limit reached, best known plan"
	case sol.IterationLimitReached:
		return fmt.Sprintf("Iteration limit reached after %d rounds", sol.Iterations)
	case sol.Optimal:
		return "Optimal"
	default:
		return "Feasible"
	}
}

func itemSize(it model.DemandItem) string {
	if it.Width > 0 {
		return fmt.Sprintf("%d x %d mm", it.Length, it.Width)
	}
	return fmt.Sprintf("%d mm", it.Length)
}

func section(pdf *fpdf.Fpdf, name string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, name, "", 0, "L", false, 0, "")
	return y + 9
}

func keyValues(pdf *fpdf.Fpdf, rows [][2]string, y float64) float64 {
	for _, kv := range rows {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(150, 6, kv[1], "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, headers []string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	return y + 6
}

func tableRow(pdf *fpdf.Fpdf, widths []float64, cells []string, index int, y float64) float64 {
	if index%2 == 0 {
		pdf.SetFillColor(245, 245, 245)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	x := marginLeft
	for j, c := range cells {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[j], 6, c, "1", 0, "C", true, 0, "")
		x += widths[j]
	}
	return y + 6
}

// renderBarPages draws each bar pattern as a scaled strip, as many per page as fit.
func renderBarPages(pdf *fpdf.Fpdf, tr func(string) string, sol model.Solution) {
	scale := contentWidth / float64(sol.Stock.Length)
	y := pageHeight // forces a new page

	for n, e := range sol.Entries {
		bar, ok := e.Pattern.(model.BarPattern)
		if !ok {
			continue
		}
		if y+barHeight+barGap+6 > pageHeight-marginBottom {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetXY(marginLeft, marginTop)
			pdf.CellFormat(contentWidth, headerHeight, tr(fmt.Sprintf("Cutting Patterns: %s", sol.Stock)), "", 0, "L", false, 0, "")
			footer(pdf)
			y = drawAreaTop
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Pattern %d  x%d  (waste %d mm)", n+1, e.Count, bar.WasteLength), "", 0, "L", false, 0, "")
		y += 5

		drawBar(pdf, tr, sol.Items, bar, scale, marginLeft, y)
		y += barHeight + barGap
	}
}

func drawBar(pdf *fpdf.Fpdf, tr func(string) string, items []model.DemandItem, bar model.BarPattern, scale, x, y float64) {
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	for i, c := range bar.Counts {
		col := colorFor(i)
		w := float64(items[i].Length) * scale
		for k := 0; k < c; k++ {
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.Rect(x, y, w, barHeight, "FD")
			label := fmt.Sprintf("%s %d", items[i].Name(), items[i].Length)
			pdf.SetFont("Helvetica", "", labelFontSize(w, barHeight))
			if lw := pdf.GetStringWidth(label); lw < w-2 {
				pdf.SetXY(x+(w-lw)/2, y+barHeight/2-2)
				pdf.CellFormat(lw, 4, tr(label), "", 0, "C", false, 0, "")
			}
			x += w
		}
	}
	if bar.WasteLength > 0 {
		w := float64(bar.WasteLength) * scale
		pdf.SetFillColor(220, 220, 220)
		pdf.Rect(x, y, w, barHeight, "FD")
		drawHatchPattern(pdf, x, y, w, barHeight)
	}
}

// renderPlatePage draws one grid pattern to scale.
func renderPlatePage(pdf *fpdf.Fpdf, tr func(string) string, sol model.Solution, e model.Entry, n int) {
	grid, ok := e.Pattern.(model.GridPattern)
	if !ok {
		return
	}
	stock := sol.Stock
	item := sol.Items[grid.Item]

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, headerHeight, tr(fmt.Sprintf("Pattern %d  x%d: %s", n, e.Count, stock)), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	orientation := ""
	if grid.Orientation == model.OrientationRotated {
		orientation = ", rotated"
	}
	pdf.CellFormat(contentWidth, 5, tr(fmt.Sprintf("%s: %d x %d grid of %d x %d mm%s | waste %d mm²",
		item.Name(), grid.H, grid.V, grid.PieceLength, grid.PieceWidth, orientation, grid.WasteArea)), "", 0, "L", false, 0, "")

	drawHeight := pageHeight - drawAreaTop - marginBottom - 10
	scale := math.Min(contentWidth/float64(stock.Length), drawHeight/float64(stock.Width))
	canvasW := float64(stock.Length) * scale
	canvasH := float64(stock.Width) * scale
	offsetX := marginLeft + (contentWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(200, 200, 205)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	col := colorFor(grid.Item)
	pw := float64(grid.PieceLength) * scale
	ph := float64(grid.PieceWidth) * scale
	pdf.SetLineWidth(0.3)
	pdf.SetDrawColor(30, 30, 30)
	for h := 0; h < grid.H; h++ {
		for v := 0; v < grid.V; v++ {
			px := offsetX + float64(h)*pw
			py := offsetY + float64(v)*ph
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.Rect(px, py, pw, ph, "FD")
			if pw > 15 && ph > 8 {
				pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
				label := tr(item.Name())
				if lw := pdf.GetStringWidth(label); lw < pw-2 {
					pdf.SetXY(px+(pw-lw)/2, py+ph/2-2)
					pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
				}
			}
		}
	}

	drawDimensionAnnotations(pdf, tr, stock, offsetX, offsetY, canvasW, canvasH)
	footer(pdf)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark waste.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.15)

	spacing := 2.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
}

// drawDimensionAnnotations labels the plate length below and its width to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, tr func(string) string, stock model.StockUnit, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := fmt.Sprintf("%d mm", stock.Length)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lw)/2, offsetY+canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := fmt.Sprintf("%d mm", stock.Width)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	ww := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX-3-ww/2, offsetY+canvasH/2-2)
	pdf.CellFormat(ww, 4, tr(widthLabel), "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func footer(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(contentWidth, 4, "Generated by barcut", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
