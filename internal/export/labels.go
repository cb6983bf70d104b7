package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/barcut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is what a piece label shows. The QR code carries it as JSON
// so the piece can be traced back to its bar or plate on the shop floor.
type LabelInfo struct {
	ItemID     string `json:"item"`
	ItemLabel  string `json:"label"`
	Length     int    `json:"length_mm"`
	Width      int    `json:"width_mm,omitempty"`
	Unit       int    `json:"unit"` // 1-based stock unit number
	StockLabel string `json:"stock"`
	Pattern    int    `json:"pattern"` // 1-based pattern number
	X          int    `json:"x_mm"`    // offset along the stock length
	Y          int    `json:"y_mm,omitempty"`
	Rotated    bool   `json:"rotated,omitempty"`

	item int // index into Solution.Items, picks the colour stripe
}

// A4 sheets of 3 x 7 labels, 63.5 x 38.1 mm (Avery L7160 and compatibles).
const (
	sheetTop      = 15.15
	sheetLeft     = 7.2
	labelWidth    = 63.5
	labelHeight   = 38.1
	labelPitchX   = 66.0 // label width plus the 2.5 mm gutter
	labelCols     = 3
	labelsPerPage = labelCols * 7

	stripeWidth = 3.0
	qrSize      = 24.0
	labelInset  = 2.0
)

// CollectLabelInfos lists one label per cut piece, walking stock units in
// the order Solution.Units returns them.
func CollectLabelInfos(sol model.Solution) []LabelInfo {
	var labels []LabelInfo
	unit := 0
	for pi, e := range sol.Entries {
		for k := 0; k < e.Count; k++ {
			unit++
			labels = append(labels, piecesOf(sol, e.Pattern, pi+1, unit)...)
		}
	}
	return labels
}

func piecesOf(sol model.Solution, p model.Pattern, pattern, unit int) []LabelInfo {
	var out []LabelInfo
	piece := func(i int) LabelInfo {
		it := sol.Items[i]
		return LabelInfo{
			ItemID: it.ID, ItemLabel: it.Name(), Length: it.Length, Width: it.Width,
			Unit: unit, StockLabel: sol.Stock.Label, Pattern: pattern, item: i,
		}
	}
	switch pt := p.(type) {
	case model.BarPattern:
		x := 0
		for i, c := range pt.Counts {
			for k := 0; k < c; k++ {
				l := piece(i)
				l.X = x
				out = append(out, l)
				x += l.Length
			}
		}
	case model.GridPattern:
		for v := 0; v < pt.V; v++ {
			for h := 0; h < pt.H; h++ {
				l := piece(pt.Item)
				l.X, l.Y = h*pt.PieceLength, v*pt.PieceWidth
				l.Rotated = pt.Orientation == model.OrientationRotated
				out = append(out, l)
			}
		}
	}
	return out
}

// ExportLabels writes one QR-coded label per cut piece on A4 label sheets.
func ExportLabels(path string, sol model.Solution) error {
	labels := CollectLabelInfos(sol)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, l := range labels {
		slot := i % labelsPerPage
		if slot == 0 {
			pdf.AddPage()
		}
		x := sheetLeft + float64(slot%labelCols)*labelPitchX
		y := sheetTop + float64(slot/labelCols)*labelHeight
		if err := renderLabel(pdf, tr, x, y, i, l); err != nil {
			return fmt.Errorf("label %d (%s): %w", i+1, l.ItemLabel, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

// renderLabel draws one label: colour stripe, QR code on the left, the
// piece mark and cut length in large type, provenance underneath.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, n int, l LabelInfo) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}

	c := colorFor(l.item)
	pdf.SetFillColor(c.R, c.G, c.B)
	pdf.Rect(x, y, stripeWidth, labelHeight, "F")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	name := fmt.Sprintf("qr_%d", n)
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	qrX := x + stripeWidth + labelInset
	pdf.ImageOptions(name, qrX, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	tx := qrX + qrSize + labelInset
	tw := x + labelWidth - labelInset - tx

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(tx, y+labelInset+1)
	pdf.CellFormat(tw, 6, fitText(pdf, tr(l.ItemLabel), tw), "", 0, "L", false, 0, "")

	size := fmt.Sprintf("%d", l.Length)
	if l.Width > 0 {
		size = fmt.Sprintf("%d x %d", l.Length, l.Width)
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(tx, y+labelInset+8)
	pdf.CellFormat(tw, 7, fitText(pdf, size, tw), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(90, 90, 90)
	lines := []string{
		fmt.Sprintf("Unit %d / pattern %d", l.Unit, l.Pattern),
		fmt.Sprintf("at %d mm", l.X),
	}
	if l.Width > 0 {
		lines[1] = fmt.Sprintf("at %d, %d mm", l.X, l.Y)
	}
	if l.StockLabel != "" {
		lines = append(lines, tr(l.StockLabel))
	}
	if l.Rotated {
		lines = append(lines, tr("rotated 90°"))
	}
	for i, s := range lines {
		pdf.SetXY(tx, y+labelInset+17+float64(i)*3.4)
		pdf.CellFormat(tw, 3.4, fitText(pdf, s, tw), "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// fitText cuts s with an ellipsis until it fits w at the current font.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
