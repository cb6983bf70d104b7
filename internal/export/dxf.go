package export

import (
	"fmt"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names.
const (
	LayerStock = "STOCK"
	LayerCuts  = "CUTS"
	LayerText  = "TEXT"
)

// barDrawHeight is the nominal height a bar is drawn with, in mm.
const barDrawHeight = 100.0

// ExportDXF draws every distinct pattern once at full scale in millimetres,
// stacked along Y: stock outline on STOCK, piece boundaries on CUTS and
// labels on TEXT.
func ExportDXF(path string, sol model.Solution) error {
	if len(sol.Entries) == 0 {
		return fmt.Errorf("no patterns to export")
	}

	d := dxf.NewDrawing()
	for _, l := range []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerStock, color.White},
		{LayerCuts, color.Red},
		{LayerText, color.Cyan},
	} {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	stockH := barDrawHeight
	if sol.Stock.Is2D() {
		stockH = float64(sol.Stock.Width)
	}
	spacing := stockH * 0.5
	textH := stockH * 0.15
	if textH > 50 {
		textH = 50
	}

	y := 0.0
	for i, e := range sol.Entries {
		if err := layer(d, LayerText); err != nil {
			return err
		}
		caption := fmt.Sprintf("Pattern %d x%d: %s", i+1, e.Count, Layout(sol.Items, e.Pattern))
		if _, err := d.Text(caption, 0, y+stockH+textH*0.5, 0, textH); err != nil {
			return fmt.Errorf("failed to write caption: %w", err)
		}

		if err := layer(d, LayerStock); err != nil {
			return err
		}
		if err := rect(d, 0, y, float64(sol.Stock.Length), stockH); err != nil {
			return err
		}

		if err := layer(d, LayerCuts); err != nil {
			return err
		}
		switch pt := e.Pattern.(type) {
		case model.BarPattern:
			if err := drawBarCuts(d, sol.Items, pt, y, stockH); err != nil {
				return err
			}
		case model.GridPattern:
			if err := drawGridCuts(d, pt, y); err != nil {
				return err
			}
		}

		y -= stockH + spacing + textH*2
	}

	return d.SaveAs(path)
}

func layer(d *drawing.Drawing, name string) error {
	if err := d.ChangeLayer(name); err != nil {
		return fmt.Errorf("failed to select layer %s: %w", name, err)
	}
	return nil
}

func line(d *drawing.Drawing, x1, y1, x2, y2 float64) error {
	if _, err := d.Line(x1, y1, 0, x2, y2, 0); err != nil {
		return fmt.Errorf("failed to draw line: %w", err)
	}
	return nil
}

func rect(d *drawing.Drawing, x, y, w, h float64) error {
	for _, seg := range [][4]float64{
		{x, y, x + w, y},
		{x + w, y, x + w, y + h},
		{x + w, y + h, x, y + h},
		{x, y + h, x, y},
	} {
		if err := line(d, seg[0], seg[1], seg[2], seg[3]); err != nil {
			return err
		}
	}
	return nil
}

// drawBarCuts marks the end of every piece with a cut line.
func drawBarCuts(d *drawing.Drawing, items []model.DemandItem, bar model.BarPattern, y, h float64) error {
	x := 0.0
	for i, c := range bar.Counts {
		for k := 0; k < c; k++ {
			x += float64(items[i].Length)
			if err := line(d, x, y, x, y+h); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawGridCuts draws the piece rectangles of a grid. Y grows upward in
// DXF, so row v sits below row v-1 from the top edge of the plate.
func drawGridCuts(d *drawing.Drawing, g model.GridPattern, y float64) error {
	pw, ph := float64(g.PieceLength), float64(g.PieceWidth)
	top := y + float64(g.PieceWidth*g.V)
	for v := 0; v < g.V; v++ {
		for h := 0; h < g.H; h++ {
			if err := rect(d, float64(h)*pw, top-float64(v+1)*ph, pw, ph); err != nil {
				return err
			}
		}
	}
	return nil
}
