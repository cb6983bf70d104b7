package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by ExportExcel.
const (
	SheetSummary  = "Summary"
	SheetPatterns = "Patterns"
	SheetDemand   = "Demand"
)

// ExportExcel writes the cut list as a workbook with a summary sheet, one
// row per pattern and one row per demand item.
func ExportExcel(path string, sol model.Solution) error {
	if len(sol.Entries) == 0 {
		return fmt.Errorf("no patterns to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetPatterns, SheetDemand} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	summary := [][]interface{}{
		{"Stock", sol.Stock.Label},
		{"Stock Size", sol.Stock.String()},
		{"Units", sol.TotalUnits},
		{"Total Waste", sol.TotalWaste},
		{"Waste %", round2(sol.WastePercent())},
		{"Efficiency %", round2(sol.Efficiency())},
		{"Algorithm", string(sol.Algorithm)},
		{"Demand", string(sol.Demand)},
		{"Objective", string(sol.Objective)},
		{"Optimal", sol.Optimal},
		{"Lower Bound", round2(sol.LowerBound)},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	patterns := [][]interface{}{{"Pattern", "Count", "Layout", "Pieces", "Used", "Waste"}}
	for i, e := range sol.Entries {
		patterns = append(patterns, []interface{}{
			i + 1, e.Count, Layout(sol.Items, e.Pattern), e.Pattern.Pieces(), e.Pattern.Used(), e.Pattern.Waste(),
		})
	}
	if err := writeRows(f, SheetPatterns, patterns); err != nil {
		return err
	}

	coverage := sol.Coverage()
	demand := [][]interface{}{{"ID", "Item", "Length", "Width", "Ordered", "Produced", "Surplus"}}
	for i, it := range sol.Items {
		demand = append(demand, []interface{}{
			it.ID, it.Name(), it.Length, it.Width, it.Quantity, coverage[i], coverage[i] - it.Quantity,
		})
	}
	if err := writeRows(f, SheetDemand, demand); err != nil {
		return err
	}

	for _, sheet := range []string{SheetPatterns, SheetDemand} {
		if err := f.SetCellStyle(sheet, "A1", "G1", bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(SheetPatterns, "C", "C", 60); err != nil {
		return fmt.Errorf("failed to size layout column: %w", err)
	}
	if err := f.SetColWidth(SheetSummary, "A", "B", 18); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Layout describes a pattern in one line, e.g. "2 x Post 2400 + 1 x Rail 1200"
// or "3 x 2 Gusset 900x480 (rotated)".
func Layout(items []model.DemandItem, p model.Pattern) string {
	switch pt := p.(type) {
	case model.BarPattern:
		var parts []string
		for i, c := range pt.Counts {
			if c > 0 {
				parts = append(parts, fmt.Sprintf("%d x %s %d", c, items[i].Name(), items[i].Length))
			}
		}
		return strings.Join(parts, " + ")
	case model.GridPattern:
		s := fmt.Sprintf("%d x %d %s %dx%d", pt.H, pt.V, items[pt.Item].Name(), pt.PieceLength, pt.PieceWidth)
		if pt.Orientation == model.OrientationRotated {
			s += " (rotated)"
		}
		return s
	}
	return p.Key()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
