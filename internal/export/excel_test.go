package export

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	if err := ExportExcel(path, buildBarSolution(t)); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	units, err := f.GetCellValue(SheetSummary, "B3")
	if err != nil || units != "3" {
		t.Errorf("expected 3 units in B3, got %q (%v)", units, err)
	}

	rows, err := f.GetRows(SheetPatterns)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 pattern rows, got %d", len(rows))
	}
	if rows[2][2] != "1 x A 2000 + 2 x B 1500" {
		t.Errorf("unexpected layout %q", rows[2][2])
	}
	if rows[2][5] != "1000" {
		t.Errorf("expected waste 1000, got %q", rows[2][5])
	}

	demand, err := f.GetRows(SheetDemand)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(demand) != 3 {
		t.Fatalf("expected header + 2 demand rows, got %d", len(demand))
	}
	if demand[1][5] != "5" || demand[1][6] != "0" {
		t.Errorf("expected A produced 5 surplus 0, got %v", demand[1])
	}
}

func TestExportExcel_EmptySolution(t *testing.T) {
	if err := ExportExcel(filepath.Join(t.TempDir(), "x.xlsx"), model.Solution{}); err == nil {
		t.Fatal("expected error for empty solution")
	}
}

func TestLayout(t *testing.T) {
	bars := buildBarSolution(t)
	if got := Layout(bars.Items, bars.Entries[0].Pattern); got != "3 x A 2000" {
		t.Errorf("Layout = %q", got)
	}

	plates := buildPlateSolution(t, model.OrientationRotated)
	if got := Layout(plates.Items, plates.Entries[0].Pattern); got != "4 x 1 Gusset 480x900 (rotated)" {
		t.Errorf("Layout = %q", got)
	}
}
