package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut is a remnant left after cutting one stock unit that is large enough to reuse.
type Offcut struct {
	ID        string `json:"id"`
	UnitIndex int    `json:"unit_index"` // index into Solution.Units()
	X         int    `json:"x"`          // mm from the stock origin along its length
	Y         int    `json:"y"`          // mm along its width, plates only
	Length    int    `json:"length"`
	Width     int    `json:"width,omitempty"`
}

// Size returns the length of a bar offcut or the area of a plate offcut.
func (o Offcut) Size() int {
	if o.Width > 0 {
		return o.Length * o.Width
	}
	return o.Length
}

// ToStockUnit turns the offcut into stock that a later job can cut from.
func (o Offcut) ToStockUnit() StockUnit {
	return StockUnit{Label: "Offcut " + o.ID, Length: o.Length, Width: o.Width}
}

// DetectOffcuts finds the reusable remnant of a single stock unit.
// Bars keep the tail when it is at least minLength long. Plates keep the
// strip to the right of the grid and the strip below it when both sides of
// the strip reach minLength.
func DetectOffcuts(p Pattern, stock StockUnit, unitIndex, minLength int) []Offcut {
	var offcuts []Offcut
	switch pt := p.(type) {
	case BarPattern:
		if pt.WasteLength > 0 && pt.WasteLength >= minLength {
			offcuts = append(offcuts, Offcut{
				ID:        uuid.New().String()[:8],
				UnitIndex: unitIndex,
				X:         pt.UsedLength,
				Length:    pt.WasteLength,
			})
		}
	case GridPattern:
		gridL := pt.H * pt.PieceLength
		gridW := pt.V * pt.PieceWidth

		// Right strip spans the full plate width.
		if rightL := stock.Length - gridL; rightL > 0 && rightL >= minLength && stock.Width >= minLength {
			offcuts = append(offcuts, Offcut{
				ID:        uuid.New().String()[:8],
				UnitIndex: unitIndex,
				X:         gridL,
				Length:    rightL,
				Width:     stock.Width,
			})
		}
		// Bottom strip stops at the grid's right edge so it does not overlap.
		if bottomW := stock.Width - gridW; bottomW > 0 && bottomW >= minLength && gridL >= minLength {
			offcuts = append(offcuts, Offcut{
				ID:        uuid.New().String()[:8],
				UnitIndex: unitIndex,
				Y:         gridW,
				Length:    gridL,
				Width:     bottomW,
			})
		}
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Size() > offcuts[j].Size()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every stock unit of a solution.
func DetectAllOffcuts(s Solution, minLength int) []Offcut {
	var all []Offcut
	for i, p := range s.Units() {
		all = append(all, DetectOffcuts(p, s.Stock, i, minLength)...)
	}
	return all
}

// TotalOffcutSize sums the lengths (or areas) of the offcuts.
func TotalOffcutSize(offcuts []Offcut) int {
	total := 0
	for _, o := range offcuts {
		total += o.Size()
	}
	return total
}
