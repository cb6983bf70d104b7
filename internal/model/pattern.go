package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PatternKind tags the Pattern variant.
type PatternKind string

const (
	KindBar  PatternKind = "bar"
	KindGrid PatternKind = "grid"
)

// Pattern is one feasible way to cut a single stock unit. It is either a
// BarPattern (1D) or a GridPattern (2D); consumers switch on the concrete type.
type Pattern interface {
	Kind() PatternKind
	// Count is the number of pieces of item i the pattern produces.
	Count(i int) int
	Pieces() int
	Used() int
	Waste() int
	// Key identifies the pattern for deduplication.
	Key() string
	isPattern()
}

// BarPattern cuts Counts[i] pieces of item i from one bar.
type BarPattern struct {
	Counts      []int `json:"counts"`
	UsedLength  int   `json:"used_length"`
	WasteLength int   `json:"waste_length"`
}

// NewBarPattern builds a bar pattern and rejects compositions longer than the bar.
func NewBarPattern(counts []int, items []DemandItem, stock StockUnit) (BarPattern, error) {
	if len(counts) != len(items) {
		return BarPattern{}, fmt.Errorf("pattern has %d counts for %d items", len(counts), len(items))
	}
	used := 0
	for i, c := range counts {
		if c < 0 {
			return BarPattern{}, fmt.Errorf("negative count %d for item %q", c, items[i].Name())
		}
		used += c * items[i].Length
	}
	if used > stock.Length {
		return BarPattern{}, fmt.Errorf("pattern uses %d mm of a %d mm bar", used, stock.Length)
	}
	cp := make([]int, len(counts))
	copy(cp, counts)
	return BarPattern{Counts: cp, UsedLength: used, WasteLength: stock.Length - used}, nil
}

func (BarPattern) Kind() PatternKind { return KindBar }

func (p BarPattern) Count(i int) int {
	if i < 0 || i >= len(p.Counts) {
		return 0
	}
	return p.Counts[i]
}

func (p BarPattern) Pieces() int {
	n := 0
	for _, c := range p.Counts {
		n += c
	}
	return n
}

func (p BarPattern) Used() int  { return p.UsedLength }
func (p BarPattern) Waste() int { return p.WasteLength }

func (p BarPattern) Key() string {
	var sb strings.Builder
	sb.WriteString("bar:")
	for i, c := range p.Counts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

func (BarPattern) isPattern() {}

// Orientation of a plate piece relative to the stock.
type Orientation string

const (
	OrientationNormal  Orientation = "normal"  // item length along stock length
	OrientationRotated Orientation = "rotated" // item turned 90°
)

// GridPattern is an H × V grid of a single item on one plate.
// H pieces run along the stock length, V along the stock width.
type GridPattern struct {
	Item        int         `json:"item"`
	Orientation Orientation `json:"orientation"`
	H           int         `json:"h"`
	V           int         `json:"v"`
	PieceLength int         `json:"piece_length"`
	PieceWidth  int         `json:"piece_width"`
	UsedArea    int         `json:"used_area"`
	WasteArea   int         `json:"waste_area"`
}

// NewGridPattern lays out an h × v grid of items[item] and rejects grids
// that do not fit on the plate.
func NewGridPattern(item int, d DemandItem, o Orientation, h, v int, stock StockUnit) (GridPattern, error) {
	if h < 1 || v < 1 {
		return GridPattern{}, fmt.Errorf("grid %dx%d must have at least one row and column", h, v)
	}
	pl, pw := d.Length, d.Width
	if o == OrientationRotated {
		pl, pw = pw, pl
	}
	if h*pl > stock.Length || v*pw > stock.Width {
		return GridPattern{}, fmt.Errorf("grid %dx%d of %dx%d does not fit %s", h, v, pl, pw, stock)
	}
	used := h * v * pl * pw
	return GridPattern{
		Item:        item,
		Orientation: o,
		H:           h,
		V:           v,
		PieceLength: pl,
		PieceWidth:  pw,
		UsedArea:    used,
		WasteArea:   stock.Capacity() - used,
	}, nil
}

func (GridPattern) Kind() PatternKind { return KindGrid }

func (p GridPattern) Count(i int) int {
	if i != p.Item {
		return 0
	}
	return p.H * p.V
}

func (p GridPattern) Pieces() int { return p.H * p.V }
func (p GridPattern) Used() int   { return p.UsedArea }
func (p GridPattern) Waste() int  { return p.WasteArea }

func (p GridPattern) Key() string {
	return fmt.Sprintf("grid:%d:%s:%d:%d", p.Item, p.Orientation, p.H, p.V)
}

func (GridPattern) isPattern() {}

// Entry is a pattern together with the number of stock units cut that way.
type Entry struct {
	Pattern Pattern `json:"-"`
	Count   int     `json:"-"`
}

type entryJSON struct {
	Kind  PatternKind  `json:"kind"`
	Count int          `json:"count"`
	Bar   *BarPattern  `json:"bar,omitempty"`
	Grid  *GridPattern `json:"grid,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Count: e.Count}
	switch p := e.Pattern.(type) {
	case BarPattern:
		out.Kind = KindBar
		out.Bar = &p
	case GridPattern:
		out.Kind = KindGrid
		out.Grid = &p
	default:
		return nil, fmt.Errorf("unknown pattern type %T", e.Pattern)
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case KindBar:
		if in.Bar == nil {
			return fmt.Errorf("bar entry without pattern")
		}
		e.Pattern = *in.Bar
	case KindGrid:
		if in.Grid == nil {
			return fmt.Errorf("grid entry without pattern")
		}
		e.Pattern = *in.Grid
	default:
		return fmt.Errorf("unknown pattern kind %q", in.Kind)
	}
	e.Count = in.Count
	return nil
}
