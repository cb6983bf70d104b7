package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Mode tells whether a job cuts bars (1D) or plates (2D).
type Mode string

const (
	ModeOneDimensional Mode = "1d"
	ModeTwoDimensional Mode = "2d"
)

// DemandItem is a piece size the customer needs, with the number of copies.
// Width is only set for plate stock.
type DemandItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Length   int    `json:"length"`          // mm
	Width    int    `json:"width,omitempty"` // mm, plates only
	Quantity int    `json:"quantity"`
}

func NewDemandItem(label string, length, qty int) DemandItem {
	return DemandItem{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Quantity: qty,
	}
}

func NewPlateItem(label string, length, width, qty int) DemandItem {
	item := NewDemandItem(label, length, qty)
	item.Width = width
	return item
}

// Name returns the label, falling back to the ID.
func (d DemandItem) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// Size returns the length for bar items and the area for plate items.
func (d DemandItem) Size() int {
	if d.Width > 0 {
		return d.Length * d.Width
	}
	return d.Length
}

// Validate checks the item against the stock mode it will be cut from.
func (d DemandItem) Validate(mode Mode) error {
	if d.Length <= 0 {
		return fmt.Errorf("item %q: length must be positive, got %d", d.Name(), d.Length)
	}
	if d.Quantity < 1 {
		return fmt.Errorf("item %q: quantity must be at least 1, got %d", d.Name(), d.Quantity)
	}
	if d.Width < 0 {
		return fmt.Errorf("item %q: width must not be negative, got %d", d.Name(), d.Width)
	}
	if mode == ModeTwoDimensional && d.Width == 0 {
		return fmt.Errorf("item %q: plate items need a width", d.Name())
	}
	return nil
}

// StockUnit is the purchasable raw unit: a bar when Width is zero, a plate otherwise.
type StockUnit struct {
	Label     string  `json:"label,omitempty"`
	Length    int     `json:"length"`              // mm
	Width     int     `json:"width,omitempty"`     // mm, plates only
	Thickness float64 `json:"thickness,omitempty"` // mm, plates only, used for weight
}

func NewBar(label string, length int) StockUnit {
	return StockUnit{Label: label, Length: length}
}

func NewPlate(label string, length, width int) StockUnit {
	return StockUnit{Label: label, Length: length, Width: width}
}

func (s StockUnit) Is2D() bool {
	return s.Width > 0
}

func (s StockUnit) Mode() Mode {
	if s.Is2D() {
		return ModeTwoDimensional
	}
	return ModeOneDimensional
}

// Capacity is the length of a bar or the area of a plate.
func (s StockUnit) Capacity() int {
	if s.Is2D() {
		return s.Length * s.Width
	}
	return s.Length
}

func (s StockUnit) String() string {
	if s.Is2D() {
		return fmt.Sprintf("%dx%d mm", s.Length, s.Width)
	}
	return fmt.Sprintf("%d mm", s.Length)
}

func (s StockUnit) Validate() error {
	if s.Length <= 0 {
		return fmt.Errorf("stock length must be positive, got %d", s.Length)
	}
	if s.Width < 0 {
		return fmt.Errorf("stock width must not be negative, got %d", s.Width)
	}
	return nil
}

// Job is everything needed to run one optimization and keep its result.
type Job struct {
	Name     string       `json:"name"`
	Mode     Mode         `json:"mode,omitempty"`
	Stock    StockUnit    `json:"stock"`
	Items    []DemandItem `json:"items"`
	Settings Settings     `json:"settings"`
	Profile  string       `json:"profile,omitempty"` // catalog designation, bars only
	Solution *Solution    `json:"solution,omitempty"`
}

func NewJob(name string) Job {
	return Job{
		Name:     name,
		Items:    []DemandItem{},
		Settings: DefaultSettings(),
	}
}

// Validate checks the stock, the declared mode and every item.
func (j Job) Validate() error {
	if err := j.Stock.Validate(); err != nil {
		return err
	}
	if j.Mode != "" && j.Mode != j.Stock.Mode() {
		return fmt.Errorf("mode %q does not match %s stock", j.Mode, j.Stock.Mode())
	}
	if len(j.Items) == 0 {
		return fmt.Errorf("job has no demand items")
	}
	for _, it := range j.Items {
		if err := it.Validate(j.Stock.Mode()); err != nil {
			return err
		}
	}
	return nil
}

// TotalPieces is the number of pieces demanded across all items.
func TotalPieces(items []DemandItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}
