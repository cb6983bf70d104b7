package model

import "github.com/google/uuid"

// Solution is the chosen multiset of patterns for one run.
type Solution struct {
	ID        string       `json:"id"`
	Algorithm Algorithm    `json:"algorithm"`
	Objective Objective    `json:"objective"`
	Demand    DemandMode   `json:"demand"`
	Stock     StockUnit    `json:"stock"`
	Items     []DemandItem `json:"items"`
	Entries   []Entry      `json:"patterns"`

	TotalUnits int `json:"total_units"`
	TotalWaste int `json:"total_waste"` // mm for bars, mm² for plates

	Optimal               bool    `json:"optimal"`
	IterationLimitReached bool    `json:"iteration_limit_reached"`
	TimedOut              bool    `json:"timed_out"` // best known plan kept when the time budget ran out
	Iterations            int     `json:"iterations"`
	PatternsConsidered    int     `json:"patterns_considered"`
	LowerBound            float64 `json:"lower_bound"` // relaxed objective, 0 when no LP was solved
}

// NewSolution totals the entries. Entries with a zero count are dropped.
func NewSolution(stock StockUnit, items []DemandItem, entries []Entry) Solution {
	s := Solution{
		ID:    uuid.New().String()[:8],
		Stock: stock,
		Items: items,
	}
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}
		s.Entries = append(s.Entries, e)
		s.TotalUnits += e.Count
		s.TotalWaste += e.Count * e.Pattern.Waste()
	}
	return s
}

// Units expands the entries into one pattern per stock unit.
func (s Solution) Units() []Pattern {
	units := make([]Pattern, 0, s.TotalUnits)
	for _, e := range s.Entries {
		for k := 0; k < e.Count; k++ {
			units = append(units, e.Pattern)
		}
	}
	return units
}

// Coverage is the number of pieces produced per item.
func (s Solution) Coverage() []int {
	cov := make([]int, len(s.Items))
	for _, e := range s.Entries {
		for i := range cov {
			cov[i] += e.Count * e.Pattern.Count(i)
		}
	}
	return cov
}

// Overproduction is the number of pieces produced beyond demand, per item.
func (s Solution) Overproduction() []int {
	cov := s.Coverage()
	over := make([]int, len(cov))
	for i, c := range cov {
		if extra := c - s.Items[i].Quantity; extra > 0 {
			over[i] = extra
		}
	}
	return over
}

// PurchasedCapacity is the total length (or area) bought.
func (s Solution) PurchasedCapacity() int {
	return s.TotalUnits * s.Stock.Capacity()
}

// UsedCapacity is the total length (or area) that ends up in pieces.
func (s Solution) UsedCapacity() int {
	return s.PurchasedCapacity() - s.TotalWaste
}

// WastePercent returns waste / purchased × 100, or 0 when nothing was purchased.
func (s Solution) WastePercent() float64 {
	purchased := s.PurchasedCapacity()
	if purchased <= 0 {
		return 0
	}
	return float64(s.TotalWaste) / float64(purchased) * 100
}

// Efficiency returns used / purchased × 100, or 0 when nothing was purchased.
func (s Solution) Efficiency() float64 {
	purchased := s.PurchasedCapacity()
	if purchased <= 0 {
		return 0
	}
	return float64(s.UsedCapacity()) / float64(purchased) * 100
}

// Covers reports whether every item's demand is met (at least).
func (s Solution) Covers() bool {
	for i, c := range s.Coverage() {
		if c < s.Items[i].Quantity {
			return false
		}
	}
	return true
}
