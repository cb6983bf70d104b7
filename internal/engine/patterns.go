package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/barcut/internal/model"
)

// maxEstimate caps EstimateCount so the product cannot overflow.
const maxEstimate = math.MaxInt32

// PatternSpace produces the feasible cutting patterns of one stock unit for a
// list of demand items.
type PatternSpace struct {
	stock model.StockUnit
	items []model.DemandItem
}

func NewPatternSpace(stock model.StockUnit, items []model.DemandItem) *PatternSpace {
	return &PatternSpace{stock: stock, items: items}
}

// CheckFit returns an *UnfittableItemError for the first item that cannot
// appear in any pattern.
func (ps *PatternSpace) CheckFit() error {
	for _, it := range ps.items {
		if ps.fits(it) {
			continue
		}
		return &UnfittableItemError{
			ItemID: it.ID,
			Label:  it.Name(),
			Length: it.Length,
			Width:  it.Width,
			Stock:  ps.stock,
		}
	}
	return nil
}

func (ps *PatternSpace) fits(it model.DemandItem) bool {
	if !ps.stock.Is2D() {
		return it.Length <= ps.stock.Length
	}
	L, W := ps.stock.Length, ps.stock.Width
	return (it.Length <= L && it.Width <= W) || (it.Width <= L && it.Length <= W)
}

// EstimateCount is an upper bound on the number of patterns Enumerate would
// produce, saturated at math.MaxInt32.
func (ps *PatternSpace) EstimateCount() int {
	if ps.stock.Is2D() {
		total := 0
		for _, it := range ps.items {
			for _, o := range ps.orientations(it) {
				pl, pw := oriented(it, o)
				total += (ps.stock.Length / pl) * (ps.stock.Width / pw)
				if total > maxEstimate {
					return maxEstimate
				}
			}
		}
		return total
	}
	count := 1
	for _, it := range ps.items {
		count *= ps.stock.Length/it.Length + 1
		if count > maxEstimate {
			return maxEstimate
		}
	}
	return count - 1
}

// Enumerate returns every feasible pattern. Bars get every non-empty count
// vector that fits; plates get every h × v grid of every item in both
// orientations. A positive limit caps the result with ErrTooManyPatterns.
func (ps *PatternSpace) Enumerate(limit int) ([]model.Pattern, error) {
	if err := ps.CheckFit(); err != nil {
		return nil, err
	}
	if ps.stock.Is2D() {
		return ps.enumerateGrids(limit)
	}
	return ps.enumerateBars(limit)
}

// enumerateBars walks count vectors depth first. The count of item i never
// exceeds the capacity left by items 0..i-1, so no branch ever overshoots L.
func (ps *PatternSpace) enumerateBars(limit int) ([]model.Pattern, error) {
	n := len(ps.items)
	counts := make([]int, n)
	var patterns []model.Pattern

	var walk func(i, remaining, pieces int) error
	walk = func(i, remaining, pieces int) error {
		if i == n {
			if pieces == 0 {
				return nil
			}
			p, err := model.NewBarPattern(counts, ps.items, ps.stock)
			if err != nil {
				return err
			}
			patterns = append(patterns, p)
			if limit > 0 && len(patterns) > limit {
				return fmt.Errorf("%w: more than %d", ErrTooManyPatterns, limit)
			}
			return nil
		}
		l := ps.items[i].Length
		for c := 0; c*l <= remaining; c++ {
			counts[i] = c
			if err := walk(i+1, remaining-c*l, pieces+c); err != nil {
				return err
			}
		}
		counts[i] = 0
		return nil
	}

	if err := walk(0, ps.stock.Length, 0); err != nil {
		return nil, err
	}
	return patterns, nil
}

func (ps *PatternSpace) enumerateGrids(limit int) ([]model.Pattern, error) {
	var patterns []model.Pattern
	for i, it := range ps.items {
		for _, o := range ps.orientations(it) {
			pl, pw := oriented(it, o)
			maxH, maxV := ps.stock.Length/pl, ps.stock.Width/pw
			for h := 1; h <= maxH; h++ {
				for v := 1; v <= maxV; v++ {
					p, err := model.NewGridPattern(i, it, o, h, v, ps.stock)
					if err != nil {
						return nil, err
					}
					patterns = append(patterns, p)
					if limit > 0 && len(patterns) > limit {
						return nil, fmt.Errorf("%w: more than %d", ErrTooManyPatterns, limit)
					}
				}
			}
		}
	}
	return patterns, nil
}

// orientations lists the orientations in which it fits the plate. Square
// pieces only get the normal orientation.
func (ps *PatternSpace) orientations(it model.DemandItem) []model.Orientation {
	var out []model.Orientation
	if it.Length <= ps.stock.Length && it.Width <= ps.stock.Width {
		out = append(out, model.OrientationNormal)
	}
	if it.Length != it.Width && it.Width <= ps.stock.Length && it.Length <= ps.stock.Width {
		out = append(out, model.OrientationRotated)
	}
	return out
}

func oriented(it model.DemandItem, o model.Orientation) (int, int) {
	if o == model.OrientationRotated {
		return it.Width, it.Length
	}
	return it.Length, it.Width
}

// FirstFitDecreasing seeds column generation with one pattern per bar. Items
// are visited longest first, ties in input order, and each bar is filled from
// the items that still have quantity left until every piece is placed.
// CheckFit must have passed.
func (ps *PatternSpace) FirstFitDecreasing() []model.Pattern {
	order := make([]int, len(ps.items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ps.items[order[a]].Length > ps.items[order[b]].Length
	})

	left := make([]int, len(ps.items))
	remaining := 0
	for i, it := range ps.items {
		left[i] = it.Quantity
		remaining += it.Quantity
	}

	var patterns []model.Pattern
	for remaining > 0 {
		counts := make([]int, len(ps.items))
		capacity := ps.stock.Length
		for _, i := range order {
			l := ps.items[i].Length
			for left[i] > 0 && l <= capacity {
				counts[i]++
				left[i]--
				remaining--
				capacity -= l
			}
		}
		p, err := model.NewBarPattern(counts, ps.items, ps.stock)
		if err != nil || p.Pieces() == 0 {
			// Only reachable when an item is longer than the bar.
			break
		}
		patterns = append(patterns, p)
	}
	return patterns
}
