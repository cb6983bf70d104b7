package engine

import (
	"fmt"

	"github.com/piwi3910/barcut/internal/model"
)

// reducedCostEpsilon is the smallest reduced cost treated as an improvement.
const reducedCostEpsilon = 1e-9

// CostModel prices one stock unit cut with a pattern as Fixed + PerWaste·waste.
type CostModel struct {
	Fixed    float64
	PerWaste float64
}

// CostModelFor returns the column cost for an objective. Minimizing waste
// uses a per-waste weight larger than any possible unit count, so waste is
// minimized first and unit count breaks ties.
func CostModelFor(obj model.Objective, items []model.DemandItem) CostModel {
	if obj == model.ObjectiveWaste {
		return CostModel{Fixed: 1, PerWaste: float64(model.TotalPieces(items) + 1)}
	}
	return CostModel{Fixed: 1}
}

func (c CostModel) Cost(p model.Pattern) float64 {
	return c.Fixed + c.PerWaste*float64(p.Waste())
}

// Priced is the outcome of one pricing round.
type Priced struct {
	Pattern     model.BarPattern
	Value       float64 // Σ π_i·count_i
	ReducedCost float64 // Value − cost(Pattern)
}

// Improving reports whether adding the pattern can lower the relaxed objective.
func (p Priced) Improving() bool {
	return p.ReducedCost > reducedCostEpsilon
}

// PricingOracle finds the bar pattern with the largest reduced cost for a
// set of dual prices by solving a bounded knapsack over capacity 0..L.
type PricingOracle struct {
	stock  model.StockUnit
	items  []model.DemandItem
	bounds []int
	cost   CostModel
}

// NewPricingOracle bounds each item by its quantity when bounded is set
// (exact-match demand), otherwise only by how many copies fit on one bar.
func NewPricingOracle(stock model.StockUnit, items []model.DemandItem, bounded bool, cost CostModel) *PricingOracle {
	bounds := make([]int, len(items))
	for i, it := range items {
		bounds[i] = stock.Length / it.Length
		if bounded && it.Quantity < bounds[i] {
			bounds[i] = it.Quantity
		}
	}
	return &PricingOracle{stock: stock, items: items, bounds: bounds, cost: cost}
}

// chunk is a group of copies of one item taken together by the 0/1 knapsack.
type chunk struct {
	item   int
	copies int
	length int
	value  float64
}

// Price maximizes Σ (π_i + β·l_i)·c_i subject to Σ l_i·c_i ≤ L and
// c_i ≤ bound_i, where β is the per-waste cost. With β = 0 this is the
// classic Σ π_i·c_i pricing problem and the reduced cost is value − 1.
func (o *PricingOracle) Price(duals []float64) (Priced, error) {
	if len(duals) != len(o.items) {
		return Priced{}, fmt.Errorf("pricing: %d duals for %d items", len(duals), len(o.items))
	}
	L := o.stock.Length

	// Binary splitting turns each bounded item into O(log bound) 0/1 chunks.
	var chunks []chunk
	for i, it := range o.items {
		v := duals[i] + o.cost.PerWaste*float64(it.Length)
		if v <= 0 || o.bounds[i] == 0 {
			continue
		}
		left := o.bounds[i]
		for size := 1; left > 0; size *= 2 {
			k := size
			if k > left {
				k = left
			}
			chunks = append(chunks, chunk{item: i, copies: k, length: k * it.Length, value: float64(k) * v})
			left -= k
		}
	}

	best := make([]float64, L+1)
	take := make([][]bool, len(chunks))
	for k, ch := range chunks {
		take[k] = make([]bool, L+1)
		for c := L; c >= ch.length; c-- {
			if cand := best[c-ch.length] + ch.value; cand > best[c] {
				best[c] = cand
				take[k][c] = true
			}
		}
	}

	counts := make([]int, len(o.items))
	c := L
	for k := len(chunks) - 1; k >= 0; k-- {
		if take[k][c] {
			counts[chunks[k].item] += chunks[k].copies
			c -= chunks[k].length
		}
	}

	p, err := model.NewBarPattern(counts, o.items, o.stock)
	if err != nil {
		return Priced{}, fmt.Errorf("pricing: %w", err)
	}
	value := 0.0
	for i, n := range counts {
		value += duals[i] * float64(n)
	}
	return Priced{
		Pattern:     p,
		Value:       value,
		ReducedCost: value - o.cost.Cost(p),
	}, nil
}
