package engine

import (
	"testing"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForceValue returns the best Σ π_i·count_i over every feasible pattern.
func bruteForceValue(t *testing.T, stock model.StockUnit, items []model.DemandItem, duals []float64, bound func(i int) int) float64 {
	t.Helper()
	patterns, err := NewPatternSpace(stock, items).Enumerate(0)
	require.NoError(t, err)
	best := 0.0
	for _, p := range patterns {
		ok := true
		v := 0.0
		for i := range items {
			if p.Count(i) > bound(i) {
				ok = false
				break
			}
			v += duals[i] * float64(p.Count(i))
		}
		if ok && v > best {
			best = v
		}
	}
	return best
}

func TestPrice_MatchesBruteForce(t *testing.T) {
	items := []model.DemandItem{
		model.NewDemandItem("A", 2500, 3),
		model.NewDemandItem("B", 1800, 4),
		model.NewDemandItem("C", 1200, 5),
		model.NewDemandItem("D", 700, 6),
	}
	stock := model.NewBar("6m", 6000)
	dualSets := [][]float64{
		{0.5, 0.33, 0.26, 0.12},
		{0.1, 0.9, 0.2, 0.05},
		{0.42, 0.3, 0.2, 0.11},
		{0, 0, 0.21, 0},
		{0, 0, 0, 0},
	}

	for _, bounded := range []bool{false, true} {
		oracle := NewPricingOracle(stock, items, bounded, CostModelFor(model.ObjectiveUnits, items))
		for _, duals := range dualSets {
			priced, err := oracle.Price(duals)
			require.NoError(t, err)

			bound := func(i int) int {
				if bounded {
					return items[i].Quantity
				}
				return stock.Length / items[i].Length
			}
			want := bruteForceValue(t, stock, items, duals, bound)
			assert.InDelta(t, want, priced.Value, 1e-9, "duals %v bounded=%t", duals, bounded)
			assert.InDelta(t, priced.Value-1, priced.ReducedCost, 1e-9)
			assertPatternInvariants(t, priced.Pattern, items, stock)
			if bounded {
				for i, it := range items {
					assert.LessOrEqual(t, priced.Pattern.Count(i), it.Quantity)
				}
			}
		}
	}
}

func TestPrice_BeatsGreedyRatio(t *testing.T) {
	// Greedy by π/l takes one 3200 piece first and then nothing else fits;
	// two 3000 pieces are worth more.
	items := []model.DemandItem{
		model.NewDemandItem("A", 3200, 5),
		model.NewDemandItem("B", 3000, 5),
	}
	stock := model.NewBar("6m", 6100)
	oracle := NewPricingOracle(stock, items, false, CostModelFor(model.ObjectiveUnits, items))

	priced, err := oracle.Price([]float64{1.1, 1.0})
	require.NoError(t, err)
	assert.Equal(t, 0, priced.Pattern.Count(0))
	assert.Equal(t, 2, priced.Pattern.Count(1))
	assert.InDelta(t, 1.0, priced.ReducedCost, 1e-9)
	assert.True(t, priced.Improving())
}

func TestPrice_BoundedByQuantity(t *testing.T) {
	items := []model.DemandItem{model.NewDemandItem("A", 1000, 2)}
	stock := model.NewBar("6m", 6000)
	cost := CostModelFor(model.ObjectiveUnits, items)

	free, err := NewPricingOracle(stock, items, false, cost).Price([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, 6, free.Pattern.Count(0))

	capped, err := NewPricingOracle(stock, items, true, cost).Price([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, 2, capped.Pattern.Count(0))
}

func TestPrice_NoImprovingPattern(t *testing.T) {
	items := scenarioAItems()
	oracle := NewPricingOracle(model.NewBar("6m", 6000), items, false, CostModelFor(model.ObjectiveUnits, items))

	priced, err := oracle.Price([]float64{0.5, 1.0 / 3.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, priced.ReducedCost, 1e-9)
	assert.False(t, priced.Improving())

	empty, err := oracle.Price([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Pattern.Pieces())
	assert.False(t, empty.Improving())
}

func TestPrice_WasteObjective(t *testing.T) {
	items := scenarioAItems()
	stock := model.NewBar("6m", 6000)
	cost := CostModelFor(model.ObjectiveWaste, items)
	assert.Equal(t, 6.0, cost.PerWaste)

	oracle := NewPricingOracle(stock, items, false, cost)
	priced, err := oracle.Price([]float64{0.5, 0.5})
	require.NoError(t, err)

	// Zero-waste patterns cost 1, so the best one has the most dual value.
	assert.Equal(t, 0, priced.Pattern.Waste())
	assert.InDelta(t, priced.Value-cost.Cost(priced.Pattern), priced.ReducedCost, 1e-9)
	assert.InDelta(t, 0.5, priced.ReducedCost, 1e-9)
}

func TestPrice_DualCountMismatch(t *testing.T) {
	items := scenarioAItems()
	oracle := NewPricingOracle(model.NewBar("6m", 6000), items, false, CostModelFor(model.ObjectiveUnits, items))
	_, err := oracle.Price([]float64{1})
	assert.Error(t, err)
}
