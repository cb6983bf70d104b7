package engine

import (
	"context"
	"testing"

	"github.com/piwi3910/barcut/internal/mip"
	"github.com/piwi3910/barcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioAPatterns(t *testing.T) ([]model.DemandItem, []model.Pattern) {
	t.Helper()
	items := scenarioAItems()
	stock := model.NewBar("6m", 6000)
	var patterns []model.Pattern
	for _, counts := range [][]int{{2, 0}, {0, 3}, {1, 1}} {
		p, err := model.NewBarPattern(counts, items, stock)
		require.NoError(t, err)
		patterns = append(patterns, p)
	}
	return items, patterns
}

func TestBuildMaster_Shape(t *testing.T) {
	items, patterns := scenarioAPatterns(t)

	m := BuildMaster(patterns, items, CostModelFor(model.ObjectiveUnits, items), model.DemandExactMatch)
	p := m.Problem()
	assert.Equal(t, mip.Equal, p.Sense)
	assert.Equal(t, []float64{1, 1, 1}, p.Costs)
	assert.Equal(t, []float64{2, 3}, p.RHS)
	assert.Equal(t, []float64{1, 1}, p.Columns[2])

	atLeast := BuildMaster(patterns, items, CostModelFor(model.ObjectiveUnits, items), model.DemandAtLeast)
	assert.Equal(t, mip.AtLeast, atLeast.Problem().Sense)
}

func TestBuildMaster_WasteCosts(t *testing.T) {
	items, patterns := scenarioAPatterns(t)
	m := BuildMaster(patterns, items, CostModelFor(model.ObjectiveWaste, items), model.DemandAtLeast)
	// K = 2 + 3 + 1
	assert.Equal(t, []float64{1, 1, 1 + 6*1000}, m.Problem().Costs)
}

func TestBuildMaster_IsStateless(t *testing.T) {
	items, patterns := scenarioAPatterns(t)
	cost := CostModelFor(model.ObjectiveUnits, items)
	a := BuildMaster(patterns, items, cost, model.DemandAtLeast)
	b := BuildMaster(patterns, items, cost, model.DemandAtLeast)
	assert.NotSame(t, a.Problem(), b.Problem())
	assert.Equal(t, a.Problem(), b.Problem())
}

func TestMaster_SolveRelaxedDuals(t *testing.T) {
	items, patterns := scenarioAPatterns(t)
	m := BuildMaster(patterns[:2], items, CostModelFor(model.ObjectiveUnits, items), model.DemandAtLeast)

	res, err := m.SolveRelaxed(context.Background(), mip.NewSimplex())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Objective, 1e-7)
	require.Len(t, res.Duals, len(items))
	assert.InDelta(t, 0.5, res.Duals[0], 1e-7)
	assert.InDelta(t, 1.0/3.0, res.Duals[1], 1e-7)
}

func TestMaster_SolveIntegerEntries(t *testing.T) {
	items, patterns := scenarioAPatterns(t)
	m := BuildMaster(patterns, items, CostModelFor(model.ObjectiveUnits, items), model.DemandExactMatch)

	res, err := m.SolveInteger(context.Background(), mip.NewBranchBound())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 0}, res.X)

	entries := m.Entries(res.X)
	require.Len(t, entries, 2)
	assert.Equal(t, "bar:2,0", entries[0].Pattern.Key())
	assert.Equal(t, "bar:0,3", entries[1].Pattern.Key())
}

func TestMaster_ExactMatchInfeasible(t *testing.T) {
	items := []model.DemandItem{model.NewDemandItem("A", 2500, 3)}
	stock := model.NewBar("6m", 6000)
	pair, err := model.NewBarPattern([]int{2}, items, stock)
	require.NoError(t, err)

	m := BuildMaster([]model.Pattern{pair}, items, CostModelFor(model.ObjectiveUnits, items), model.DemandExactMatch)
	_, err = m.SolveInteger(context.Background(), mip.NewBranchBound())
	assert.ErrorIs(t, err, ErrInfeasible)

	// The same pattern set is fine when over-production is allowed.
	m = BuildMaster([]model.Pattern{pair}, items, CostModelFor(model.ObjectiveUnits, items), model.DemandAtLeast)
	res, err := m.SolveInteger(context.Background(), mip.NewBranchBound())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.X)
}
