package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioAItems() []model.DemandItem {
	return []model.DemandItem{
		model.NewDemandItem("A", 3000, 2),
		model.NewDemandItem("B", 2000, 3),
	}
}

// assertPatternInvariants checks capacity and waste consistency of a pattern.
func assertPatternInvariants(t *testing.T, p model.Pattern, items []model.DemandItem, stock model.StockUnit) {
	t.Helper()
	switch pt := p.(type) {
	case model.BarPattern:
		used := 0
		for i, c := range pt.Counts {
			used += c * items[i].Length
		}
		assert.LessOrEqual(t, used, stock.Length, "pattern %s over capacity", pt.Key())
		assert.Equal(t, used, pt.UsedLength)
		assert.Equal(t, stock.Length-used, pt.WasteLength)
	case model.GridPattern:
		assert.LessOrEqual(t, pt.H*pt.PieceLength, stock.Length)
		assert.LessOrEqual(t, pt.V*pt.PieceWidth, stock.Width)
		assert.Equal(t, stock.Capacity()-pt.UsedArea, pt.WasteArea)
	default:
		t.Fatalf("unexpected pattern type %T", p)
	}
	assert.GreaterOrEqual(t, p.Waste(), 0)
}

func TestEnumerate_ScenarioA(t *testing.T) {
	items := scenarioAItems()
	stock := model.NewBar("6m", 6000)
	ps := NewPatternSpace(stock, items)

	patterns, err := ps.Enumerate(0)
	require.NoError(t, err)
	assert.Len(t, patterns, 6)

	keys := map[string]bool{}
	for _, p := range patterns {
		assertPatternInvariants(t, p, items, stock)
		assert.Greater(t, p.Pieces(), 0, "empty pattern emitted")
		keys[p.Key()] = true
	}
	assert.True(t, keys["bar:2,0"])
	assert.True(t, keys["bar:0,3"])
	assert.True(t, keys["bar:1,1"])
	assert.Equal(t, 11, ps.EstimateCount())
}

func TestEnumerate_MatchesCartesianProduct(t *testing.T) {
	items := []model.DemandItem{
		model.NewDemandItem("A", 2500, 1),
		model.NewDemandItem("B", 1800, 1),
		model.NewDemandItem("C", 1200, 1),
		model.NewDemandItem("D", 700, 1),
	}
	stock := model.NewBar("6m", 6000)

	patterns, err := NewPatternSpace(stock, items).Enumerate(0)
	require.NoError(t, err)

	want := map[string]bool{}
	for a := 0; a <= 6000/2500; a++ {
		for b := 0; b <= 6000/1800; b++ {
			for c := 0; c <= 6000/1200; c++ {
				for d := 0; d <= 6000/700; d++ {
					used := a*2500 + b*1800 + c*1200 + d*700
					if used == 0 || used > 6000 {
						continue
					}
					p, err := model.NewBarPattern([]int{a, b, c, d}, items, stock)
					require.NoError(t, err)
					want[p.Key()] = true
				}
			}
		}
	}

	got := map[string]bool{}
	for _, p := range patterns {
		assertPatternInvariants(t, p, items, stock)
		got[p.Key()] = true
	}
	assert.Equal(t, len(want), len(patterns), "duplicates or missing patterns")
	assert.Equal(t, want, got)
}

func TestEnumerate_Limit(t *testing.T) {
	ps := NewPatternSpace(model.NewBar("6m", 6000), scenarioAItems())
	_, err := ps.Enumerate(3)
	assert.ErrorIs(t, err, ErrTooManyPatterns)
}

func TestCheckFit_ScenarioB(t *testing.T) {
	item := model.NewDemandItem("long", 7000, 1)
	ps := NewPatternSpace(model.NewBar("6m", 6000), []model.DemandItem{item})

	err := ps.CheckFit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnfittableItem))

	var unfit *UnfittableItemError
	require.True(t, errors.As(err, &unfit))
	assert.Equal(t, item.ID, unfit.ItemID)
	assert.Equal(t, 7000, unfit.Length)

	_, err = ps.Enumerate(0)
	assert.ErrorIs(t, err, ErrUnfittableItem)
}

func TestCheckFit_ScenarioD(t *testing.T) {
	ps := NewPatternSpace(model.NewBar("short", 995), []model.DemandItem{model.NewDemandItem("A", 1000, 10)})
	assert.ErrorIs(t, ps.CheckFit(), ErrUnfittableItem)
}

func TestCheckFit_ExactLengthFits(t *testing.T) {
	ps := NewPatternSpace(model.NewBar("6m", 6000), []model.DemandItem{model.NewDemandItem("A", 6000, 1)})
	assert.NoError(t, ps.CheckFit())
}

func TestCheckFit_Plates(t *testing.T) {
	stock := model.NewPlate("plate", 2000, 1000)

	rotatedOnly := NewPatternSpace(stock, []model.DemandItem{model.NewPlateItem("R", 800, 1500, 1)})
	assert.NoError(t, rotatedOnly.CheckFit())

	tooWide := NewPatternSpace(stock, []model.DemandItem{model.NewPlateItem("W", 1500, 1200, 1)})
	assert.ErrorIs(t, tooWide.CheckFit(), ErrUnfittableItem)

	tooLong := NewPatternSpace(stock, []model.DemandItem{model.NewPlateItem("L", 2500, 300, 1)})
	assert.ErrorIs(t, tooLong.CheckFit(), ErrUnfittableItem)
}

func TestEnumerate_ScenarioC(t *testing.T) {
	items := []model.DemandItem{model.NewPlateItem("P", 900, 480, 4)}
	stock := model.NewPlate("plate", 2000, 1000)
	ps := NewPatternSpace(stock, items)

	patterns, err := ps.Enumerate(0)
	require.NoError(t, err)
	// normal: h ≤ 2, v ≤ 2; rotated 480x900: h ≤ 4, v ≤ 1
	assert.Len(t, patterns, 8)
	assert.Equal(t, 8, ps.EstimateCount())

	found := false
	for _, p := range patterns {
		assertPatternInvariants(t, p, items, stock)
		g := p.(model.GridPattern)
		if g.Orientation == model.OrientationNormal && g.H == 2 && g.V == 2 {
			found = true
			assert.Equal(t, 272000, g.WasteArea)
			assert.Equal(t, 4, g.Count(0))
		}
	}
	assert.True(t, found, "expected a 2x2 grid pattern")
}

func TestEnumerate_SquarePieceSingleOrientation(t *testing.T) {
	items := []model.DemandItem{model.NewPlateItem("S", 500, 500, 1)}
	patterns, err := NewPatternSpace(model.NewPlate("plate", 1000, 1000), items).Enumerate(0)
	require.NoError(t, err)
	assert.Len(t, patterns, 4)
	for _, p := range patterns {
		assert.Equal(t, model.OrientationNormal, p.(model.GridPattern).Orientation)
	}
}

func TestFirstFitDecreasing(t *testing.T) {
	items := []model.DemandItem{
		model.NewDemandItem("B", 2000, 3),
		model.NewDemandItem("A", 3000, 2),
	}
	stock := model.NewBar("6m", 6000)
	seeds := NewPatternSpace(stock, items).FirstFitDecreasing()

	require.Len(t, seeds, 2)
	assert.Equal(t, "bar:0,2", seeds[0].Key())
	assert.Equal(t, "bar:3,0", seeds[1].Key())
}

func TestFirstFitDecreasing_CoversDemandExactly(t *testing.T) {
	items := []model.DemandItem{
		model.NewDemandItem("A", 2500, 3),
		model.NewDemandItem("B", 1800, 4),
		model.NewDemandItem("C", 1200, 5),
		model.NewDemandItem("D", 700, 6),
	}
	stock := model.NewBar("6m", 6000)
	seeds := NewPatternSpace(stock, items).FirstFitDecreasing()

	cov := make([]int, len(items))
	for _, p := range seeds {
		assertPatternInvariants(t, p, items, stock)
		for i := range items {
			cov[i] += p.Count(i)
		}
	}
	for i, it := range items {
		assert.Equal(t, it.Quantity, cov[i], "item %s", it.Label)
	}
}

func TestPatternSet_GrowsMonotonically(t *testing.T) {
	items := scenarioAItems()
	stock := model.NewBar("6m", 6000)
	p1, _ := model.NewBarPattern([]int{2, 0}, items, stock)
	p2, _ := model.NewBarPattern([]int{0, 3}, items, stock)

	set := NewPatternSet()
	assert.True(t, set.Add(p1))
	snapshot := set.Patterns()
	assert.False(t, set.Add(p1), "duplicate must be rejected")
	assert.True(t, set.Add(p2))

	assert.Equal(t, 2, set.Len())
	assert.Len(t, snapshot, 1, "earlier snapshot must not change")
	idx, ok := set.Index(p2)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}
