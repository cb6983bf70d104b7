package engine

import (
	"context"
	"time"

	"github.com/piwi3910/barcut/internal/model"
)

// ComparisonScenario is a named settings variant.
type ComparisonScenario struct {
	Name     string         `json:"name"`
	Settings model.Settings `json:"settings"`
}

// ComparisonResult is the outcome of one scenario. Err is kept for callers
// in process and Error for JSON.
type ComparisonResult struct {
	Scenario     ComparisonScenario `json:"scenario"`
	Solution     model.Solution     `json:"solution"`
	Err          error              `json:"-"`
	Error        string             `json:"error,omitempty"`
	UnitsUsed    int                `json:"units_used"`
	TotalWaste   int                `json:"total_waste"`
	WastePercent float64            `json:"waste_percent"`
	Optimal      bool               `json:"optimal"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// CompareScenarios optimizes the same demand under every scenario, in
// order. A failing scenario carries its error and does not stop the others.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, stock model.StockUnit, items []model.DemandItem, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		start := time.Now()
		sol, err := New(scenario.Settings, opts...).Optimize(ctx, stock, items)
		res := ComparisonResult{
			Scenario: scenario,
			Elapsed:  time.Since(start),
		}
		if err != nil {
			res.Err = err
			res.Error = err.Error()
		} else {
			res.Solution = sol
			res.UnitsUsed = sol.TotalUnits
			res.TotalWaste = sol.TotalWaste
			res.WastePercent = sol.WastePercent()
			res.Optimal = sol.Optimal
		}
		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios returns the current settings followed by one
// variant per setting switch, each flipped to its alternative.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	base = base.Normalize()
	variant := func(name string, change func(*model.Settings)) ComparisonScenario {
		s := base
		change(&s)
		return ComparisonScenario{Name: name, Settings: s}
	}

	out := []ComparisonScenario{{Name: "Current Settings", Settings: base}}

	if base.Algorithm == model.AlgorithmDCG {
		out = append(out, variant("Exact Enumeration", func(s *model.Settings) { s.Algorithm = model.AlgorithmExact }))
	} else {
		out = append(out, variant("Column Generation", func(s *model.Settings) { s.Algorithm = model.AlgorithmDCG }))
	}

	if base.Objective == model.ObjectiveWaste {
		out = append(out, variant("Minimize Units", func(s *model.Settings) { s.Objective = model.ObjectiveUnits }))
	} else {
		out = append(out, variant("Minimize Waste", func(s *model.Settings) { s.Objective = model.ObjectiveWaste }))
	}

	if base.Demand == model.DemandExactMatch {
		out = append(out, variant("Allow Over-production", func(s *model.Settings) { s.Demand = model.DemandAtLeast }))
	} else {
		out = append(out, variant("Exact Quantities", func(s *model.Settings) { s.Demand = model.DemandExactMatch }))
	}
	return out
}
