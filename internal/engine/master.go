package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/piwi3910/barcut/internal/mip"
	"github.com/piwi3910/barcut/internal/model"
)

// MasterProblem is the covering program over a fixed list of patterns: one
// variable per pattern, one row per demand item. It is rebuilt from scratch
// for every solve and holds no solver state.
type MasterProblem struct {
	patterns []model.Pattern
	items    []model.DemandItem
	problem  *mip.Problem
}

// BuildMaster materializes the program for patterns and items.
// DemandExactMatch rows are equalities; anything else is ≥.
func BuildMaster(patterns []model.Pattern, items []model.DemandItem, cost CostModel, demand model.DemandMode) *MasterProblem {
	p := &mip.Problem{
		Costs:   make([]float64, len(patterns)),
		Columns: make([][]float64, len(patterns)),
		RHS:     make([]float64, len(items)),
		Sense:   mip.AtLeast,
	}
	if demand == model.DemandExactMatch {
		p.Sense = mip.Equal
	}
	for i, it := range items {
		p.RHS[i] = float64(it.Quantity)
	}
	for j, pat := range patterns {
		p.Costs[j] = cost.Cost(pat)
		col := make([]float64, len(items))
		for i := range items {
			col[i] = float64(pat.Count(i))
		}
		p.Columns[j] = col
	}
	return &MasterProblem{patterns: patterns, items: items, problem: p}
}

func (m *MasterProblem) Problem() *mip.Problem {
	return m.problem
}

func (m *MasterProblem) Patterns() []model.Pattern {
	return m.patterns
}

// SetStart hands the integer backend a feasible count per pattern to start
// from. A nil x clears it.
func (m *MasterProblem) SetStart(x []int) {
	m.problem.Start = x
}

// SolveRelaxed solves the continuous relaxation and returns one dual price per item.
func (m *MasterProblem) SolveRelaxed(ctx context.Context, s mip.RelaxedSolver) (mip.Relaxed, error) {
	res, err := s.SolveRelaxed(ctx, m.problem)
	if err != nil {
		return mip.Relaxed{}, solverError(err)
	}
	return res, nil
}

// SolveInteger solves the integer program and returns a count per pattern index.
func (m *MasterProblem) SolveInteger(ctx context.Context, s mip.IntegerSolver) (mip.Integer, error) {
	res, err := s.SolveInteger(ctx, m.problem)
	if err != nil {
		return mip.Integer{}, solverError(err)
	}
	if len(res.X) != len(m.patterns) {
		return mip.Integer{}, fmt.Errorf("integer solve returned %d values for %d patterns", len(res.X), len(m.patterns))
	}
	return res, nil
}

// Entries pairs each pattern with its count, skipping unused patterns.
func (m *MasterProblem) Entries(x []int) []model.Entry {
	var entries []model.Entry
	for j, n := range x {
		if n > 0 && j < len(m.patterns) {
			entries = append(entries, model.Entry{Pattern: m.patterns[j], Count: n})
		}
	}
	return entries
}

func solverError(err error) error {
	switch {
	case errors.Is(err, mip.ErrInfeasible):
		return fmt.Errorf("%w: %w", ErrInfeasible, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrSolverTimeout, err)
	}
	return err
}
