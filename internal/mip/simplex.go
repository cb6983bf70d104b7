package mip

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Simplex solves relaxations with gonum's simplex method. Dual prices come
// from solving the dual program explicitly, since lp.Simplex only returns
// the primal point.
type Simplex struct {
	Tolerance float64
}

func NewSimplex() *Simplex {
	return &Simplex{Tolerance: 1e-9}
}

// SolveRelaxed solves the continuous relaxation of p.
//
// Rows are first rewritten as Ã x ≥ b̃ (an Equal row becomes a ≥ row and a
// negated ≥ row). The primal then runs in standard form Ã x − s = b̃, and the
// dual max b̃ᵀy s.t. Ãᵀy ≤ c, y ≥ 0 runs as min −b̃ᵀy s.t. Ãᵀy + t = c.
func (s *Simplex) SolveRelaxed(ctx context.Context, p *Problem) (Relaxed, error) {
	if err := p.Validate(); err != nil {
		return Relaxed{}, err
	}
	if row := p.uncoveredRow(); row >= 0 {
		return Relaxed{}, fmt.Errorf("%w: row %d is not covered by any column", ErrInfeasible, row)
	}
	if err := ctx.Err(); err != nil {
		return Relaxed{}, err
	}

	m, n := p.NumRows(), p.NumCols()
	rows, rhs := expandRows(p)
	mm := len(rhs)

	// Primal: [Ã  −I] [x; s] = b̃
	primal := mat.NewDense(mm, n+mm, nil)
	for r, src := range rows {
		for j := 0; j < n; j++ {
			primal.Set(r, j, src.sign*p.Columns[j][src.row])
		}
		primal.Set(r, n+r, -1)
	}
	c := make([]float64, n+mm)
	copy(c, p.Costs)

	obj, sol, err := lp.Simplex(c, primal, rhs, s.Tolerance, nil)
	if err != nil {
		return Relaxed{}, translateLP(err)
	}
	if err := ctx.Err(); err != nil {
		return Relaxed{}, err
	}

	// Dual: [Ãᵀ  I] [y; t] = c
	dual := mat.NewDense(n, mm+n, nil)
	for j := 0; j < n; j++ {
		for r, src := range rows {
			dual.Set(j, r, src.sign*p.Columns[j][src.row])
		}
		dual.Set(j, mm+j, 1)
	}
	dc := make([]float64, mm+n)
	for r := range rhs {
		dc[r] = -rhs[r]
	}
	db := make([]float64, n)
	copy(db, p.Costs)
	_, y, err := lp.Simplex(dc, dual, db, s.Tolerance, nil)
	if err != nil {
		return Relaxed{}, fmt.Errorf("dual program: %w", translateLP(err))
	}

	duals := make([]float64, m)
	for r, src := range rows {
		duals[src.row] += src.sign * y[r]
	}

	return Relaxed{
		Objective: obj,
		X:         sol[:n],
		Duals:     duals,
	}, nil
}

type expandedRow struct {
	row  int
	sign float64
}

// expandRows rewrites every row as ≥; an Equal row also yields its negation.
func expandRows(p *Problem) ([]expandedRow, []float64) {
	m := p.NumRows()
	rows := make([]expandedRow, 0, 2*m)
	rhs := make([]float64, 0, 2*m)
	for i := 0; i < m; i++ {
		rows = append(rows, expandedRow{row: i, sign: 1})
		rhs = append(rhs, p.RHS[i])
	}
	if p.Sense == Equal {
		for i := 0; i < m; i++ {
			rows = append(rows, expandedRow{row: i, sign: -1})
			rhs = append(rhs, -p.RHS[i])
		}
	}
	return rows, rhs
}

func translateLP(err error) error {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return fmt.Errorf("%w: %v", ErrInfeasible, err)
	case errors.Is(err, lp.ErrUnbounded):
		return fmt.Errorf("%w: %v", ErrUnbounded, err)
	}
	return fmt.Errorf("simplex: %w", err)
}
