// Package mip is the linear and integer programming capability the cutting
// engine calls. A Problem is a covering program
//
//	minimize   Σ_j c_j x_j
//	subject to Σ_j a_ij x_j ≥ b_i   (or = b_i)   for every row i
//	           x_j ≥ 0
//
// stored column-wise, because the engine adds one column per pattern.
// Relaxed solves return row duals; integer solves return x_j ∈ ℕ.
package mip

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrInfeasible  = errors.New("mip: problem is infeasible")
	ErrUnbounded   = errors.New("mip: problem is unbounded")
	ErrNonIntegral = errors.New("mip: integer backend needs integral coefficients")
	ErrMalformed   = errors.New("mip: malformed problem")
	ErrTooLarge    = errors.New("mip: problem too large for backend")
	ErrRejected    = errors.New("mip: backend returned a point that violates the rows")
	ErrNodeLimit   = errors.New("mip: branch and bound node limit reached")
)

// Sense is the relation shared by every row.
type Sense int

const (
	AtLeast Sense = iota // Σ a x ≥ b
	Equal                // Σ a x = b
)

func (s Sense) String() string {
	if s == Equal {
		return "="
	}
	return ">="
}

// Problem is a covering program with one column per variable.
type Problem struct {
	Costs   []float64   // c_j
	Columns [][]float64 // Columns[j][i] = a_ij
	RHS     []float64   // b_i
	Sense   Sense

	// Start is an optional integer point believed feasible. BranchBound
	// checks it against the rows and starts from it as its incumbent.
	Start []int
}

func (p *Problem) NumRows() int { return len(p.RHS) }
func (p *Problem) NumCols() int { return len(p.Columns) }

// Validate checks dimensions and signs.
func (p *Problem) Validate() error {
	if len(p.Costs) != len(p.Columns) {
		return fmt.Errorf("%w: %d costs for %d columns", ErrMalformed, len(p.Costs), len(p.Columns))
	}
	if len(p.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrMalformed)
	}
	for j, col := range p.Columns {
		if len(col) != len(p.RHS) {
			return fmt.Errorf("%w: column %d has %d rows, want %d", ErrMalformed, j, len(col), len(p.RHS))
		}
		for _, a := range col {
			if a < 0 {
				return fmt.Errorf("%w: negative coefficient in column %d", ErrMalformed, j)
			}
		}
		if p.Costs[j] < 0 {
			return fmt.Errorf("%w: negative cost on column %d", ErrMalformed, j)
		}
	}
	for i, b := range p.RHS {
		if b < 0 {
			return fmt.Errorf("%w: negative right-hand side on row %d", ErrMalformed, i)
		}
	}
	if p.Start != nil && len(p.Start) != len(p.Columns) {
		return fmt.Errorf("%w: start point has %d values for %d columns", ErrMalformed, len(p.Start), len(p.Columns))
	}
	return nil
}

// uncoveredRow returns the first row with a positive right-hand side that no
// column touches, or -1.
func (p *Problem) uncoveredRow() int {
	for i, b := range p.RHS {
		if b <= 0 {
			continue
		}
		covered := false
		for _, col := range p.Columns {
			if col[i] > 0 {
				covered = true
				break
			}
		}
		if !covered {
			return i
		}
	}
	return -1
}

// Objective evaluates Σ c_j x_j.
func (p *Problem) Objective(x []float64) float64 {
	total := 0.0
	for j, c := range p.Costs {
		total += c * x[j]
	}
	return total
}

// Cost evaluates Σ c_j x_j at an integer point.
func (p *Problem) Cost(x []int) float64 {
	total := 0.0
	for j, c := range p.Costs {
		total += c * float64(x[j])
	}
	return total
}

// Feasible reports whether integer x satisfies every row within tol.
func (p *Problem) Feasible(x []int, tol float64) bool {
	for i, b := range p.RHS {
		lhs := 0.0
		for j, col := range p.Columns {
			lhs += col[i] * float64(x[j])
		}
		if p.Sense == Equal && math.Abs(lhs-b) > tol {
			return false
		}
		if lhs < b-tol {
			return false
		}
	}
	return true
}

// Relaxed is the solution of the continuous relaxation.
type Relaxed struct {
	Objective float64
	X         []float64 // one per column
	Duals     []float64 // one per row
}

// Integer is the solution of the integer program.
type Integer struct {
	Objective float64
	X         []int
	Optimal   bool // false when the backend stopped at a feasible, unproven incumbent
}

// RelaxedSolver solves the continuous relaxation and exposes row duals.
type RelaxedSolver interface {
	SolveRelaxed(ctx context.Context, p *Problem) (Relaxed, error)
}

// IntegerSolver solves the program with integral variables.
type IntegerSolver interface {
	SolveInteger(ctx context.Context, p *Problem) (Integer, error)
}

// Solver is the full LP/IP capability.
type Solver interface {
	RelaxedSolver
	IntegerSolver
}

// Composite pairs a relaxed backend with an integer backend.
type Composite struct {
	RelaxedSolver
	IntegerSolver
}

// Default returns the gonum simplex for relaxations and branch and bound
// over the same simplex for integer programs.
func Default() Solver {
	return Composite{
		RelaxedSolver: NewSimplex(),
		IntegerSolver: NewBranchBound(),
	}
}

// Backend names accepted by ForBackend.
const (
	BackendBranchBound   = "branch-and-bound"
	BackendPseudoBoolean = "pseudo-boolean"
)

// ForBackend returns the solver for a named integer backend. The empty
// name selects Default.
func ForBackend(name string) (Solver, error) {
	switch name {
	case "", BackendBranchBound:
		return Default(), nil
	case BackendPseudoBoolean:
		return Composite{RelaxedSolver: NewSimplex(), IntegerSolver: NewPseudoBoolean()}, nil
	}
	return nil, fmt.Errorf("mip: unknown integer backend %q", name)
}

// RoundUp turns a relaxed solution into an integer one by taking ⌈x_j⌉.
// For AtLeast rows with non-negative coefficients the result stays feasible.
func RoundUp(p *Problem, r Relaxed) Integer {
	x := make([]int, len(r.X))
	obj := 0.0
	for j, v := range r.X {
		x[j] = int(math.Ceil(v - 1e-9))
		if x[j] < 0 {
			x[j] = 0
		}
		obj += p.Costs[j] * float64(x[j])
	}
	return Integer{Objective: obj, X: x}
}
