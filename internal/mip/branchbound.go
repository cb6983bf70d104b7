package mip

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultMaxNodes bounds the search tree of NewBranchBound.
const DefaultMaxNodes = 20000

// integralityTol is how far an LP value may sit from an integer and still
// count as one.
const integralityTol = 1e-6

// BranchBound solves integer programs by LP-based branch and bound over
// gonum's simplex. Nodes are explored depth first, branching on the most
// fractional column, and pruned against the best integer point found so
// far. Every incumbent is checked against the rows before it is kept.
//
// When the context deadline passes or MaxNodes is reached after an
// incumbent exists, SolveInteger returns that incumbent with Optimal unset
// and no error. Cancellation always returns the context error.
type BranchBound struct {
	Tolerance float64
	MaxNodes  int
}

func NewBranchBound() *BranchBound {
	return &BranchBound{Tolerance: 1e-9, MaxNodes: DefaultMaxNodes}
}

// bbNode restricts column j to lower[j] ≤ x_j ≤ upper[j]; upper[j] < 0
// leaves it unbounded above.
type bbNode struct {
	lower []int
	upper []int
}

func (nd bbNode) fixed(j int) bool {
	return nd.upper[j] >= 0 && nd.upper[j] == nd.lower[j]
}

// split returns the children x_j ≤ ⌊v⌋ and x_j ≥ ⌈v⌉.
func (nd bbNode) split(j int, v float64) (down, up bbNode) {
	down = bbNode{lower: nd.lower, upper: append([]int(nil), nd.upper...)}
	down.upper[j] = int(math.Floor(v))
	up = bbNode{lower: append([]int(nil), nd.lower...), upper: nd.upper}
	up.lower[j] = int(math.Ceil(v))
	return down, up
}

// bbSearch is the state of one SolveInteger call.
type bbSearch struct {
	p        *Problem
	rows     []expandedRow
	rhs      []float64
	tol      float64
	intCosts bool

	best    []int
	bestObj float64

	// exhaustive stays true while every node was either solved or proven
	// infeasible; a numerical failure leaves a subtree unexplored.
	exhaustive bool
	lastErr    error
}

// SolveInteger minimizes p over non-negative integers.
func (bb *BranchBound) SolveInteger(ctx context.Context, p *Problem) (Integer, error) {
	if err := p.Validate(); err != nil {
		return Integer{}, err
	}
	if row := p.uncoveredRow(); row >= 0 {
		return Integer{}, fmt.Errorf("%w: row %d is not covered by any column", ErrInfeasible, row)
	}
	if err := ctx.Err(); err != nil {
		return Integer{}, err
	}

	tol := bb.Tolerance
	if tol <= 0 {
		tol = 1e-9
	}
	maxNodes := bb.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	rows, rhs := expandRows(p)
	s := &bbSearch{p: p, rows: rows, rhs: rhs, tol: tol, intCosts: true, exhaustive: true}
	for _, c := range p.Costs {
		if math.Abs(c-math.Round(c)) > 1e-9 {
			s.intCosts = false
		}
	}
	if p.Start != nil {
		s.offer(p.Start)
	}

	n := p.NumCols()
	root := bbNode{lower: make([]int, n), upper: make([]int, n)}
	for j, col := range p.Columns {
		root.upper[j] = -1
		if isZero(col) {
			root.upper[j] = 0
		}
	}

	var (
		stack     = []bbNode{root}
		rootBound = math.Inf(-1)
		nodes     int
		stopped   error
		proven    bool
	)
	for len(stack) > 0 {
		if s.best != nil && nodes > 0 && s.prunes(rootBound) {
			proven = true
			break
		}
		if err := ctx.Err(); err != nil {
			stopped = err
			break
		}
		if nodes >= maxNodes {
			stopped = fmt.Errorf("%w: %d nodes", ErrNodeLimit, nodes)
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		obj, x, err := s.relax(nd)
		if nodes == 1 && err == nil {
			rootBound = obj
		}
		if err != nil {
			if !errors.Is(err, ErrInfeasible) {
				s.exhaustive = false
				s.lastErr = err
			}
			continue
		}
		if s.prunes(obj) {
			continue
		}

		j := s.branchColumn(x)
		if j < 0 {
			if !s.offer(roundAll(x)) {
				s.exhaustive = false
				s.lastErr = fmt.Errorf("%w: integral relaxation fails the row check", ErrRejected)
			}
			continue
		}
		s.roundingHeuristic(x)
		if s.prunes(obj) {
			continue
		}

		down, up := nd.split(j, x[j])
		// The preferred child goes on top of the stack.
		if p.Sense == AtLeast || x[j]-math.Floor(x[j]) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}
	if len(stack) == 0 && stopped == nil && s.exhaustive {
		proven = true
	}

	if s.best == nil {
		switch {
		case stopped != nil:
			return Integer{}, fmt.Errorf("branch and bound: %w", stopped)
		case !s.exhaustive:
			return Integer{}, fmt.Errorf("branch and bound: %w", s.lastErr)
		}
		return Integer{}, ErrInfeasible
	}
	if errors.Is(stopped, context.Canceled) {
		return Integer{}, stopped
	}
	return Integer{
		Objective: s.bestObj,
		X:         s.best,
		Optimal:   proven,
	}, nil
}

// prunes reports whether a node with relaxed objective obj cannot beat the
// incumbent. Integral costs make ⌈obj⌉ the node's bound.
func (s *bbSearch) prunes(obj float64) bool {
	if s.best == nil {
		return false
	}
	if s.intCosts {
		return math.Ceil(obj-integralityTol) >= s.bestObj-1e-9
	}
	return obj >= s.bestObj-1e-9
}

// offer keeps x as the incumbent if it satisfies every row and is cheaper.
func (s *bbSearch) offer(x []int) bool {
	if len(x) != s.p.NumCols() {
		return false
	}
	for _, v := range x {
		if v < 0 {
			return false
		}
	}
	if !s.p.Feasible(x, integralityTol) {
		return false
	}
	obj := s.p.Cost(x)
	if s.best == nil || obj < s.bestObj-1e-9 {
		s.best = append([]int(nil), x...)
		s.bestObj = obj
	}
	return true
}

// roundingHeuristic tries ⌈x⌉, which keeps ≥ rows satisfied, and the
// nearest integer point, which sometimes meets = rows.
func (s *bbSearch) roundingHeuristic(x []float64) {
	if s.p.Sense == AtLeast {
		up := make([]int, len(x))
		for j, v := range x {
			up[j] = int(math.Ceil(v - integralityTol))
		}
		s.offer(up)
	}
	s.offer(roundAll(x))
}

// branchColumn returns the most fractional column of x, or -1 when x is
// integral.
func (s *bbSearch) branchColumn(x []float64) int {
	best, bestFrac := -1, integralityTol
	for j, v := range x {
		f := v - math.Floor(v)
		if f > 0.5 {
			f = 1 - f
		}
		if f > bestFrac {
			best, bestFrac = j, f
		}
	}
	return best
}

// relax solves the node's relaxation. Columns are shifted to y = x − lower,
// so the node LP in standard form is
//
//	Ã y − s = b̃ − Ã·lower   (one row per expanded row)
//	y_j + t_j = upper_j − lower_j   (one row per bounded column)
//
// with fixed columns left out.
func (s *bbSearch) relax(nd bbNode) (float64, []float64, error) {
	p := s.p
	n := p.NumCols()

	x := make([]float64, n)
	base := 0.0
	for j := range x {
		x[j] = float64(nd.lower[j])
		base += p.Costs[j] * x[j]
	}
	rhs := make([]float64, len(s.rows))
	for r, src := range s.rows {
		v := s.rhs[r]
		for j := 0; j < n; j++ {
			v -= src.sign * p.Columns[j][src.row] * x[j]
		}
		rhs[r] = v
	}

	var active, bounded []int
	at := make([]int, n)
	for j := 0; j < n; j++ {
		if nd.fixed(j) {
			continue
		}
		at[j] = len(active)
		active = append(active, j)
		if nd.upper[j] >= 0 {
			bounded = append(bounded, j)
		}
	}
	if len(active) == 0 {
		for _, v := range rhs {
			if v > integralityTol {
				return 0, nil, ErrInfeasible
			}
		}
		return base, x, nil
	}

	mm, na, nb := len(s.rows), len(active), len(bounded)
	a := mat.NewDense(mm+nb, na+mm+nb, nil)
	b := make([]float64, mm+nb)
	c := make([]float64, na+mm+nb)
	for k, j := range active {
		c[k] = p.Costs[j]
		for r, src := range s.rows {
			a.Set(r, k, src.sign*p.Columns[j][src.row])
		}
	}
	for r := range s.rows {
		a.Set(r, na+r, -1)
		b[r] = rhs[r]
	}
	for k, j := range bounded {
		a.Set(mm+k, at[j], 1)
		a.Set(mm+k, na+mm+k, 1)
		b[mm+k] = float64(nd.upper[j] - nd.lower[j])
	}

	obj, sol, err := lp.Simplex(c, a, b, s.tol, nil)
	if err != nil {
		return 0, nil, translateLP(err)
	}
	for k, j := range active {
		x[j] += sol[k]
	}
	return base + obj, x, nil
}

func roundAll(x []float64) []int {
	out := make([]int, len(x))
	for j, v := range x {
		out[j] = int(math.Round(v))
	}
	return out
}

func isZero(col []float64) bool {
	for _, a := range col {
		if a != 0 {
			return false
		}
	}
	return true
}
