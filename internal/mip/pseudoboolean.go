package mip

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/crillab/gophersat/solver"
)

// maxOPBLine keeps each generated OPB line under bufio.Scanner's token limit.
const maxOPBLine = 60 * 1024

// PseudoBoolean solves integer programs with gophersat. Every integer
// column x_j is written in binary, x_j = Σ_k 2^k·b_jk, with enough bits for
// the largest value an optimal solution can need, and the resulting
// pseudo-boolean program is minimized.
//
// The model gophersat returns is checked against the rows and rejected
// with ErrRejected when it violates one. Its optimality claim cannot be
// checked, so results never set Optimal.
//
// Costs, coefficients and right-hand sides must be integral.
type PseudoBoolean struct{}

func NewPseudoBoolean() *PseudoBoolean {
	return &PseudoBoolean{}
}

// pbSlot admits one gophersat solve at a time. The solver package keeps
// global clause buffers, so a solve abandoned on timeout must finish
// before the next one starts.
var pbSlot = make(chan struct{}, 1)

type pbEncoding struct {
	first []int // first variable index (1-based) of column j
	width []int // number of bits of column j
	nvars int
}

// SolveInteger minimizes p over non-negative integers. gophersat cannot be
// interrupted, so the solve runs on its own goroutine and is abandoned when
// ctx ends first; it keeps its slot until it returns.
func (pb *PseudoBoolean) SolveInteger(ctx context.Context, p *Problem) (Integer, error) {
	if err := p.Validate(); err != nil {
		return Integer{}, err
	}
	if row := p.uncoveredRow(); row >= 0 {
		return Integer{}, fmt.Errorf("%w: row %d is not covered by any column", ErrInfeasible, row)
	}
	if err := ctx.Err(); err != nil {
		return Integer{}, err
	}

	opb, enc, err := pb.encode(p)
	if err != nil {
		return Integer{}, err
	}

	select {
	case pbSlot <- struct{}{}:
	case <-ctx.Done():
		return Integer{}, fmt.Errorf("pseudo-boolean solve: %w", ctx.Err())
	}

	type outcome struct {
		cost  int
		model []bool
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() { <-pbSlot }()
		problem, err := solver.ParseOPB(strings.NewReader(opb))
		if err != nil {
			done <- outcome{err: fmt.Errorf("%w: %v", ErrMalformed, err)}
			return
		}
		s := solver.New(problem)
		cost := s.Minimize()
		var model []bool
		if cost >= 0 {
			model = s.Model()
		}
		done <- outcome{cost: cost, model: model}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return Integer{}, fmt.Errorf("pseudo-boolean solve: %w", ctx.Err())
	case out = <-done:
	}
	if out.err != nil {
		return Integer{}, out.err
	}
	if out.cost < 0 {
		return Integer{}, ErrInfeasible
	}

	x := make([]int, p.NumCols())
	for j := range x {
		for k := 0; k < enc.width[j]; k++ {
			v := enc.first[j] + k
			if v-1 < len(out.model) && out.model[v-1] {
				x[j] += 1 << k
			}
		}
	}
	if !p.Feasible(x, 1e-9) {
		return Integer{}, fmt.Errorf("%w: pseudo-boolean model %v", ErrRejected, x)
	}
	return Integer{Objective: p.Cost(x), X: x}, nil
}

// encode writes p in OPB syntax. Variable x_{first[j]+k} is bit k of column j.
func (pb *PseudoBoolean) encode(p *Problem) (string, pbEncoding, error) {
	m, n := p.NumRows(), p.NumCols()

	costs := make([]int, n)
	for j, c := range p.Costs {
		v, err := integral(c)
		if err != nil {
			return "", pbEncoding{}, fmt.Errorf("cost of column %d: %w", j, err)
		}
		costs[j] = v
	}
	rhs := make([]int, m)
	for i, b := range p.RHS {
		v, err := integral(b)
		if err != nil {
			return "", pbEncoding{}, fmt.Errorf("right-hand side of row %d: %w", i, err)
		}
		rhs[i] = v
	}
	coef := make([][]int, n)
	for j, col := range p.Columns {
		coef[j] = make([]int, m)
		for i, a := range col {
			v, err := integral(a)
			if err != nil {
				return "", pbEncoding{}, fmt.Errorf("coefficient (%d,%d): %w", i, j, err)
			}
			coef[j][i] = v
		}
	}

	enc := pbEncoding{first: make([]int, n), width: make([]int, n)}
	next := 1
	for j := 0; j < n; j++ {
		ub := upperBound(coef[j], rhs, p.Sense)
		enc.first[j] = next
		enc.width[j] = bits.Len(uint(ub))
		next += enc.width[j]
	}
	enc.nvars = next - 1

	var sb strings.Builder
	fmt.Fprintf(&sb, "* #variable= %d #constraint= %d\n", enc.nvars, m)

	var line strings.Builder
	line.WriteString("min:")
	terms := 0
	for j := 0; j < n; j++ {
		for k := 0; k < enc.width[j]; k++ {
			if w := costs[j] << k; w != 0 {
				fmt.Fprintf(&line, " +%d x%d", w, enc.first[j]+k)
				terms++
			}
		}
	}
	line.WriteString(" ;")
	if terms > 0 {
		if err := writeLine(&sb, line.String()); err != nil {
			return "", pbEncoding{}, err
		}
	}

	op := ">="
	if p.Sense == Equal {
		op = "="
	}
	for i := 0; i < m; i++ {
		line.Reset()
		terms = 0
		for j := 0; j < n; j++ {
			a := coef[j][i]
			if a == 0 {
				continue
			}
			for k := 0; k < enc.width[j]; k++ {
				w := a << k
				if p.Sense == AtLeast && w > rhs[i] && rhs[i] > 0 {
					// One such bit meets the row on its own.
					w = rhs[i]
				}
				fmt.Fprintf(&line, "+%d x%d ", w, enc.first[j]+k)
				terms++
			}
		}
		if terms == 0 {
			if rhs[i] > 0 {
				return "", pbEncoding{}, fmt.Errorf("%w: row %d has no usable column", ErrInfeasible, i)
			}
			continue
		}
		fmt.Fprintf(&line, "%s %d ;", op, rhs[i])
		if err := writeLine(&sb, line.String()); err != nil {
			return "", pbEncoding{}, err
		}
	}
	return sb.String(), enc, nil
}

func writeLine(sb *strings.Builder, line string) error {
	if len(line) > maxOPBLine {
		return fmt.Errorf("%w: OPB line of %d bytes", ErrTooLarge, len(line))
	}
	sb.WriteString(line)
	sb.WriteByte('\n')
	return nil
}

// upperBound is the largest value column j can take in some optimal solution.
// With non-negative costs, AtLeast never needs more than the largest
// ⌈b_i/a_ij⌉; Equal can never exceed the smallest ⌊b_i/a_ij⌋.
func upperBound(col, rhs []int, sense Sense) int {
	ub := -1
	for i, a := range col {
		if a <= 0 {
			continue
		}
		var v int
		if sense == Equal {
			v = rhs[i] / a
			if ub < 0 || v < ub {
				ub = v
			}
		} else {
			v = (rhs[i] + a - 1) / a
			if v > ub {
				ub = v
			}
		}
	}
	if ub < 0 {
		return 0
	}
	return ub
}

func integral(v float64) (int, error) {
	r := math.Round(v)
	if math.Abs(v-r) > 1e-9 {
		return 0, fmt.Errorf("%w: %g", ErrNonIntegral, v)
	}
	return int(r), nil
}
