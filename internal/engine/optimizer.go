package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/barcut/internal/mip"
	"github.com/piwi3910/barcut/internal/model"
)

// Optimizer decides how many stock units to buy and how to cut each one.
type Optimizer struct {
	Settings model.Settings

	solver mip.Solver
	log    Logger
	hook   func(IterationStats)
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithSolver replaces the default simplex and branch-and-bound backends.
func WithSolver(s mip.Solver) Option {
	return func(o *Optimizer) { o.solver = s }
}

func WithLogger(l Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

// WithIterationHook is called after every relax-and-price round of column generation.
func WithIterationHook(fn func(IterationStats)) Option {
	return func(o *Optimizer) { o.hook = fn }
}

// IterationStats describes one relax-and-price round.
type IterationStats struct {
	Iteration   int
	Patterns    int // size of the pattern set the relaxation was solved over
	Bound       float64
	ReducedCost float64
}

func New(settings model.Settings, opts ...Option) *Optimizer {
	o := &Optimizer{
		Settings: settings,
		solver:   mip.Default(),
		log:      noopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize cuts the demand items from copies of stock. Bars are solved by
// full enumeration or delayed column generation; plates always enumerate
// their grid patterns. The returned error matches ErrUnfittableItem,
// ErrInfeasible, ErrSolverTimeout, ErrTooManyPatterns or ErrInvalidInput.
func (o *Optimizer) Optimize(ctx context.Context, stock model.StockUnit, items []model.DemandItem) (model.Solution, error) {
	settings := o.Settings.Normalize()
	if err := validateInput(settings, stock, items); err != nil {
		return model.Solution{}, err
	}

	space := NewPatternSpace(stock, items)
	if err := space.CheckFit(); err != nil {
		return model.Solution{}, err
	}

	if d := settings.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	algo := selectAlgorithm(settings, space)
	r := &run{
		ctx:      ctx,
		settings: settings,
		stock:    stock,
		items:    items,
		space:    space,
		algo:     algo,
		demand:   settings.ResolveDemand(algo, stock.Mode()),
		cost:     CostModelFor(settings.Objective, items),
		solver:   o.solver,
		log:      o.log,
		hook:     o.hook,
	}
	if !stock.Is2D() {
		r.seed = space.FirstFitDecreasing()
	}
	o.log.Printf("optimize: %d items on %s stock, algorithm=%s demand=%s objective=%s",
		len(items), stock, r.algo, r.demand, settings.Objective)

	var (
		sol model.Solution
		err error
	)
	if algo == model.AlgorithmDCG {
		sol, err = r.columnGeneration()
	} else {
		sol, err = r.enumerated()
	}
	if err != nil {
		return model.Solution{}, err
	}
	if err := checkCoverage(sol, r.demand); err != nil {
		return model.Solution{}, err
	}
	o.log.Printf("optimize: %d units, waste %d, optimal=%t", sol.TotalUnits, sol.TotalWaste, sol.Optimal)
	return sol, nil
}

func validateInput(s model.Settings, stock model.StockUnit, items []model.DemandItem) error {
	if !model.ValidAlgorithm(s.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, s.Algorithm)
	}
	if !model.ValidDemandMode(s.Demand) {
		return fmt.Errorf("%w: unknown demand mode %q", ErrInvalidInput, s.Demand)
	}
	if !model.ValidObjective(s.Objective) {
		return fmt.Errorf("%w: unknown objective %q", ErrInvalidInput, s.Objective)
	}
	if err := stock.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: no demand items", ErrInvalidInput)
	}
	for _, it := range items {
		if err := it.Validate(stock.Mode()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}

// selectAlgorithm resolves AlgorithmAuto. Plates have no pricing loop, so
// they always enumerate.
func selectAlgorithm(s model.Settings, space *PatternSpace) model.Algorithm {
	if space.stock.Is2D() {
		return model.AlgorithmExact
	}
	if s.Algorithm == model.AlgorithmExact || s.Algorithm == model.AlgorithmDCG {
		return s.Algorithm
	}
	if space.EstimateCount() <= s.AutoExactLimit {
		return model.AlgorithmExact
	}
	return model.AlgorithmDCG
}

// run is the state of one Optimize call.
type run struct {
	ctx      context.Context
	settings model.Settings
	stock    model.StockUnit
	items    []model.DemandItem
	space    *PatternSpace
	algo     model.Algorithm
	demand   model.DemandMode
	cost     CostModel
	solver   mip.Solver
	log      Logger
	hook     func(IterationStats)

	// seed is the first-fit-decreasing plan for bars. It meets both demand
	// modes, so it is the incumbent every integer solve starts from.
	seed []model.Pattern
}

// enumerated builds every pattern up front and solves the integer program once.
func (r *run) enumerated() (model.Solution, error) {
	patterns, err := r.space.Enumerate(r.settings.MaxPatterns)
	if err != nil {
		return model.Solution{}, err
	}
	r.log.Printf("exact: %d patterns", len(patterns))

	if err := r.ctx.Err(); err != nil {
		return r.fallback(nil, nil, contextError(err))
	}
	master := BuildMaster(patterns, r.items, r.cost, r.demand)
	master.SetStart(r.seedStart(master))
	res, err := master.SolveInteger(r.ctx, r.solver)
	if err != nil {
		if isTimeout(err) {
			return r.fallback(master, nil, err)
		}
		return model.Solution{}, err
	}

	sol := r.solution(master, res.X)
	sol.Optimal = res.Optimal
	sol.TimedOut = !res.Optimal && r.deadlinePassed()
	sol.PatternsConsidered = len(patterns)
	return sol, nil
}

// columnGeneration runs relax-and-price from a first-fit-decreasing seed,
// then solves the integer program over the patterns it found.
func (r *run) columnGeneration() (model.Solution, error) {
	set := NewPatternSet()
	for _, p := range r.space.FirstFitDecreasing() {
		set.Add(p)
	}
	oracle := NewPricingOracle(r.stock, r.items, r.demand == model.DemandExactMatch, r.cost)

	var (
		incumbent       *mip.Relaxed
		incumbentMaster *MasterProblem
		converged       bool
		stalled         bool
		iterations      int
	)
	for iterations < r.settings.MaxIterations {
		if err := r.ctx.Err(); err != nil {
			return r.fallback(incumbentMaster, incumbent, contextError(err))
		}
		master := BuildMaster(set.Patterns(), r.items, r.cost, r.demand)
		relaxed, err := master.SolveRelaxed(r.ctx, r.solver)
		if err != nil {
			if isTimeout(err) {
				return r.fallback(incumbentMaster, incumbent, err)
			}
			return model.Solution{}, err
		}
		iterations++
		incumbent, incumbentMaster = &relaxed, master

		priced, err := oracle.Price(relaxed.Duals)
		if err != nil {
			return model.Solution{}, err
		}
		r.log.Printf("dcg: iteration %d: %d patterns, bound %.4f, reduced cost %.6f",
			iterations, set.Len(), relaxed.Objective, priced.ReducedCost)
		if r.hook != nil {
			r.hook(IterationStats{
				Iteration:   iterations,
				Patterns:    set.Len(),
				Bound:       relaxed.Objective,
				ReducedCost: priced.ReducedCost,
			})
		}

		if !priced.Improving() {
			converged = true
			break
		}
		if !set.Add(priced.Pattern) {
			// The relaxation and the pricing disagree about a known column.
			r.log.Printf("dcg: pricing returned known pattern %s with reduced cost %.6f, stopping unconverged",
				priced.Pattern.Key(), priced.ReducedCost)
			stalled = true
			break
		}
	}
	if !converged && !stalled {
		r.log.Printf("dcg: iteration limit %d reached", r.settings.MaxIterations)
	}

	if err := r.ctx.Err(); err != nil {
		return r.fallback(incumbentMaster, incumbent, contextError(err))
	}
	final := BuildMaster(set.Patterns(), r.items, r.cost, r.demand)
	final.SetStart(r.seedStart(final))
	res, err := final.SolveInteger(r.ctx, r.solver)
	if err != nil {
		if isTimeout(err) {
			return r.fallback(incumbentMaster, incumbent, err)
		}
		return model.Solution{}, err
	}

	sol := r.solution(final, res.X)
	sol.Iterations = iterations
	sol.IterationLimitReached = !converged && !stalled
	sol.TimedOut = !res.Optimal && r.deadlinePassed()
	sol.PatternsConsidered = set.Len()
	if incumbent != nil {
		sol.LowerBound = incumbent.Objective
		// Integral costs make ⌈LP bound⌉ a valid lower bound once pricing has converged.
		sol.Optimal = converged && res.Optimal && res.Objective <= math.Ceil(incumbent.Objective-1e-6)+1e-9
	}
	return sol, nil
}

// fallback answers with the best plan known when the time budget runs
// out: the first-fit-decreasing seed, or the last relaxed solution rounded
// up when that is cheaper. Rounding up only preserves feasibility for ≥
// rows, and plates have no seed, so some runs report the timeout instead.
func (r *run) fallback(master *MasterProblem, relaxed *mip.Relaxed, cause error) (model.Solution, error) {
	if !isTimeout(cause) {
		return model.Solution{}, cause
	}
	if master == nil {
		if len(r.seed) == 0 {
			return model.Solution{}, cause
		}
		set := NewPatternSet()
		for _, p := range r.seed {
			set.Add(p)
		}
		master = BuildMaster(set.Patterns(), r.items, r.cost, r.demand)
	}

	p := master.Problem()
	x := r.seedStart(master)
	if relaxed != nil && r.demand == model.DemandAtLeast {
		rounded := mip.RoundUp(p, *relaxed)
		if x == nil || rounded.Objective < p.Cost(x) {
			x = rounded.X
		}
	}
	if x == nil {
		return model.Solution{}, cause
	}
	r.log.Printf("%s: time budget exhausted, keeping the best known plan", r.algo)

	sol := r.solution(master, x)
	sol.TimedOut = true
	if relaxed != nil {
		sol.LowerBound = relaxed.Objective
	}
	sol.PatternsConsidered = len(master.Patterns())
	return sol, nil
}

// seedStart counts the seed bars per master column, or returns nil when
// there is no seed or one of its patterns is missing from the master.
func (r *run) seedStart(master *MasterProblem) []int {
	if len(r.seed) == 0 {
		return nil
	}
	index := make(map[string]int, len(master.Patterns()))
	for j, p := range master.Patterns() {
		if _, ok := index[p.Key()]; !ok {
			index[p.Key()] = j
		}
	}
	x := make([]int, len(master.Patterns()))
	for _, p := range r.seed {
		j, ok := index[p.Key()]
		if !ok {
			return nil
		}
		x[j]++
	}
	return x
}

func (r *run) deadlinePassed() bool {
	return errors.Is(r.ctx.Err(), context.DeadlineExceeded)
}

func (r *run) solution(master *MasterProblem, x []int) model.Solution {
	sol := model.NewSolution(r.stock, r.items, master.Entries(x))
	sol.Algorithm = r.algo
	sol.Objective = r.settings.Objective
	sol.Demand = r.demand
	return sol
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrSolverTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrSolverTimeout, err)
	}
	return err
}

// checkCoverage verifies the solution against the demand semantics it was solved under.
func checkCoverage(sol model.Solution, demand model.DemandMode) error {
	for i, c := range sol.Coverage() {
		q := sol.Items[i].Quantity
		if c < q || (demand == model.DemandExactMatch && c != q) {
			return fmt.Errorf("%w: item %q covered %d times, demand %d", ErrInfeasible, sol.Items[i].Name(), c, q)
		}
	}
	return nil
}
