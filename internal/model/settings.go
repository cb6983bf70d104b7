package model

import "time"

// Algorithm selects how the master problem's pattern set is built.
type Algorithm string

const (
	AlgorithmAuto  Algorithm = "auto"  // Exact when the pattern space is small, otherwise DCG
	AlgorithmExact Algorithm = "exact" // Enumerate every pattern, then solve the integer program
	AlgorithmDCG   Algorithm = "dcg"   // Delayed column generation
)

// DemandMode decides whether coverage must hit the quantity exactly or may exceed it.
type DemandMode string

const (
	DemandAuto       DemandMode = "auto"        // Exact match for exact 1D runs, at least otherwise
	DemandExactMatch DemandMode = "exact-match" // Σ x·count = quantity
	DemandAtLeast    DemandMode = "at-least"    // Σ x·count ≥ quantity
)

// Objective is what the master problem minimizes.
type Objective string

const (
	ObjectiveUnits Objective = "units" // Number of stock units
	ObjectiveWaste Objective = "waste" // Total waste, ties broken by unit count
)

// Settings holds optimizer configuration for one run.
type Settings struct {
	Algorithm      Algorithm  `json:"algorithm"`
	Demand         DemandMode `json:"demand"`
	Objective      Objective  `json:"objective"`
	MaxIterations  int        `json:"max_iterations"`   // DCG relax-and-price rounds
	TimeoutSeconds float64    `json:"timeout_seconds"`  // 0 = no limit
	MaxPatterns    int        `json:"max_patterns"`     // Enumeration cap
	AutoExactLimit int        `json:"auto_exact_limit"` // Auto picks exact up to this estimated pattern count
	MinOffcut      int        `json:"min_offcut"`       // Shortest remnant worth keeping, mm
}

func DefaultSettings() Settings {
	return Settings{
		Algorithm:      AlgorithmAuto,
		Demand:         DemandAuto,
		Objective:      ObjectiveUnits,
		MaxIterations:  100,
		TimeoutSeconds: 60,
		MaxPatterns:    20000,
		AutoExactLimit: 2000,
		MinOffcut:      300,
	}
}

// Timeout converts TimeoutSeconds to a duration. Zero means no limit.
func (s Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// ResolveDemand turns DemandAuto into the concrete mode for an algorithm.
func (s Settings) ResolveDemand(algo Algorithm, mode Mode) DemandMode {
	if s.Demand != "" && s.Demand != DemandAuto {
		return s.Demand
	}
	if mode == ModeOneDimensional && algo == AlgorithmExact {
		return DemandExactMatch
	}
	return DemandAtLeast
}

// Normalize fills zero values with defaults.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.Algorithm == "" {
		s.Algorithm = d.Algorithm
	}
	if s.Demand == "" {
		s.Demand = d.Demand
	}
	if s.Objective == "" {
		s.Objective = d.Objective
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.MaxPatterns <= 0 {
		s.MaxPatterns = d.MaxPatterns
	}
	if s.AutoExactLimit <= 0 {
		s.AutoExactLimit = d.AutoExactLimit
	}
	if s.MinOffcut < 0 {
		s.MinOffcut = 0
	}
	return s
}

func ValidAlgorithm(a Algorithm) bool {
	switch a {
	case AlgorithmAuto, AlgorithmExact, AlgorithmDCG:
		return true
	}
	return false
}

func ValidDemandMode(d DemandMode) bool {
	switch d {
	case DemandAuto, DemandExactMatch, DemandAtLeast:
		return true
	}
	return false
}

func ValidObjective(o Objective) bool {
	return o == ObjectiveUnits || o == ObjectiveWaste
}
