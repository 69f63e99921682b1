package rewriting

import (
	"math"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

// Sizing policy.
const (
	// GrowthFloor is the smallest growth factor the planner works with, so
	// that rule sets full of short replacements still get room for
	// super-linear expansion.
	GrowthFloor = 1.5

	// CapacityCeiling bounds the planned initial capacity of each buffer.
	CapacityCeiling = 1_000_000

	// AxiomHeadroom is the minimum planned capacity per axiom symbol.
	AxiomHeadroom = 10

	// ResizeHeadroom is the minimum slack added by an on-demand resize.
	ResizeHeadroom = 1_000_000

	// PredictiveSlack scales the predicted size of the next generation.
	PredictiveSlack = 1.2
)

// EstimateGrowth returns the expected expansion ratio per iteration: the mean
// replacement length over the symbols that have rules, never less than
// GrowthFloor. Symbols without rules are not counted.
func EstimateGrowth(rules lsystem.RuleSet) float64 {
	if rules.Len() == 0 {
		return GrowthFloor
	}

	total := 0
	for _, r := range rules.Rules() {
		total += len(r.Replacement)
	}

	growth := float64(total) / float64(rules.Len())

	return math.Max(growth, GrowthFloor)
}

// PlanCapacity returns the initial capacity of both buffers for an axiom of
// axiomLen symbols expanded iterations times with the given growth.
func PlanCapacity(axiomLen int, growth float64, iterations int) int {
	estimated := float64(axiomLen)*math.Pow(growth, float64(iterations)) + 1

	capacity := CapacityCeiling
	if estimated < CapacityCeiling {
		capacity = int(estimated)
	}

	if floor := axiomLen * AxiomHeadroom; capacity < floor {
		capacity = floor
	}

	return capacity
}

// NextCapacity returns the capacity an on-demand resize moves to when needed
// symbols no longer fit: double the capacity, or needed plus ResizeHeadroom,
// whichever is larger.
func NextCapacity(capacity, needed int) int {
	doubled := math.MaxInt
	if capacity <= math.MaxInt/2 {
		doubled = capacity * 2
	}

	padded := math.MaxInt
	if needed <= math.MaxInt-ResizeHeadroom {
		padded = needed + ResizeHeadroom
	}

	return max(doubled, padded)
}

// PredictCapacity returns the capacity the next generation is expected to
// need, given the length of the current one.
func PredictCapacity(length int, growth float64) int {
	predicted := float64(length) * growth * PredictiveSlack
	if predicted >= math.MaxInt {
		return math.MaxInt
	}

	return int(predicted)
}
