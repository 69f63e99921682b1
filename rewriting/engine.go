// Package rewriting implements the L-system expansion engine: it rewrites an
// axiom through a rule set for a fixed number of iterations using two
// alternating buffers, and hands the final generation to the caller.
package rewriting

import (
	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

// State is the phase of one expansion.
type State int

// The expansion states.
const (
	StateSeeding State = iota
	StateIterating
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "Seeding"
	case StateIterating:
		return "Iterating"
	case StateFinalizing:
		return "Finalizing"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Builder can build engines.
type Builder struct {
	name      string
	allocator Allocator
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name:      "Engine",
		allocator: HeapAllocator{},
	}
}

// WithName sets the name of the engine. Buffer names are derived from it.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithAllocator sets the allocator that provides buffer storage.
func (b Builder) WithAllocator(allocator Allocator) Builder {
	b.allocator = allocator
	return b
}

// Build creates a new Engine.
func (b Builder) Build() *Engine {
	return &Engine{
		name:      b.name,
		allocator: b.allocator,
	}
}

// An Engine expands L-systems. It keeps no state between calls: every Expand
// owns its own pair of buffers, so one engine can serve concurrent calls as
// long as no hook is added while an expansion runs.
type Engine struct {
	HookableBase

	name      string
	allocator Allocator
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// Allocator returns the allocator that provides buffer storage.
func (e *Engine) Allocator() Allocator {
	return e.allocator
}

// Expand rewrites axiom through rules iterations times and returns the final
// generation. The returned slice belongs to the caller and has a capacity of
// exactly its length plus one. On failure, every buffer the call allocated has
// been released and the error matches ErrAllocationFailure.
//
// A negative iteration count is treated as zero.
func (e *Engine) Expand(
	axiom []byte,
	rules lsystem.RuleSet,
	iterations int,
) ([]byte, error) {
	x := &Expansion{
		engine:     e,
		axiomLen:   len(axiom),
		iterations: max(iterations, 0),
	}

	if err := x.seed(axiom, rules); err != nil {
		return nil, x.fail(err)
	}

	for x.iteration = 0; x.iteration < x.iterations; x.iteration++ {
		if err := x.step(rules); err != nil {
			return nil, x.fail(err)
		}
	}

	result := x.finalize()
	x.enter(StateDone, nil)

	return result, nil
}

// ExpandString is Expand for string input and output.
func (e *Engine) ExpandString(
	axiom string,
	rules lsystem.RuleSet,
	iterations int,
) (string, error) {
	out, err := e.Expand([]byte(axiom), rules, iterations)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// ExpandSystem expands the axiom, rules and iteration count of a system.
func (e *Engine) ExpandSystem(sys lsystem.LSystem) ([]byte, error) {
	return e.Expand([]byte(sys.Axiom), sys.Rules, sys.Iterations)
}

// Expand expands with a default engine.
func Expand(axiom []byte, rules lsystem.RuleSet, iterations int) ([]byte, error) {
	return MakeBuilder().Build().Expand(axiom, rules, iterations)
}

// An Expansion is the state of one Expand call, as seen by hooks.
type Expansion struct {
	engine *Engine
	pair   *GenerationPair

	state       State
	axiomLen    int
	iterations  int
	iteration   int
	growth      float64
	planned     int
	swaps       int
	finalLength int
	shrunk      bool
}

// Engine returns the engine running the expansion.
func (x *Expansion) Engine() *Engine { return x.engine }

// State returns the current state.
func (x *Expansion) State() State { return x.state }

// AxiomLength returns the length of the axiom.
func (x *Expansion) AxiomLength() int { return x.axiomLen }

// Iterations returns the requested iteration count.
func (x *Expansion) Iterations() int { return x.iterations }

// Iteration returns the index of the pass in progress, or the number of
// completed passes once iterating is over.
func (x *Expansion) Iteration() int { return x.iteration }

// Growth returns the estimated growth factor.
func (x *Expansion) Growth() float64 { return x.growth }

// PlannedCapacity returns the initial capacity of both buffers.
func (x *Expansion) PlannedCapacity() int { return x.planned }

// Swaps returns the number of buffer swaps so far.
func (x *Expansion) Swaps() int { return x.swaps }

// FinalLength returns the length of the result once finalized.
func (x *Expansion) FinalLength() int { return x.finalLength }

// Shrunk reports whether the result was shrunk to fit.
func (x *Expansion) Shrunk() bool { return x.shrunk }

// Resizes returns the number of reallocations of both buffers so far.
func (x *Expansion) Resizes() int {
	if x.pair == nil {
		return 0
	}

	return x.pair.Current.Resizes() + x.pair.Next.Resizes()
}

func (x *Expansion) seed(axiom []byte, rules lsystem.RuleSet) error {
	x.enter(StateSeeding, nil)

	x.growth = EstimateGrowth(rules)
	x.planned = PlanCapacity(len(axiom), x.growth, x.iterations)

	pair, err := AllocatePair(x.engine.allocator, x.engine.name, x.planned)
	if err != nil {
		return err
	}

	x.pair = pair

	for _, h := range x.engine.Hooks() {
		x.pair.AcceptHook(h)
	}

	return x.pair.Current.Append(axiom)
}

func (x *Expansion) step(rules lsystem.RuleSet) error {
	x.enter(StateIterating, nil)

	current, next := x.pair.Current, x.pair.Next

	if err := Apply(current, rules, x.growth, next); err != nil {
		return err
	}

	// The old generation is dead; make it large enough to receive the next
	// pass without copying it.
	if next.Len()+1 > current.Capacity() {
		current.Reset()

		err := current.growTo(
			max(current.Capacity(), next.Len()*2), StageScratchGrow)
		if err != nil {
			return err
		}
	}

	x.pair.Swap()
	x.swaps++

	detail := IterationDetail{
		Iteration: x.iteration,
		Total:     x.iterations,
		Length:    x.pair.Current.Len(),
		Capacity:  x.pair.Current.Capacity(),
	}
	x.invoke(HookPosSwap, detail)
	x.invoke(HookPosIterationDone, detail)

	return nil
}

func (x *Expansion) finalize() []byte {
	x.enter(StateFinalizing, nil)

	current := x.pair.Current
	x.shrunk = current.shrinkToFit()
	x.finalLength = current.Len()

	x.invoke(HookPosFinalize, FinalizeDetail{
		Length:   current.Len(),
		Capacity: current.Capacity(),
		Shrunk:   x.shrunk,
	})

	result := current.take()
	x.pair.Next.release()

	return result
}

func (x *Expansion) fail(err error) error {
	if x.pair != nil {
		x.pair.Release()
	}

	x.enter(StateFailed, err)

	return err
}

func (x *Expansion) enter(s State, err error) {
	x.state = s
	x.invoke(HookPosStateChange, StateChange{State: s, Err: err})
}

func (x *Expansion) invoke(pos *HookPos, detail interface{}) {
	if x.engine.NumHooks() == 0 {
		return
	}

	x.engine.InvokeHook(HookCtx{
		Domain: x.engine,
		Pos:    pos,
		Item:   x,
		Detail: detail,
	})
}
