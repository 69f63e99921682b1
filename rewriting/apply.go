package rewriting

import "github.com/hunterpope03/c-l-system-studio/lsystem"

// Apply performs one rewrite pass. It empties next and writes into it the
// rewrite of current, left to right: each symbol with a rule becomes the
// rule's replacement and every other symbol is copied unchanged.
//
// Before the pass, next grows to PredictCapacity(current.Len(), growth) if it
// is smaller. During the pass it resizes on demand. current is not modified.
func Apply(
	current *WorkingBuffer,
	rules lsystem.RuleSet,
	growth float64,
	next *WorkingBuffer,
) error {
	next.Reset()

	predicted := PredictCapacity(current.Len(), growth)
	if next.Capacity() < predicted {
		if err := next.growTo(predicted, StagePredictiveGrow); err != nil {
			return err
		}
	}

	for _, s := range current.Bytes() {
		var err error

		if replacement, ok := rules.Lookup(lsystem.Symbol(s)); ok {
			err = next.Append(replacement)
		} else {
			err = next.AppendSymbol(s)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
