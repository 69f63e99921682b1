package rewriting

import (
	"log"
)

// A LogHook writes engine and buffer events into a logger. Appends are not
// logged.
type LogHook struct {
	*log.Logger
}

// NewLogHook creates a LogHook that writes into logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func writes one line for every event except appends.
func (h *LogHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosStateChange:
		x := ctx.Item.(*Expansion)
		change := ctx.Detail.(StateChange)

		switch change.State {
		case StateIterating:
			h.Printf("%s: %s %d/%d",
				ctx.Domain.Name(), change.State, x.Iteration()+1, x.Iterations())
		case StateFailed:
			h.Printf("%s: %s: %v", ctx.Domain.Name(), change.State, change.Err)
		case StateFinalizing:
			h.Printf("%s: %s (growth %.3f, planned capacity %d, %d resizes)",
				ctx.Domain.Name(), change.State,
				x.Growth(), x.PlannedCapacity(), x.Resizes())
		default:
			h.Printf("%s: %s", ctx.Domain.Name(), change.State)
		}
	case HookPosResize, HookPosGrow:
		d := ctx.Detail.(ResizeDetail)
		h.Printf("%s: %s (%s) %d -> %d, needed %d, length %d",
			ctx.Domain.Name(), ctx.Pos.Name, d.Stage,
			d.OldCapacity, d.NewCapacity, d.Needed, d.Length)
	case HookPosSwap:
		d := ctx.Detail.(IterationDetail)
		h.Printf("%s: swap after iteration %d, length %d, capacity %d",
			ctx.Domain.Name(), d.Iteration+1, d.Length, d.Capacity)
	case HookPosFinalize:
		d := ctx.Detail.(FinalizeDetail)
		if !d.Shrunk {
			h.Printf("%s: shrink failed, keeping capacity %d for length %d",
				ctx.Domain.Name(), d.Capacity, d.Length)
			return
		}

		h.Printf("%s: finalized, length %d", ctx.Domain.Name(), d.Length)
	}
}
