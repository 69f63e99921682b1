package rewriting

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
//
// For engine positions, Domain is the *Engine and Item is the *Expansion of the
// call. For buffer positions, Domain and Item are the *WorkingBuffer.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	Named

	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// Named describes an object that has a name.
type Named interface {
	Name() string
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, registered := range h.hookList {
		if registered == hook {
			panic("duplicated hook")
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook triggers the register Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

// Engine positions.
var (
	// HookPosStateChange marks the engine entering a new state. Detail is a
	// StateChange.
	HookPosStateChange = &HookPos{Name: "State Change"}

	// HookPosIterationDone marks the end of one rewrite pass, after the swap.
	// Detail is an IterationDetail.
	HookPosIterationDone = &HookPos{Name: "Iteration Done"}

	// HookPosSwap marks the exchange of the current and next buffers. Detail
	// is an IterationDetail.
	HookPosSwap = &HookPos{Name: "Swap"}

	// HookPosFinalize marks the shrink-to-fit of the result. Detail is a
	// FinalizeDetail.
	HookPosFinalize = &HookPos{Name: "Finalize"}
)

// Buffer positions.
var (
	// HookPosAppend marks symbols being appended to a buffer. Detail is an
	// AppendDetail.
	HookPosAppend = &HookPos{Name: "Append"}

	// HookPosResize marks an on-demand resize. It fires after the new storage
	// is in place and before the pending symbols are written. Detail is a
	// ResizeDetail.
	HookPosResize = &HookPos{Name: "Resize"}

	// HookPosGrow marks an exact grow: the predictive grow before a pass or
	// the scratch grow after one. Detail is a ResizeDetail.
	HookPosGrow = &HookPos{Name: "Grow"}
)

// StateChange is the detail of HookPosStateChange.
type StateChange struct {
	State State

	// Err is set when State is StateFailed.
	Err error
}

// IterationDetail is the detail of HookPosSwap and HookPosIterationDone.
type IterationDetail struct {
	Iteration int
	Total     int

	// Length and Capacity describe the new live generation.
	Length   int
	Capacity int
}

// AppendDetail is the detail of HookPosAppend.
type AppendDetail struct {
	Symbols        []byte
	LengthBefore   int
	CapacityBefore int
	LengthAfter    int
	CapacityAfter  int
}

// ResizeDetail is the detail of HookPosResize and HookPosGrow.
type ResizeDetail struct {
	Stage       Stage
	Needed      int
	Length      int
	OldCapacity int
	NewCapacity int
}

// FinalizeDetail is the detail of HookPosFinalize.
type FinalizeDetail struct {
	Length   int
	Capacity int

	// Shrunk is false when the shrink could not allocate and the oversized
	// buffer was kept.
	Shrunk bool
}
