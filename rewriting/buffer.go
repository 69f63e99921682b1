package rewriting

// A WorkingBuffer is a growable sequence of symbols. Its capacity is always at
// least its length plus one, it never shrinks while symbols are being
// written, and every reallocation swaps the storage and the capacity in a
// single step.
type WorkingBuffer struct {
	HookableBase

	name      string
	allocator Allocator
	data      []byte
	resizes   int
}

// NewWorkingBuffer allocates an empty buffer with the given capacity.
func NewWorkingBuffer(
	name string,
	allocator Allocator,
	capacity int,
) (*WorkingBuffer, error) {
	b := &WorkingBuffer{
		name:      name,
		allocator: allocator,
	}

	data, err := b.allocate(capacity, StageSeed)
	if err != nil {
		return nil, err
	}

	b.data = data

	return b, nil
}

// Name returns the name of the buffer.
func (b *WorkingBuffer) Name() string {
	return b.name
}

// Len returns the number of symbols in the buffer.
func (b *WorkingBuffer) Len() int {
	return len(b.data)
}

// Capacity returns the number of symbols the buffer can hold without
// reallocating.
func (b *WorkingBuffer) Capacity() int {
	return cap(b.data)
}

// Bytes returns the content of the buffer. The slice is only valid until the
// next write.
func (b *WorkingBuffer) Bytes() []byte {
	return b.data
}

// Resizes returns how many on-demand resizes and exact grows the buffer went
// through.
func (b *WorkingBuffer) Resizes() int {
	return b.resizes
}

// Reset empties the buffer and keeps its storage.
func (b *WorkingBuffer) Reset() {
	b.data = b.data[:0]
}

// Append writes symbols at the end of the buffer, resizing first if they
// would not leave room for one more symbol.
func (b *WorkingBuffer) Append(symbols []byte) error {
	if len(symbols) == 0 {
		return nil
	}

	lengthBefore, capacityBefore := len(b.data), cap(b.data)

	if needed := lengthBefore + len(symbols) + 1; needed >= capacityBefore {
		if err := b.Resize(needed); err != nil {
			return err
		}
	}

	b.data = append(b.data, symbols...)

	if b.NumHooks() > 0 {
		b.invokeAppendHook(symbols, lengthBefore, capacityBefore)
	}

	return nil
}

// AppendSymbol writes a single symbol at the end of the buffer, with the same
// resize rule as Append.
func (b *WorkingBuffer) AppendSymbol(s byte) error {
	lengthBefore, capacityBefore := len(b.data), cap(b.data)

	if needed := lengthBefore + 2; needed >= capacityBefore {
		if err := b.Resize(needed); err != nil {
			return err
		}
	}

	b.data = append(b.data, s)

	if b.NumHooks() > 0 {
		b.invokeAppendHook([]byte{s}, lengthBefore, capacityBefore)
	}

	return nil
}

func (b *WorkingBuffer) invokeAppendHook(
	symbols []byte,
	lengthBefore, capacityBefore int,
) {
	b.InvokeHook(HookCtx{
		Domain: b,
		Pos:    HookPosAppend,
		Item:   b,
		Detail: AppendDetail{
			Symbols:        symbols,
			LengthBefore:   lengthBefore,
			CapacityBefore: capacityBefore,
			LengthAfter:    len(b.data),
			CapacityAfter:  cap(b.data),
		},
	})
}

// Resize grows the buffer to NextCapacity(Capacity(), needed). It does
// nothing unless needed >= Capacity(). The content is preserved.
func (b *WorkingBuffer) Resize(needed int) error {
	if needed < cap(b.data) {
		return nil
	}

	return b.reallocate(
		NextCapacity(cap(b.data), needed), needed, StageAppend, HookPosResize)
}

// GrowTo grows the buffer to exactly the given capacity. It does nothing if
// the buffer is already that large. The content is preserved.
func (b *WorkingBuffer) GrowTo(capacity int) error {
	return b.growTo(capacity, StagePredictiveGrow)
}

func (b *WorkingBuffer) growTo(capacity int, stage Stage) error {
	if capacity <= cap(b.data) {
		return nil
	}

	return b.reallocate(capacity, capacity, stage, HookPosGrow)
}

func (b *WorkingBuffer) reallocate(
	capacity, needed int,
	stage Stage,
	pos *HookPos,
) error {
	data, err := b.allocate(capacity, stage)
	if err != nil {
		return err
	}

	oldCapacity := cap(b.data)
	data = append(data, b.data...)

	old := b.data
	b.data = data
	b.resizes++
	b.allocator.Release(old)

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    pos,
			Item:   b,
			Detail: ResizeDetail{
				Stage:       stage,
				Needed:      needed,
				Length:      len(b.data),
				OldCapacity: oldCapacity,
				NewCapacity: cap(b.data),
			},
		})
	}

	return nil
}

// shrinkToFit moves the content into storage of exactly Len()+1. It keeps the
// current storage if the allocation fails.
func (b *WorkingBuffer) shrinkToFit() bool {
	if cap(b.data) == len(b.data)+1 {
		return true
	}

	data, err := b.allocate(len(b.data)+1, StageFinalize)
	if err != nil {
		return false
	}

	data = append(data, b.data...)

	old := b.data
	b.data = data
	b.allocator.Release(old)

	return true
}

func (b *WorkingBuffer) allocate(capacity int, stage Stage) ([]byte, error) {
	data, err := b.allocator.Allocate(capacity)
	if err == nil && cap(data) < capacity {
		b.allocator.Release(data)
		err = ErrAllocationFailure
	}

	if err != nil {
		return nil, &AllocationError{
			Stage:     stage,
			Buffer:    b.name,
			Requested: capacity,
			Err:       err,
		}
	}

	return data[:0], nil
}

// take detaches the storage from the buffer and hands it to the caller.
func (b *WorkingBuffer) take() []byte {
	data := b.data
	b.data = nil

	return data
}

// release returns the storage to the allocator.
func (b *WorkingBuffer) release() {
	if b.data == nil {
		return
	}

	b.allocator.Release(b.take())
}

// A GenerationPair holds the live generation and the scratch buffer the next
// generation is written into.
type GenerationPair struct {
	Current *WorkingBuffer
	Next    *WorkingBuffer
}

// AllocatePair allocates two buffers of the same capacity. If the second
// allocation fails, the first buffer is released and no pair is returned.
func AllocatePair(
	allocator Allocator,
	name string,
	capacity int,
) (*GenerationPair, error) {
	current, err := NewWorkingBuffer(name+".BufA", allocator, capacity)
	if err != nil {
		return nil, err
	}

	next, err := NewWorkingBuffer(name+".BufB", allocator, capacity)
	if err != nil {
		current.release()
		return nil, err
	}

	return &GenerationPair{Current: current, Next: next}, nil
}

// Swap exchanges the roles of the two buffers without copying symbols.
func (p *GenerationPair) Swap() {
	p.Current, p.Next = p.Next, p.Current
}

// Release returns the storage of both buffers to the allocator.
func (p *GenerationPair) Release() {
	p.Current.release()
	p.Next.release()
}

// AcceptHook registers a hook on both buffers.
func (p *GenerationPair) AcceptHook(hook Hook) {
	p.Current.AcceptHook(hook)
	p.Next.AcceptHook(hook)
}
