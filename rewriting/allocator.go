package rewriting

import (
	"fmt"
	"sync"
)

// An Allocator provides the storage behind working buffers.
//
// Allocate returns an empty slice whose capacity is at least the requested
// capacity. Release hands storage back once the engine no longer references
// it. The engine never releases the slice it returns to its caller.
type Allocator interface {
	Allocate(capacity int) ([]byte, error)
	Release(buf []byte)
}

// HeapAllocator allocates from the Go heap. It reports requests that the
// runtime refuses (negative or out-of-range sizes) as allocation failures.
// Running out of memory is fatal in Go and cannot be reported.
type HeapAllocator struct{}

// Allocate makes a new slice with the given capacity.
func (HeapAllocator) Allocate(capacity int) (buf []byte, err error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d",
			ErrAllocationFailure, capacity)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %v", ErrAllocationFailure, r)
		}
	}()

	return make([]byte, 0, capacity), nil
}

// Release does nothing; the garbage collector reclaims the storage.
func (HeapAllocator) Release([]byte) {}

// A BudgetAllocator limits the number of bytes held at the same time. It is
// safe for concurrent use, so one budget can be shared by several engines.
type BudgetAllocator struct {
	lock sync.Mutex

	backing Allocator
	limit   int
	inUse   int
	peak    int
}

// NewBudgetAllocator creates a BudgetAllocator that allows at most limit bytes
// to be held at once.
func NewBudgetAllocator(limit int) *BudgetAllocator {
	return &BudgetAllocator{
		backing: HeapAllocator{},
		limit:   limit,
	}
}

// Allocate fails if the request would bring the bytes in use over the limit.
func (a *BudgetAllocator) Allocate(capacity int) ([]byte, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if capacity > a.limit-a.inUse {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrAllocationFailure, capacity, a.inUse, a.limit)
	}

	buf, err := a.backing.Allocate(capacity)
	if err != nil {
		return nil, err
	}

	a.inUse += cap(buf)
	if a.inUse > a.peak {
		a.peak = a.inUse
	}

	return buf, nil
}

// Release returns the capacity of buf to the budget.
func (a *BudgetAllocator) Release(buf []byte) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.inUse -= cap(buf)
	a.backing.Release(buf)
}

// Limit returns the budget.
func (a *BudgetAllocator) Limit() int {
	return a.limit
}

// InUse returns the number of bytes allocated and not yet released.
func (a *BudgetAllocator) InUse() int {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.inUse
}

// Peak returns the highest InUse value observed.
func (a *BudgetAllocator) Peak() int {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.peak
}
