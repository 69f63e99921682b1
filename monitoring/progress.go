package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/hunterpope03/c-l-system-studio/rewriting"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// A ProgressHook shows every expansion of an engine as a progress bar that
// counts iterations.
type ProgressHook struct {
	monitor *Monitor

	lock sync.Mutex
	bars map[*rewriting.Expansion]*ProgressBar
}

// NewProgressHook creates a ProgressHook that adds bars to monitor.
func NewProgressHook(monitor *Monitor) *ProgressHook {
	return &ProgressHook{
		monitor: monitor,
		bars:    make(map[*rewriting.Expansion]*ProgressBar),
	}
}

// Func updates the bar of the expansion that triggered the hook.
func (h *ProgressHook) Func(ctx rewriting.HookCtx) {
	switch ctx.Pos {
	case rewriting.HookPosStateChange:
		x := ctx.Item.(*rewriting.Expansion)

		switch ctx.Detail.(rewriting.StateChange).State {
		case rewriting.StateSeeding:
			h.start(x)
		case rewriting.StateIterating:
			if bar := h.bar(x); bar != nil {
				bar.IncrementInProgress(1)
			}
		case rewriting.StateDone, rewriting.StateFailed:
			h.complete(x)
		}
	case rewriting.HookPosIterationDone:
		x := ctx.Item.(*rewriting.Expansion)
		if bar := h.bar(x); bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}
}

func (h *ProgressHook) start(x *rewriting.Expansion) {
	bar := h.monitor.CreateProgressBar(
		fmt.Sprintf("%s: %d iterations", x.Engine().Name(), x.Iterations()),
		uint64(x.Iterations()),
	)

	h.lock.Lock()
	defer h.lock.Unlock()

	h.bars[x] = bar
}

func (h *ProgressHook) bar(x *rewriting.Expansion) *ProgressBar {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.bars[x]
}

func (h *ProgressHook) complete(x *rewriting.Expansion) {
	h.lock.Lock()
	bar, ok := h.bars[x]
	delete(h.bars, x)
	h.lock.Unlock()

	if ok {
		h.monitor.CompleteProgressBar(bar)
	}
}
