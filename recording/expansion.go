package recording

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/hunterpope03/c-l-system-studio/rewriting"
)

// Table names used by ExpansionRecorder.
const (
	ExpansionTable  = "expansion"
	GenerationTable = "generation"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

// Outcomes of a recorded expansion.
const (
	OutcomeDone   = "done"
	OutcomeFailed = "failed"
)

// An ExpansionEntry is one row of the expansion table.
type ExpansionEntry struct {
	RunID           string
	Engine          string
	StartTime       string
	EndTime         string
	AxiomLength     int
	Iterations      int
	Completed       int
	Growth          float64
	PlannedCapacity int
	FinalLength     int
	Resizes         int
	Swaps           int
	Shrunk          bool
	Outcome         string
	Error           string
}

// A GenerationEntry is one row of the generation table. Iteration counts from
// 1; the entry describes the generation that iteration produced.
type GenerationEntry struct {
	RunID     string
	Iteration int
	Length    int
	Capacity  int
}

type run struct {
	id          string
	start       time.Time
	generations []GenerationEntry
}

// An ExpansionRecorder is a hook that records every expansion of the engines
// it is attached to. One recorder can be attached to several engines.
type ExpansionRecorder struct {
	lock      sync.Mutex
	recorder  DataRecorder
	runs      map[*rewriting.Expansion]*run
	autoFlush bool
}

// NewExpansionRecorder creates the expansion and generation tables in
// recorder and returns a hook that fills them.
func NewExpansionRecorder(recorder DataRecorder) *ExpansionRecorder {
	recorder.CreateTable(ExpansionTable, ExpansionEntry{})
	recorder.CreateTable(GenerationTable, GenerationEntry{})

	return &ExpansionRecorder{
		recorder: recorder,
		runs:     make(map[*rewriting.Expansion]*run),
	}
}

// Func records the start, the generations and the end of expansions.
func (r *ExpansionRecorder) Func(ctx rewriting.HookCtx) {
	switch ctx.Pos {
	case rewriting.HookPosStateChange:
		x := ctx.Item.(*rewriting.Expansion)
		change := ctx.Detail.(rewriting.StateChange)

		switch change.State {
		case rewriting.StateSeeding:
			r.start(x)
		case rewriting.StateDone, rewriting.StateFailed:
			r.finish(x, change.Err)
		}
	case rewriting.HookPosIterationDone:
		x := ctx.Item.(*rewriting.Expansion)
		d := ctx.Detail.(rewriting.IterationDetail)
		r.addGeneration(x, d)
	}
}

// SetAutoFlush makes the recorder flush after every finished expansion, so
// that readers see runs as soon as they end.
func (r *ExpansionRecorder) SetAutoFlush(on bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.autoFlush = on
}

// Flush writes buffered rows into the database.
func (r *ExpansionRecorder) Flush() {
	r.recorder.Flush()
}

func (r *ExpansionRecorder) start(x *rewriting.Expansion) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.runs[x] = &run{
		id:    xid.New().String(),
		start: time.Now(),
	}
}

func (r *ExpansionRecorder) addGeneration(
	x *rewriting.Expansion,
	d rewriting.IterationDetail,
) {
	r.lock.Lock()
	defer r.lock.Unlock()

	run, ok := r.runs[x]
	if !ok {
		return
	}

	run.generations = append(run.generations, GenerationEntry{
		RunID:     run.id,
		Iteration: d.Iteration + 1,
		Length:    d.Length,
		Capacity:  d.Capacity,
	})
}

func (r *ExpansionRecorder) finish(x *rewriting.Expansion, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	run, ok := r.runs[x]
	if !ok {
		return
	}

	delete(r.runs, x)

	entry := ExpansionEntry{
		RunID:           run.id,
		Engine:          x.Engine().Name(),
		StartTime:       run.start.Format(timeFormat),
		EndTime:         time.Now().Format(timeFormat),
		AxiomLength:     x.AxiomLength(),
		Iterations:      x.Iterations(),
		Completed:       len(run.generations),
		Growth:          x.Growth(),
		PlannedCapacity: x.PlannedCapacity(),
		FinalLength:     x.FinalLength(),
		Resizes:         x.Resizes(),
		Swaps:           x.Swaps(),
		Shrunk:          x.Shrunk(),
		Outcome:         OutcomeDone,
	}

	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.Error = err.Error()
	}

	r.recorder.InsertData(ExpansionTable, entry)

	for _, g := range run.generations {
		r.recorder.InsertData(GenerationTable, g)
	}

	if r.autoFlush {
		r.recorder.Flush()
	}
}

// MapTables registers the expansion and generation tables with reader.
func MapTables(reader DataReader) {
	reader.MapTable(ExpansionTable, ExpansionEntry{})
	reader.MapTable(GenerationTable, GenerationEntry{})
}

// RecentExpansions returns up to limit recorded expansions, newest first.
// reader must have been passed to MapTables.
func RecentExpansions(
	ctx context.Context,
	reader DataReader,
	limit int,
) ([]ExpansionEntry, error) {
	return queryEntries[ExpansionEntry](ctx, reader, ExpansionTable,
		QueryParams{
			OrderBy: "StartTime DESC",
			Limit:   limit,
		})
}

// Generations returns the generations recorded for a run, in order.
func Generations(
	ctx context.Context,
	reader DataReader,
	runID string,
) ([]GenerationEntry, error) {
	return queryEntries[GenerationEntry](ctx, reader, GenerationTable,
		QueryParams{
			Where:   "RunID = ?",
			Args:    []any{runID},
			OrderBy: "Iteration",
		})
}
