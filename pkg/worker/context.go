// Package worker implements the per-task exploration procedure of
// §4.7: pop a canonical formula, split it on its pivot,
// canonicalize and classify each child, and enqueue new work.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/operator-framework/lo-sat/pkg/formula"
	"github.com/operator-framework/lo-sat/pkg/metrics"
	"github.com/operator-framework/lo-sat/pkg/nodetable"
	"github.com/operator-framework/lo-sat/pkg/persist"
	"github.com/operator-framework/lo-sat/pkg/queue"
)

// Config carries the §6 run configuration that every Worker
// applies identically.
type Config struct {
	Mode            formula.Mode
	SortBySize      bool
	ThiefMethod     bool
	ExitUponSolving bool
}

// Item is what WorkQueue actually stores: a canonicalized open
// formula paired with its own hash, so the queue never needs to
// recompute it.
type Item struct {
	ID      [20]byte
	Formula *formula.Formula
}

// IDOf extracts the dedup key for queue.New's Unique mode.
func IDOf(item Item) [20]byte { return item.ID }

// solutionCell is the single publish-once cell of §5: the first
// TRUE terminal wins; later ones are ignored for the witness but
// still recorded in the NodeTable for stats.
type solutionCell struct {
	mu      sync.Mutex
	found   bool
	witness map[int]bool
}

func (c *solutionCell) publish(witness map[int]bool) (won bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.found {
		return false
	}
	c.found = true
	c.witness = witness
	return true
}

func (c *solutionCell) get() (map[int]bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.witness, c.found
}

// Context is the explicit, per-run state threaded into every Worker
// (§9's Design Note against process-wide singletons): the shared
// NodeTable, WorkQueue, run Config, solution cell, and bookkeeping the
// Engine uses for termination detection.
type Context struct {
	Table   *nodetable.NodeTable
	Queue   *queue.WorkQueue[Item]
	Config  Config
	Tracer  Tracer
	Persist *persist.Store
	Metrics *metrics.Collectors

	solution solutionCell
	exit     atomic.Bool

	// active counts workers currently holding a popped item (it is
	// raised just before Pop and lowered at the end of the loop body,
	// so no popped item goes uncounted). The Engine uses
	// Queue.IsEmpty() && active == 0 to detect global termination.
	active atomic.Int64
}

// NewContext returns a Context ready for workers to run against. A
// nil tracer defaults to DefaultTracer{}; a nil store defaults to
// persist.NewNoop(), since Store's methods dereference their
// receiver's db field and a literal nil *Store would panic. A nil
// collectors leaves the classification counters unincremented.
func NewContext(table *nodetable.NodeTable, q *queue.WorkQueue[Item], cfg Config, tracer Tracer, store *persist.Store, collectors *metrics.Collectors) *Context {
	if tracer == nil {
		tracer = DefaultTracer{}
	}
	if store == nil {
		store = persist.NewNoop()
	}
	return &Context{Table: table, Queue: q, Config: cfg, Tracer: tracer, Persist: store, Metrics: collectors}
}

// Stop signals every Worker sharing this Context to return at its
// next loop iteration (§5 cancellation: exit_upon_solving).
func (c *Context) Stop() {
	c.exit.Store(true)
}

// Stopped reports whether Stop has been called.
func (c *Context) Stopped() bool {
	return c.exit.Load()
}

// Solution returns the published witness, if any.
func (c *Context) Solution() (map[int]bool, bool) {
	return c.solution.get()
}

// ActiveWorkers returns the number of workers currently processing a
// popped item.
func (c *Context) ActiveWorkers() int64 {
	return c.active.Load()
}
