// Package engine implements the top-level orchestration of §4.8:
// seeding the root, running an elastic worker pool against a shared
// NodeTable, detecting termination, and reporting the satisfiability
// decision alongside subgraph statistics.
package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/operator-framework/lo-sat/pkg/clause"
	"github.com/operator-framework/lo-sat/pkg/formula"
	"github.com/operator-framework/lo-sat/pkg/metrics"
	"github.com/operator-framework/lo-sat/pkg/nodetable"
	"github.com/operator-framework/lo-sat/pkg/persist"
	"github.com/operator-framework/lo-sat/pkg/queue"
	"github.com/operator-framework/lo-sat/pkg/stats"
	"github.com/operator-framework/lo-sat/pkg/worker"
)

// pollInterval is how often Solve checks for the elastic-spawn and
// termination conditions of §4.8. It is not itself covered by the
// "tuning knobs, not contracts" caveat on 32/1.5×T — only the
// thresholds compared against are.
const pollInterval = 2 * time.Millisecond

// elasticSpawnThreshold is the smaller of the two empirical constants
// §4.8 names for when to grow the pool from its single seed
// worker.
func elasticSpawnThreshold(t int) int {
	if t < 32 {
		return t
	}
	return 32
}

// Engine runs the LO exploration described by §4.7/§4.8 against
// a single input formula.
type Engine struct {
	mode            formula.Mode
	sortBySize      bool
	thiefMethod     bool
	exitUponSolving bool
	threads         int
	tracer          worker.Tracer
	metrics         *metrics.Collectors
	persist         *persist.Store
}

// Option configures an Engine, in the style of
// solver.New(...Option): every field has a workable zero value, and
// New fills anything left unset from defaults.
type Option func(*Engine) error

// WithMode sets the canonicalization mode applied to the root formula.
func WithMode(m formula.Mode) Option {
	return func(e *Engine) error {
		e.mode = m
		return nil
	}
}

// WithSortBySize enables the §4.2 length-grouped clause ordering pass.
func WithSortBySize(v bool) Option {
	return func(e *Engine) error {
		e.sortBySize = v
		return nil
	}
}

// WithThiefMethod enables the "thief" clause-ordering heuristic (§4).
func WithThiefMethod(v bool) Option {
	return func(e *Engine) error {
		e.thiefMethod = v
		return nil
	}
}

// WithExitUponSolving stops exploration as soon as any worker
// publishes a solution, instead of draining the queue.
func WithExitUponSolving(v bool) Option {
	return func(e *Engine) error {
		e.exitUponSolving = v
		return nil
	}
}

// WithThreads sets T, the maximum worker pool size. 0 selects
// runtime.GOMAXPROCS(0); negative values are rejected.
func WithThreads(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return errors.Errorf("engine: threads must be >= 0, got %d", n)
		}
		e.threads = n
		return nil
	}
}

// WithTracer installs a worker.Tracer observing every split.
func WithTracer(t worker.Tracer) Option {
	return func(e *Engine) error {
		e.tracer = t
		return nil
	}
}

// WithMetrics installs Prometheus collectors the Engine updates on
// every poll tick. Passing nil (the default) disables metrics.
func WithMetrics(m *metrics.Collectors) Option {
	return func(e *Engine) error {
		e.metrics = m
		return nil
	}
}

// WithPersist installs a Store the Engine writes exploration nodes
// and post-pass stats to. Passing nil (the default) disables
// persistence.
func WithPersist(s *persist.Store) Option {
	return func(e *Engine) error {
		e.persist = s
		return nil
	}
}

var defaults = []Option{
	func(e *Engine) error {
		if e.threads == 0 {
			e.threads = runtime.GOMAXPROCS(0)
		}
		return nil
	},
	func(e *Engine) error {
		if e.tracer == nil {
			e.tracer = worker.DefaultTracer{}
		}
		return nil
	},
	func(e *Engine) error {
		if e.persist == nil {
			e.persist = persist.NewNoop()
		}
		return nil
	},
}

// New constructs an Engine, applying options and then filling
// anything left unset from defaults.
func New(options ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range append(options, defaults...) {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Stats is the subset of stats.Result the core reports alongside the
// satisfiability decision (§6's output 3-tuple).
type Stats = stats.Result

// Solve runs exploration to completion (or to the caller's ctx being
// done, or to a solution being found under exit_upon_solving) and
// returns the §6 3-tuple: satisfiable?, witness assignment (nil
// if unsatisfiable), and subgraph stats.
func (e *Engine) Solve(ctx context.Context, clauses []clause.Clause) (bool, map[int]bool, Stats, error) {
	root := formula.NewRoot(clauses)

	table := nodetable.New()
	q := queue.New[worker.Item](true, worker.IDOf)

	if root.Terminal {
		// A root that already collapsed to a terminal never enters
		// the NodeTable (there is nothing to split); report the
		// decision directly.
		if root.Value {
			return true, root.EvaluatedVars, Stats{}, nil
		}
		return false, nil, Stats{}, nil
	}

	root.Formula.ToLOCondition(e.mode, e.sortBySize, e.thiefMethod)
	rootID := root.Formula.Hash()
	table.InsertIfAbsent(rootID)
	q.Insert(worker.Item{ID: rootID, Formula: root.Formula})

	if err := e.persist.InsertNode(ctx, persist.Node{
		Hash:       rootID,
		Body:       root.Formula.Encode(),
		NumClauses: len(root.Formula.Clauses),
	}); err != nil {
		log.WithError(err).Debug("persist: insert root failed, continuing without it")
	}

	wctx := worker.NewContext(table, q, worker.Config{
		Mode:            e.mode,
		SortBySize:      e.sortBySize,
		ThiefMethod:     e.thiefMethod,
		ExitUponSolving: e.exitUponSolving,
	}, e.tracer, e.persist, e.metrics)

	if err := e.run(ctx, wctx); err != nil {
		return false, nil, Stats{}, err
	}

	witness, found := wctx.Solution()
	result := stats.Run(table, rootID, e.threads)
	for id, t := range result.PerNode {
		if err := e.persist.SetStats(ctx, id, t.UniqueDescendants, t.RedundantDescendants, t.RedundantHits); err != nil {
			log.WithError(err).Debug("persist: set stats failed, continuing without it")
		}
	}
	return found, witness, result, ctx.Err()
}

// run drives the elastic worker pool of §4.8 until termination:
// the queue is empty and no worker is busy, ctx is done, or a
// solution has been published under exit_upon_solving.
func (e *Engine) run(ctx context.Context, wctx *worker.Context) error {
	spawned := 1
	done := make(chan struct{})
	go func() {
		worker.Run(wctx)
		close(done)
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	threshold := elasticSpawnThreshold(e.threads)
	for {
		select {
		case <-ctx.Done():
			wctx.Stop()
			<-drainAll(done, wctx)
			return ctx.Err()
		case <-ticker.C:
			if e.metrics != nil {
				e.metrics.QueueDepth.Set(float64(wctx.Queue.Size()))
				e.metrics.ActiveWorkers.Set(float64(wctx.ActiveWorkers()))
				e.metrics.NodeTableSize.Set(float64(wctx.Table.Len()))
			}
			if _, found := wctx.Solution(); found && e.exitUponSolving {
				wctx.Stop()
			}
			if wctx.ActiveWorkers() == 0 && (wctx.Stopped() || wctx.Queue.IsEmpty()) {
				return nil
			}
			if spawned < e.threads && wctx.Queue.Size() > threshold {
				log.WithField("spawned", spawned+1).Debug("elastic pool growing")
				spawned++
				go worker.Run(wctx)
			}
		}
	}
}

// drainAll waits for every spawned worker.Run goroutine to observe
// ctx.Stop and return. Only the first one is tracked by a close
// channel directly; the rest are detected by polling ActiveWorkers
// down to zero, since Run itself offers no per-goroutine handle.
func drainAll(first <-chan struct{}, wctx *worker.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		<-first
		for wctx.ActiveWorkers() > 0 {
			time.Sleep(time.Millisecond)
		}
		close(out)
	}()
	return out
}
