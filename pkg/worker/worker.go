package worker

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/operator-framework/lo-sat/pkg/formula"
	"github.com/operator-framework/lo-sat/pkg/persist"
)

// Run pops items from ctx.Queue and explores them until the queue is
// drained or ctx has been stopped, per §4.7. It is meant to be
// invoked as `go worker.Run(ctx)` by pkg/engine, one goroutine per
// pool slot; Run itself never spawns anything.
func Run(ctx *Context) {
	for {
		if ctx.Stopped() {
			return
		}
		ctx.active.Add(1)
		item, ok := ctx.Queue.Pop()
		if !ok {
			ctx.active.Add(-1)
			return
		}
		step(ctx, item)
		ctx.active.Add(-1)
	}
}

// step explores a single popped formula: split it on its pivot,
// canonicalize and classify each child, and record the outcome in the
// NodeTable (§4.7).
func step(ctx *Context, item Item) {
	f := item.Formula
	left, right := f.Evaluate()

	trace := splitTrace{pivot: f.Pivot(), parentID: item.ID}
	var childIDs [2][20]byte
	for i, child := range []formula.Node{left, right} {
		childID, outcome := classify(ctx, item.ID, child)
		ctx.Table.AppendChild(item.ID, childID)
		trace.children = append(trace.children, outcome)
		childIDs[i] = childID
	}
	ctx.Tracer.Trace(trace)

	if err := ctx.Persist.SetChildren(context.Background(), item.ID, childIDs[0], childIDs[1]); err != nil {
		log.WithError(err).Debug("persist: set children failed, continuing without it")
	}
}

// classify handles one branch of a split: publishing a TRUE terminal
// as a candidate solution, canonicalizing and deduping an open child,
// or simply acknowledging a FALSE terminal. It returns the id to
// record as this branch's entry in the parent's child list, along
// with the outcome for tracing. parentID identifies the formula that
// produced this branch, so a TRUE terminal can be recorded as the
// parent's witness.
func classify(ctx *Context, parentID [20]byte, child formula.Node) ([20]byte, ChildOutcome) {
	if child.Terminal {
		id := formula.SentinelFor(child.Value)
		if child.Value {
			ctx.Table.MarkWitness(parentID, child.EvaluatedVars)
			ctx.solution.publish(child.EvaluatedVars)
			if ctx.Config.ExitUponSolving {
				ctx.Stop()
			}
		}
		return id, ChildOutcome{Terminal: true, Value: child.Value, ID: id}
	}

	effectiveMode := ctx.Config.Mode
	if effectiveMode == formula.LO {
		// LO's clause-ordering invariant is only ever required at the
		// root; descendants downgrade to LOU (§4.2).
		effectiveMode = formula.LOU
	}
	child.Formula.ToLOCondition(effectiveMode, ctx.Config.SortBySize, ctx.Config.ThiefMethod)

	id := child.Formula.Hash()
	status := "redundant"
	if ctx.Table.InsertIfAbsent(id) {
		status = "unique"
		ctx.Queue.Insert(Item{ID: id, Formula: child.Formula})
		if ctx.Metrics != nil {
			ctx.Metrics.UniqueTotal.Inc()
		}
		if err := ctx.Persist.InsertNode(context.Background(), persist.Node{
			Hash:       id,
			Body:       child.Formula.Encode(),
			NumClauses: len(child.Formula.Clauses),
		}); err != nil {
			log.WithError(err).Debug("persist: insert node failed, continuing without it")
		}
	} else if ctx.Metrics != nil {
		ctx.Metrics.RedundantTotal.Inc()
	}
	log.WithFields(log.Fields{"id": id, "status": status}).Debug("classified child formula")
	return id, ChildOutcome{ID: id, Status: status}
}
