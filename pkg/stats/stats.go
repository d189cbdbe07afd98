// Package stats implements the post-exploration subgraph pass of
// §4.9: for every node reachable from the root, how many
// distinct descendants it has, how many of those were visited more
// than once along some branch, and how many extra (repeat) visits
// occurred in total.
package stats

import (
	"runtime"
	"sync"

	"github.com/operator-framework/lo-sat/pkg/nodetable"
)

// Triple is the per-node (unique, redundant, hits) counter set of
// §4.9.
type Triple struct {
	UniqueDescendants    int
	RedundantDescendants int
	RedundantHits        int
}

// Result is the outcome of a full StatsPass: per-node triples plus
// the root's own totals, which callers typically report as the
// summary for a whole run.
type Result struct {
	PerNode map[[20]byte]Triple
	Root    Triple

	// Graph is the same adjacency snapshot the pass walked (id ->
	// children, in branch order), carried through for callers that
	// want to render the explored tree (e.g. `losat dot`).
	Graph map[[20]byte][][20]byte
}

// Run computes subgraph statistics for every node in adjacency
// (id -> children, as produced by NodeTable.Snapshot) and writes them
// back into table via SetStats. Work is sharded across up to
// workers goroutines operating on disjoint subsets of node ids
// (§4.9); workers <= 0 defaults to runtime.GOMAXPROCS(0).
func Run(table *nodetable.NodeTable, root [20]byte, workers int) Result {
	adjacency := table.Snapshot()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ids := make([][20]byte, 0, len(adjacency))
	for id := range adjacency {
		ids = append(ids, id)
	}

	perNode := make(map[[20]byte]Triple, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	shardSize := (len(ids) + workers - 1) / workers
	if shardSize == 0 {
		shardSize = 1
	}
	for start := 0; start < len(ids); start += shardSize {
		end := start + shardSize
		if end > len(ids) {
			end = len(ids)
		}
		shard := ids[start:end]
		wg.Add(1)
		go func(shard [][20]byte) {
			defer wg.Done()
			local := make(map[[20]byte]Triple, len(shard))
			for _, id := range shard {
				local[id] = dfsFrom(adjacency, id)
			}
			mu.Lock()
			for id, t := range local {
				perNode[id] = t
			}
			mu.Unlock()
		}(shard)
	}
	wg.Wait()

	for id, t := range perNode {
		table.SetStats(id, t.UniqueDescendants, t.RedundantDescendants, t.RedundantHits)
	}

	return Result{PerNode: perNode, Root: perNode[root], Graph: adjacency}
}

// dfsFrom performs the explicit-stack DFS of §4.9's Design Note
// (no language recursion) from start, counting distinct descendants,
// descendants reached more than once, and the total number of extra
// (repeat) visits.
func dfsFrom(adjacency map[[20]byte][][20]byte, start [20]byte) Triple {
	visits := make(map[[20]byte]int)
	stack := [][20]byte{start}

	for len(stack) > 0 {
		n := len(stack) - 1
		id := stack[n]
		stack = stack[:n]

		visits[id]++
		if visits[id] > 1 {
			// Already expanded this id's children on a prior visit;
			// don't re-push them, only count the repeat visit.
			continue
		}
		for _, child := range adjacency[id] {
			if _, known := adjacency[child]; known {
				stack = append(stack, child)
			}
		}
	}

	var t Triple
	for _, count := range visits {
		t.UniqueDescendants++
		if count > 1 {
			t.RedundantDescendants++
			t.RedundantHits += count - 1
		}
	}
	return t
}
