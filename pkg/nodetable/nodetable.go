// Package nodetable implements the shared, hash-keyed exploration
// record table of §4.6: a concurrent map from formula hash to
// the node's classification, children, and post-pass statistics.
package nodetable

import "sync"

// Status is the classification assigned to a node the moment its hash
// is first seen (or seen again) during exploration.
type Status int

const (
	// Unique marks the first worker to observe this hash; it alone
	// enqueues the formula for further exploration (§5's
	// at-most-one-owner rule).
	Unique Status = iota
	// Redundant marks every subsequent observation of an
	// already-known hash.
	Redundant
	// Evaluated marks a formula that split directly to a terminal
	// Boolean and therefore never entered the table itself; it is
	// only used for entries synthesized by callers that want a
	// uniform Status value (e.g. persistence). NodeTable itself never
	// stores Evaluated entries, since terminals use the reserved
	// sentinel ids instead (see pkg/formula.SentinelFor).
	Evaluated
)

// Entry is the exploration record for a single canonical formula hash.
type Entry struct {
	Status Status

	// Children holds up to two child ids in branch order: index 0 is
	// the pivot-true (left) child, index 1 is pivot-false (right).
	// A child may be a terminal sentinel (pkg/formula.TrueSentinel /
	// FalseSentinel).
	Children [2][20]byte
	NumChildren int

	// Witness, when non-nil, is the satisfying assignment discovered
	// by the branch that produced this node, keyed by original input
	// variable name. Only ever set on nodes whose own exploration
	// directly produced (or passed through to) a TRUE terminal.
	Witness map[int]bool

	// Post-pass counters, populated by pkg/stats after exploration
	// concludes.
	UniqueDescendants    int
	RedundantDescendants int
	RedundantHits        int
}

// NodeTable is a concurrent map from formula hash to Entry.
type NodeTable struct {
	mu      sync.RWMutex
	entries map[[20]byte]*Entry
}

// New returns an empty NodeTable.
func New() *NodeTable {
	return &NodeTable{entries: make(map[[20]byte]*Entry)}
}

// Contains reports whether id has an entry in the table.
func (t *NodeTable) Contains(id [20]byte) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[id]
	return ok
}

// InsertIfAbsent atomically inserts a fresh Unique entry for id if one
// does not already exist. It reports whether this call created the
// entry (true) or found an existing one (false) — the primitive §5
// requires to guarantee exactly one UNIQUE classification per hash.
func (t *NodeTable) InsertIfAbsent(id [20]byte) (created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; ok {
		return false
	}
	t.entries[id] = &Entry{Status: Unique}
	return true
}

// AppendChild records child as the next (left, then right) child of
// parent, per §5's required left/right append ordering.
func (t *NodeTable) AppendChild(parent, child [20]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[parent]
	if !ok {
		// Defensive: parent must already be UNIQUE (it was popped
		// from the queue, which only ever holds UNIQUE ids).
		e = &Entry{Status: Unique}
		t.entries[parent] = e
	}
	if e.NumChildren < 2 {
		e.Children[e.NumChildren] = child
		e.NumChildren++
	}
}

// MarkWitness records assignment as the witness discovered along the
// branch terminating at id, if one has not already been recorded
// (first TRUE terminal wins, §5's publish-once solution slot).
func (t *NodeTable) MarkWitness(id [20]byte, assignment map[int]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		e = &Entry{Status: Unique}
		t.entries[id] = e
	}
	if e.Witness == nil {
		e.Witness = assignment
	}
}

// SetStats stores the StatsPass counters for id.
func (t *NodeTable) SetStats(id [20]byte, unique, redundant, hits int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		e.UniqueDescendants = unique
		e.RedundantDescendants = redundant
		e.RedundantHits = hits
	}
}

// Get returns a snapshot copy of the entry for id.
func (t *NodeTable) Get(id [20]byte) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of entries currently in the table.
func (t *NodeTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot returns a point-in-time adjacency map (id -> recorded
// children, in branch order, including terminal sentinel ids that have
// no entry of their own) suitable for StatsPass, which runs
// only after exploration has concluded (§4.6).
func (t *NodeTable) Snapshot() map[[20]byte][][20]byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[[20]byte][][20]byte, len(t.entries))
	for id, e := range t.entries {
		children := make([][20]byte, e.NumChildren)
		copy(children, e.Children[:e.NumChildren])
		out[id] = children
	}
	return out
}
