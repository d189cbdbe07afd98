// Package formula implements the LO-canonicalizable CNF Formula at the
// heart of the explorer: clause storage, variable renaming, pivot
// splitting, and content-addressed hashing.
package formula

import (
	"fmt"

	"github.com/operator-framework/lo-sat/pkg/clause"
)

// Formula is a non-terminal conjunction of clauses together with the
// provenance bookkeeping needed to translate pivot decisions back to
// the variable names of the original input. Terminal TRUE/FALSE
// formulae are represented by Node, not by Formula, so every *Formula
// in this package is implicitly "open".
type Formula struct {
	Clauses []clause.Clause

	// FinalNamesMap maps a current (post last ToLOCondition call)
	// 1-based variable index to the index space OriginalValues is
	// keyed in. It is the composition of every internal rename pass
	// performed by the most recent ToLOCondition call. Empty means
	// identity (no renaming has happened yet).
	FinalNamesMap []int

	// OriginalValues maps the index space FinalNamesMap resolves
	// into -> the variable name as it appeared in the original input
	// formula.
	OriginalValues map[int]int

	// EvaluatedVars is the accumulated partial assignment along this
	// branch, keyed by original input variable name.
	EvaluatedVars map[int]bool

	// HighestOccurringVar is the (current-indexed) variable with the
	// most occurrences across all clauses. Informational only.
	HighestOccurringVar int

	id      [20]byte
	idValid bool
}

// Node is the tagged union of §9's Design Note: the result of a
// pivot split (or of constructing a root) is either a terminal Boolean
// or an open Formula.
type Node struct {
	Terminal bool
	Value    bool
	Formula  *Formula

	// EvaluatedVars is the partial assignment that produced this
	// node; carried on both terminal and open nodes so a TRUE
	// terminal can be published as a candidate solution without a
	// second lookup.
	EvaluatedVars map[int]bool
}

// IsTrue reports whether n is the terminal TRUE.
func (n Node) IsTrue() bool { return n.Terminal && n.Value }

// IsFalse reports whether n is the terminal FALSE.
func (n Node) IsFalse() bool { return n.Terminal && !n.Value }

// IsOpen reports whether n carries a non-terminal Formula.
func (n Node) IsOpen() bool { return !n.Terminal }

// NewRoot constructs the root Node from a slice of already-built
// clauses (as produced by pkg/parse). Tautological clauses are
// dropped (they are not an error, per §7); a single FALSE clause
// collapses the whole formula to terminal FALSE; an empty remaining
// clause list collapses to terminal TRUE.
func NewRoot(clauses []clause.Clause) Node {
	kept := make([]clause.Clause, 0, len(clauses))
	sawFalse := false
	for i, c := range clauses {
		if c.Tautology {
			continue
		}
		if c.IsFalse() {
			sawFalse = true
			continue
		}
		cp := c.Copy()
		cp.InitialIndex = i + 1
		kept = append(kept, cp)
	}
	if sawFalse {
		return Node{Terminal: true, Value: false, EvaluatedVars: map[int]bool{}}
	}
	if len(kept) == 0 {
		return Node{Terminal: true, Value: true, EvaluatedVars: map[int]bool{}}
	}

	vars := distinctVars(kept)
	original := make(map[int]int, len(vars))
	for _, v := range vars {
		original[v] = v
	}

	f := &Formula{
		Clauses:        kept,
		OriginalValues: original,
		EvaluatedVars:  map[int]bool{},
	}
	return Node{Formula: f, EvaluatedVars: map[int]bool{}}
}

// distinctVars returns the sorted set of distinct variables (absolute
// values) appearing across clauses.
func distinctVars(clauses []clause.Clause) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, c := range clauses {
		for _, l := range c.Literals {
			v := abs(l)
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// preRenameIndex returns the index space OriginalValues is keyed in
// for current variable v, falling back to the identity when v has
// never been renamed (NORMAL mode, or a variable new to this formula).
func (f *Formula) preRenameIndex(v int) int {
	if v-1 >= 0 && v-1 < len(f.FinalNamesMap) {
		return f.FinalNamesMap[v-1]
	}
	return v
}

// OriginalNameOf returns the variable name, as it appeared in the
// original input formula, for the current variable v.
func (f *Formula) OriginalNameOf(v int) int {
	idx := f.preRenameIndex(v)
	if orig, ok := f.OriginalValues[idx]; ok {
		return orig
	}
	return idx
}

// String renders the formula's canonical encoding for debugging.
func (f *Formula) String() string {
	return fmt.Sprintf("Formula{%s}", f.Encode())
}
