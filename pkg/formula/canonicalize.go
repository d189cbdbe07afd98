package formula

import (
	"sort"

	"github.com/operator-framework/lo-sat/pkg/clause"
)

// ToLOCondition canonicalizes f to a fixpoint under mode, per §4.2.
func (f *Formula) ToLOCondition(mode Mode, sortBySize, thiefMethod bool) {
	if thiefMethod {
		sort.SliceStable(f.Clauses, func(i, j int) bool {
			a, b := f.Clauses[i], f.Clauses[j]
			if a.Len() != b.Len() {
				return a.Len() < b.Len()
			}
			return a.InitialIndex < b.InitialIndex
		})
	}
	groupBySize := mode == FLOP || sortBySize
	if groupBySize {
		sort.SliceStable(f.Clauses, func(i, j int) bool {
			return f.Clauses[i].Len() < f.Clauses[j].Len()
		})
	}

	if !mode.requiresDensity() {
		// NORMAL: sorted literals are already guaranteed by clause.New
		// at construction time; no renaming, no reordering.
		f.invalidateHash()
		return
	}

	for {
		f.renameVars()
		if !mode.requiresOrdering() {
			break
		}
		if clausesOrdered(f.Clauses, groupBySize) {
			break
		}
		sortClausesByComparator(f.Clauses, groupBySize)
		// Reordering clauses can change which variable is first
		// seen where, so rename again; this loop converges per
		// §4.2's fixpoint rationale.
	}
	f.invalidateHash()
}

// renameVars performs one first-appearance dense renaming pass
// (§4.2 step 3): walk clauses in order, then literals in order,
// assigning a fresh dense 1-based name to each newly seen variable.
// FinalNamesMap is recomposed so it still resolves all the way back to
// the index space OriginalValues is keyed in.
func (f *Formula) renameVars() {
	newIndexOf := make(map[int]int)
	next := 1
	for ci := range f.Clauses {
		lits := f.Clauses[ci].Literals
		for li, lit := range lits {
			v := abs(lit)
			nv, ok := newIndexOf[v]
			if !ok {
				nv = next
				newIndexOf[v] = nv
				next++
			}
			if lit < 0 {
				lits[li] = -nv
			} else {
				lits[li] = nv
			}
		}
		sort.Slice(lits, func(i, j int) bool {
			return lessLiteral(lits[i], lits[j])
		})
	}

	composed := make([]int, next-1)
	for oldV, nv := range newIndexOf {
		composed[nv-1] = f.preRenameIndex(oldV)
	}

	occurrences := make([]int, next-1)
	for _, c := range f.Clauses {
		for _, l := range c.Literals {
			occurrences[abs(l)-1]++
		}
	}
	highest, highestCount := 0, -1
	for v, count := range occurrences {
		if count > highestCount {
			highest, highestCount = v+1, count
		}
	}

	f.FinalNamesMap = composed
	f.HighestOccurringVar = highest
}

func lessLiteral(a, b int) bool {
	aa, ab := abs(a), abs(b)
	if aa != ab {
		return aa < ab
	}
	return a > b
}

// clausesOrdered reports whether clauses already satisfy the Clause
// comparator's ordering, and length-grouping too when groupBySize is
// set.
func clausesOrdered(clauses []clause.Clause, groupBySize bool) bool {
	for i := 1; i < len(clauses); i++ {
		if groupBySize && clauses[i-1].Len() != clauses[i].Len() {
			if clauses[i-1].Len() > clauses[i].Len() {
				return false
			}
			continue
		}
		if clauses[i].Less(clauses[i-1]) {
			return false
		}
	}
	return true
}

// sortClausesByComparator sorts clauses using the Clause comparator
// (§4.1), optionally grouping by length ascending first.
func sortClausesByComparator(clauses []clause.Clause, groupBySize bool) {
	sort.SliceStable(clauses, func(i, j int) bool {
		if groupBySize && clauses[i].Len() != clauses[j].Len() {
			return clauses[i].Len() < clauses[j].Len()
		}
		return clauses[i].Less(clauses[j])
	})
}

func (f *Formula) invalidateHash() {
	f.idValid = false
}
