// Package clause implements the ordered, tautology-free disjunctive
// clauses that a Formula is built from.
package clause

import "sort"

// Clause is an ordered, deduplicated sequence of signed literals. A
// nonzero int is a literal: its absolute value names a variable, its
// sign is the polarity. Invariants (enforced by New): sorted by |v|
// ascending, positive literal precedes negative of the same variable,
// no two literals share a variable unless the clause has already
// collapsed to Tautology.
type Clause struct {
	Literals []int

	// Tautology is set when construction found a variable appearing
	// with both polarities; Literals is cleared in that case and the
	// clause denotes the terminal TRUE.
	Tautology bool

	// InitialIndex is the clause's 1-based position in the original
	// input formula. Zero means unset. Only consulted by the
	// thief_method reordering rule.
	InitialIndex int

	// Substituted is set when at least one literal was removed by
	// variable substitution. Diagnostic only.
	Substituted bool
}

// New builds a Clause from a collection of literals, deduplicating,
// sorting, and checking for tautology.
func New(literals []int) Clause {
	lits := append([]int(nil), literals...)
	sort.Slice(lits, func(i, j int) bool {
		return lessLiteral(lits[i], lits[j])
	})
	lits = dedup(lits)

	for i := 1; i < len(lits); i++ {
		if abs(lits[i]) == abs(lits[i-1]) {
			// Equal magnitude, already deduplicated exact equals,
			// so this is a v / -v pair: tautology.
			return Clause{Tautology: true}
		}
	}

	return Clause{Literals: lits}
}

// lessLiteral orders two literals by |v| ascending; within equal |v|
// the positive literal sorts first.
func lessLiteral(a, b int) bool {
	aa, ab := abs(a), abs(b)
	if aa != ab {
		return aa < ab
	}
	return a > b
}

func dedup(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, l := range sorted[1:] {
		if l != out[len(out)-1] {
			out = append(out, l)
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

// IsFalse reports whether the clause denotes the terminal FALSE: it
// has no literals and is not a tautology.
func (c Clause) IsFalse() bool {
	return !c.Tautology && len(c.Literals) == 0
}

// Len returns the number of literals in the clause.
func (c Clause) Len() int {
	return len(c.Literals)
}

// Contains reports whether lit appears in the clause.
func (c Clause) Contains(lit int) bool {
	for _, l := range c.Literals {
		if l == lit {
			return true
		}
	}
	return false
}

// Less implements the total order of §4.1: position-by-position
// comparison up to the shorter length, with opposite-signed
// same-variable literals ordered positive-before-negative, and a
// strict prefix considered less than its extension.
func (c Clause) Less(other Clause) bool {
	n := len(c.Literals)
	if len(other.Literals) < n {
		n = len(other.Literals)
	}
	for i := 0; i < n; i++ {
		a, b := c.Literals[i], other.Literals[i]
		if a == b {
			continue
		}
		if abs(a) == abs(b) {
			// Opposite signs of the same variable: larger
			// (positive) literal is "less".
			return a > b
		}
		return abs(a) < abs(b)
	}
	return len(c.Literals) < len(other.Literals)
}

// Copy returns a deep copy of the clause.
func (c Clause) Copy() Clause {
	cp := c
	if c.Literals != nil {
		cp.Literals = append([]int(nil), c.Literals...)
	}
	return cp
}
