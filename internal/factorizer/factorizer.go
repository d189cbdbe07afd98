// Package factorizer implements a Purdom-Sabry-specific preprocessing
// step for factorization/multiplication CNFs: CNFs generated by
// https://cgi.luddy.indiana.edu/~sabry/cnf.html encode integer
// factorization/multiplication as a 3-SAT instance whose leading unit
// clauses pin down the factorized number's bits. Recognizing that
// shape lets the Engine start from a partially evaluated root instead
// of discovering the same assignment through blind search.
package factorizer

import (
	"github.com/pkg/errors"

	"github.com/operator-framework/lo-sat/pkg/formula"
)

// Result reports what a successful preprocessing pass learned about
// the input's bit-width layout, mirroring the attributes
// Factorizer.py/Multiply.py stash on the Set object (fact1_len,
// fact2_len, factorized_number).
type Result struct {
	Fact1Len         int
	Fact2Len         int
	FactorizedNumber int
	EvaluatedVars    map[int]bool
	Node             formula.Node
}

// errNotPurdomSabry mirrors Factorizer.py's "not in Purdom-Sabry
// format" compatibility check: the first clause of a genuine
// Purdom-Sabry CNF always has exactly 3 literals.
var errNotPurdomSabry = errors.New("factorizer: input is not in Purdom-Sabry format")

// Preprocess recognizes a factorization-shaped root (clauses produced
// by the Purdom-Sabry generator for the factorization task) and
// substitutes the known leading unit-clause bits before handing the
// rest to exploration. It returns errNotPurdomSabry-wrapped errors
// unchanged so callers can fall back to unmodified exploration.
func Preprocess(root formula.Node) (Result, error) {
	if root.Terminal || len(root.Formula.Clauses) == 0 || root.Formula.Clauses[0].Len() != 3 {
		return Result{}, errNotPurdomSabry
	}
	f := root.Formula

	vars := make(map[int]bool)
	factorized := 0
	bit := 0
	for _, c := range f.Clauses {
		if c.Len() != 1 {
			continue
		}
		v := c.Literals[0]
		positive := v > 0
		vars[abs(v)] = positive
		if positive {
			factorized += 1 << uint(bit)
		}
		bit++
	}

	first := f.Clauses[0]
	fact1Len := first.Literals[1] - 1
	fact2Len := abs(first.Literals[2]) - first.Literals[1]

	// An odd factorized number forces both factors to be odd: their
	// least-significant bit is known without search (Factorizer.py).
	if factorized%2 == 1 {
		vars[1] = true
		vars[fact1Len+1] = true
	}

	return Result{
		Fact1Len:         fact1Len,
		Fact2Len:         fact2Len,
		FactorizedNumber: factorized,
		EvaluatedVars:    vars,
		Node:             f.SubstituteVars(vars),
	}, nil
}

// PreprocessMultiplication recognizes a multiplication-shaped root and
// substitutes both input factors' known bits (Multiply.py), returning
// the result bit variables, in the order their unit clauses appear in
// the input (the order Preprocess reads as least-significant bit
// first), that the caller should read off the witness once a solution
// is found.
func PreprocessMultiplication(root formula.Node, fact1, fact2 int) (Result, []int, error) {
	if root.Terminal || len(root.Formula.Clauses) == 0 || root.Formula.Clauses[0].Len() != 3 {
		return Result{}, nil, errNotPurdomSabry
	}
	f := root.Formula

	first := f.Clauses[0]
	fact1Len := first.Literals[1] - 1
	fact2Len := abs(first.Literals[2]) - first.Literals[1]

	if fact2 > fact1 {
		fact1, fact2 = fact2, fact1
	}
	if bitsNeeded(fact1) > fact1Len || bitsNeeded(fact2) > fact2Len {
		return Result{}, nil, errors.Errorf(
			"factorizer: factors %d/%d exceed the CNF's %d/%d assigned bits", fact1, fact2, fact1Len, fact2Len)
	}

	vars := make(map[int]bool, fact1Len+fact2Len)
	v := 1
	for _, pair := range []struct {
		value int
		width int
	}{{fact1, fact1Len}, {fact2, fact2Len}} {
		for i := 0; i < pair.width; i++ {
			vars[v] = (pair.value>>uint(i))&1 == 1
			v++
		}
	}

	var resultBits []int
	for i := len(f.Clauses) - 1; i >= 0; i-- {
		if f.Clauses[i].Len() == 1 {
			resultBits = append(resultBits, abs(f.Clauses[i].Literals[0]))
		}
	}
	reverse(resultBits)

	return Result{
		Fact1Len:         fact1Len,
		Fact2Len:         fact2Len,
		EvaluatedVars:    vars,
		Node:             f.SubstituteVars(vars),
	}, resultBits, nil
}

func bitsNeeded(n int) int {
	bits := 0
	for n > 0 {
		bits++
		n >>= 1
	}
	if bits == 0 {
		return 1
	}
	return bits
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reverse(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
