package formula

import "github.com/operator-framework/lo-sat/pkg/clause"

// Evaluate performs the pivot split of §4.3. The pivot is the
// absolute value of the first literal of the first clause. It returns
// the left branch (pivot assumed TRUE) and the right branch (pivot
// assumed FALSE), each a Node.
func (f *Formula) Evaluate() (left, right Node) {
	pivot := abs(f.Clauses[0].Literals[0])
	origPivot := f.OriginalNameOf(pivot)

	leftClauses, leftFalse := substituteVar(f.Clauses, pivot, true)
	rightClauses, rightFalse := substituteVar(f.Clauses, pivot, false)

	leftVars := extendVars(f.EvaluatedVars, origPivot, true)
	rightVars := extendVars(f.EvaluatedVars, origPivot, false)

	left = f.buildChild(leftClauses, leftFalse, leftVars)
	right = f.buildChild(rightClauses, rightFalse, rightVars)
	return left, right
}

// Pivot returns the original-input variable name Evaluate would split
// on next, without performing the split.
func (f *Formula) Pivot() int {
	pivot := abs(f.Clauses[0].Literals[0])
	return f.OriginalNameOf(pivot)
}

// SubstituteVars eliminates clauses satisfied by assignment and
// deletes falsified literals from the rest (§4.3). A clause
// reduced to empty collapses the whole formula to terminal FALSE.
func (f *Formula) SubstituteVars(assignment map[int]bool) Node {
	clauses := f.Clauses
	becameFalse := false
	for v, val := range assignment {
		clauses, becameFalse = substituteVar(clauses, v, val)
		if becameFalse {
			break
		}
	}
	vars := make(map[int]bool, len(f.EvaluatedVars)+len(assignment))
	for k, v := range f.EvaluatedVars {
		vars[k] = v
	}
	for v, val := range assignment {
		vars[f.OriginalNameOf(v)] = val
	}
	return f.buildChild(clauses, becameFalse, vars)
}

// substituteVar eliminates clauses satisfied by v=val and removes the
// falsified literal from the rest. It returns becameFalse as soon as
// any clause collapses to empty, short-circuiting further work.
func substituteVar(clauses []clause.Clause, v int, val bool) (out []clause.Clause, becameFalse bool) {
	satisfying := v
	if !val {
		satisfying = -v
	}
	falsified := -satisfying

	out = make([]clause.Clause, 0, len(clauses))
	for _, c := range clauses {
		if c.Contains(satisfying) {
			continue
		}
		if c.Contains(falsified) {
			nc := removeLiteral(c, falsified)
			if nc.IsFalse() {
				return nil, true
			}
			out = append(out, nc)
			continue
		}
		out = append(out, c.Copy())
	}
	return out, false
}

func removeLiteral(c clause.Clause, lit int) clause.Clause {
	out := make([]int, 0, len(c.Literals)-1)
	for _, l := range c.Literals {
		if l != lit {
			out = append(out, l)
		}
	}
	return clause.Clause{
		Literals:     out,
		InitialIndex: c.InitialIndex,
		Substituted:  true,
	}
}

func extendVars(parent map[int]bool, v int, val bool) map[int]bool {
	out := make(map[int]bool, len(parent)+1)
	for k, p := range parent {
		out[k] = p
	}
	out[v] = val
	return out
}

// buildChild classifies a substitution result as terminal FALSE,
// terminal TRUE (no clauses left, nothing falsified), or a new open
// Formula whose OriginalValues is derived from f per §4.3.
func (f *Formula) buildChild(clauses []clause.Clause, becameFalse bool, vars map[int]bool) Node {
	if becameFalse {
		return Node{Terminal: true, Value: false, EvaluatedVars: vars}
	}
	if len(clauses) == 0 {
		return Node{Terminal: true, Value: true, EvaluatedVars: vars}
	}

	vs := distinctVars(clauses)
	original := make(map[int]int, len(vs))
	for _, v := range vs {
		original[v] = f.OriginalNameOf(v)
	}
	child := &Formula{
		Clauses:        clauses,
		OriginalValues: original,
		EvaluatedVars:  vars,
	}
	return Node{Formula: child, EvaluatedVars: vars}
}
