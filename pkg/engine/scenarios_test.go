package engine_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/lo-sat/pkg/clause"
	"github.com/operator-framework/lo-sat/pkg/engine"
	"github.com/operator-framework/lo-sat/pkg/formula"
)

func mustClauses(lits ...[]int) []clause.Clause {
	out := make([]clause.Clause, len(lits))
	for i, l := range lits {
		out[i] = clause.New(l)
	}
	return out
}

func newEngine(mode formula.Mode, threads int) *engine.Engine {
	e, err := engine.New(engine.WithMode(mode), engine.WithThreads(threads))
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("engine scenarios (§8)", func() {
	It("scenario 1: trivial tautology collapses without exploring", func() {
		e := newEngine(formula.LO, 2)
		sat, witness, result, err := e.Solve(context.Background(), mustClauses([]int{1, -1}))
		Expect(err).NotTo(HaveOccurred())
		Expect(sat).To(BeTrue())
		Expect(witness).NotTo(BeNil())
		Expect(result.Root.UniqueDescendants).To(Equal(0))
	})

	It("scenario 2: unit chain yields exactly one node per pivot", func() {
		e := newEngine(formula.LO, 2)
		clauses := mustClauses([]int{1}, []int{2}, []int{3}, []int{-4})
		sat, witness, result, err := e.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())
		Expect(sat).To(BeTrue())
		Expect(witness).To(Equal(map[int]bool{1: true, 2: true, 3: true, 4: false}))
		Expect(result.PerNode).To(HaveLen(3))
		Expect(oracleVerify(clauses, witness)).To(BeTrue())
		Expect(oracleSAT(clauses)).To(BeTrue())
	})

	It("scenario 3: unsatisfiable pair reports UNSAT with one direct FALSE branch", func() {
		e := newEngine(formula.LOU, 1)
		clauses := mustClauses([]int{1}, []int{-1})
		sat, witness, _, err := e.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())
		Expect(sat).To(BeFalse())
		Expect(witness).To(BeNil())
		Expect(oracleSAT(clauses)).To(BeFalse())
	})

	It("scenario 4: pigeonhole-3-in-2 is UNSAT with a redundant hit somewhere in the DAG", func() {
		// Pigeons 1,2,3; holes A,B. p_i_h true means pigeon i in hole h.
		// Variables: 1=p1A 2=p1B 3=p2A 4=p2B 5=p3A 6=p3B
		clauses := mustClauses(
			[]int{1, 2}, []int{3, 4}, []int{5, 6}, // each pigeon in some hole
			[]int{-1, -3}, []int{-1, -5}, []int{-3, -5}, // at most one pigeon per hole A
			[]int{-2, -4}, []int{-2, -6}, []int{-4, -6}, // at most one pigeon per hole B
		)
		e := newEngine(formula.LO, 2)
		sat, witness, result, err := e.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())
		Expect(sat).To(BeFalse())
		Expect(witness).To(BeNil())
		Expect(result.Root.RedundantHits).To(BeNumerically(">", 0))
		Expect(oracleSAT(clauses)).To(BeFalse())
	})

	It("scenario 5: canonicalization collapses structurally-equivalent inputs to the same hash under FLO", func() {
		a := formula.NewRoot(mustClauses([]int{1, 2}, []int{3, 4}))
		b := formula.NewRoot(mustClauses([]int{5, 7}, []int{11, 13}))
		Expect(a.IsOpen()).To(BeTrue())
		Expect(b.IsOpen()).To(BeTrue())

		a.Formula.ToLOCondition(formula.FLO, false, false)
		b.Formula.ToLOCondition(formula.FLO, false, false)

		Expect(a.Formula.Hash()).To(Equal(b.Formula.Hash()))
	})

	It("scenario 6: stronger canonicalization never grows the NodeTable", func() {
		clauses := mustClauses([]int{1, 2}, []int{2, 3}, []int{-1, 3}, []int{1, -3})

		eFLO := newEngine(formula.FLO, 1)
		_, _, flo, err := eFLO.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())

		eLOU := newEngine(formula.LOU, 1)
		_, _, lou, err := eLOU.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())

		Expect(len(flo.PerNode)).To(BeNumerically("<=", len(lou.PerNode)))
	})
})

var _ = Describe("engine properties (§8 P7, P8)", func() {
	It("P7: every returned witness satisfies every original clause", func() {
		clauses := mustClauses([]int{1, 2}, []int{-2, 3}, []int{-3, -1, 4}, []int{-4})
		e := newEngine(formula.LO, 2)
		sat, witness, _, err := e.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())
		if sat {
			Expect(oracleVerify(clauses, witness)).To(BeTrue())
		}
		Expect(sat).To(Equal(oracleSAT(clauses)))
	})

	It("P8: two T=1 runs over the same input agree on NodeTable size and root counters", func() {
		clauses := mustClauses([]int{1}, []int{2}, []int{3}, []int{-4})

		e1 := newEngine(formula.LO, 1)
		_, _, r1, err := e1.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())

		e2 := newEngine(formula.LO, 1)
		_, _, r2, err := e2.Solve(context.Background(), clauses)
		Expect(err).NotTo(HaveOccurred())

		Expect(len(r1.PerNode)).To(Equal(len(r2.PerNode)))
		Expect(r1.Root).To(Equal(r2.Root))
	})
})
