package engine_test

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/lo-sat/pkg/clause"
)

// oracleSAT is an independent CDCL cross-check used only by this test
// suite: §1's Non-goals forbid CDCL inside the explorer
// itself, so go-air/gini never appears outside _test.go files.
func oracleSAT(clauses []clause.Clause) bool {
	g := gini.New()
	for _, c := range clauses {
		for _, lit := range c.Literals {
			g.Add(oracleLit(g, lit))
		}
		g.Add(0)
	}
	return g.Solve() == 1
}

func oracleLit(g *gini.Gini, lit int) z.Lit {
	if lit < 0 {
		return g.Lit(-lit).Not()
	}
	return g.Lit(lit)
}

// oracleVerify checks a witness against the original clauses
// directly, independent of both the engine and gini.
func oracleVerify(clauses []clause.Clause, witness map[int]bool) bool {
	for _, c := range clauses {
		satisfied := false
		for _, lit := range c.Literals {
			v := lit
			if v < 0 {
				v = -v
			}
			if witness[v] == (lit > 0) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
