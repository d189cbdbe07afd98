package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/lo-sat/pkg/clause"
	"github.com/operator-framework/lo-sat/pkg/formula"
	"github.com/operator-framework/lo-sat/pkg/nodetable"
	"github.com/operator-framework/lo-sat/pkg/queue"
)

func clauses(lits ...[]int) []clause.Clause {
	out := make([]clause.Clause, len(lits))
	for i, l := range lits {
		out[i] = clause.New(l)
	}
	return out
}

func newTestContext(cfg Config) (*Context, *nodetable.NodeTable) {
	table := nodetable.New()
	q := queue.New[Item](true, IDOf)
	return NewContext(table, q, cfg, nil, nil, nil), table
}

func seedRoot(t *testing.T, ctx *Context, cfg Config, lits ...[]int) [20]byte {
	t.Helper()
	root := formula.NewRoot(clauses(lits...))
	require.False(t, root.Terminal)
	root.Formula.ToLOCondition(cfg.Mode, cfg.SortBySize, cfg.ThiefMethod)
	id := root.Formula.Hash()
	require.True(t, ctx.Table.InsertIfAbsent(id))
	ctx.Queue.Insert(Item{ID: id, Formula: root.Formula})
	return id
}

func TestRun_UnitChain_FindsSolutionAndPopulatesTable(t *testing.T) {
	cfg := Config{Mode: formula.LO}
	ctx, table := newTestContext(cfg)
	seedRoot(t, ctx, cfg, []int{1}, []int{2}, []int{3}, []int{-4})

	Run(ctx)

	assert.True(t, ctx.Queue.IsEmpty())
	assert.Equal(t, 3, table.Len())

	witness, found := ctx.Solution()
	require.True(t, found)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: false}, witness)
}

func TestRun_UnsatPair_NoSolutionPublished(t *testing.T) {
	cfg := Config{Mode: formula.LOU}
	ctx, _ := newTestContext(cfg)
	seedRoot(t, ctx, cfg, []int{1}, []int{-1})

	Run(ctx)

	_, found := ctx.Solution()
	assert.False(t, found)
}

func TestRun_ExitUponSolving_StopsBeforeDraining(t *testing.T) {
	cfg := Config{Mode: formula.LO, ExitUponSolving: true}
	ctx, _ := newTestContext(cfg)
	seedRoot(t, ctx, cfg, []int{1}, []int{2}, []int{3}, []int{-4})

	Run(ctx)

	assert.True(t, ctx.Stopped())
	_, found := ctx.Solution()
	assert.True(t, found)
}

func TestRun_DuplicateBranches_CollapseToSameNode(t *testing.T) {
	// {1|2} & {-1|2}: both children of splitting on 1 reduce to {2},
	// identical once canonicalized, so the second owner must be
	// classified redundant rather than re-queued: the table holds
	// only the root and the one shared child.
	cfg := Config{Mode: formula.FLO}
	ctx, table := newTestContext(cfg)
	seedRoot(t, ctx, cfg, []int{1, 2}, []int{-1, 2})

	Run(ctx)

	assert.True(t, ctx.Queue.IsEmpty())
	assert.Equal(t, 2, table.Len())
}
