package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/lo-sat/pkg/clause"
	"github.com/operator-framework/lo-sat/pkg/formula"
)

func clauses(lits ...[]int) []clause.Clause {
	out := make([]clause.Clause, len(lits))
	for i, l := range lits {
		out[i] = clause.New(l)
	}
	return out
}

func TestNew_DefaultsFillThreadsAndTracer(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	assert.Greater(t, e.threads, 0)
	assert.NotNil(t, e.tracer)
}

func TestNew_RejectsNegativeThreads(t *testing.T) {
	_, err := New(WithThreads(-1))
	assert.Error(t, err)
}

func TestSolve_UnitChain_FindsWitness(t *testing.T) {
	e, err := New(WithMode(formula.LO), WithThreads(2))
	require.NoError(t, err)

	sat, witness, result, err := e.Solve(context.Background(), clauses(
		[]int{1}, []int{2}, []int{3}, []int{-4},
	))
	require.NoError(t, err)
	assert.True(t, sat)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: false}, witness)
	assert.Greater(t, result.Root.UniqueDescendants, 0)
}

func TestSolve_UnsatPair_ReportsUnsatisfiable(t *testing.T) {
	e, err := New(WithMode(formula.LOU), WithThreads(1))
	require.NoError(t, err)

	sat, witness, _, err := e.Solve(context.Background(), clauses([]int{1}, []int{-1}))
	require.NoError(t, err)
	assert.False(t, sat)
	assert.Nil(t, witness)
}

func TestSolve_TautologyRoot_CollapsesToTrueWithoutExploring(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	sat, witness, result, err := e.Solve(context.Background(), clauses([]int{1, -1}))
	require.NoError(t, err)
	assert.True(t, sat)
	assert.Equal(t, map[int]bool{}, witness)
	assert.Equal(t, Stats{}, result)
}

func TestSolve_ExitUponSolving_ReturnsBeforeFullDrain(t *testing.T) {
	e, err := New(WithMode(formula.LO), WithThreads(2), WithExitUponSolving(true))
	require.NoError(t, err)

	sat, witness, _, err := e.Solve(context.Background(), clauses(
		[]int{1}, []int{2}, []int{3}, []int{-4},
	))
	require.NoError(t, err)
	assert.True(t, sat)
	assert.NotNil(t, witness)
}

func TestSolve_ContextCancelled_ReturnsContextError(t *testing.T) {
	e, err := New(WithThreads(1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, _, _, err = e.Solve(ctx, clauses([]int{1}, []int{2}, []int{3}, []int{-4}))
	assert.Error(t, err)
}
