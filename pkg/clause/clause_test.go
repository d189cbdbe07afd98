package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortsAndDedups(t *testing.T) {
	c := New([]int{3, -1, 2, -1})
	require.False(t, c.Tautology)
	assert.Equal(t, []int{-1, 2, 3}, c.Literals)
}

func TestNew_Tautology(t *testing.T) {
	c := New([]int{1, -2, -1})
	assert.True(t, c.Tautology)
	assert.Empty(t, c.Literals)
}

func TestNew_OrdersAcrossVariablesByMagnitude(t *testing.T) {
	// distinct variables only here since same-variable opposite
	// signs always collapse to tautology; this checks ordering
	// across variables is by magnitude, not sign.
	c := New([]int{-2, 1})
	assert.Equal(t, []int{1, -2}, c.Literals)
}

func TestIsFalse(t *testing.T) {
	assert.True(t, New(nil).IsFalse())
	assert.False(t, New([]int{1}).IsFalse())
	assert.False(t, Clause{Tautology: true}.IsFalse())
}

func TestLess_PrefixAndSignTieBreak(t *testing.T) {
	a := New([]int{1})
	b := New([]int{1, 2})
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	pos := Clause{Literals: []int{1}}
	neg := Clause{Literals: []int{-1}}
	assert.True(t, pos.Less(neg))
	assert.False(t, neg.Less(pos))
}

func TestCopy_Independent(t *testing.T) {
	c := New([]int{1, 2})
	cp := c.Copy()
	cp.Literals[0] = 99
	assert.Equal(t, 1, c.Literals[0])
}
