package nodetable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func TestInsertIfAbsent_AtMostOneOwner(t *testing.T) {
	table := New()
	const workers = 32
	var wg sync.WaitGroup
	created := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created[i] = table.InsertIfAbsent(id(1))
		}(i)
	}
	wg.Wait()

	owners := 0
	for _, c := range created {
		if c {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
	assert.Equal(t, 1, table.Len())
}

func TestAppendChild_LeftThenRightOrder(t *testing.T) {
	table := New()
	table.InsertIfAbsent(id(1))
	table.AppendChild(id(1), id(2))
	table.AppendChild(id(1), id(3))

	e, ok := table.Get(id(1))
	require.True(t, ok)
	require.Equal(t, 2, e.NumChildren)
	assert.Equal(t, id(2), e.Children[0])
	assert.Equal(t, id(3), e.Children[1])
}

func TestMarkWitness_FirstWins(t *testing.T) {
	table := New()
	table.InsertIfAbsent(id(1))
	table.MarkWitness(id(1), map[int]bool{1: true})
	table.MarkWitness(id(1), map[int]bool{1: false})

	e, ok := table.Get(id(1))
	require.True(t, ok)
	assert.Equal(t, map[int]bool{1: true}, e.Witness)
}

func TestSnapshot_ReflectsChildren(t *testing.T) {
	table := New()
	table.InsertIfAbsent(id(1))
	table.InsertIfAbsent(id(2))
	table.AppendChild(id(1), id(2))

	snap := table.Snapshot()
	assert.Equal(t, [][20]byte{id(2)}, snap[id(1)])
	assert.Empty(t, snap[id(2)])
}
