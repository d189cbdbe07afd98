package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func identity(id [20]byte) [20]byte { return id }

func TestMultisetFIFO_AllowsDuplicates(t *testing.T) {
	q := New[[20]byte](false, nil)
	q.Insert(id(1))
	q.Insert(id(1))
	assert.Equal(t, 2, q.Size())
}

func TestUniqueFIFO_DropsDuplicateInsert(t *testing.T) {
	q := New(true, identity)
	q.Insert(id(1))
	q.Insert(id(1))
	assert.Equal(t, 1, q.Size())

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, id(1), v)
	assert.True(t, q.IsEmpty())

	// Once popped, re-inserting the same id is allowed again.
	q.Insert(id(1))
	assert.Equal(t, 1, q.Size())
}

func TestPop_FIFOOrder(t *testing.T) {
	q := New[[20]byte](false, nil)
	q.Insert(id(1))
	q.Insert(id(2))
	v1, _ := q.Pop()
	v2, _ := q.Pop()
	assert.Equal(t, id(1), v1)
	assert.Equal(t, id(2), v2)
	_, ok := q.Pop()
	assert.False(t, ok)
}
