package priority_queue_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zhmesh/zhmesh/std/types/priority_queue"
)

func TestPopOrder(t *testing.T) {
	q := priority_queue.Queue[string, int]{}
	q.Push("c", 30)
	q.Push("a", 10)
	q.Push("b", 20)
	q.Push("a2", 10)
	require.Equal(t, 4, q.Len())
	require.Equal(t, "a", q.Peek())
	require.Equal(t, 10, q.PeekPriority())

	require.Equal(t, "a", q.Pop())
	require.Equal(t, "a2", q.Pop())
	require.Equal(t, "b", q.Pop())
	require.Equal(t, "c", q.Pop())
	require.Equal(t, 0, q.Len())
}

func TestRemove(t *testing.T) {
	q := priority_queue.Queue[string, int]{}
	q.Push("a", 1)
	b := q.Push("b", 2)
	q.Push("c", 3)

	require.True(t, b.Queued())
	require.True(t, q.Remove(b))
	require.False(t, b.Queued())
	require.False(t, q.Remove(b))
	require.Equal(t, "b", b.Value())

	require.Equal(t, "a", q.Pop())
	require.Equal(t, "c", q.Pop())
}
