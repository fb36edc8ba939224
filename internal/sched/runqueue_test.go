package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestProc(pid int) *Process {
	return &Process{PID: pid, State: Runnable, Parent: -1, CPU: -1, Priority: PriorityMeta{Priority: defaultPriority}}
}

func TestRingQueue_AddRemoveIsIdempotent(t *testing.T) {
	q := newRingQueue(4)
	a, b, c := newTestProc(1), newTestProc(2), newTestProc(3)

	require.NoError(t, q.Add(a))
	require.NoError(t, q.Add(b))
	require.ErrorIs(t, q.Add(a), ErrDuplicateEnqueue)
	require.Equal(t, 2, q.Len())

	q.Remove(c) // not a member: no-op, no panic
	require.Equal(t, 2, q.Len())

	q.Remove(a)
	require.Equal(t, 1, q.Len())
	require.False(t, a.inQueue)
}

func TestRingQueue_GrowsPastInitialCapacity(t *testing.T) {
	q := newRingQueue(2)
	for i := 1; i <= 10; i++ {
		require.NoError(t, q.Add(newTestProc(i)))
	}
	require.Equal(t, 10, q.Len())
	require.Len(t, q.members(), 10)
}

func TestFIFOQueue_PreservesOrderOnRemove(t *testing.T) {
	q := newFIFOQueue()
	a, b, c := newTestProc(1), newTestProc(2), newTestProc(3)
	require.NoError(t, q.Add(a))
	require.NoError(t, q.Add(b))
	require.NoError(t, q.Add(c))

	q.Remove(b)
	require.Equal(t, a, q.popFront())
	require.Equal(t, c, q.popFront())
	require.Nil(t, q.popFront())
}

func TestPriorityQueue_ShortLivedLaneTakesPrecedence(t *testing.T) {
	q := newPriorityQueue(8, 100)
	lowPrio := newTestProc(1)
	lowPrio.Priority.Priority = 0
	require.NoError(t, q.Add(lowPrio))

	shortLived := newTestProc(101)
	shortLived.Priority.Priority = defaultPriority
	require.NoError(t, q.Add(shortLived))

	require.Equal(t, shortLived, q.Select(0), "short-lived lane must be checked before any numbered band")
}

func TestPriorityQueue_AscendingBandOrder(t *testing.T) {
	q := newPriorityQueue(8, 100)
	mid := newTestProc(1)
	mid.Priority.Priority = 5
	high := newTestProc(2)
	high.Priority.Priority = 1

	require.NoError(t, q.Add(mid))
	require.NoError(t, q.Add(high))

	require.Equal(t, high, q.Select(0))
}
