package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRobAllocateRetireFIFO(t *testing.T) {
	r := NewRob(4)
	require.True(t, r.Empty())

	t0 := r.Allocate(RobEntry{PC: 0x1000})
	t1 := r.Allocate(RobEntry{PC: 0x1004})
	require.Equal(t, 2, r.Count())
	require.Equal(t, t0, r.HeadTag())

	e := r.Get(t1)
	require.NotNil(t, e)
	require.Equal(t, uint64(0x1004), e.PC)

	r.Retire()
	require.Equal(t, 1, r.Count())
	require.Equal(t, t1, r.HeadTag())
	require.Nil(t, r.Get(t0), "a retired tag must no longer resolve")
}

func TestRobWraparoundEpochDistinguishesStaleTags(t *testing.T) {
	r := NewRob(2)
	tagA := r.Allocate(RobEntry{PC: 1})
	r.Retire()
	tagB := r.Allocate(RobEntry{PC: 2})
	tagC := r.Allocate(RobEntry{PC: 3}) // wraps tail back to index 0, flips epoch

	require.NotEqual(t, tagA, tagC, "a tag from a wrapped generation must differ even at the same index")
	require.NotNil(t, r.Get(tagB))
	require.NotNil(t, r.Get(tagC))
}

func TestRobFlushFromDiscardsYoungerEntries(t *testing.T) {
	r := NewRob(8)
	tags := make([]RobTag, 4)
	for i := range tags {
		tags[i] = r.Allocate(RobEntry{PC: uint64(i)})
	}
	r.FlushFrom(tags[2])
	require.Equal(t, 2, r.Count())
	require.NotNil(t, r.Get(tags[0]))
	require.NotNil(t, r.Get(tags[1]))
	require.Nil(t, r.Get(tags[2]))
	require.Nil(t, r.Get(tags[3]))
}

func TestRobFlushAllEmptiesBuffer(t *testing.T) {
	r := NewRob(4)
	r.Allocate(RobEntry{PC: 1})
	r.Allocate(RobEntry{PC: 2})
	r.FlushAll()
	require.True(t, r.Empty())
	require.True(t, r.Full() == false)
}

func TestRobFullReportsCapacity(t *testing.T) {
	r := NewRob(2)
	r.Allocate(RobEntry{})
	require.False(t, r.Full())
	r.Allocate(RobEntry{})
	require.True(t, r.Full())
}

func TestRobOlderThanOrdersByDistanceFromHead(t *testing.T) {
	r := NewRob(4)
	t0 := r.Allocate(RobEntry{})
	t1 := r.Allocate(RobEntry{})
	t2 := r.Allocate(RobEntry{})

	require.True(t, r.OlderThan(t0, t1))
	require.True(t, r.OlderThan(t1, t2))
	require.False(t, r.OlderThan(t2, t0))
}

func TestRobOlderThanAcrossWraparound(t *testing.T) {
	r := NewRob(2)
	r.Allocate(RobEntry{})
	r.Retire()
	tOld := r.Allocate(RobEntry{}) // idx 1, still oldest in-flight
	tNew := r.Allocate(RobEntry{}) // wraps to idx 0, younger than tOld

	require.True(t, r.OlderThan(tOld, tNew))
	require.False(t, r.OlderThan(tNew, tOld))
}
