package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreBufferFillAndForward(t *testing.T) {
	sb := NewStoreBuffer(4)
	tag := makeRobTag(0, false)
	sb.Allocate(tag)
	sb.Fill(tag, PAddr(0x1000), 0x1122334455667788, Double)

	res := sb.Forward(PAddr(0x1000), Byte, func(RobTag) bool { return true })
	require.True(t, res.Hit)
	require.Equal(t, uint64(0x88), res.Value, "a byte load must pick up the store's low byte")
}

func TestStoreBufferForwardPrefersYoungestCoveringStore(t *testing.T) {
	sb := NewStoreBuffer(4)
	t0 := makeRobTag(0, false)
	t1 := makeRobTag(1, false)
	sb.Allocate(t0)
	sb.Allocate(t1)
	sb.Fill(t0, PAddr(0x2000), 0xAAAAAAAAAAAAAAAA, Double)
	sb.Fill(t1, PAddr(0x2000), 0xBBBBBBBBBBBBBBBB, Double)

	res := sb.Forward(PAddr(0x2000), Double, func(RobTag) bool { return true })
	require.True(t, res.Hit)
	require.Equal(t, uint64(0xBBBBBBBBBBBBBBBB), res.Value)
}

func TestStoreBufferForwardMissesWhenNotReady(t *testing.T) {
	sb := NewStoreBuffer(4)
	tag := makeRobTag(0, false)
	sb.Allocate(tag) // never filled

	res := sb.Forward(PAddr(0x1000), Byte, func(RobTag) bool { return true })
	require.False(t, res.Hit)
}

func TestStoreBufferForwardMissesWhenStoreNotOlder(t *testing.T) {
	sb := NewStoreBuffer(4)
	tag := makeRobTag(5, false)
	sb.Allocate(tag)
	sb.Fill(tag, PAddr(0x1000), 0x42, Byte)

	res := sb.Forward(PAddr(0x1000), Byte, func(RobTag) bool { return false })
	require.False(t, res.Hit, "Forward must skip entries the caller marks as not-older")
}

func TestStoreBufferDrainHeadIsFIFO(t *testing.T) {
	sb := NewStoreBuffer(4)
	t0 := makeRobTag(0, false)
	t1 := makeRobTag(1, false)
	sb.Allocate(t0)
	sb.Allocate(t1)
	sb.Fill(t0, PAddr(0x10), 1, Byte)
	sb.Fill(t1, PAddr(0x20), 2, Byte)

	e, ok := sb.DrainHead()
	require.True(t, ok)
	require.Equal(t, t0, e.tag)

	e, ok = sb.DrainHead()
	require.True(t, ok)
	require.Equal(t, t1, e.tag)

	_, ok = sb.DrainHead()
	require.False(t, ok)
}

func TestStoreBufferDiscardAll(t *testing.T) {
	sb := NewStoreBuffer(4)
	sb.Allocate(makeRobTag(0, false))
	sb.Allocate(makeRobTag(1, false))
	sb.DiscardAll()
	require.True(t, sb.Empty())
}
