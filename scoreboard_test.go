package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreboardSetAndLookup(t *testing.T) {
	sb := NewScoreboard()
	_, ok := sb.Lookup(5)
	require.False(t, ok)

	tag := makeRobTag(3, false)
	sb.SetProducer(5, tag)
	got, ok := sb.Lookup(5)
	require.True(t, ok)
	require.Equal(t, tag, got)
}

func TestScoreboardRegisterZeroIsNeverTracked(t *testing.T) {
	sb := NewScoreboard()
	sb.SetProducer(0, makeRobTag(1, false))
	_, ok := sb.Lookup(0)
	require.False(t, ok, "x0 must never have an in-flight producer")
}

func TestScoreboardClearIfMatchesOnlyClearsSameTag(t *testing.T) {
	sb := NewScoreboard()
	tagOld := makeRobTag(1, false)
	tagNew := makeRobTag(2, false)

	sb.SetProducer(7, tagOld)
	sb.SetProducer(7, tagNew) // a younger instruction re-renames the same register

	sb.ClearIfMatches(7, tagOld) // an older commit must not clobber the newer producer
	_, ok := sb.Lookup(7)
	require.True(t, ok)
	got, _ := sb.Lookup(7)
	require.Equal(t, tagNew, got)

	sb.ClearIfMatches(7, tagNew)
	_, ok = sb.Lookup(7)
	require.False(t, ok)
}

func TestScoreboardReset(t *testing.T) {
	sb := NewScoreboard()
	sb.SetProducer(1, makeRobTag(0, false))
	sb.SetProducer(2, makeRobTag(1, false))
	sb.Reset()
	_, ok1 := sb.Lookup(1)
	_, ok2 := sb.Lookup(2)
	require.False(t, ok1)
	require.False(t, ok2)
}
