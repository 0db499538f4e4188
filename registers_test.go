package rvsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistersX0HardwiredToZero(t *testing.T) {
	var r Registers
	r.WriteGPR(0, 0xDEADBEEF)
	require.Equal(t, uint64(0), r.ReadGPR(0))
}

func TestRegistersGPRRoundTrip(t *testing.T) {
	var r Registers
	r.WriteGPR(10, 0x123456789ABCDEF0)
	require.Equal(t, uint64(0x123456789ABCDEF0), r.ReadGPR(10))
}

func TestRegistersFloat32NaNBoxing(t *testing.T) {
	var r Registers
	r.WriteFloat32(1, 3.5)
	require.Equal(t, uint64(0xFFFFFFFF00000000)|uint64(0x40600000), r.FPR[1])
	require.Equal(t, float32(3.5), r.ReadFloat32(1))
}

func TestRegistersFloat32ReadUnboxedReturnsCanonicalNaN(t *testing.T) {
	var r Registers
	r.FPR[2] = 0x0000000012345678 // not properly NaN-boxed
	require.Equal(t, uint32(canonicalNaN32), r.ReadFPR32(2))
}

func TestRegistersFloat64RoundTrip(t *testing.T) {
	var r Registers
	r.WriteFloat64(3, 2.718281828)
	require.Equal(t, 2.718281828, r.ReadFloat64(3))
}
