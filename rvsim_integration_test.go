package rvsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/willmccallion/rvsim/internal/config"
)

// encodeR encodes an R-type instruction (OP major opcode 0x33).
func encodeR(funct7 uint32, rs2, rs1, funct3, rd uint32, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeI encodes an I-type instruction (e.g. ADDI, opcode 0x13).
func encodeI(imm int32, rs1, funct3, rd uint32, opcode uint32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.System.RAMSize = 1 << 20
	cfg.MMU.Mode = "bare"
	cfg.Cache.L1I.Enabled = false
	cfg.Cache.L1D.Enabled = false
	cfg.Cache.L2.Enabled = false
	cfg.Cache.L3.Enabled = false
	return cfg
}

func buildTestMachine(t *testing.T, cfg config.Config) *Machine {
	t.Helper()
	m, err := Build(cfg, func(b byte) {}, func() uint64 { return uint64(time.Now().UnixNano()) })
	require.NoError(t, err)
	return m
}

// TestPipelineAddSequence hand-assembles:
//
//	addi x1, x0, 5
//	addi x2, x0, 7
//	add  x3, x1, x2
//
// and runs the pipeline until x3 settles at 12.
func TestPipelineAddSequence(t *testing.T) {
	cfg := testConfig()
	m := buildTestMachine(t, cfg)

	prog := []uint32{
		encodeI(5, 0, 0x0, 1, 0x13),       // addi x1, x0, 5
		encodeI(7, 0, 0x0, 2, 0x13),       // addi x2, x0, 7
		encodeR(0x00, 2, 1, 0x0, 3, 0x33), // add x3, x1, x2
	}
	for i, inst := range prog {
		off := uint64(i * 4)
		m.Mem.StoreRaw(off, 4, uint64(inst))
	}
	m.Pipe.FetchPC = cfg.System.RAMBase

	const maxCycles = 200
	for i := 0; i < maxCycles; i++ {
		m.Sim.Step()
		if m.Pipe.Retired >= 3 {
			break
		}
	}

	require.GreaterOrEqual(t, m.Pipe.Retired, uint64(3))
	require.Equal(t, uint64(5), m.Cpu.Regs.ReadGPR(1))
	require.Equal(t, uint64(7), m.Cpu.Regs.ReadGPR(2))
	require.Equal(t, uint64(12), m.Cpu.Regs.ReadGPR(3))
}
