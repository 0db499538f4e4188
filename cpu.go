package rvsim

import (
	"github.com/willmccallion/rvsim/internal/bpu"
	"github.com/willmccallion/rvsim/internal/bus"
	"github.com/willmccallion/rvsim/internal/cache"
	"github.com/willmccallion/rvsim/internal/mmu"
)

// Cpu holds the architectural and memory-side state of one hart:
// register files, CSRs, privilege mode, the LR/SC reservation, the
// MMU/TLB pair, the cache hierarchy, the branch predictor, and the
// system bus. It does not hold any in-flight micro-op state — that
// belongs to Pipeline, per spec.md §9's "Cyclic borrow" design note.
type Cpu struct {
	Regs        Registers
	CSR         *CSRFile
	Priv        Privilege
	Reservation Reservation

	IMMU *mmu.MMU
	DMMU *mmu.MMU

	Bus    *bus.Bus
	ICache *cache.Cache
	DCache *cache.Cache

	BPU *bpu.Predictor

	// Halted is set when a WFI retires and cleared once an enabled
	// interrupt becomes pending; Simulator.Step skips the pipeline
	// tick entirely while it's set, per spec.md §4.7's WFI pre-tick
	// rule.
	Halted bool
}

// NewCpu constructs a hart in its post-reset state: Machine mode, a
// fresh CSR file, wired to the given bus, MMUs, caches, and predictor.
func NewCpu(b *bus.Bus, imu, dmu *mmu.MMU, icache, dcache *cache.Cache, pred *bpu.Predictor) *Cpu {
	return &Cpu{
		CSR:    NewCSRFile(),
		Priv:   Machine,
		IMMU:   imu,
		DMMU:   dmu,
		Bus:    b,
		ICache: icache,
		DCache: dcache,
		BPU:    pred,
	}
}

func (c *Cpu) userMode() bool       { return c.Priv == User }
func (c *Cpu) supervisorMode() bool { return c.Priv == Supervisor }

func (c *Cpu) sum() bool { return c.CSR.mstatus&mstatusSUM != 0 }
func (c *Cpu) mxr() bool { return c.CSR.mstatus&mstatusMXR != 0 }

// translate resolves a virtual address for the given access kind,
// using the instruction or data MMU as appropriate, per spec.md §4.5.
func (c *Cpu) translate(useIMMU bool, vaddr uint64, kind mmu.AccessKind) (uint64, mmu.FaultKind) {
	m := c.DMMU
	if useIMMU {
		m = c.IMMU
	}
	satpPPN := c.CSR.Satp() & ((1 << 44) - 1)
	return m.Translate(c.Bus, satpPPN, vaddr, kind, c.sum(), c.mxr(), c.userMode(), c.supervisorMode())
}

// faultTrap converts an mmu.FaultKind into a Trap attached at stage.
func faultTrap(f mmu.FaultKind, vaddr uint64, stage Stage) Trap {
	var cause uint64
	switch f {
	case mmu.InstructionPageFault:
		cause = CauseInstructionPageFault
	case mmu.LoadPageFault:
		cause = CauseLoadPageFault
	case mmu.StorePageFault:
		cause = CauseStorePageFault
	default:
		return NoTrap
	}
	return exceptionTrap(cause, vaddr, stage)
}
