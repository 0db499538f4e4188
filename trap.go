package rvsim

// Cause codes for synchronous exceptions (bit 63 clear) and
// asynchronous interrupts (bit 63 set, masked off here and carried in
// Trap.Interrupt instead for a cleaner switch in Go).
const (
	CauseInstructionMisaligned = 0
	CauseInstructionFault      = 1
	CauseIllegalInstruction    = 2
	CauseBreakpoint            = 3
	CauseLoadMisaligned        = 4
	CauseLoadFault             = 5
	CauseStoreMisaligned       = 6
	CauseStoreFault            = 7
	CauseEcallU                = 8
	CauseEcallS                = 9
	CauseEcallM                = 11
	CauseInstructionPageFault  = 12
	CauseLoadPageFault         = 13
	CauseStorePageFault        = 15
)

// Interrupt cause codes (as they appear in mip/mie/mcause low bits).
const (
	IntSSI = 1
	IntMSI = 3
	IntSTI = 5
	IntMTI = 7
	IntSEI = 9
	IntMEI = 11
)

// Trap is the tagged variant carried on a micro-op record from the
// stage that detects it through to Commit, per spec.md §4.1/§7. It is
// not a Go error — architectural traps are normal simulated behaviour,
// not host-level failures.
type Trap struct {
	Valid       bool
	Interrupt   bool
	Cause       uint64
	Tval        uint64
	OriginStage Stage // which stage attached this trap, for diagnostics
}

// NoTrap is the zero value, meaning "no trap pending".
var NoTrap = Trap{}

func exceptionTrap(cause uint64, tval uint64, stage Stage) Trap {
	return Trap{Valid: true, Interrupt: false, Cause: cause, Tval: tval, OriginStage: stage}
}

func interruptTrap(cause uint64) Trap {
	return Trap{Valid: true, Interrupt: true, Cause: cause}
}

// delegated reports whether a trap should be handled in Supervisor
// mode rather than Machine mode, per spec.md §4.7: Machine mode is
// never delegated below itself, and delegation bits only apply when
// current privilege is at most Supervisor.
func delegated(csr *CSRFile, cur Privilege, t Trap) bool {
	if cur == Machine {
		return false
	}
	if t.Interrupt {
		return csr.mideleg&(1<<t.Cause) != 0
	}
	return csr.medeleg&(1<<t.Cause) != 0
}

// EnterTrap performs trap entry per spec.md §4.7 steps 1-4, returning
// the new PC. It mutates csr and priv in place.
func EnterTrap(csr *CSRFile, priv *Privilege, pc uint64, t Trap) uint64 {
	toSupervisor := delegated(csr, *priv, t)

	if toSupervisor {
		csr.scause = t.Cause
		if t.Interrupt {
			csr.scause |= 1 << 63
		}
		csr.sepc = pc
		csr.stval = t.Tval

		spie := csr.mstatus&mstatusSIE != 0
		csr.mstatus = csr.mstatus &^ mstatusSPIE
		if spie {
			csr.mstatus |= mstatusSPIE
		}
		csr.mstatus &^= mstatusSIE

		csr.mstatus &^= mstatusSPP
		if *priv == Supervisor {
			csr.mstatus |= mstatusSPP
		}

		*priv = Supervisor
		return mtvecTarget(csr.stvec, t.Cause, t.Interrupt)
	}

	csr.mcause = t.Cause
	if t.Interrupt {
		csr.mcause |= 1 << 63
	}
	csr.mepc = pc
	csr.mtval = t.Tval

	mpie := csr.mstatus&mstatusMIE != 0
	csr.mstatus &^= mstatusMPIE
	if mpie {
		csr.mstatus |= mstatusMPIE
	}
	csr.mstatus &^= mstatusMIE

	csr.mstatus &^= mstatusMPPMask
	csr.mstatus |= uint64(*priv) << mstatusMPPShift

	*priv = Machine
	return mtvecTarget(csr.mtvec, t.Cause, t.Interrupt)
}

// MRET performs the M-mode trap return per spec.md §4.7.
func MRET(csr *CSRFile, priv *Privilege) uint64 {
	mpie := csr.mstatus&mstatusMPIE != 0
	csr.mstatus &^= mstatusMIE
	if mpie {
		csr.mstatus |= mstatusMIE
	}
	csr.mstatus |= mstatusMPIE

	mpp := normalizePrivilege(uint8((csr.mstatus & mstatusMPPMask) >> mstatusMPPShift))
	csr.mstatus &^= mstatusMPPMask
	csr.mstatus |= uint64(User) << mstatusMPPShift

	*priv = mpp
	return csr.mepc
}

// SRET performs the S-mode trap return per spec.md §4.7.
func SRET(csr *CSRFile, priv *Privilege) uint64 {
	spie := csr.mstatus&mstatusSPIE != 0
	csr.mstatus &^= mstatusSIE
	if spie {
		csr.mstatus |= mstatusSIE
	}
	csr.mstatus |= mstatusSPIE

	var spp Privilege = User
	if csr.mstatus&mstatusSPP != 0 {
		spp = Supervisor
	}
	csr.mstatus &^= mstatusSPP

	*priv = spp
	return csr.sepc
}

// PendingInterrupt resolves the highest-priority enabled, unmasked
// interrupt per spec.md §4.7's "Interrupt check", or returns
// (Trap{}, false) if none is deliverable this pre-tick.
//
// Priority order (highest first), per the RISC-V privileged spec:
// MEI, MSI, MTI, SEI, SSI, STI.
func PendingInterrupt(csr *CSRFile, priv Privilege) (Trap, bool) {
	pending := csr.mip & csr.mie
	if pending == 0 {
		return Trap{}, false
	}

	globalM := priv < Machine || (priv == Machine && csr.mstatus&mstatusMIE != 0)
	globalS := priv < Supervisor || (priv == Supervisor && csr.mstatus&mstatusSIE != 0)

	order := []struct {
		bit   uint64
		cause uint64
	}{
		{ipMEI, IntMEI}, {ipMSI, IntMSI}, {ipMTI, IntMTI},
		{ipSEI, IntSEI}, {ipSSI, IntSSI}, {ipSTI, IntSTI},
	}

	for _, o := range order {
		if pending&o.bit == 0 {
			continue
		}
		toS := csr.mideleg&(1<<o.cause) != 0 && priv != Machine
		if toS {
			if !globalS {
				continue
			}
		} else {
			if !globalM {
				continue
			}
		}
		return interruptTrap(o.cause), true
	}
	return Trap{}, false
}
