package rvsim

import "github.com/willmccallion/rvsim/internal/mmu"

// stageMemory1 translates a load/store/atomic's effective address
// through the D-MMU, checks alignment, and sets up the LR/SC
// reservation, per spec.md §4.3/§4.5. Non-memory micro-ops pass
// through untouched.
func stageMemory1(cpu *Cpu, p *Pipeline) {
	if !p.Latches.M1M2.Empty() {
		return
	}
	u, ok := p.Latches.ExM1.Peek()
	if !ok {
		return
	}
	p.Latches.ExM1.Take()

	cs := &u.Signals
	isMem := !u.Trap.Valid && (cs.MemRead || cs.MemWrite || cs.Atom != AtomicNone)

	if isMem {
		width := cs.MemWidth
		if cs.Atom != AtomicNone && width == 0 {
			width = Word
		}
		if misaligned(u.MemAddr, width) {
			cause := CauseLoadMisaligned
			if cs.MemWrite || isAtomicWrite(cs.Atom) {
				cause = CauseStoreMisaligned
			}
			u.Trap = exceptionTrap(cause, uint64(u.MemAddr), StageMemory1)
		} else {
			kind := mmu.AccessLoad
			if cs.MemWrite || isAtomicWrite(cs.Atom) {
				kind = mmu.AccessStore
			}
			paddr, fault := cpu.translate(false, uint64(u.MemAddr), kind)
			if fault != mmu.NoFault {
				u.Trap = faultTrap(fault, uint64(u.MemAddr), StageMemory1)
			} else {
				u.MemAddr = PAddr(paddr)
				switch cs.Atom {
				case AtomicLR:
					cpu.Reservation.Set(u.MemAddr, width)
				case AtomicSC:
					u.ScSucceeded = cpu.Reservation.Check(u.MemAddr, width)
					cpu.Reservation.Clear()
				default:
					if cs.Atom != AtomicNone {
						cpu.Reservation.Clear()
					}
				}
			}
		}
	}

	if isMem && !u.Trap.Valid && cs.MemWrite {
		p.StoreBuf.Fill(u.Tag, u.MemAddr, u.MemValue, cs.MemWidth)
	}

	p.Latches.M1M2.Put(u)
}

// isAtomicWrite reports whether an atomic is checked as a store (the
// store-side misaligned cause and store translation): every AMO and SC
// is, including an SC whose reservation fails and which then writes
// nothing at Memory2; LR is checked as a load.
func isAtomicWrite(op AtomicOp) bool {
	return op != AtomicNone && op != AtomicLR
}
