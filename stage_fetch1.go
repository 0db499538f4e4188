package rvsim

import "github.com/willmccallion/rvsim/internal/mmu"

// stageFetch1 issues the translation request for the current fetch
// PC and consults the BPU, per spec.md §4.2. Gated by a non-zero
// stall counter and by F1F2 still holding an unconsumed record.
func stageFetch1(cpu *Cpu, p *Pipeline) {
	if p.Fetch1Stall > 0 {
		p.Fetch1Stall--
		return
	}
	if !p.Latches.F1F2.Empty() {
		return
	}

	pc := p.FetchPC
	paddr, fault := cpu.translate(true, pc, mmu.AccessFetch)

	u := Uop{Valid: true, PC: pc}
	if fault != mmu.NoFault {
		u.Trap = faultTrap(fault, pc, StageFetch1)
		u.MemAddr = 0
	} else {
		u.MemAddr = PAddr(paddr)
	}

	taken, target := cpu.BPU.Predict(pc, false)
	u.PredictedTaken = taken
	u.PredictedTarget = target
	if taken {
		u.PredictedNextPC = target
	} else {
		u.PredictedNextPC = pc + 4 // corrected to +2 in Fetch2 if the instruction turns out compressed
	}

	p.Latches.F1F2.Put(u)
	p.FetchPC = u.PredictedNextPC
}
