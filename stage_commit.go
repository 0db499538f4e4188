package rvsim

// stageCommit retires the oldest completed micro-op in program order:
// the only stage that mutates architectural register/CSR/memory state,
// per spec.md §4.3's Commit bullet. It also delivers pending traps
// (synchronous, carried on the micro-op, or asynchronous interrupts
// checked here) and resolves branch mispredictions.
func stageCommit(cpu *Cpu, p *Pipeline) {
	e := p.Rob.Head()
	if e == nil {
		deliverInterrupt(cpu, p)
		return
	}
	if !e.Completed {
		return
	}

	cs := &e.Signals
	tag := p.Rob.HeadTag()

	if e.Trap.Valid {
		target := EnterTrap(cpu.CSR, &cpu.Priv, e.PC, e.Trap)
		p.Rob.Retire()
		p.Retired++
		p.Flushes++
		p.flush(target)
		return
	}

	// flush/flushTarget let every non-trapping arm below, including the
	// privileged xRET and mispredict cases that redirect the front end,
	// fall through to the shared instret/retire tail instead of
	// returning early — per spec.md §8, instret counts every
	// non-trapping retirement, not just the common-case ones.
	var flush bool
	var flushTarget uint64

	switch {
	case cs.Mret:
		flushTarget = MRET(cpu.CSR, &cpu.Priv)
		flush = true

	case cs.Sret:
		flushTarget = SRET(cpu.CSR, &cpu.Priv)
		flush = true

	case cs.WFI:
		cpu.Halted = true

	case cs.SfenceVMA:
		cpu.IMMU.FlushAll()
		cpu.DMMU.FlushAll()

	case cs.Csr != CsrOpNone:
		srcIsZero := cs.Src1Class == RegClassNone && cs.Imm == 0
		if cs.Src1Class == RegClassInt {
			srcIsZero = cs.Src1 == 0
		}
		if csrWritesCsr(cs.Csr, srcIsZero) {
			cpu.CSR.Write(cs.CsrAddr, e.MemValue)
			if cs.CsrAddr == csrSatp {
				cpu.CSR.SetSatp(e.MemValue)
				cpu.IMMU.FlushAll()
				cpu.DMMU.FlushAll()
			}
		}
		commitDest(cpu, p, cs, e.Result, tag)

	case cs.IsBranch:
		mispredicted := e.PredictedTaken != e.ActualTaken || (e.ActualTaken && e.PredictedTarget != e.ActualTarget)
		p.BranchChecked++
		if !mispredicted {
			p.BranchCorrect++
		}
		cpu.BPU.UpdateBranch(e.PC, e.ActualTaken, e.ActualTarget)
		if mispredicted {
			flushTarget = e.ActualTarget
			flush = true
		}

	case cs.IsJump:
		mispredicted := !e.PredictedTaken || e.PredictedTarget != e.ActualTarget
		p.BranchChecked++
		if !mispredicted {
			p.BranchCorrect++
		}
		if cs.IsCall {
			cpu.BPU.OnCall(e.PC, e.PC+uint64(e.InstSize), e.ActualTarget)
		}
		if cs.IsReturn {
			cpu.BPU.OnReturn()
		}
		commitDest(cpu, p, cs, e.Result, tag)
		if mispredicted {
			flushTarget = e.ActualTarget
			flush = true
		}

	case cs.MemWrite:
		if se, ok := p.StoreBuf.PeekHead(); ok && se.tag == tag {
			p.StoreBuf.DrainHead()
			memWrite(cpu, se.addr, se.width, se.value)
		}

	default:
		commitDest(cpu, p, cs, e.Result, tag)
	}

	if cs.Fpu != FpuNone {
		cpu.CSR.OrFflags(e.FPFlags)
	}
	cpu.CSR.TickInstret()
	p.Rob.Retire()
	p.Retired++

	if flush {
		p.Flushes++
		p.flush(flushTarget)
	}
}

// commitDest writes a micro-op's result to its destination register
// file and clears the scoreboard entry if this instruction is still
// the register's recorded producer.
func commitDest(cpu *Cpu, p *Pipeline, cs *ControlSignals, result uint64, tag RobTag) {
	if cs.DestClass == RegClassNone || (cs.DestClass == RegClassInt && cs.Dest == 0) {
		return
	}
	switch cs.DestClass {
	case RegClassInt:
		cpu.Regs.WriteGPR(cs.Dest, result)
	case RegClassFP:
		cpu.Regs.WriteFPR64(cs.Dest, result)
	}
	p.scoreboardFor(cs.DestClass).ClearIfMatches(cs.Dest, tag)
}

// deliverInterrupt checks for a pending, enabled interrupt and takes
// it when the pipeline is fully drained (an exact instruction
// boundary), per spec.md §4.7's "Interrupt check" note.
func deliverInterrupt(cpu *Cpu, p *Pipeline) {
	if !p.Latches.AllEmpty() {
		return
	}
	t, ok := PendingInterrupt(cpu.CSR, cpu.Priv)
	if !ok {
		return
	}
	target := EnterTrap(cpu.CSR, &cpu.Priv, p.FetchPC, t)
	p.Flushes++
	p.flush(target)
}
