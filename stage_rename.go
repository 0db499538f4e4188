package rvsim

// stageRename allocates a ROB slot and resolves each source operand
// to either a ready architectural value or a producer tag to wait on,
// per spec.md §4.2 steps 1-6.
func stageRename(cpu *Cpu, p *Pipeline) {
	if !p.Latches.RIss.Empty() {
		return
	}
	u, ok := p.Latches.DR.Peek()
	if !ok {
		return
	}

	needsStoreSlot := u.Signals.MemWrite && !u.Trap.Valid
	if p.Rob.Full() || (needsStoreSlot && p.StoreBuf.Full()) {
		return // stall: leave the record in DR for next cycle
	}
	p.Latches.DR.Take()

	if u.Trap.Valid {
		tag := p.Rob.Allocate(RobEntry{
			PC: u.PC, Raw: u.Raw, Signals: u.Signals, InstSize: u.InstSize,
			Trap: u.Trap, Completed: true,
			PredictedTaken: u.PredictedTaken, PredictedTarget: u.PredictedTarget,
		})
		u.Tag = tag
		p.Latches.RIss.Put(u)
		return
	}

	// Step 2: snapshot source producers before this instruction's own
	// destination touches the scoreboard.
	u.Src1Tag, u.Src1Ready, u.Src1Val = p.resolveSource(cpu, u.Signals.Src1, u.Signals.Src1Class)
	u.Src2Tag, u.Src2Ready, u.Src2Val = p.resolveSource(cpu, u.Signals.Src2, u.Signals.Src2Class)
	u.Src3Tag, u.Src3Ready, u.Src3Val = p.resolveSource(cpu, u.Signals.Src3, u.Signals.Src3Class)

	destFile := RegFileNone
	switch u.Signals.DestClass {
	case RegClassInt:
		destFile = RegFileInt
	case RegClassFP:
		destFile = RegFileFP
	}

	tag := p.Rob.Allocate(RobEntry{
		PC: u.PC, Raw: u.Raw, Signals: u.Signals, InstSize: u.InstSize,
		DestReg: u.Signals.Dest, DestFile: destFile,
		PredictedTaken: u.PredictedTaken, PredictedTarget: u.PredictedTarget,
	})
	u.Tag = tag

	if needsStoreSlot {
		p.StoreBuf.Allocate(tag)
	}

	// Step 5: update the scoreboard for the destination, strictly
	// after the source snapshot above.
	if u.Signals.DestClass != RegClassNone && u.Signals.Dest != 0 {
		p.scoreboardFor(u.Signals.DestClass).SetProducer(u.Signals.Dest, tag)
	}

	p.Latches.RIss.Put(u)
}

// resolveSource looks up reg's producer in the appropriate scoreboard.
// If none is in flight, the value is read immediately from the
// architectural register file (stable until a younger instruction
// writes it, which by program order happens no earlier than this
// cycle). If a producer is in flight, only its tag is recorded —
// readiness is re-checked every cycle at Issue.
func (p *Pipeline) resolveSource(cpu *Cpu, reg int, class RegClass) (tag RobTag, ready bool, val uint64) {
	if class == RegClassNone {
		return 0, true, 0
	}
	if class == RegClassInt && reg == 0 {
		return 0, true, 0
	}
	sb := p.scoreboardFor(class)
	if t, has := sb.Lookup(reg); has {
		return t, false, 0
	}
	if class == RegClassFP {
		return 0, true, cpu.Regs.ReadFPR64(reg)
	}
	return 0, true, cpu.Regs.ReadGPR(reg)
}
