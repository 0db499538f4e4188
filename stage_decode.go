package rvsim

// stageDecode converts the raw instruction word into a control-signal
// record, per spec.md §4.1. Illegal encodings attach
// IllegalInstruction without stalling — the micro-op continues down
// the pipeline so it retires (as a trap) in order.
func stageDecode(cpu *Cpu, p *Pipeline) {
	if !p.Latches.DR.Empty() {
		return
	}
	u, ok := p.Latches.F2D.Peek()
	if !ok {
		return
	}
	p.Latches.F2D.Take()

	if !u.Trap.Valid {
		var cs ControlSignals
		if u.InstSize == 2 {
			cs = decodeRVC(uint16(u.Raw))
		} else {
			cs = decode32(u.Raw)
		}
		u.Signals = cs
		if cs.Illegal {
			u.Trap = exceptionTrap(CauseIllegalInstruction, uint64(u.Raw), StageDecode)
		}
	}

	p.Latches.DR.Put(u)
}
