package rvsim

// stageIssue re-checks each pending source's producer every cycle and
// forwards the micro-op to Execute once every source is ready, per
// spec.md §4.3's Issue bullet.
func stageIssue(cpu *Cpu, p *Pipeline) {
	if !p.Latches.IssEx.Empty() {
		return
	}
	u, ok := p.Latches.RIss.Peek()
	if !ok {
		return
	}

	if !u.Trap.Valid {
		resolve := func(ready *bool, val *uint64, tag RobTag, reg int, class RegClass) {
			if *ready {
				return
			}
			e := p.Rob.Get(tag)
			if e == nil {
				// The producer has retired: its value is architectural.
				if class == RegClassFP {
					*val = cpu.Regs.ReadFPR64(reg)
				} else {
					*val = cpu.Regs.ReadGPR(reg)
				}
				*ready = true
			} else if e.Completed {
				*val = e.Result
				*ready = true
			}
		}
		resolve(&u.Src1Ready, &u.Src1Val, u.Src1Tag, u.Signals.Src1, u.Signals.Src1Class)
		resolve(&u.Src2Ready, &u.Src2Val, u.Src2Tag, u.Signals.Src2, u.Signals.Src2Class)
		resolve(&u.Src3Ready, &u.Src3Val, u.Src3Tag, u.Signals.Src3, u.Signals.Src3Class)

		if !(u.Src1Ready && u.Src2Ready && u.Src3Ready) {
			return // held at issue
		}
	}

	p.Latches.RIss.Take()
	p.Latches.IssEx.Put(u)
}
