package rvsim

// stageWriteback marks the micro-op's ROB entry complete with its
// result, making it visible to Issue's next-cycle readiness check and
// to Commit. No architectural state changes here — per spec.md §4.3,
// writeback only resolves the scoreboard-visible producer; commit is
// what actually mutates registers/memory/CSRs.
func stageWriteback(cpu *Cpu, p *Pipeline) {
	u, ok := p.Latches.M2WB.Peek()
	if !ok {
		return
	}
	p.Latches.M2WB.Take()

	if e := p.Rob.Get(u.Tag); e != nil {
		e.Result = u.Result
		e.FPFlags = u.FPFlags
		e.ActualTaken = u.ActualTaken
		e.ActualTarget = u.ActualTarget
		e.BranchResolved = u.Signals.IsBranch || u.Signals.IsJump
		if u.Trap.Valid {
			e.Trap = u.Trap
		}
		e.Completed = true
	}
}
