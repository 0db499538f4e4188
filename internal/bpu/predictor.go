package bpu

// Direction is a pluggable taken/not-taken predictor: Static or
// GShare, selected by config, per spec.md §6's `bpu.predictor` knob.
type Direction interface {
	Predict(pc uint64) bool
	Update(pc uint64, taken bool)
}

// Predictor is the full BPU: BTB + RAS + a direction predictor,
// wired together per spec.md §4.6's three-step algorithm.
type Predictor struct {
	BTB *BTB
	RAS *RAS
	Dir Direction
}

func New(btbSize, rasSize int, dir Direction) *Predictor {
	return &Predictor{BTB: NewBTB(btbSize), RAS: NewRAS(rasSize), Dir: dir}
}

// Predict returns (predictedTaken, predictedTarget) for a fetch at
// pc, given whether the (peek-decoded) instruction is a return.
func (p *Predictor) Predict(pc uint64, isReturn bool) (taken bool, target uint64) {
	if isReturn {
		if t, ok := p.RAS.Top(); ok {
			return true, t
		}
		return false, 0
	}

	if t, hit := p.BTB.Lookup(pc); hit {
		return p.Dir.Predict(pc), t
	}
	return false, 0
}

// UpdateBranch is update_branch: adjusts the direction predictor and
// refreshes the BTB when the branch was actually taken.
func (p *Predictor) UpdateBranch(pc uint64, taken bool, actualTarget uint64) {
	p.Dir.Update(pc, taken)
	if taken {
		p.BTB.Update(pc, actualTarget)
	}
}

// OnCall is on_call: pushes the return address and updates the BTB
// with the call target.
func (p *Predictor) OnCall(pc, retAddr, target uint64) {
	p.RAS.Push(retAddr)
	p.BTB.Update(pc, target)
}

// OnReturn is on_return: pops the RAS.
func (p *Predictor) OnReturn() (uint64, bool) {
	return p.RAS.Pop()
}
