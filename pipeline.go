package rvsim

// Pipeline is all in-flight microarchitectural state: the reorder
// buffer, the two scoreboards (integer and FP), the store buffer, the
// inter-stage latches, and the frontend's speculative fetch PC and
// stall counters. It never reaches into Cpu directly — every stage
// function receives both explicitly, per spec.md §9's design note.
type Pipeline struct {
	Rob      *Rob
	IntSB    *Scoreboard
	FPSB     *Scoreboard
	StoreBuf *StoreBuffer
	Latches  Latches

	FetchPC uint64

	Fetch1Stall int
	Fetch2Stall int

	// Retired/Flushes/Branch* are plain running counters Commit bumps
	// inline; Stats.Observe diffs them into Prometheus counters each
	// cycle so stage_commit.go itself never imports prometheus.
	Retired       uint64
	Flushes       uint64
	BranchChecked uint64
	BranchCorrect uint64
}

// NewPipeline constructs an empty pipeline with the given ROB and
// store-buffer capacities, fetching from resetPC.
func NewPipeline(robSize, storeBufSize int, resetPC uint64) *Pipeline {
	return &Pipeline{
		Rob:      NewRob(robSize),
		IntSB:    NewScoreboard(),
		FPSB:     NewScoreboard(),
		StoreBuf: NewStoreBuffer(storeBufSize),
		FetchPC:  resetPC,
	}
}

// scoreboardFor returns the scoreboard for a register class.
func (p *Pipeline) scoreboardFor(class RegClass) *Scoreboard {
	if class == RegClassFP {
		return p.FPSB
	}
	return p.IntSB
}

// flush discards every in-flight micro-op (every ROB entry still
// present, the store buffer, every latch, both scoreboards) and
// redirects fetch to pc, per spec.md §4.7: "perform flush and
// redirect via xtvec" (traps), "flush younger ROB slots and the front
// end, retarget PC" (mispredict), or a retired xRET's new
// target. Whatever remains in the ROB at the time of the call is, by
// construction, younger than whatever Commit just retired, so a
// full-buffer flush and a "flush only the speculative tail" flush are
// the same operation.
func (p *Pipeline) flush(pc uint64) {
	p.Latches.ClearAll()
	p.Rob.FlushAll()
	p.StoreBuf.DiscardAll()
	p.IntSB.Reset()
	p.FPSB.Reset()
	p.FetchPC = pc
	p.Fetch1Stall = 0
	p.Fetch2Stall = 0
}
