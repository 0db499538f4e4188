package rvsim

// Stage identifies a pipeline stage, used for diagnostics (trap
// origin, trace logging) and as the phase in the reverse-order tick.
type Stage int

const (
	StageFetch1 Stage = iota
	StageFetch2
	StageDecode
	StageRename
	StageIssue
	StageExecute
	StageMemory1
	StageMemory2
	StageWriteback
	StageCommit
)

func (s Stage) String() string {
	switch s {
	case StageFetch1:
		return "Fetch1"
	case StageFetch2:
		return "Fetch2"
	case StageDecode:
		return "Decode"
	case StageRename:
		return "Rename"
	case StageIssue:
		return "Issue"
	case StageExecute:
		return "Execute"
	case StageMemory1:
		return "Memory1"
	case StageMemory2:
		return "Memory2"
	case StageWriteback:
		return "Writeback"
	case StageCommit:
		return "Commit"
	default:
		return "?"
	}
}

// Uop is the evolving micro-op record that flows through every
// pipeline latch, per spec.md §3: "Latches are the only state that
// flows between stages."
type Uop struct {
	Valid bool

	PC       uint64
	Raw      uint32
	InstSize int

	Signals ControlSignals
	Trap    Trap

	// Frontend prediction, attached at Fetch1 / §4.6.
	PredictedTaken  bool
	PredictedTarget uint64
	PredictedNextPC uint64

	Tag RobTag

	// Rename-resolved operands.
	Src1Tag, Src2Tag, Src3Tag     RobTag
	Src1Ready, Src2Ready, Src3Ready bool
	Src1Val, Src2Val, Src3Val     uint64

	// Execute results.
	Result      uint64
	MemAddr     PAddr
	MemValue    uint64
	ActualTaken bool
	ActualTarget uint64
	FPFlags     uint8

	// Memory stage bookkeeping.
	StallCycles int
	ScSucceeded bool
}

// Latch is a single-slot buffer between two adjacent stages: Fetch1→
// Fetch2, Fetch2→Decode, Decode→Rename, Rename→Issue, Issue→Execute,
// Execute→Memory1, Memory1→Memory2, Memory2→Writeback, per spec.md §3.
// A single slot models pipeline width 1; Config.Pipeline.Width > 1
// would widen this to a slice, but the in-order model specified here
// only requires one in flight per stage (see SPEC_FULL.md §9 Open
// Question on O3).
type Latch struct {
	full bool
	uop  Uop
}

func (l *Latch) Empty() bool { return !l.full }
func (l *Latch) Peek() (Uop, bool) {
	if !l.full {
		return Uop{}, false
	}
	return l.uop, true
}
func (l *Latch) Take() (Uop, bool) {
	if !l.full {
		return Uop{}, false
	}
	l.full = false
	return l.uop, true
}
func (l *Latch) Put(u Uop) {
	l.uop = u
	l.full = true
}
func (l *Latch) Clear() { l.full = false }

// Latches bundles every inter-stage buffer, per spec.md §3.
type Latches struct {
	F1F2 Latch
	F2D  Latch
	DR   Latch
	RIss Latch
	IssEx Latch
	ExM1 Latch
	M1M2 Latch
	M2WB Latch
}

// AllEmpty reports whether every inter-stage latch is empty — used to
// recognize an exact instruction boundary for interrupt delivery.
func (l *Latches) AllEmpty() bool {
	return l.F1F2.Empty() && l.F2D.Empty() && l.DR.Empty() && l.RIss.Empty() &&
		l.IssEx.Empty() && l.ExM1.Empty() && l.M1M2.Empty() && l.M2WB.Empty()
}

// ClearAll drops every in-flight latch — the frontend-latch portion of
// a pipeline flush, per spec.md §4.7.
func (l *Latches) ClearAll() {
	l.F1F2.Clear()
	l.F2D.Clear()
	l.DR.Clear()
	l.RIss.Clear()
	l.IssEx.Clear()
	l.ExM1.Clear()
	l.M1M2.Clear()
	l.M2WB.Clear()
}
