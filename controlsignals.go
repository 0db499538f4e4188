package rvsim

// AluOp identifies the integer ALU operation selected by decode.
type AluOp int

const (
	AluNone AluOp = iota
	AluAdd
	AluSub
	AluAnd
	AluOr
	AluXor
	AluSll
	AluSrl
	AluSra
	AluSlt
	AluSltu
	AluLui
	AluAuipc
	AluMul
	AluMulh
	AluMulhsu
	AluMulhu
	AluDiv
	AluDivu
	AluRem
	AluRemu
)

// FpuOp identifies the floating-point operation selected by decode.
type FpuOp int

const (
	FpuNone FpuOp = iota
	FpuAdd
	FpuSub
	FpuMul
	FpuDiv
	FpuSqrt
	FpuSgnj
	FpuSgnjn
	FpuSgnjx
	FpuMin
	FpuMax
	FpuEq
	FpuLt
	FpuLe
	FpuClass
	FpuCvtToInt
	FpuCvtFromInt
	FpuCvtFmt  // single<->double
	FpuMvToInt // FMV.X.W / FMV.X.D
	FpuMvFromInt
	FpuMadd
	FpuMsub
	FpuNmadd
	FpuNmsub
)

// AtomicOp identifies an A-extension operation.
type AtomicOp int

const (
	AtomicNone AtomicOp = iota
	AtomicLR
	AtomicSC
	AtomicSwap
	AtomicAdd
	AtomicAnd
	AtomicOr
	AtomicXor
	AtomicMax
	AtomicMaxu
	AtomicMin
	AtomicMinu
)

// CsrOp identifies the atomic read-modify-write kind for a CSR
// instruction, per spec.md §4.3.
type CsrOp int

const (
	CsrOpNone CsrOp = iota
	CsrWrite
	CsrSet
	CsrClear
	CsrWriteImm
	CsrSetImm
	CsrClearImm
)

// RegClass marks whether an operand/destination register index
// refers to the integer or floating-point file.
type RegClass int

const (
	RegClassNone RegClass = iota
	RegClassInt
	RegClassFP
)

// ControlSignals is the pure-function output of decode, per spec.md
// §4.1: a uniform micro-op control record independent of the original
// instruction encoding (32-bit or RVC-expanded).
type ControlSignals struct {
	Alu  AluOp
	IsW  bool // true for the *W (32-bit, sign-extending) RV64 op forms
	Fpu      FpuOp
	FpDouble bool // operand format is binary64, not binary32
	Atom     AtomicOp
	Csr      CsrOp

	Src1, Src2, Src3     int
	Src1Class, Src2Class, Src3Class RegClass

	Dest      int
	DestClass RegClass

	Imm int64

	MemRead, MemWrite bool
	MemWidth          Width
	MemSigned         bool

	IsBranch bool
	IsJump   bool
	IsCall   bool // jump that pushes a return address (JAL x1/x5, JALR x1/x5)
	IsReturn bool // JALR with rd=x0, rs1 in {x1,x5} — return-address-stack pop
	BranchFn BranchCond

	CsrAddr uint16

	Ecall     bool
	Ebreak    bool
	Mret      bool
	Sret      bool
	SfenceVMA bool
	WFI       bool

	RM uint8 // FP rounding mode field

	Illegal bool
}

// BranchCond identifies a conditional-branch comparison.
type BranchCond int

const (
	BranchNone BranchCond = iota
	BranchEq
	BranchNe
	BranchLt
	BranchGe
	BranchLtu
	BranchGeu
)
