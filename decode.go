package rvsim

// Field extraction helpers for the 32-bit RV64GC encoding.
func bits(inst uint32, hi, lo int) uint32 {
	return (inst >> uint(lo)) & ((1 << uint(hi-lo+1)) - 1)
}

func signExt(v uint32, bit int) int64 {
	shift := 31 - bit
	return int64(int32(v<<uint(shift))) >> uint(shift)
}

func opcode(inst uint32) uint32 { return bits(inst, 6, 0) }
func rd(inst uint32) int        { return int(bits(inst, 11, 7)) }
func funct3(inst uint32) uint32 { return bits(inst, 14, 12) }
func rs1(inst uint32) int       { return int(bits(inst, 19, 15)) }
func rs2(inst uint32) int       { return int(bits(inst, 24, 20)) }
func funct7(inst uint32) uint32 { return bits(inst, 31, 25) }
func rs3(inst uint32) int       { return int(bits(inst, 31, 27)) }

func immI(inst uint32) int64 { return signExt(bits(inst, 31, 20), 11) }
func immS(inst uint32) int64 {
	v := bits(inst, 31, 25)<<5 | bits(inst, 11, 7)
	return signExt(v, 11)
}
func immB(inst uint32) int64 {
	v := bits(inst, 31, 31)<<12 | bits(inst, 7, 7)<<11 | bits(inst, 30, 25)<<5 | bits(inst, 11, 8)<<1
	return signExt(v, 12)
}
func immU(inst uint32) int64 { return int64(int32(bits(inst, 31, 12) << 12)) }
func immJ(inst uint32) int64 {
	v := bits(inst, 31, 31)<<20 | bits(inst, 19, 12)<<12 | bits(inst, 20, 20)<<11 | bits(inst, 30, 21)<<1
	return signExt(v, 20)
}

// decode32 is the pure function from a raw 32-bit instruction word to
// a ControlSignals record, per spec.md §4.1. Illegal encodings set
// Illegal; the caller attaches the IllegalInstruction trap without
// stalling the pipeline — the micro-op still flows through to commit
// in order, per §4.1.
func decode32(inst uint32) ControlSignals {
	cs := ControlSignals{RM: uint8(funct3(inst))}
	op := opcode(inst)

	switch op {
	case 0x33, 0x3B: // OP, OP-32
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassInt
		cs.IsW = op == 0x3B
		f3, f7 := funct3(inst), funct7(inst)
		switch {
		case f7 == 0x01:
			cs.Alu = mExtOp(f3, cs.IsW)
			if cs.Alu == AluNone {
				cs.Illegal = true
			}
		case f7 == 0x00 || f7 == 0x20:
			cs.Alu = rOpAlu(f3, f7 == 0x20)
			if cs.Alu == AluNone || (cs.IsW && !wFormValid(cs.Alu)) {
				cs.Illegal = true
			}
		default:
			cs.Illegal = true
		}

	case 0x13, 0x1B: // OP-IMM, OP-IMM-32
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.IsW = op == 0x1B
		switch funct3(inst) {
		case 0x0:
			cs.Alu, cs.Imm = AluAdd, immI(inst)
		case 0x2:
			cs.Alu, cs.Imm = AluSlt, immI(inst)
		case 0x3:
			cs.Alu, cs.Imm = AluSltu, immI(inst)
		case 0x4:
			cs.Alu, cs.Imm = AluXor, immI(inst)
		case 0x6:
			cs.Alu, cs.Imm = AluOr, immI(inst)
		case 0x7:
			cs.Alu, cs.Imm = AluAnd, immI(inst)
		case 0x1:
			cs.Alu = AluSll
			cs.Imm = int64(shamt(inst, cs.IsW))
		case 0x5:
			if bits(inst, 30, 30) == 1 {
				cs.Alu = AluSra
			} else {
				cs.Alu = AluSrl
			}
			cs.Imm = int64(shamt(inst, cs.IsW))
		}
		if cs.IsW && (cs.Alu == AluSlt || cs.Alu == AluSltu || cs.Alu == AluXor || cs.Alu == AluOr || cs.Alu == AluAnd) {
			cs.Illegal = true // only ADDIW/SLLIW/SRLIW/SRAIW exist
		}

	case 0x37: // LUI
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Alu, cs.Imm = AluLui, immU(inst)
	case 0x17: // AUIPC
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Alu, cs.Imm = AluAuipc, immU(inst)

	case 0x03: // LOAD
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Imm = immI(inst)
		cs.MemRead = true
		switch funct3(inst) {
		case 0x0:
			cs.MemWidth, cs.MemSigned = Byte, true
		case 0x1:
			cs.MemWidth, cs.MemSigned = Half, true
		case 0x2:
			cs.MemWidth, cs.MemSigned = Word, true
		case 0x3:
			cs.MemWidth, cs.MemSigned = Double, true
		case 0x4:
			cs.MemWidth, cs.MemSigned = Byte, false
		case 0x5:
			cs.MemWidth, cs.MemSigned = Half, false
		case 0x6:
			cs.MemWidth, cs.MemSigned = Word, false
		default:
			cs.Illegal = true
		}

	case 0x23: // STORE
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassInt
		cs.Imm = immS(inst)
		cs.MemWrite = true
		switch funct3(inst) {
		case 0x0:
			cs.MemWidth = Byte
		case 0x1:
			cs.MemWidth = Half
		case 0x2:
			cs.MemWidth = Word
		case 0x3:
			cs.MemWidth = Double
		default:
			cs.Illegal = true
		}

	case 0x63: // BRANCH
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassInt
		cs.Imm = immB(inst)
		cs.IsBranch = true
		switch funct3(inst) {
		case 0x0:
			cs.BranchFn = BranchEq
		case 0x1:
			cs.BranchFn = BranchNe
		case 0x4:
			cs.BranchFn = BranchLt
		case 0x5:
			cs.BranchFn = BranchGe
		case 0x6:
			cs.BranchFn = BranchLtu
		case 0x7:
			cs.BranchFn = BranchGeu
		default:
			cs.Illegal = true
		}

	case 0x6F: // JAL
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Imm = immJ(inst)
		cs.IsJump = true
		cs.IsCall = cs.Dest == 1 || cs.Dest == 5

	case 0x67: // JALR
		if funct3(inst) != 0 {
			cs.Illegal = true
			break
		}
		cs.Dest, cs.DestClass = rd(inst), RegClassInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Imm = immI(inst)
		cs.IsJump = true
		cs.IsCall = cs.Dest == 1 || cs.Dest == 5
		cs.IsReturn = cs.Dest == 0 && (cs.Src1 == 1 || cs.Src1 == 5)

	case 0x0F: // MISC-MEM: FENCE / FENCE.I are no-ops in this single-hart,
		// in-order, totally-ordered memory model.

	case 0x73: // SYSTEM
		decodeSystem(inst, &cs)

	case 0x2F: // AMO
		decodeAmo(inst, &cs)

	case 0x07: // LOAD-FP
		cs.Dest, cs.DestClass = rd(inst), RegClassFP
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Imm = immI(inst)
		cs.MemRead = true
		switch funct3(inst) {
		case 0x2:
			cs.MemWidth = Word
		case 0x3:
			cs.MemWidth = Double
		default:
			cs.Illegal = true
		}

	case 0x27: // STORE-FP
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassFP
		cs.Imm = immS(inst)
		cs.MemWrite = true
		switch funct3(inst) {
		case 0x2:
			cs.MemWidth = Word
		case 0x3:
			cs.MemWidth = Double
		default:
			cs.Illegal = true
		}

	case 0x53: // OP-FP
		decodeOpFp(inst, &cs)

	case 0x43, 0x47, 0x4B, 0x4F: // FMADD, FMSUB, FNMSUB, FNMADD
		cs.Dest, cs.DestClass = rd(inst), RegClassFP
		cs.Src1, cs.Src1Class = rs1(inst), RegClassFP
		cs.Src2, cs.Src2Class = rs2(inst), RegClassFP
		cs.Src3, cs.Src3Class = rs3(inst), RegClassFP
		cs.FpDouble = funct7(inst)&1 != 0
		switch op {
		case 0x43:
			cs.Fpu = FpuMadd
		case 0x47:
			cs.Fpu = FpuMsub
		case 0x4B:
			cs.Fpu = FpuNmsub
		case 0x4F:
			cs.Fpu = FpuNmadd
		}

	default:
		cs.Illegal = true
	}

	return cs
}

func shamt(inst uint32, w32 bool) uint32 {
	if w32 {
		return bits(inst, 24, 20)
	}
	return bits(inst, 25, 20)
}

func wFormValid(op AluOp) bool {
	switch op {
	case AluAdd, AluSub, AluSll, AluSrl, AluSra,
		AluMul, AluDiv, AluDivu, AluRem, AluRemu:
		return true
	default:
		return false
	}
}

func rOpAlu(f3 uint32, alt bool) AluOp {
	switch f3 {
	case 0x0:
		if alt {
			return AluSub
		}
		return AluAdd
	case 0x1:
		return AluSll
	case 0x2:
		return AluSlt
	case 0x3:
		return AluSltu
	case 0x4:
		return AluXor
	case 0x5:
		if alt {
			return AluSra
		}
		return AluSrl
	case 0x6:
		return AluOr
	case 0x7:
		return AluAnd
	default:
		return AluNone
	}
}

func mExtOp(f3 uint32, w32 bool) AluOp {
	if w32 && f3 != 0x0 && f3 < 0x4 {
		return AluNone // MULH/MULHSU/MULHU have no W-form
	}
	switch f3 {
	case 0x0:
		return AluMul
	case 0x1:
		return AluMulh
	case 0x2:
		return AluMulhsu
	case 0x3:
		return AluMulhu
	case 0x4:
		return AluDiv
	case 0x5:
		return AluDivu
	case 0x6:
		return AluRem
	case 0x7:
		return AluRemu
	default:
		return AluNone
	}
}

func decodeSystem(inst uint32, cs *ControlSignals) {
	f3 := funct3(inst)
	if f3 == 0 {
		imm := bits(inst, 31, 20)
		switch {
		case imm == 0x000 && rd(inst) == 0 && rs1(inst) == 0:
			cs.Ecall = true
		case imm == 0x001 && rd(inst) == 0 && rs1(inst) == 0:
			cs.Ebreak = true
		case imm == 0x302:
			cs.Mret = true
		case imm == 0x102:
			cs.Sret = true
		case imm == 0x105:
			cs.WFI = true
		case bits(inst, 31, 25) == 0x09:
			cs.SfenceVMA = true
			cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
			cs.Src2, cs.Src2Class = rs2(inst), RegClassInt
		default:
			cs.Illegal = true
		}
		return
	}

	cs.CsrAddr = uint16(bits(inst, 31, 20))
	cs.Dest, cs.DestClass = rd(inst), RegClassInt
	switch f3 {
	case 0x1:
		cs.Csr, cs.Src1, cs.Src1Class = CsrWrite, rs1(inst), RegClassInt
	case 0x2:
		cs.Csr, cs.Src1, cs.Src1Class = CsrSet, rs1(inst), RegClassInt
	case 0x3:
		cs.Csr, cs.Src1, cs.Src1Class = CsrClear, rs1(inst), RegClassInt
	case 0x5:
		cs.Csr, cs.Imm = CsrWriteImm, int64(rs1(inst))
	case 0x6:
		cs.Csr, cs.Imm = CsrSetImm, int64(rs1(inst))
	case 0x7:
		cs.Csr, cs.Imm = CsrClearImm, int64(rs1(inst))
	default:
		cs.Illegal = true
	}
}

func decodeAmo(inst uint32, cs *ControlSignals) {
	f3 := funct3(inst)
	if f3 != 0x2 && f3 != 0x3 {
		cs.Illegal = true
		return
	}
	if f3 == 0x2 {
		cs.MemWidth = Word
	} else {
		cs.MemWidth = Double
	}
	cs.Dest, cs.DestClass = rd(inst), RegClassInt
	cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
	cs.Src2, cs.Src2Class = rs2(inst), RegClassInt
	switch bits(inst, 31, 27) {
	case 0x02:
		cs.Atom = AtomicLR
	case 0x03:
		cs.Atom = AtomicSC
	case 0x01:
		cs.Atom = AtomicSwap
	case 0x00:
		cs.Atom = AtomicAdd
	case 0x0C:
		cs.Atom = AtomicAnd
	case 0x08:
		cs.Atom = AtomicOr
	case 0x04:
		cs.Atom = AtomicXor
	case 0x14:
		cs.Atom = AtomicMax
	case 0x1C:
		cs.Atom = AtomicMaxu
	case 0x10:
		cs.Atom = AtomicMin
	case 0x18:
		cs.Atom = AtomicMinu
	default:
		cs.Illegal = true
	}
}

func decodeOpFp(inst uint32, cs *ControlSignals) {
	f7 := funct7(inst)
	cs.Dest, cs.DestClass = rd(inst), RegClassFP
	cs.Src1, cs.Src1Class = rs1(inst), RegClassFP
	cs.Src2, cs.Src2Class = rs2(inst), RegClassFP
	cs.FpDouble = f7&1 != 0
	base := f7 &^ 1

	switch base {
	case 0x00:
		cs.Fpu = FpuAdd
	case 0x04:
		cs.Fpu = FpuSub
	case 0x08:
		cs.Fpu = FpuMul
	case 0x0C:
		cs.Fpu = FpuDiv
	case 0x2C:
		cs.Fpu = FpuSqrt
		cs.Src2, cs.Src2Class = 0, RegClassNone
	case 0x10:
		switch funct3(inst) {
		case 0:
			cs.Fpu = FpuSgnj
		case 1:
			cs.Fpu = FpuSgnjn
		case 2:
			cs.Fpu = FpuSgnjx
		default:
			cs.Illegal = true
		}
	case 0x14:
		switch funct3(inst) {
		case 0:
			cs.Fpu = FpuMin
		case 1:
			cs.Fpu = FpuMax
		default:
			cs.Illegal = true
		}
	case 0x50:
		cs.DestClass = RegClassInt
		switch funct3(inst) {
		case 0:
			cs.Fpu = FpuLe
		case 1:
			cs.Fpu = FpuLt
		case 2:
			cs.Fpu = FpuEq
		default:
			cs.Illegal = true
		}
	case 0x60: // FCVT.{W,WU,L,LU}.{S,D} (float -> int); rs2 selects int kind
		cs.Fpu = FpuCvtToInt
		cs.DestClass = RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassNone
	case 0x68: // FCVT.{S,D}.{W,WU,L,LU} (int -> float)
		cs.Fpu = FpuCvtFromInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
		cs.Src2, cs.Src2Class = rs2(inst), RegClassNone
	case 0x20: // FCVT.S.D / FCVT.D.S
		cs.Fpu = FpuCvtFmt
		cs.Src2, cs.Src2Class = 0, RegClassNone
	case 0x70:
		switch funct3(inst) {
		case 0:
			cs.Fpu, cs.DestClass = FpuMvToInt, RegClassInt
		case 1:
			cs.Fpu, cs.DestClass = FpuClass, RegClassInt
		default:
			cs.Illegal = true
		}
	case 0x78:
		cs.Fpu = FpuMvFromInt
		cs.Src1, cs.Src1Class = rs1(inst), RegClassInt
	default:
		cs.Illegal = true
	}
}
