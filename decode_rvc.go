package rvsim

// decodeRVC expands a 16-bit compressed instruction into the same
// ControlSignals record the 32-bit decoder produces, per spec.md
// §4.1: "all downstream stages operate only on the expanded form."
// This table is mechanical per the published RVC quadrant layout;
// spec.md places the RVC expansion tables out of core scope as
// mechanical, not absent (SPEC_FULL.md §4.9) — decode cannot function
// without it since RV64GC always includes the C extension.
func decodeRVC(inst uint16) ControlSignals {
	cs := ControlSignals{}
	quadrant := inst & 0x3
	funct3 := (inst >> 13) & 0x7

	rcRd := func(v uint16) int { return int(v&0x7) + 8 }  // 3-bit compressed reg -> x8-x15
	fullRd := func() int { return int((inst >> 7) & 0x1F) }
	fullRs2 := func() int { return int((inst >> 2) & 0x1F) }

	switch quadrant {
	case 0x0:
		switch funct3 {
		case 0x0: // C.ADDI4SPN
			imm := (bits32(inst, 10, 7) << 6) | (bits32(inst, 12, 11) << 4) | (bits32(inst, 5, 5) << 3) | (bits32(inst, 6, 6) << 2)
			if imm == 0 {
				cs.Illegal = true
				return cs
			}
			cs.Alu, cs.Src1, cs.Src1Class = AluAdd, 2, RegClassInt
			cs.Dest, cs.DestClass = rcRd(inst>>2), RegClassInt
			cs.Imm = int64(imm)
		case 0x1: // C.FLD
			cs.MemRead, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Dest, cs.DestClass = rcRd(inst>>2), RegClassFP
			cs.Imm = int64(bits32(inst, 6, 5)<<6 | bits32(inst, 12, 10)<<3)
		case 0x2: // C.LW
			cs.MemRead, cs.MemWidth, cs.MemSigned = true, Word, true
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Dest, cs.DestClass = rcRd(inst>>2), RegClassInt
			cs.Imm = int64(bits32(inst, 5, 5)<<6 | bits32(inst, 12, 10)<<3 | bits32(inst, 6, 6)<<2)
		case 0x3: // C.LD
			cs.MemRead, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Dest, cs.DestClass = rcRd(inst>>2), RegClassInt
			cs.Imm = int64(bits32(inst, 6, 5)<<6 | bits32(inst, 12, 10)<<3)
		case 0x5: // C.FSD
			cs.MemWrite, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Src2, cs.Src2Class = rcRd(inst>>2), RegClassFP
			cs.Imm = int64(bits32(inst, 6, 5)<<6 | bits32(inst, 12, 10)<<3)
		case 0x6: // C.SW
			cs.MemWrite, cs.MemWidth = true, Word
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Src2, cs.Src2Class = rcRd(inst>>2), RegClassInt
			cs.Imm = int64(bits32(inst, 5, 5)<<6 | bits32(inst, 12, 10)<<3 | bits32(inst, 6, 6)<<2)
		case 0x7: // C.SD
			cs.MemWrite, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Src2, cs.Src2Class = rcRd(inst>>2), RegClassInt
			cs.Imm = int64(bits32(inst, 6, 5)<<6 | bits32(inst, 12, 10)<<3)
		default:
			cs.Illegal = true
		}

	case 0x1:
		switch funct3 {
		case 0x0: // C.ADDI / C.NOP
			r := fullRd()
			cs.Alu, cs.Dest, cs.DestClass = AluAdd, r, RegClassInt
			cs.Src1, cs.Src1Class = r, RegClassInt
			cs.Imm = signExt16(bits32(inst, 12, 12)<<5|bits32(inst, 6, 2), 5)
		case 0x1: // C.ADDIW
			r := fullRd()
			if r == 0 {
				cs.Illegal = true
				break
			}
			cs.Alu, cs.IsW, cs.Dest, cs.DestClass = AluAdd, true, r, RegClassInt
			cs.Src1, cs.Src1Class = r, RegClassInt
			cs.Imm = signExt16(bits32(inst, 12, 12)<<5|bits32(inst, 6, 2), 5)
		case 0x2: // C.LI
			cs.Alu, cs.Dest, cs.DestClass = AluAdd, fullRd(), RegClassInt
			cs.Src1, cs.Src1Class = 0, RegClassInt
			cs.Imm = signExt16(bits32(inst, 12, 12)<<5|bits32(inst, 6, 2), 5)
		case 0x3:
			r := fullRd()
			if r == 2 { // C.ADDI16SP
				imm := bits32(inst, 12, 12)<<9 | bits32(inst, 4, 3)<<7 | bits32(inst, 5, 5)<<6 | bits32(inst, 2, 2)<<5 | bits32(inst, 6, 6)<<4
				if imm == 0 {
					cs.Illegal = true
					break
				}
				cs.Alu, cs.Dest, cs.DestClass = AluAdd, 2, RegClassInt
				cs.Src1, cs.Src1Class = 2, RegClassInt
				cs.Imm = signExt16(imm, 9)
			} else { // C.LUI
				imm := bits32(inst, 12, 12)<<17 | bits32(inst, 6, 2)<<12
				if imm == 0 || r == 0 {
					cs.Illegal = true
					break
				}
				cs.Alu, cs.Dest, cs.DestClass = AluLui, r, RegClassInt
				cs.Imm = signExt16(imm, 17)
			}
		case 0x4:
			funct2 := (inst >> 10) & 0x3
			rdp := rcRd(inst >> 7)
			switch funct2 {
			case 0x0: // C.SRLI
				cs.Alu, cs.Dest, cs.DestClass = AluSrl, rdp, RegClassInt
				cs.Src1, cs.Src1Class = rdp, RegClassInt
				cs.Imm = int64(bits32(inst, 12, 12)<<5 | bits32(inst, 6, 2))
			case 0x1: // C.SRAI
				cs.Alu, cs.Dest, cs.DestClass = AluSra, rdp, RegClassInt
				cs.Src1, cs.Src1Class = rdp, RegClassInt
				cs.Imm = int64(bits32(inst, 12, 12)<<5 | bits32(inst, 6, 2))
			case 0x2: // C.ANDI
				cs.Alu, cs.Dest, cs.DestClass = AluAnd, rdp, RegClassInt
				cs.Src1, cs.Src1Class = rdp, RegClassInt
				cs.Imm = signExt16(bits32(inst, 12, 12)<<5|bits32(inst, 6, 2), 5)
			case 0x3:
				rs2p := rcRd(inst >> 2)
				isW := bits32(inst, 12, 12) == 1
				sel := (inst >> 5) & 0x3
				if isW {
					switch sel {
					case 0x0:
						cs.Alu = AluSub
					case 0x1:
						cs.Alu = AluAdd
					default:
						cs.Illegal = true
					}
					cs.IsW = true
				} else {
					switch sel {
					case 0x0:
						cs.Alu = AluSub
					case 0x1:
						cs.Alu = AluXor
					case 0x2:
						cs.Alu = AluOr
					case 0x3:
						cs.Alu = AluAnd
					}
				}
				cs.Dest, cs.DestClass = rdp, RegClassInt
				cs.Src1, cs.Src1Class = rdp, RegClassInt
				cs.Src2, cs.Src2Class = rs2p, RegClassInt
			}
		case 0x5: // C.J
			cs.IsJump = true
			cs.Dest, cs.DestClass = 0, RegClassInt
			cs.Imm = cjImm(inst)
		case 0x6: // C.BEQZ
			cs.IsBranch, cs.BranchFn = true, BranchEq
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Src2, cs.Src2Class = 0, RegClassInt
			cs.Imm = cbImm(inst)
		case 0x7: // C.BNEZ
			cs.IsBranch, cs.BranchFn = true, BranchNe
			cs.Src1, cs.Src1Class = rcRd(inst>>7), RegClassInt
			cs.Src2, cs.Src2Class = 0, RegClassInt
			cs.Imm = cbImm(inst)
		}

	case 0x2:
		switch funct3 {
		case 0x0: // C.SLLI
			r := fullRd()
			cs.Alu, cs.Dest, cs.DestClass = AluSll, r, RegClassInt
			cs.Src1, cs.Src1Class = r, RegClassInt
			cs.Imm = int64(bits32(inst, 12, 12)<<5 | bits32(inst, 6, 2))
		case 0x1: // C.FLDSP
			cs.MemRead, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Dest, cs.DestClass = fullRd(), RegClassFP
			cs.Imm = int64(bits32(inst, 4, 2)<<6 | bits32(inst, 12, 12)<<5 | bits32(inst, 6, 5)<<3)
		case 0x2: // C.LWSP
			r := fullRd()
			if r == 0 {
				cs.Illegal = true
				break
			}
			cs.MemRead, cs.MemWidth, cs.MemSigned = true, Word, true
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Dest, cs.DestClass = r, RegClassInt
			cs.Imm = int64(bits32(inst, 3, 2)<<6 | bits32(inst, 12, 12)<<5 | bits32(inst, 6, 4)<<2)
		case 0x3: // C.LDSP
			r := fullRd()
			if r == 0 {
				cs.Illegal = true
				break
			}
			cs.MemRead, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Dest, cs.DestClass = r, RegClassInt
			cs.Imm = int64(bits32(inst, 4, 2)<<6 | bits32(inst, 12, 12)<<5 | bits32(inst, 6, 5)<<3)
		case 0x4:
			b12 := bits32(inst, 12, 12)
			r := fullRd()
			r2 := fullRs2()
			switch {
			case b12 == 0 && r2 == 0: // C.JR
				if r == 0 {
					cs.Illegal = true
					break
				}
				cs.IsJump, cs.IsReturn = true, r == 1 || r == 5
				cs.Dest, cs.DestClass = 0, RegClassInt
				cs.Src1, cs.Src1Class = r, RegClassInt
			case b12 == 0: // C.MV
				cs.Alu, cs.Dest, cs.DestClass = AluOr, r, RegClassInt
				cs.Src1, cs.Src1Class = 0, RegClassInt
				cs.Src2, cs.Src2Class = r2, RegClassInt
			case b12 == 1 && r == 0 && r2 == 0: // C.EBREAK
				cs.Ebreak = true
			case b12 == 1 && r2 == 0: // C.JALR
				cs.IsJump, cs.IsCall = true, true
				cs.Dest, cs.DestClass = 1, RegClassInt
				cs.Src1, cs.Src1Class = r, RegClassInt
			default: // C.ADD
				cs.Alu, cs.Dest, cs.DestClass = AluAdd, r, RegClassInt
				cs.Src1, cs.Src1Class = r, RegClassInt
				cs.Src2, cs.Src2Class = r2, RegClassInt
			}
		case 0x5: // C.FSDSP
			cs.MemWrite, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Src2, cs.Src2Class = fullRs2(), RegClassFP
			cs.Imm = int64(bits32(inst, 9, 7)<<6 | bits32(inst, 12, 10)<<3)
		case 0x6: // C.SWSP
			cs.MemWrite, cs.MemWidth = true, Word
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Src2, cs.Src2Class = fullRs2(), RegClassInt
			cs.Imm = int64(bits32(inst, 8, 7)<<6 | bits32(inst, 12, 9)<<2)
		case 0x7: // C.SDSP
			cs.MemWrite, cs.MemWidth = true, Double
			cs.Src1, cs.Src1Class = 2, RegClassInt
			cs.Src2, cs.Src2Class = fullRs2(), RegClassInt
			cs.Imm = int64(bits32(inst, 9, 7)<<6 | bits32(inst, 12, 10)<<3)
		}

	default: // quadrant 3 is not a valid 16-bit encoding
		cs.Illegal = true
	}

	return cs
}

func bits32(v uint16, hi, lo int) uint32 {
	return uint32((v >> uint(lo)) & ((1 << uint(hi-lo+1)) - 1))
}

func signExt16(v uint32, bit int) int64 {
	shift := 31 - bit
	return int64(int32(v<<uint(shift))) >> uint(shift)
}

func cjImm(inst uint16) int64 {
	v := bits32(inst, 12, 12)<<11 | bits32(inst, 8, 8)<<10 | bits32(inst, 10, 9)<<8 |
		bits32(inst, 6, 6)<<7 | bits32(inst, 7, 7)<<6 | bits32(inst, 2, 2)<<5 |
		bits32(inst, 11, 11)<<4 | bits32(inst, 5, 3)<<1
	return signExt16(v, 11)
}

func cbImm(inst uint16) int64 {
	v := bits32(inst, 12, 12)<<8 | bits32(inst, 6, 5)<<6 | bits32(inst, 2, 2)<<5 |
		bits32(inst, 11, 10)<<3 | bits32(inst, 4, 3)<<1
	return signExt16(v, 8)
}
