package rvsim

// stageExecute dispatches the ready micro-op to its functional unit,
// per spec.md §4.3. CSR/branch/jump side effects that must stay
// non-speculative (satp writes, privilege transitions) are computed
// here but *applied* at Commit.
func stageExecute(cpu *Cpu, p *Pipeline) {
	if !p.Latches.ExM1.Empty() {
		return
	}
	u, ok := p.Latches.IssEx.Peek()
	if !ok {
		return
	}
	p.Latches.IssEx.Take()

	if u.Trap.Valid {
		p.Latches.ExM1.Put(u)
		return
	}

	cs := &u.Signals

	switch {
	case cs.Ecall:
		u.Trap = exceptionTrap(ecallCause(cpu.Priv), 0, StageExecute)
	case cs.Ebreak:
		u.Trap = exceptionTrap(CauseBreakpoint, u.PC, StageExecute)

	case cs.IsBranch:
		a, b := u.Src1Val, u.Src2Val
		taken := evalBranchCond(cs.BranchFn, a, b)
		target := uint64(int64(u.PC) + cs.Imm)
		u.ActualTaken = taken
		if taken {
			u.ActualTarget = target
		} else {
			u.ActualTarget = u.PC + uint64(u.InstSize)
		}

	case cs.IsJump:
		var target uint64
		if cs.Src1Class == RegClassInt {
			target = (u.Src1Val + uint64(cs.Imm)) &^ 1 // JALR
		} else {
			target = uint64(int64(u.PC) + cs.Imm) // JAL
		}
		u.ActualTaken = true
		u.ActualTarget = target
		u.Result = u.PC + uint64(u.InstSize) // link value for rd

	case cs.Atom != AtomicNone:
		u.MemAddr = PAddr(u.Src1Val)
		u.MemValue = u.Src2Val // operand for the RMW; LR ignores it

	case cs.MemRead || cs.MemWrite:
		u.MemAddr = PAddr(effectiveAddress(u.Src1Val, cs.Imm))
		if cs.MemWrite {
			u.MemValue = u.Src2Val
		}

	case cs.Csr != CsrOpNone:
		old := cpu.CSR.Read(cs.CsrAddr)
		var operand uint64
		if cs.Src1Class == RegClassInt {
			operand = u.Src1Val
		} else {
			operand = uint64(cs.Imm)
		}
		result, newVal := evalCsrRmw(cs.Csr, old, operand)
		u.Result = result
		u.MemValue = newVal // the CSR's new value, applied at Commit

	case cs.Fpu != FpuNone:
		execFpu(cpu, &u)

	case cs.Alu != AluNone:
		a := u.Src1Val
		b := u.Src2Val
		if cs.Src2Class == RegClassNone {
			b = uint64(cs.Imm)
		}
		u.Result = evalAlu(cs.Alu, cs.IsW, a, b, u.PC)
	}

	p.Latches.ExM1.Put(u)
}

func ecallCause(priv Privilege) uint64 {
	switch priv {
	case User:
		return CauseEcallU
	case Supervisor:
		return CauseEcallS
	default:
		return CauseEcallM
	}
}

// execFpu dispatches a binary32 or binary64 FPU op, resolving the
// rounding mode per spec.md §4.3 ("taken from the instruction's rm
// field if not 0b111, otherwise from fcsr.frm").
func execFpu(cpu *Cpu, u *Uop) {
	cs := &u.Signals
	rm := cs.RM
	if rm == 0b111 {
		rm = cpu.CSR.frm
	}

	switch cs.Fpu {
	case FpuMvToInt:
		if cs.FpDouble {
			u.Result = u.Src1Val
		} else {
			u.Result = uint64(int64(int32(uint32(u.Src1Val))))
		}
		return
	case FpuMvFromInt:
		if cs.FpDouble {
			u.Result = u.Src1Val
		} else {
			u.Result = 0xFFFFFFFF00000000 | (u.Src1Val & 0xFFFFFFFF)
		}
		return
	case FpuCvtToInt:
		var f float64
		if cs.FpDouble {
			f = fpBitsToFloat64(u.Src1Val)
		} else {
			f = float64(fpUnbox32(u.Src1Val))
		}
		u.Result = fpToInt(f, cs.IsW, cs.MemSigned, rm)
		return
	case FpuCvtFromInt:
		var f64 float64
		if cs.MemSigned {
			f64 = float64(int64(u.Src1Val))
		} else {
			f64 = float64(u.Src1Val)
		}
		if cs.FpDouble {
			u.Result = fpFloat64ToBits(f64)
		} else {
			u.Result = fpBox32(float32(f64))
		}
		return
	case FpuCvtFmt:
		if cs.FpDouble {
			// single -> double
			f := fpUnbox32(u.Src1Val)
			u.Result = fpFloat64ToBits(float64(f))
		} else {
			// double -> single
			f := fpBitsToFloat64(u.Src1Val)
			u.Result = fpBox32(float32(f))
		}
		return
	}

	if cs.FpDouble {
		a := fpBitsToFloat64(u.Src1Val)
		b := fpBitsToFloat64(u.Src2Val)
		c := fpBitsToFloat64(u.Src3Val)
		res := evalFpu64(cs.Fpu, a, b, c, rm)
		u.Result = res.Bits64
		u.FPFlags = res.Flags
		return
	}

	a := float64(fpUnbox32(u.Src1Val))
	b := float64(fpUnbox32(u.Src2Val))
	c := float64(fpUnbox32(u.Src3Val))
	res := evalFpu64(cs.Fpu, a, b, c, rm)
	switch cs.Fpu {
	case FpuEq, FpuLt, FpuLe, FpuClass:
		u.Result = res.Bits64
	default:
		u.Result = fpBox32(float32(fpBitsToFloat64(res.Bits64)))
	}
	u.FPFlags = res.Flags
}
