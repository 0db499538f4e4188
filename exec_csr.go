package rvsim

// evalCsrRmw performs the atomic read-then-modify-write for a CSR
// instruction, per spec.md §4.3's "CSR op" bullet: {write, set, clear,
// imm-write, imm-set, imm-clear}. It returns the CSR's pre-write
// value (the destination-register result) and the value to store
// back. Side effects of writing satp or trap-setup CSRs are enacted
// at commit, not here — Execute only computes the would-be new value.
func evalCsrRmw(op CsrOp, old uint64, operand uint64) (result uint64, newValue uint64) {
	switch op {
	case CsrWrite, CsrWriteImm:
		return old, operand
	case CsrSet, CsrSetImm:
		return old, old | operand
	case CsrClear, CsrClearImm:
		return old, old &^ operand
	default:
		return old, old
	}
}

// csrWritesCsr reports whether the instruction actually performs a
// CSR write (CSRRS/CSRRC with rs1==x0, or their immediate forms with
// a zero immediate, are read-only per the RISC-V spec and must not
// trigger side effects like a satp write's TLB flush).
func csrWritesCsr(op CsrOp, srcIsZero bool) bool {
	switch op {
	case CsrSet, CsrClear, CsrSetImm, CsrClearImm:
		return !srcIsZero
	default:
		return true
	}
}
