package rvsim

// evalBranchCond evaluates a conditional-branch comparison per
// spec.md §4.3's Execute "Branch resolution" bullet.
func evalBranchCond(fn BranchCond, a, b uint64) bool {
	switch fn {
	case BranchEq:
		return a == b
	case BranchNe:
		return a != b
	case BranchLt:
		return int64(a) < int64(b)
	case BranchGe:
		return int64(a) >= int64(b)
	case BranchLtu:
		return a < b
	case BranchGeu:
		return a >= b
	default:
		return false
	}
}
