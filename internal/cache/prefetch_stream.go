package cache

// Stream detects a monotonic sequence of ascending or descending line
// accesses and, once confirmed over confirmThreshold consecutive
// strides of the same direction, issues prefetches depthLines ahead,
// per original_source/core/units/prefetch/stream.rs.
type Stream struct {
	lineBytes        uint64
	confirmThreshold int
	depthLines       int

	lastLine   uint64
	haveLast   bool
	direction  int64
	runLength  int
}

func NewStream(lineBytes, confirmThreshold, depthLines int) *Stream {
	return &Stream{
		lineBytes:        uint64(lineBytes),
		confirmThreshold: confirmThreshold,
		depthLines:       depthLines,
	}
}

func (s *Stream) Observe(addr uint64, hit bool) []uint64 {
	line := addr / s.lineBytes
	if !s.haveLast {
		s.lastLine, s.haveLast = line, true
		return nil
	}

	delta := int64(line) - int64(s.lastLine)
	s.lastLine = line

	switch {
	case delta == 1 && s.direction == 1:
		s.runLength++
	case delta == -1 && s.direction == -1:
		s.runLength++
	case delta == 1 || delta == -1:
		s.direction = delta
		s.runLength = 1
	default:
		s.direction = 0
		s.runLength = 0
		return nil
	}

	if s.runLength < s.confirmThreshold {
		return nil
	}

	out := make([]uint64, 0, s.depthLines)
	for i := 1; i <= s.depthLines; i++ {
		out = append(out, (line+uint64(int64(i)*s.direction))*s.lineBytes)
	}
	return out
}
