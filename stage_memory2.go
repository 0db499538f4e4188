package rvsim

// stageMemory2 performs the actual D-cache/bus access for loads,
// stores, and atomics, with store-to-load forwarding from the store
// buffer, per spec.md §4.3/§4.4.
func stageMemory2(cpu *Cpu, p *Pipeline) {
	if !p.Latches.M2WB.Empty() {
		return
	}
	u, ok := p.Latches.M1M2.Peek()
	if !ok {
		return
	}
	if u.StallCycles > 0 {
		u.StallCycles--
		p.Latches.M1M2.Put(u) // not Take(); stays visible while stalled
		return
	}

	p.Latches.M1M2.Take()
	cs := &u.Signals

	switch {
	case u.Trap.Valid:
		// pass through

	case cs.Atom == AtomicSC:
		var latency int
		if u.ScSucceeded {
			latency = memWrite(cpu, u.MemAddr, cs.MemWidth, u.MemValue)
		}
		u.Result = boolBits(!u.ScSucceeded) // 0 = success, 1 = failure
		u.StallCycles = latency

	case cs.Atom != AtomicNone:
		latency, memVal := memRead(cpu, u.MemAddr, cs.MemWidth)
		toMem, toDest := evalAmo(cs.Atom, cs.MemWidth, memVal, u.MemValue)
		if cs.Atom != AtomicLR {
			latency += memWrite(cpu, u.MemAddr, cs.MemWidth, toMem)
		}
		u.Result = toDest
		u.StallCycles = latency

	case cs.MemRead:
		loadTag := u.Tag
		olderThanLoad := func(t RobTag) bool { return p.Rob.OlderThan(t, loadTag) }
		if fr := p.StoreBuf.Forward(u.MemAddr, cs.MemWidth, olderThanLoad); fr.Hit {
			u.Result = signExtendLoad(fr.Value, cs.MemWidth, cs.MemSigned)
		} else {
			latency, raw := memRead(cpu, u.MemAddr, cs.MemWidth)
			u.Result = signExtendLoad(raw, cs.MemWidth, cs.MemSigned)
			u.StallCycles = latency
		}

	case cs.MemWrite:
		// The store buffer already holds addr/value from Memory1; the
		// actual bus write happens at Commit, in program order.
	}

	p.Latches.M2WB.Put(u)
}

func signExtendLoad(v uint64, width Width, signed bool) uint64 {
	if signed {
		return width.SignExtend(v)
	}
	return v & width.Mask()
}

func memRead(cpu *Cpu, addr PAddr, width Width) (latency int, value uint64) {
	if cpu.DCache != nil {
		buf := make([]byte, width)
		latency = cpu.DCache.Access(uint64(addr), buf, false, nil)
		for i := len(buf) - 1; i >= 0; i-- {
			value = value<<8 | uint64(buf[i])
		}
		return
	}
	v, lat, _ := cpu.Bus.Load(uint64(addr), int(width))
	return lat, v
}

func memWrite(cpu *Cpu, addr PAddr, width Width, value uint64) (latency int) {
	if cpu.DCache != nil {
		buf := make([]byte, width)
		for i := range buf {
			buf[i] = byte(value >> (8 * uint(i)))
		}
		return cpu.DCache.Access(uint64(addr), nil, true, buf)
	}
	lat, _ := cpu.Bus.Store(uint64(addr), int(width), value)
	return lat
}
