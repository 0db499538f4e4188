package rvsim

import (
	"github.com/willmccallion/rvsim/internal/bpu"
	"github.com/willmccallion/rvsim/internal/bus"
	"github.com/willmccallion/rvsim/internal/config"
	"github.com/willmccallion/rvsim/internal/mmu"
)

// Device addresses from spec.md §6's physical memory map.
const (
	ClintBase  = 0x0200_0000
	PlicBase   = 0x0C00_0000
	UartBase   = 0x1000_0000
	RTCBase    = 0x1010_1000
	SysConBase = 0x1000_2000
)

const (
	plicNumSources = 32
	plicNumContext = 2 // context 0 = M-mode, context 1 = S-mode, per spec.md §6
	uartPlicIRQ    = 1
)

func mmuModeOf(s string) mmu.Mode {
	switch s {
	case "sv48":
		return mmu.Sv48
	case "bare":
		return mmu.Bare
	default:
		return mmu.Sv39
	}
}

func bpuDirectionOf(cfg config.BPU) bpu.Direction {
	if cfg.Predictor == "static" {
		return bpu.NewStatic()
	}
	return bpu.NewGShare(cfg.HistoryBits)
}

func controllerOf(cfg config.Memory) bus.Controller {
	if cfg.Controller == "dram" {
		return &bus.DRAMController{TCAS: cfg.TCAS, TRAS: cfg.TRAS, TPre: cfg.TPre, RowBits: cfg.RowBits}
	}
	return bus.SimpleController{LatencyCycles: cfg.LatencyCycles}
}

// Machine is every host-owned piece a fully wired simulator needs:
// guest RAM, the bus and its devices, and the Simulator itself. Build
// constructs it from a Config; the caller still has to load an ELF
// image into it (see internal/loader) before calling Run.
type Machine struct {
	Mem  *bus.Memory
	Bus  *bus.Bus
	Sim  *Simulator
	Cpu  *Cpu
	Pipe *Pipeline
}

// Build wires a complete Machine from cfg: DRAM, the memory controller,
// the bus with CLINT/PLIC/UART/RTC/SysCon registered at spec.md §6's
// fixed addresses, the MMU pair, the cache hierarchy, the branch
// predictor, and the Cpu/Pipeline/Simulator triple. uartOut receives
// bytes the guest writes to the UART's THR (e.g. os.Stdout.Write).
func Build(cfg config.Config, uartOut func(b byte), nowNanos func() uint64) (*Machine, error) {
	mem, err := bus.NewMemory(cfg.System.RAMSize)
	if err != nil {
		return nil, err
	}

	b := bus.New(mem, controllerOf(cfg.Memory), cfg.System.RAMBase, cfg.System.MMIOBase)

	clint := bus.NewCLINT(cfg.System.Divider)
	plic := bus.NewPLIC(plicNumSources, plicNumContext)
	uart := bus.NewUART(uartOut)
	rtc := bus.NewGoldfishRTC(nowNanos)
	syscon := bus.NewSysCon()

	b.Register(ClintBase, clint)
	b.Register(PlicBase, plic)
	b.Register(UartBase, uart)
	b.Register(RTCBase, rtc)
	b.Register(SysConBase, syscon)

	mode := mmuModeOf(cfg.MMU.Mode)
	immu := mmu.New(cfg.MMU.TLBSize, mode)
	dmmu := mmu.New(cfg.MMU.TLBSize, mode)

	icache, dcache := BuildCacheHierarchy(cfg.Cache, b)

	pred := bpu.New(cfg.BPU.BTBSize, cfg.BPU.RASSize, bpuDirectionOf(cfg.BPU))

	cpu := NewCpu(b, immu, dmmu, icache, dcache, pred)
	pipe := NewPipeline(cfg.Pipeline.RobSize, cfg.Pipeline.StoreBufferSize, cfg.System.RAMBase)

	sim := NewSimulator(cpu, pipe)
	sim.Clint = clint
	sim.Plic = plic
	sim.Uart = uart
	sim.Rtc = rtc
	sim.SysCon = syscon
	sim.UartIRQ = uartPlicIRQ

	return &Machine{Mem: mem, Bus: b, Sim: sim, Cpu: cpu, Pipe: pipe}, nil
}

// AttachHTIF registers an HTIF device at tohostAddr and wires it into
// the Simulator's exit-detection path, per the loader's resolved
// `tohost` symbol (spec.md §6's "calls system.add_htif(tohost_addr)
// before the simulator starts").
func (m *Machine) AttachHTIF(tohostAddr uint64) {
	htif := bus.NewHTIF()
	m.Bus.Register(tohostAddr, htif)
	m.Sim.Htif = htif
}
