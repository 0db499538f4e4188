package rvsim

import (
	"github.com/sirupsen/logrus"
	"github.com/willmccallion/rvsim/internal/bus"
)

// Ticker is anything that advances once per cycle independent of the
// pipeline (the CLINT's mtime divider, primarily).
type Ticker interface {
	Tick()
}

// ExitReason reports why Run stopped.
type ExitReason int

const (
	ExitCycleLimit ExitReason = iota
	ExitHTIF
	ExitSysConPoweroff
	ExitSysConReset
	ExitSysConFail
)

// Simulator owns one hart's Cpu and Pipeline side-by-side (spec.md
// §9's "cyclic borrow" design note: neither struct references the
// other, so every stage function takes both explicitly) plus the SoC
// devices that need a cycle tick or periodic polling.
type Simulator struct {
	Cpu      *Cpu
	Pipeline *Pipeline
	Stats    *Stats

	Clint  *bus.CLINT
	Plic   *bus.PLIC
	Uart   *bus.UART16550
	Rtc    *bus.GoldfishRTC
	SysCon *bus.SysCon
	Htif   *bus.HTIF

	// UartIRQ is the PLIC source number wired to the UART's interrupt
	// line, per spec.md §6's device tree. 0 disables PLIC routing.
	UartIRQ int

	Log *logrus.Logger

	Cycles uint64
}

// NewSimulator wires a Cpu/Pipeline pair with the SoC devices that
// need per-cycle attention. Devices left nil are treated as absent.
func NewSimulator(cpu *Cpu, p *Pipeline) *Simulator {
	return &Simulator{Cpu: cpu, Pipeline: p, Stats: NewStats(), Log: logrus.StandardLogger()}
}

// Step advances the simulator exactly one cycle: the 10 pipeline
// stages in reverse dependency order (so a stage's producer has
// already run this cycle and its consumer's latch is still from last
// cycle), per spec.md §4.2's "ticked in reverse" note, followed by
// device ticks and the pre-tick interrupt-line sync.
//
// A halted hart (WFI retired, no enabled interrupt pending yet) skips
// the pipeline tick entirely — the in-flight latches and ROB stay
// exactly as WFI left them — but devices still tick every cycle, so
// mtime keeps advancing and a timer interrupt can still wake it, per
// spec.md §4.7/§5.
func (s *Simulator) Step() {
	cpu, p := s.Cpu, s.Pipeline

	if cpu.Halted {
		if _, ok := PendingInterrupt(cpu.CSR, cpu.Priv); ok {
			cpu.Halted = false
		}
	}

	if !cpu.Halted {
		stageCommit(cpu, p)
		stageWriteback(cpu, p)
		stageMemory2(cpu, p)
		stageMemory1(cpu, p)
		stageExecute(cpu, p)
		stageIssue(cpu, p)
		stageRename(cpu, p)
		stageDecode(cpu, p)
		stageFetch2(cpu, p)
		stageFetch1(cpu, p)
	}

	cpu.CSR.TickCycle()
	s.Cycles++
	s.syncInterruptLines()
	s.Stats.Observe(cpu, p)
}

// syncInterruptLines drives mip's hardware-controlled bits from the
// CLINT/PLIC/UART, per spec.md §6: these devices assert lines the
// hart samples, not CSR bits software writes directly.
func (s *Simulator) syncInterruptLines() {
	if s.Clint != nil {
		s.Clint.Tick()
		s.Cpu.CSR.SetMTIP(s.Clint.TimerPending())
		s.Cpu.CSR.SetMSIP(s.Clint.SoftwarePending())
	}
	if s.Uart != nil && s.Plic != nil && s.UartIRQ != 0 {
		s.Plic.SetPending(s.UartIRQ, s.Uart.InterruptPending())
	}
	if s.Plic != nil {
		s.Cpu.CSR.SetSEIP(s.Plic.Pending(1))
	}
}

// Run steps the simulator until a cycle limit, an HTIF exit, or a
// SysCon poweroff/reset/fail, whichever comes first. cycleLimit of 0
// means unbounded.
func (s *Simulator) Run(cycleLimit uint64) (reason ExitReason, exitCode int) {
	for {
		s.Step()

		if s.Htif != nil && s.Htif.Result.Exited {
			s.Log.WithField("exit_code", s.Htif.Result.ExitCode).Info("htif exit")
			return ExitHTIF, s.Htif.Result.ExitCode
		}
		if s.SysCon != nil {
			switch s.SysCon.Command {
			case bus.SysConPoweroff:
				s.Log.Info("syscon poweroff")
				return ExitSysConPoweroff, 0
			case bus.SysConReset:
				s.Log.Info("syscon reset")
				return ExitSysConReset, 0
			case bus.SysConFail:
				s.Log.Warn("syscon fail")
				return ExitSysConFail, 1
			}
		}
		if cycleLimit != 0 && s.Cycles >= cycleLimit {
			return ExitCycleLimit, 0
		}
	}
}
