// Package bus implements the system bus: DRAM, the DRAM controller
// timing model, and the MMIO device set (CLINT, PLIC, UART 16550,
// Goldfish RTC, SysCon, HTIF), per spec.md §6's memory map.
package bus

import "github.com/pkg/errors"

// Device is one memory-mapped peripheral, addressed relative to its
// own base.
type Device interface {
	Load(offset uint64, width int) uint64
	Store(offset uint64, width int, value uint64)
	Size() uint64
}

type region struct {
	base uint64
	dev  Device
}

// Bus routes loads/stores to DRAM or an MMIO device by address, per
// spec.md §6's memory map table.
type Bus struct {
	ramBase  uint64
	ramSize  uint64
	mmioBase uint64
	ram      *Memory
	ctrl     Controller
	devices  []region
}

// New constructs a Bus over ram, backed by ctrl for DRAM timing.
// Addresses >= mmioBase that do not match a registered device fault.
func New(ram *Memory, ctrl Controller, ramBase, mmioBase uint64) *Bus {
	return &Bus{ramBase: ramBase, ramSize: ram.Size(), mmioBase: mmioBase, ram: ram, ctrl: ctrl}
}

// Register installs dev at base. It does not check for overlap with
// devices already registered; where ranges overlap, the device
// registered first receives the access.
func (b *Bus) Register(base uint64, dev Device) {
	b.devices = append(b.devices, region{base: base, dev: dev})
}

func (b *Bus) findDevice(addr uint64) (region, uint64, bool) {
	for _, r := range b.devices {
		if addr >= r.base && addr < r.base+r.dev.Size() {
			return r, addr - r.base, true
		}
	}
	return region{}, 0, false
}

// Load reads width bytes (1/2/4/8) at addr, returning zero-extended
// to 64 bits, plus the access latency in cycles.
func (b *Bus) Load(addr uint64, width int) (value uint64, latency int, err error) {
	if r, off, ok := b.findDevice(addr); ok {
		return r.dev.Load(off, width), 1, nil
	}
	if addr >= b.ramBase && addr < b.ramBase+b.ramSize {
		v, lat := b.ctrl.Read(b.ram, addr-b.ramBase, width)
		return v, lat, nil
	}
	return 0, 0, errors.Errorf("bus: load from unmapped address %#x", addr)
}

// Store writes width bytes of value at addr.
func (b *Bus) Store(addr uint64, width int, value uint64) (latency int, err error) {
	if r, off, ok := b.findDevice(addr); ok {
		r.dev.Store(off, width, value)
		return 1, nil
	}
	if addr >= b.ramBase && addr < b.ramBase+b.ramSize {
		return b.ctrl.Write(b.ram, addr-b.ramBase, width, value), nil
	}
	return 0, errors.Errorf("bus: store to unmapped address %#x", addr)
}

// ReadPhys64/WritePhys64 implement mmu.PhysMemory64 for page-table
// walks, which always target DRAM.
func (b *Bus) ReadPhys64(addr uint64) uint64 {
	v, _, _ := b.Load(addr, 8)
	return v
}

func (b *Bus) WritePhys64(addr uint64, v uint64) {
	b.Store(addr, 8, v)
}
