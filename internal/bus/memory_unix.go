//go:build unix

package bus

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Memory is the DRAM backing store. On Linux it is an anonymous mmap
// region (avoiding a Go-heap zero-fill of potentially gigabyte-sized
// guest RAM); elsewhere it falls back to a plain byte slice, per
// spec.md §9's unsafe-memory design note.
type Memory struct {
	data   []byte
	mapped bool
}

// NewMemory allocates size bytes of guest RAM.
func NewMemory(size uint64) (*Memory, error) {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return &Memory{data: make([]byte, size)}, nil
	}
	return &Memory{data: data, mapped: true}, nil
}

// Close releases the mmap'd region, if any.
func (m *Memory) Close() error {
	if !m.mapped {
		return nil
	}
	if err := unix.Munmap(m.data); err != nil {
		return errors.Wrap(err, "bus: munmap guest RAM")
	}
	m.mapped = false
	return nil
}

func (m *Memory) Size() uint64 { return uint64(len(m.data)) }

// LoadRaw/StoreRaw perform the little-endian width-sized access at
// offset, with no timing model applied — the Controller wraps these.
func (m *Memory) LoadRaw(offset uint64, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(m.data[offset+uint64(i)]) << (8 * uint(i))
	}
	return v
}

func (m *Memory) StoreRaw(offset uint64, width int, value uint64) {
	for i := 0; i < width; i++ {
		m.data[offset+uint64(i)] = byte(value >> (8 * uint(i)))
	}
}

// CopyIn installs bytes at offset, used by the ELF loader for PT_LOAD
// segments.
func (m *Memory) CopyIn(offset uint64, bytes []byte) {
	copy(m.data[offset:], bytes)
}
