// Package loader implements the ELF loader contract of spec.md §6:
// copy PT_LOAD segments into DRAM, locate the `tohost` symbol if
// present, and return the entry point.
package loader

import (
	"debug/elf"

	"github.com/pkg/errors"
)

// Memory is the subset of bus.Memory the loader writes into.
type Memory interface {
	CopyIn(offset uint64, data []byte)
	Size() uint64
}

// Loaded is the result of loading an ELF image, per spec.md §6:
// "returns (entry_point, tohost_addr?)."
type Loaded struct {
	Entry      uint64
	TohostAddr *uint64
}

// Load parses path as an ELF64 RISC-V image, copies every PT_LOAD
// segment into mem at (paddr - ramBase), and resolves the `tohost`
// symbol if the binary carries one.
func Load(path string, mem Memory, ramBase uint64) (Loaded, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS64 {
		return Loaded{}, errors.Errorf("loader: %s is not a 64-bit ELF", path)
	}
	if f.Machine != elf.EM_RISCV {
		return Loaded{}, errors.Errorf("loader: %s is not a RISC-V ELF (machine=%s)", path, f.Machine)
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return Loaded{}, errors.Wrapf(err, "loader: read segment at %#x", prog.Paddr)
		}
		offset := prog.Paddr - ramBase
		if offset+prog.Memsz > mem.Size() {
			return Loaded{}, errors.Errorf("loader: segment at %#x (size %d) exceeds RAM size %d", prog.Paddr, prog.Memsz, mem.Size())
		}
		mem.CopyIn(offset, data)
	}

	result := Loaded{Entry: f.Entry}

	syms, err := f.Symbols()
	if err == nil {
		for _, s := range syms {
			if s.Name == "tohost" {
				addr := s.Value
				result.TohostAddr = &addr
				break
			}
		}
	}

	return result, nil
}
