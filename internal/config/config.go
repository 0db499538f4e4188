// Package config implements the hierarchical YAML configuration
// surface of spec.md §6: system, pipeline, per-level cache, memory
// controller, MMU, and BPU settings.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type System struct {
	RAMBase  uint64 `yaml:"ram_base"`
	RAMSize  uint64 `yaml:"ram_size"`
	MMIOBase uint64 `yaml:"mmio_base"`
	XLen     int    `yaml:"xlen"`
	Divider  uint64 `yaml:"divider"`
}

type Pipeline struct {
	Width           int    `yaml:"width"`
	RobSize         int    `yaml:"rob_size"`
	StoreBufferSize int    `yaml:"store_buffer_size"`
	Backend         string `yaml:"backend"` // in-order | out-of-order
}

type Cache struct {
	Enabled     bool   `yaml:"enabled"`
	LineBytes   int    `yaml:"line_bytes"`
	Sets        int    `yaml:"sets"`
	Ways        int    `yaml:"ways"`
	WritePolicy string `yaml:"write_policy"` // write-through | write-back
	Inclusion   string `yaml:"inclusion"`    // inclusive | non-inclusive
	Replacement string `yaml:"replacement"`  // lru | plru | fifo | mru | random
	Prefetcher  string `yaml:"prefetcher"`   // none | next-line | stream | stride | tagged
	Degree      int    `yaml:"degree"`
}

type CacheHierarchy struct {
	L1I Cache `yaml:"l1i"`
	L1D Cache `yaml:"l1d"`
	L2  Cache `yaml:"l2"`
	L3  Cache `yaml:"l3"`
}

type Memory struct {
	Controller string `yaml:"controller"` // simple | dram
	LatencyCycles int `yaml:"latency_cycles"`
	TCAS       int `yaml:"t_cas"`
	TRAS       int `yaml:"t_ras"`
	TPre       int `yaml:"t_pre"`
	RowBits    int `yaml:"row_bits"`
}

type MMU struct {
	Mode    string `yaml:"mode"` // bare | sv39 | sv48
	TLBSize int    `yaml:"tlb_size"`
}

type BPU struct {
	Predictor   string `yaml:"predictor"` // static | gshare
	HistoryBits int    `yaml:"history_bits"`
	BTBSize     int    `yaml:"btb_size"`
	RASSize     int    `yaml:"ras_size"`
}

// Config is the full configuration tree, per spec.md §6's
// "Configuration surface" enumeration.
type Config struct {
	System   System         `yaml:"system"`
	Pipeline Pipeline       `yaml:"pipeline"`
	Cache    CacheHierarchy `yaml:"cache"`
	Memory   Memory         `yaml:"memory"`
	MMU      MMU            `yaml:"mmu"`
	BPU      BPU            `yaml:"bpu"`
}

// Default returns the configuration rvsim ships with when no
// --config flag is given.
func Default() Config {
	return Config{
		System:   System{RAMBase: 0x8000_0000, RAMSize: 128 << 20, MMIOBase: 0x0200_0000, XLen: 64, Divider: 100},
		Pipeline: Pipeline{Width: 1, RobSize: 64, StoreBufferSize: 16, Backend: "in-order"},
		Cache: CacheHierarchy{
			L1I: Cache{Enabled: true, LineBytes: 64, Sets: 64, Ways: 4, WritePolicy: "write-back", Inclusion: "non-inclusive", Replacement: "lru", Prefetcher: "next-line", Degree: 1},
			L1D: Cache{Enabled: true, LineBytes: 64, Sets: 64, Ways: 8, WritePolicy: "write-back", Inclusion: "non-inclusive", Replacement: "lru", Prefetcher: "stride", Degree: 1},
			L2:  Cache{Enabled: true, LineBytes: 64, Sets: 512, Ways: 8, WritePolicy: "write-back", Inclusion: "inclusive", Replacement: "plru", Prefetcher: "stream", Degree: 2},
			L3:  Cache{Enabled: false},
		},
		Memory: Memory{Controller: "simple", LatencyCycles: 50, TCAS: 14, TRAS: 33, TPre: 14, RowBits: 13},
		MMU:    MMU{Mode: "sv39", TLBSize: 64},
		BPU:    BPU{Predictor: "gshare", HistoryBits: 12, BTBSize: 1024, RASSize: 64},
	}
}

// Load reads and parses a YAML config file, applying it over
// Default() so an omitted section keeps its default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config: validate %s", path)
	}
	return cfg, nil
}

// Validate rejects configurations spec.md §6/§7 rules out: unknown
// enum values, XLen != 64, a zero RAM size, non-positive or
// non-power-of-two cache geometry, etc. A zero divider is accepted;
// the CLINT clamps it to 1.
func (c Config) Validate() error {
	if c.System.XLen != 64 {
		return errors.Errorf("system.xlen must be 64, got %d", c.System.XLen)
	}
	if c.System.RAMSize == 0 {
		return errors.New("system.ram_size must be non-zero")
	}
	switch c.Pipeline.Backend {
	case "in-order", "out-of-order":
	default:
		return errors.Errorf("pipeline.backend: unknown value %q", c.Pipeline.Backend)
	}
	if c.Pipeline.Backend == "out-of-order" {
		return errors.New("pipeline.backend: out-of-order is not implemented (see spec.md §1 Non-goals)")
	}
	for name, c := range map[string]Cache{"l1i": c.Cache.L1I, "l1d": c.Cache.L1D, "l2": c.Cache.L2, "l3": c.Cache.L3} {
		if !c.Enabled {
			continue
		}
		if err := c.validate(); err != nil {
			return errors.Wrapf(err, "cache.%s", name)
		}
	}
	switch c.Memory.Controller {
	case "simple", "dram":
	default:
		return errors.Errorf("memory.controller: unknown value %q", c.Memory.Controller)
	}
	switch c.MMU.Mode {
	case "bare", "sv39", "sv48":
	default:
		return errors.Errorf("mmu.mode: unknown value %q", c.MMU.Mode)
	}
	switch c.BPU.Predictor {
	case "static", "gshare":
	default:
		return errors.Errorf("bpu.predictor: unknown value %q", c.BPU.Predictor)
	}
	return nil
}

func (c Cache) validate() error {
	switch c.WritePolicy {
	case "write-through", "write-back":
	default:
		return errors.Errorf("write_policy: unknown value %q", c.WritePolicy)
	}
	switch c.Inclusion {
	case "inclusive", "non-inclusive":
	default:
		return errors.Errorf("inclusion: unknown value %q", c.Inclusion)
	}
	switch c.Replacement {
	case "lru", "plru", "fifo", "mru", "random":
	default:
		return errors.Errorf("replacement: unknown value %q", c.Replacement)
	}
	switch c.Prefetcher {
	case "none", "next-line", "stream", "stride", "tagged":
	default:
		return errors.Errorf("prefetcher: unknown value %q", c.Prefetcher)
	}
	if c.Sets <= 0 || c.Ways <= 0 || c.LineBytes <= 0 {
		return errors.New("sets, ways, and line_bytes must be positive")
	}
	if c.Sets&(c.Sets-1) != 0 {
		return errors.Errorf("sets must be a power of two, got %d", c.Sets)
	}
	return nil
}
