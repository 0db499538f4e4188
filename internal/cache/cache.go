// Package cache implements the set-associative cache hierarchy with
// pluggable replacement and prefetch policies, per spec.md §4.4.
package cache

// WritePolicy selects write-hit/write-miss behavior.
type WritePolicy int

const (
	WriteBack WritePolicy = iota
	WriteThrough
)

// Inclusion selects the inclusion relationship with the next level.
type Inclusion int

const (
	Inclusive Inclusion = iota
	NonInclusive
)

// Line is one cache line: tag, valid/dirty bits, and LineBytes of data.
type Line struct {
	Valid bool
	Dirty bool
	Tag   uint64
	Data  []byte
}

// NextLevel is whatever services a miss: another cache level or the
// DRAM controller. Read and Write return the cycle cost of the access
// at addr.
type NextLevel interface {
	Read(addr uint64, data []byte) int  // returns latency cycles
	Write(addr uint64, data []byte) int // returns latency cycles
}

// Policy is a pluggable replacement policy, per spec.md §4.4.
type Policy interface {
	Update(set, way int)
	Victim(set int) int
}

// Prefetcher observes (addr, hit) on every access and returns
// zero or more line-aligned addresses to fetch speculatively, per
// spec.md §4.4.
type Prefetcher interface {
	Observe(addr uint64, hit bool) []uint64
}

// Config parameterizes one cache level, per spec.md §6's cache config
// surface.
type Config struct {
	Enabled    bool
	LineBytes  int
	Sets       int
	Ways       int
	Write      WritePolicy
	Inclusion  Inclusion
}

// Cache is one set-associative cache level.
type Cache struct {
	cfg   Config
	lines [][]Line // [set][way]
	pol   Policy
	pf    Prefetcher
	next  NextLevel

	Hits, Misses uint64
}

// New constructs a cache level. pol and pf may be nil (no
// replacement tracking / no prefetch, respectively — e.g. for a
// direct-mapped cache a nil policy degenerates to way 0 always).
func New(cfg Config, pol Policy, pf Prefetcher, next NextLevel) *Cache {
	lines := make([][]Line, cfg.Sets)
	for s := range lines {
		lines[s] = make([]Line, cfg.Ways)
		for w := range lines[s] {
			lines[s][w].Data = make([]byte, cfg.LineBytes)
		}
	}
	return &Cache{cfg: cfg, lines: lines, pol: pol, pf: pf, next: next}
}

func (c *Cache) decompose(addr uint64) (tag uint64, set int, offset int) {
	lineAddr := addr / uint64(c.cfg.LineBytes)
	set = int(lineAddr % uint64(c.cfg.Sets))
	tag = lineAddr / uint64(c.cfg.Sets)
	offset = int(addr % uint64(c.cfg.LineBytes))
	return
}

// Access performs a read or write at a physical address. It returns
// the latency in cycles (0 for a hit under this simplified model,
// the refill latency under a miss) and, for reads, fills out.
func (c *Cache) Access(addr uint64, out []byte, write bool, writeVal []byte) int {
	if !c.cfg.Enabled {
		if write {
			return c.next.Write(addr, writeVal)
		}
		return c.next.Read(addr, out)
	}

	tag, set, offset := c.decompose(addr)
	if way, hit := c.findWay(set, tag); hit {
		c.Hits++
		if c.pol != nil {
			c.pol.Update(set, way)
		}
		line := &c.lines[set][way]
		if write {
			copy(line.Data[offset:], writeVal)
			if c.cfg.Write == WriteBack {
				line.Dirty = true
			} else {
				c.next.Write(addr, writeVal)
			}
		} else {
			copy(out, line.Data[offset:offset+len(out)])
		}
		if c.pf != nil {
			c.observePrefetch(addr, true)
		}
		return 0
	}

	c.Misses++
	latency := c.refill(set, tag, addr)
	way, _ := c.findWay(set, tag)
	line := &c.lines[set][way]
	if write {
		copy(line.Data[offset:], writeVal)
		if c.cfg.Write == WriteBack {
			line.Dirty = true
		} else {
			c.next.Write(addr, writeVal)
		}
	} else {
		copy(out, line.Data[offset:offset+len(out)])
	}
	if c.pf != nil {
		c.observePrefetch(addr, false)
	}
	return latency
}

func (c *Cache) findWay(set int, tag uint64) (int, bool) {
	for w, l := range c.lines[set] {
		if l.Valid && l.Tag == tag {
			return w, true
		}
	}
	return 0, false
}

// refill services a miss: invoke the next level (or DRAM controller),
// select a victim, evict (writing back if dirty under write-back),
// install the new line, then update the policy — per spec.md §4.4.
func (c *Cache) refill(set int, tag uint64, addr uint64) int {
	lineBase := (addr / uint64(c.cfg.LineBytes)) * uint64(c.cfg.LineBytes)

	var way int
	if c.pol != nil {
		way = c.pol.Victim(set)
	}
	victim := &c.lines[set][way]
	if victim.Valid && victim.Dirty && c.cfg.Write == WriteBack {
		victimAddr := (victim.Tag*uint64(c.cfg.Sets) + uint64(set)) * uint64(c.cfg.LineBytes)
		c.next.Write(victimAddr, victim.Data)
	}

	latency := c.next.Read(lineBase, victim.Data)
	victim.Valid = true
	victim.Dirty = false
	victim.Tag = tag

	if c.pol != nil {
		c.pol.Update(set, way)
	}
	return latency
}

func (c *Cache) observePrefetch(addr uint64, hit bool) {
	for _, a := range c.pf.Observe(addr, hit) {
		tag, set, _ := c.decompose(a)
		if _, hit := c.findWay(set, tag); !hit {
			c.refill(set, tag, a)
		}
	}
}
