package bus

// Controller models DRAM access latency, per the memory.controller
// config knob (`simple(latency_cycles)` or `dram(t_cas, t_ras, t_pre,
// row_bits)`) from spec.md §6.
type Controller interface {
	Read(m *Memory, offset uint64, width int) (value uint64, latency int)
	Write(m *Memory, offset uint64, width int, value uint64) (latency int)
}

// SimpleController charges a flat latency on every access.
type SimpleController struct {
	LatencyCycles int
}

func (s SimpleController) Read(m *Memory, offset uint64, width int) (uint64, int) {
	return m.LoadRaw(offset, width), s.LatencyCycles
}

func (s SimpleController) Write(m *Memory, offset uint64, width int, value uint64) int {
	m.StoreRaw(offset, width, value)
	return s.LatencyCycles
}

// DRAMController models row-buffer hit/miss timing, per spec.md §9's
// "Memory-controller row-buffer modelling" design note:
// access_latency(addr) compares addr&row_mask with the last opened
// row and mutates that state on every call. A row hit costs tCAS; a
// miss costs tPre (precharge) + tRAS (activate) + tCAS.
type DRAMController struct {
	TCAS, TRAS, TPre int
	RowBits          int

	lastRow    uint64
	haveLast   bool
}

func (d *DRAMController) rowOf(offset uint64) uint64 {
	return offset >> uint(d.RowBits)
}

func (d *DRAMController) accessLatency(offset uint64) int {
	row := d.rowOf(offset)
	latency := d.TCAS
	if !d.haveLast || row != d.lastRow {
		latency = d.TPre + d.TRAS + d.TCAS
	}
	d.lastRow = row
	d.haveLast = true
	return latency
}

func (d *DRAMController) Read(m *Memory, offset uint64, width int) (uint64, int) {
	lat := d.accessLatency(offset)
	return m.LoadRaw(offset, width), lat
}

func (d *DRAMController) Write(m *Memory, offset uint64, width int, value uint64) int {
	lat := d.accessLatency(offset)
	m.StoreRaw(offset, width, value)
	return lat
}
