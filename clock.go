package main

// VirtualClock is a picosecond-resolution monotonic counter. cycle_ps is
// derived from the requested CPU speed and changes only through SetHz;
// Advance is the only way now_ps moves and is called once per CPU cycle
// from the bus.
type VirtualClock struct {
	nowPS   uint64
	cyclePS uint64
}

// NewVirtualClock derives cycle_ps = 10^12 / targetHz.
func NewVirtualClock(targetHz uint64) *VirtualClock {
	if targetHz == 0 {
		targetHz = 1
	}
	return &VirtualClock{cyclePS: 1_000_000_000_000 / targetHz}
}

// Advance moves the clock forward by exactly one cycle and returns now_ps.
func (c *VirtualClock) Advance() uint64 {
	c.nowPS += c.cyclePS
	return c.nowPS
}

func (c *VirtualClock) Now() uint64     { return c.nowPS }
func (c *VirtualClock) CyclePS() uint64 { return c.cyclePS }

// SetHz re-derives cycle_ps without resetting now_ps, used when the CLI's
// -k flag changes the requested speed after construction.
func (c *VirtualClock) SetHz(targetHz uint64) {
	if targetHz == 0 {
		targetHz = 1
	}
	c.cyclePS = 1_000_000_000_000 / targetHz
}
