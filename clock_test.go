package main

import "testing"

func TestVirtualClockAdvanceIsExact(t *testing.T) {
	c := NewVirtualClock(1_000_000) // 1 MHz -> cycle_ps = 1_000_000
	want := c.CyclePS()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Advance()
		if now-prev != want {
			t.Fatalf("cycle %d: now_ps advanced by %d, want exactly %d", i, now-prev, want)
		}
		prev = now
	}
}

func TestVirtualClockCyclePS(t *testing.T) {
	c := NewVirtualClock(4_000_000) // 4 MHz
	if got, want := c.CyclePS(), uint64(250_000); got != want {
		t.Fatalf("cycle_ps = %d, want %d", got, want)
	}
}

func TestVirtualClockSetHzPreservesNow(t *testing.T) {
	c := NewVirtualClock(1_000_000)
	c.Advance()
	c.Advance()
	before := c.Now()
	c.SetHz(2_000_000)
	if c.Now() != before {
		t.Fatalf("SetHz must not reset now_ps: got %d, want %d", c.Now(), before)
	}
	if c.CyclePS() != 500_000 {
		t.Fatalf("cycle_ps after SetHz = %d, want 500000", c.CyclePS())
	}
}
