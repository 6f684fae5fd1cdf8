package main

import "testing"

func TestLogicalBreakpointIgnoresPageMap(t *testing.T) {
	d := NewDebugManager()
	idx := d.AddBreakpoint(BreakLogical, 0x0100, nil)
	if idx == NoIndex {
		t.Fatal("AddBreakpoint returned NoIndex")
	}
	if got := d.CheckBreakpoint(0x0100, 0xABCDE); got != idx {
		t.Fatalf("logical breakpoint didn't fire regardless of physical address: got %d", got)
	}
	if got := d.CheckBreakpoint(0x0101, 0x00100); got != NoIndex {
		t.Fatalf("logical breakpoint fired at wrong PC: got %d", got)
	}
}

func TestPhysicalBreakpointTracksPhysicalAddress(t *testing.T) {
	d := NewDebugManager()
	idx := d.AddBreakpoint(BreakPhysical, 0x20100, nil)
	if idx == NoIndex {
		t.Fatal("AddBreakpoint returned NoIndex")
	}
	if got := d.CheckBreakpoint(0x9999, 0x20100); got != idx {
		t.Fatalf("physical breakpoint should fire on matching physical addr regardless of PC: got %d", got)
	}
	if got := d.CheckBreakpoint(0x9999, 0x20101); got != NoIndex {
		t.Fatalf("physical breakpoint fired on non-matching physical addr: got %d", got)
	}
}

func TestBreakpointSlotsFillUpReturnsNotAdded(t *testing.T) {
	d := NewDebugManager()
	for i := 0; i < maxUserSlots; i++ {
		if idx := d.AddBreakpoint(BreakLogical, uint32(i), nil); idx == NoIndex {
			t.Fatalf("slot %d unexpectedly full", i)
		}
	}
	if idx := d.AddBreakpoint(BreakLogical, 0xFFFF, nil); idx != NoIndex {
		t.Fatalf("9th user breakpoint should return NoIndex, got %d", idx)
	}
}

func TestSystemBreakpointsUseSeparateSlots(t *testing.T) {
	d := NewDebugManager()
	for i := 0; i < maxUserSlots; i++ {
		d.AddBreakpoint(BreakLogical, uint32(i), nil)
	}
	if idx := d.AddSystemBreakpoint(BreakLogical, 0x9000); idx == NoIndex {
		t.Fatal("system breakpoint should have its own reserve even when user slots are full")
	}
}

func TestWatchpointFiresOnlyInRangeAndDirection(t *testing.T) {
	d := NewDebugManager()
	idx := d.AddWatchpoint(WatchWrite, 0xC000, 4)
	if idx == NoIndex {
		t.Fatal("AddWatchpoint returned NoIndex")
	}
	if got := d.CheckWatchpoint(0xC002, 0xC002, false); got != idx {
		t.Fatalf("write within range should trigger: got %d", got)
	}
	if got := d.CheckWatchpoint(0xC010, 0xC010, false); got != NoIndex {
		t.Fatalf("write outside range should not trigger: got %d", got)
	}
	if got := d.CheckWatchpoint(0xC002, 0xC002, true); got != NoIndex {
		t.Fatalf("read should not trigger a write-only watchpoint: got %d", got)
	}
}

func TestConditionalBreakpointEval(t *testing.T) {
	d := NewDebugManager()
	d.SetRegisterSource(func(name string) (uint16, bool) {
		if name == "A" {
			return 0x42, true
		}
		return 0, false
	})
	cond := &BreakpointCondition{Register: "A", Op: CondEQ, Value: 0x42}
	idx := d.AddBreakpoint(BreakLogical, 0x0100, cond)
	if got := d.CheckBreakpoint(0x0100, 0); got != idx {
		t.Fatalf("condition A==0x42 should match current A=0x42: got %d", got)
	}

	cond2 := &BreakpointCondition{Register: "A", Op: CondEQ, Value: 0x99}
	d.RemoveBreakpoint(idx)
	idx2 := d.AddBreakpoint(BreakLogical, 0x0100, cond2)
	if got := d.CheckBreakpoint(0x0100, 0); got != NoIndex {
		t.Fatalf("condition A==0x99 should not match A=0x42: got %d want NoIndex", got)
	}
	_ = idx2
}

func TestRemoveBreakpointClearsActiveFlag(t *testing.T) {
	d := NewDebugManager()
	idx := d.AddBreakpoint(BreakLogical, 0x0100, nil)
	if !d.HasActiveBreakpoint() {
		t.Fatal("expected active breakpoint flag set")
	}
	d.RemoveBreakpoint(idx)
	if d.HasActiveBreakpoint() {
		t.Fatal("expected active breakpoint flag cleared once all breakpoints removed")
	}
}
