package main

import "testing"

func zeroRNG() byte { return 0 }

func TestRTCBCDRoundTrip(t *testing.T) {
	for _, v := range []int{0, 9, 10, 23, 59, 99} {
		if got := fromBCD(toBCD(v)); got != v {
			t.Fatalf("fromBCD(toBCD(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestRTCAdvanceOneSecondRollsOverMinute(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.sec, r.min = 59, 0
	r.advanceOneSecond()
	if r.sec != 0 || r.min != 1 {
		t.Fatalf("after rollover: sec=%d min=%d, want sec=0 min=1", r.sec, r.min)
	}
}

func TestRTCAdvanceOneSecondRollsOverDayAndMonth(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.sec, r.min, r.hour = 59, 59, 23
	r.date, r.month, r.year = 28, 2, 2025 // not a leap year: Feb has 28 days
	r.advanceOneSecond()
	if r.date != 1 || r.month != 3 {
		t.Fatalf("month rollover: date=%d month=%d, want date=1 month=3", r.date, r.month)
	}
}

func TestRTCTickAdvancesOncePerSecond(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.Tick(1_000_000_000_000) // exactly 1 second
	if r.sec != 1 {
		t.Fatalf("sec after one-second Tick = %d, want 1", r.sec)
	}
	r.Tick(1_000_000_000_000) // no further elapsed time
	if r.sec != 1 {
		t.Fatalf("sec should not advance again without further elapsed time, got %d", r.sec)
	}
}

func TestRTCSquareWaveTogglesAtConfiguredRate(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.control = rtcCtrlSQWEN | rtcCtrlRate1Hz
	first := r.Tick(500_000_000_000)
	second := r.Tick(1_000_000_000_000)
	if first == second {
		t.Fatalf("square wave should have toggled across one half-period: got %v then %v", first, second)
	}
}

func TestRTCHourRegister12And24Hour(t *testing.T) {
	if got := hourFromReg(hourToReg(0, false)); got != 0 {
		t.Fatalf("24h round trip for hour 0 = %d, want 0", got)
	}
	if got := hourFromReg(hourToReg(23, false)); got != 23 {
		t.Fatalf("24h round trip for hour 23 = %d, want 23", got)
	}
	for _, h := range []int{0, 1, 11, 12, 13, 23} {
		if got := hourFromReg(hourToReg(h, true)); got != h {
			t.Fatalf("12h round trip for hour %d = %d, want %d", h, got, h)
		}
	}
}

func TestRTCRegisterReadWriteViaPointerProtocol(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.Start()
	r.Write(rtcRegMin) // set pointer
	r.Write(toBCD(42)) // write minutes
	if r.min != 42 {
		t.Fatalf("min after register write = %d, want 42", r.min)
	}

	r.Start()
	r.Write(rtcRegMin)
	got := r.ReadNext()
	if fromBCD(got) != 42 {
		t.Fatalf("ReadNext() for minutes = %02X, want BCD 42", got)
	}
}

func TestRTCSRAMWriteViaPointer(t *testing.T) {
	r := NewRTC(0x68, zeroRNG)
	r.Start()
	r.Write(0x20)
	r.Write(0xAB)
	if r.sram[0x20] != 0xAB {
		t.Fatalf("sram[0x20] = %02X, want AB", r.sram[0x20])
	}
}
