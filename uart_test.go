package main

import "testing"

func TestUARTLoopbackRoundTrip(t *testing.T) {
	u := NewUART16550(nil)
	u.Out(uartRegLCR, 0x03)          // 8 data bits, no parity, 1 stop bit
	u.Out(uartRegMCR, mcrLOOP)       // internal loopback
	u.Out(uartRegData, 0x5A)         // queue one TX byte

	const cyclePS = 1
	done := false
	for i := 0; i < 1000 && !done; i++ {
		u.Tick(cyclePS)
		if u.lsr&lsrDR != 0 {
			done = true
		}
	}
	if !done {
		t.Fatal("loopback byte never arrived in the RX FIFO")
	}

	got := u.In(uartRegData)
	if got != 0x5A {
		t.Fatalf("loopback byte = %02X, want 5A", got)
	}
	if u.lsr&lsrDR != 0 {
		t.Fatal("LSR.DR should clear once the RX FIFO is drained")
	}
}

func TestUARTDivisorLatchAccess(t *testing.T) {
	u := NewUART16550(nil)
	u.Out(uartRegLCR, lcrDLAB)
	u.Out(uartRegData, 0x0C)
	u.Out(uartRegIER, 0x00)
	u.Out(uartRegLCR, 0x00) // drop DLAB before reading back through the normal path

	if got := u.divisor(); got != 0x000C {
		t.Fatalf("divisor() = %d, want 12", got)
	}
}

func TestUARTInterruptPendingOnTHRE(t *testing.T) {
	u := NewUART16550(nil)
	if u.InterruptPending() {
		t.Fatal("no interrupt should be pending with IER clear")
	}
	u.Out(uartRegIER, 0x02) // enable THRE interrupt
	if !u.InterruptPending() {
		t.Fatal("THRE interrupt should be pending: IER enabled and TX FIFO idle/empty")
	}
}

func TestUARTFIFOResetViaFCR(t *testing.T) {
	u := NewUART16550(nil)
	u.Out(uartRegLCR, 0x03)
	u.Out(uartRegData, 0xAA)
	if u.txFIFO.empty() {
		t.Fatal("expected a queued TX byte before reset")
	}
	u.Out(uartRegIIR, 0x04) // FCR: clear TX FIFO
	if !u.txFIFO.empty() {
		t.Fatal("FCR bit 2 should clear the TX FIFO")
	}
}

func TestUARTOverrunSetsOEWithoutLosingDR(t *testing.T) {
	u := NewUART16550(nil)
	for i := 0; i < uartFIFOSize; i++ {
		u.deliverRXByte(byte(i))
	}
	if u.lsr&lsrOE != 0 {
		t.Fatal("OE set before the FIFO actually overran")
	}
	u.deliverRXByte(0xFF) // 17th byte: FIFO already full
	if u.lsr&lsrOE == 0 {
		t.Fatal("expected LSR.OE to be set on FIFO overrun")
	}
	if u.lsr&lsrDR == 0 {
		t.Fatal("LSR.DR should remain set; overrun must not discard already-queued data")
	}
}
