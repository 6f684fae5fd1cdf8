package main

import "testing"

func TestPIOPinsAssertsSDASCLOnlyWhenDriven(t *testing.T) {
	p := NewPIO()
	if got := p.Pins(false); got != 0 {
		t.Fatalf("idle PIO asserted pins %#x, want 0 (open-drain high)", got)
	}

	p.Out(pioPortB, 0x00) // drive both SDA and SCL low
	got := p.Pins(false)
	if !got.has(PinSDA) || !got.has(PinSCL) {
		t.Fatalf("PIO driving SDA/SCL low didn't assert PinSDA/PinSCL: %#x", got)
	}
}

func TestPIOPinsFoldsUARTIntOnlyWhenEnabled(t *testing.T) {
	p := NewPIO()

	if got := p.Pins(true); got.has(PinPIOInt) {
		t.Fatal("UART interrupt leaked onto PinPIOInt with control bit clear")
	}

	p.Out(pioCtrl, pioCtrlUARTIntEnable)
	if got := p.Pins(false); got.has(PinPIOInt) {
		t.Fatal("PinPIOInt asserted with enable bit set but no pending UART interrupt")
	}
	if got := p.Pins(true); !got.has(PinPIOInt) {
		t.Fatal("PinPIOInt not asserted with enable bit set and a pending UART interrupt")
	}
}

func TestPIOPortBInReflectsLiveBusPins(t *testing.T) {
	p := NewPIO()
	var pins BusPins
	pins.Pull(PinRTCSquareWave)
	pins.Pull(PinPIOInt)

	b := p.In(pioPortB, pins)
	if b&pioPortBSQWIn == 0 {
		t.Fatal("Port B read missing square-wave bit")
	}
	if b&pioPortBPIOInt == 0 {
		t.Fatal("Port B read missing PIO-interrupt bit")
	}
	if b&pioPortBSDAIn != 0 {
		t.Fatal("Port B read asserted SDA-in with SDA released")
	}
}

func TestPIOResetRestoresIdleOutputs(t *testing.T) {
	p := NewPIO()
	p.Out(pioPortB, 0x00)
	p.Reset()
	if !p.SDAOut() || !p.SCLOut() {
		t.Fatal("Reset did not restore SDA/SCL outputs to released (high)")
	}
}
