package main

// PIO register offsets, 8255-style parallel I/O controller. Port A is a general-purpose output latch (paging
// control on real Beast hardware); Port B carries the bit-banged I2C
// lines plus sensed RTC/UART/PIO interrupt pins; Port C is the mode
// register.
const (
	pioPortA = 0x0
	pioPortB = 0x1
	pioPortC = 0x2
	pioCtrl  = 0x3

	pioPortBSDAOut = 0x01
	pioPortBSCLOut = 0x02
	pioPortBSDAIn  = 0x04
	pioPortBSQWIn  = 0x08
	pioPortBUARTIn = 0x10
	pioPortBPIOInt = 0x20

	// pioCtrlUARTIntEnable gates whether a pending UART interrupt is
	// forwarded to the PIO's own open-drain interrupt output.
	pioCtrlUARTIntEnable = 0x01
)

// PIO implements the parallel I/O controller that sits between the CPU's
// port space and the shared open-drain bus pin word. It has no clocked state of its own: every
// read/write is resolved against the BusPins snapshot the bus tick loop
// hands it for the current cycle.
type PIO struct {
	portA byte
	portC byte
	ctrl  byte

	sdaOut, sclOut bool
}

func NewPIO() *PIO { return &PIO{sdaOut: true, sclOut: true} }

func (p *PIO) Reset() {
	p.portA, p.portC, p.ctrl = 0, 0, 0
	p.sdaOut, p.sclOut = true, true
}

// In reads a PIO register. Port B's value reflects the live bus pins
// supplied by the caller (the bus tick loop), not latched state, since SDA
// is a shared open-drain line other peripherals may also be pulling low.
func (p *PIO) In(offset byte, pins BusPins) byte {
	switch offset & 0x03 {
	case pioPortA:
		return p.portA
	case pioPortB:
		var b byte
		if !pins.SDA() {
			b |= pioPortBSDAIn
		}
		if pins.has(PinRTCSquareWave) {
			b |= pioPortBSQWIn
		}
		if pins.has(PinUARTInt) {
			b |= pioPortBUARTIn
		}
		if pins.has(PinPIOInt) {
			b |= pioPortBPIOInt
		}
		return b
	case pioPortC:
		return p.portC
	case pioCtrl:
		return p.ctrl
	}
	return 0xFF
}

// Out writes a PIO register. Writes to Port B set the open-drain outputs
// the I2C bus state machine will read back via SDAOut/SCLOut.
func (p *PIO) Out(offset, value byte) {
	switch offset & 0x03 {
	case pioPortA:
		p.portA = value
	case pioPortB:
		p.sdaOut = value&pioPortBSDAOut != 0
		p.sclOut = value&pioPortBSCLOut != 0
	case pioPortC:
		p.portC = value
	case pioCtrl:
		p.ctrl = value
	}
}

// SDAOut/SCLOut report the CPU-driven output level of the two bit-banged
// I2C lines, consumed by the bus tick loop before it steps the I2C bus
// state machine.
func (p *PIO) SDAOut() bool { return p.sdaOut }
func (p *PIO) SCLOut() bool { return p.sclOut }

// Pins ORs in the open-drain assertions the PIO itself contributes this
// cycle: an open-drain line reads high unless actively pulled low, so the
// PIO only asserts when driving SDA/SCL low. uartIntPending is folded into
// the PIO's own interrupt output when the control register's interrupt
// enable bit is set; the CPU only ever sees PinPIOInt, never the UART's
// pin directly.
func (p *PIO) Pins(uartIntPending bool) BusPins {
	var out BusPins
	if !p.sdaOut {
		out.Pull(PinSDA)
	}
	if !p.sclOut {
		out.Pull(PinSCL)
	}
	if uartIntPending && p.ctrl&pioCtrlUARTIntEnable != 0 {
		out.Pull(PinPIOInt)
	}
	return out
}
