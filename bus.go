package main

import "time"

// I/O port group masks.
const (
	portKeyboardLo = 0x00
	portKeyboardHi = 0x0F
	portPIOLo      = 0x10
	portPIOHi      = 0x17
	portUARTLo     = 0x20
	portUARTHi     = 0x27
	portPageLo     = 0x70
	portPageHi     = 0x74
)

const audioSamplePeriodPS = 1_000_000_000_000 / 44100

// Bus wires together every Beast peripheral behind the Z80Bus interface:
// the memory map (ROM/flash/RAM/video), the keyboard, the parallel I/O
// controller, the bit-banged I2C bus (LED displays + RTC), the UART, and
// the video coprocessor's scanline clock. Its Tick method is the single
// hottest function in the emulator.
type Bus struct {
	clock *VirtualClock
	mem   *MemoryMap
	kbd   *Keyboard
	pio   *PIO
	i2c   *I2CBus
	rtc   *RTC
	leds  []*LEDDisplay
	uart  *UART16550
	net   *UARTNetworkBridge
	video *VideoCoprocessor

	cpu *CPU_Z80

	debug *DebugManager

	audio *AudioRing

	lastSamplePS uint64
	cyclesPerFrame uint64
	cyclesSinceFramePoll uint64

	hostPollFn func()

	pendingWatchHit int
	watchHitAddr    uint32

	lastPins BusPins

	wallOrigin time.Time
}

func NewBus(cpuHz uint64) *Bus {
	b := &Bus{
		clock: NewVirtualClock(cpuHz),
		mem:   NewMemoryMap(),
		kbd:   NewKeyboard(),
		pio:   NewPIO(),
		uart:  nil,
	}
	logger := newDiagLogger("bus")
	b.uart = NewUART16550(newDiagLogger("uart"))
	b.net = NewUARTNetworkBridge(b.uart, 8456, newDiagLogger("uart-net"))
	b.rtc = NewRTC(0x68, pseudoRandomByte)
	led1 := NewLEDDisplay(0x70)
	led2 := NewLEDDisplay(0x71)
	b.leds = []*LEDDisplay{led1, led2}
	b.i2c = NewI2CBus(led1, led2, b.rtc)
	b.video = NewVideoCoprocessor(newDiagLogger("video"))
	b.mem.AttachVideo(b.video)
	b.audio = NewAudioRing(44100)
	b.cyclesPerFrame = cpuHz / 60
	b.debug = NewDebugManager()
	b.wallOrigin = time.Now()
	_ = logger
	return b
}

var prngState uint32 = 0x2545F491

// pseudoRandomByte seeds the RTC's battery-backed SRAM tail with
// plausible-looking content at construction; it is not used for anything
// that affects emulated behaviour.
func pseudoRandomByte() byte {
	prngState ^= prngState << 13
	prngState ^= prngState >> 17
	prngState ^= prngState << 5
	return byte(prngState)
}

func (b *Bus) AttachCPU(cpu *CPU_Z80) { b.cpu = cpu }

func (b *Bus) Clock() *VirtualClock        { return b.clock }
func (b *Bus) Memory() *MemoryMap          { return b.mem }
func (b *Bus) Keyboard() *Keyboard         { return b.kbd }
func (b *Bus) Video() *VideoCoprocessor    { return b.video }
func (b *Bus) UART() *UART16550            { return b.uart }
func (b *Bus) NetworkBridge() *UARTNetworkBridge { return b.net }
func (b *Bus) RTC() *RTC                   { return b.rtc }
func (b *Bus) Debug() *DebugManager        { return b.debug }
func (b *Bus) Audio() *AudioRing           { return b.audio }

// SetHostPoll installs the callback the tick loop invokes every
// cpu_hz/frame_rate cycles to pump host events and
// redraw the front panel.
func (b *Bus) SetHostPoll(fn func()) { b.hostPollFn = fn }

// Read implements Z80Bus: an MREQ-asserted memory access routed through
// the Memory Map, with a watchpoint check first
// when the debug manager's fast-path flag is armed.
func (b *Bus) Read(addr uint16) byte {
	if b.debug.HasActiveWatchpoint() {
		phys := b.mem.PhysicalForBreakpoint(addr)
		if idx := b.debug.CheckWatchpoint(uint32(addr), phys, true); idx != NoIndex {
			b.debug.recordHit(BreakpointEvent{Kind: "watchpoint", Address: addr, Detail: "read"})
		}
	}
	return b.mem.Read(addr, b.clock.Now())
}

// Write implements Z80Bus, symmetric with Read.
func (b *Bus) Write(addr uint16, value byte) {
	if b.debug.HasActiveWatchpoint() {
		phys := b.mem.PhysicalForBreakpoint(addr)
		if idx := b.debug.CheckWatchpoint(uint32(addr), phys, false); idx != NoIndex {
			b.debug.recordHit(BreakpointEvent{Kind: "watchpoint", Address: addr, Detail: "write"})
		}
	}
	b.mem.Write(addr, value, b.clock.Now())
}

// In implements Z80Bus: an IORQ-asserted port read, demuxed by port group.
func (b *Bus) In(port uint16) byte {
	lo := byte(port)
	switch {
	case lo <= portKeyboardHi:
		return b.kbd.Read(port)
	case lo >= portPIOLo && lo <= portPIOHi:
		return b.pio.In(lo-portPIOLo, b.currentPins())
	case lo >= portUARTLo && lo <= portUARTHi:
		return b.uart.In(lo - portUARTLo)
	case lo >= portPageLo && lo <= portPageHi:
		return b.readPageReg(lo - portPageLo)
	}
	return 0xFF
}

// Out implements Z80Bus, symmetric with In.
func (b *Bus) Out(port uint16, value byte) {
	lo := byte(port)
	switch {
	case lo >= portPIOLo && lo <= portPIOHi:
		b.pio.Out(lo-portPIOLo, value)
	case lo >= portUARTLo && lo <= portUARTHi:
		b.uart.Out(lo-portUARTLo, value)
	case lo >= portPageLo && lo <= portPageHi:
		b.writePageReg(lo-portPageLo, value)
	}
}

func (b *Bus) readPageReg(slot byte) byte {
	if slot == 4 {
		var v byte
		if b.mem.PagingEnabled() {
			v |= 0x04
		}
		return v
	}
	return b.mem.Page(int(slot))
}

func (b *Bus) writePageReg(slot byte, value byte) {
	if slot == 4 {
		b.mem.SetPaging(value&0x04 != 0)
		return
	}
	b.mem.SetPage(int(slot), value)
}

// currentPins is the last pin word computed by Tick, exposed for In()'s
// Port B read.
func (b *Bus) currentPins() BusPins { return b.lastPins }

// Tick implements Z80Bus.Tick: the CPU engine calls this once per
// instruction with the number of T-states it consumed; the bus steps the
// virtual clock and every peripheral that many individual cycles, per
//
func (b *Bus) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		b.tickOneCycle()
	}
}

func (b *Bus) tickOneCycle() {
	now := b.clock.Advance()
	cyclePS := b.clock.CyclePS()

	uartIntPending := b.uart.InterruptPending()

	var pins BusPins
	pins.Pull(b.pio.Pins(uartIntPending))

	sdaLine := b.pio.SDAOut()
	sclLine := b.pio.SCLOut()

	i2cPullsLow := b.i2c.Tick(sdaLine, sclLine)
	if i2cPullsLow {
		pins.Pull(PinSDA)
	}

	if b.rtc.Tick(now) {
		pins.Pull(PinRTCSquareWave)
	}

	// Port B's UART-INT bit is a software-visible status flag, not a
	// physical open-drain pin; it's folded in after the physical pins are
	// latched so it never itself drives the PIO interrupt output.
	if uartIntPending {
		pins.Pull(PinUARTInt)
	}

	b.lastPins = pins

	// Recompute the CPU interrupt line from the PIO's interrupt output
	// alone. The UART reaches the CPU only through the PIO, never directly.
	if b.cpu != nil {
		b.cpu.SetIRQLine(pins.has(PinPIOInt))
	}

	b.uart.Tick(cyclePS)
	b.net.Poll()

	b.video.Tick(now, cyclePS)

	if now-b.lastSamplePS >= audioSamplePeriodPS {
		b.lastSamplePS = now
		b.audio.Push(b.sampleFromUART())
	}

	b.cyclesSinceFramePoll++
	if b.cyclesSinceFramePoll >= b.cyclesPerFrame {
		b.cyclesSinceFramePoll = 0
		if b.hostPollFn != nil {
			b.hostPollFn()
		}
		b.throttle(now)
	}
}

// throttle sleeps 1 ms whenever the virtual clock has run ahead of wall
// time, bringing them back together. Checked at frame-poll granularity
// rather than every cycle, since a wall-clock read every single T-state
// would dominate the tick loop's own cost.
func (b *Bus) throttle(nowPS uint64) {
	virtualElapsed := time.Duration(nowPS/1000) * time.Nanosecond
	wallElapsed := time.Since(b.wallOrigin)
	if virtualElapsed > wallElapsed {
		time.Sleep(time.Millisecond)
	}
}

func (b *Bus) sampleFromUART() int16 {
	if b.uart.mcr&mcrOUT2 != 0 {
		return 8000
	}
	return -8000
}
