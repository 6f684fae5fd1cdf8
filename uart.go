package main

// UART register offsets (16C550).
const (
	uartRegData = 0x0 // RHR (read) / THR (write) when DLAB=0; DLL when DLAB=1
	uartRegIER  = 0x1 // DLM when DLAB=1
	uartRegIIR  = 0x2 // read: IIR, write: FCR
	uartRegLCR  = 0x3
	uartRegMCR  = 0x4
	uartRegLSR  = 0x5
	uartRegMSR  = 0x6
	uartRegSCR  = 0x7

	lcrDLAB = 0x80

	lsrDR   = 0x01
	lsrOE   = 0x02
	lsrPE   = 0x04
	lsrFE   = 0x08
	lsrBI   = 0x10
	lsrTHRE = 0x20
	lsrTEMT = 0x40

	mcrDTR  = 0x01
	mcrRTS  = 0x02
	mcrOUT1 = 0x04
	mcrOUT2 = 0x08
	mcrLOOP = 0x10

	uartFIFOSize      = 16
	uartRXStagingSize = 512
)

type uartByteState int

const (
	uartIdle uartByteState = iota
	uartStart
	uartData
	uartParity
	uartStop
)

// uartFIFO is a simple 16-byte head/tail ring buffer.
type uartFIFO struct {
	buf        [uartFIFOSize]byte
	head, tail int
	count      int
}

func (f *uartFIFO) push(b byte) bool {
	if f.count >= uartFIFOSize {
		return false
	}
	f.buf[f.tail] = b
	f.tail = (f.tail + 1) % uartFIFOSize
	f.count++
	return true
}

func (f *uartFIFO) pop() (byte, bool) {
	if f.count == 0 {
		return 0, false
	}
	b := f.buf[f.head]
	f.head = (f.head + 1) % uartFIFOSize
	f.count--
	return b, true
}

func (f *uartFIFO) empty() bool { return f.count == 0 }
func (f *uartFIFO) reset()      { *f = uartFIFO{} }

// UART16550 implements the register file, FIFOs, and bit-serial engine of
// the Beast's 16C550 UART, bridged to a TCP listener by
// uart_network.go.
type UART16550 struct {
	ier, lcr, mcr, scr byte
	fcrFIFOEnable      bool
	dll, dlm           byte

	lsr byte
	msr byte

	rxFIFO, txFIFO uartFIFO

	txState        uartByteState
	txShift        byte
	txLoaded       byte
	txBitIdx       int
	txSubCycle     uint64
	txBitsLeft     int
	txParityBit    bool

	rxState     uartByteState
	rxShift     byte
	rxBitIdx    int
	rxSubCycle  uint64
	rxBitsLeft  int
	rxStaging   [uartRXStagingSize]byte
	rxStagingLen int
	rxStagingPos int

	onByteOut func(byte) // called when a TX byte finishes shifting out

	log *diagLogger
}

func NewUART16550(logger *diagLogger) *UART16550 {
	u := &UART16550{log: logger}
	u.Reset()
	return u
}

func (u *UART16550) Reset() {
	u.ier, u.lcr, u.mcr, u.scr = 0, 0, 0, 0
	u.dll, u.dlm = 1, 0
	u.lsr = lsrTHRE | lsrTEMT
	u.msr = 0
	u.rxFIFO.reset()
	u.txFIFO.reset()
	u.txState = uartIdle
	u.rxState = uartIdle
	u.rxStagingLen = 0
	u.rxStagingPos = 0
}

// In handles a CPU IN from the 0x20-0x27 port group.
func (u *UART16550) In(offset byte) byte {
	switch offset & 0x07 {
	case uartRegData:
		if u.lcr&lcrDLAB != 0 {
			return u.dll
		}
		b, ok := u.rxFIFO.pop()
		if !ok {
			return 0
		}
		if u.rxFIFO.empty() {
			u.lsr &^= lsrDR
		}
		return b
	case uartRegIER:
		if u.lcr&lcrDLAB != 0 {
			return u.dlm
		}
		return u.ier
	case uartRegIIR:
		return u.iir()
	case uartRegLCR:
		return u.lcr
	case uartRegMCR:
		return u.mcr
	case uartRegLSR:
		return u.lsr
	case uartRegMSR:
		return u.msr
	case uartRegSCR:
		return u.scr
	}
	return 0xFF
}

// Out handles a CPU OUT to the 0x20-0x27 port group.
func (u *UART16550) Out(offset, value byte) {
	switch offset & 0x07 {
	case uartRegData:
		if u.lcr&lcrDLAB != 0 {
			u.dll = value
			return
		}
		if !u.txFIFO.push(value) {
			return
		}
		u.lsr &^= lsrTHRE | lsrTEMT
	case uartRegIER:
		if u.lcr&lcrDLAB != 0 {
			u.dlm = value
			return
		}
		u.ier = value
	case uartRegIIR:
		u.fcrFIFOEnable = value&0x01 != 0
		if value&0x02 != 0 {
			u.rxFIFO.reset()
			u.lsr &^= lsrDR
		}
		if value&0x04 != 0 {
			u.txFIFO.reset()
		}
	case uartRegLCR:
		u.lcr = value
	case uartRegMCR:
		u.mcr = value
	case uartRegSCR:
		u.scr = value
	}
}

func (u *UART16550) iir() byte {
	if u.lsr&lsrDR != 0 && u.ier&0x01 != 0 {
		return 0x04
	}
	if u.lsr&lsrTHRE != 0 && u.ier&0x02 != 0 {
		return 0x02
	}
	return 0x01
}

func (u *UART16550) divisor() uint16 {
	d := uint16(u.dlm)<<8 | uint16(u.dll)
	if d == 0 {
		return 1
	}
	return d
}

func (u *UART16550) wordLenBits() int { return int(u.lcr&0x03) + 5 }
func (u *UART16550) parityEnabled() bool { return u.lcr&0x08 != 0 }
func (u *UART16550) parityEven() bool    { return u.lcr&0x10 != 0 }
func (u *UART16550) stopBitSlots() int {
	if u.lcr&0x04 != 0 {
		return 2
	}
	return 1
}

// Tick advances the bit-serial engine by one CPU cycle. cyclePS is the
// virtual clock's cycle step; the UART's internal 16x-oversampled clock
// runs at cyclePS * divisor.7.
func (u *UART16550) Tick(cyclePS uint64) {
	subTick := cyclePS * uint64(u.divisor())
	if subTick == 0 {
		subTick = cyclePS
	}

	u.txSubCycle += cyclePS
	for u.txSubCycle >= subTick {
		u.txSubCycle -= subTick
		u.advanceTXSubTick()
	}

	u.rxSubCycle += cyclePS
	for u.rxSubCycle >= subTick {
		u.rxSubCycle -= subTick
		u.advanceRXSubTick()
	}
}

func (u *UART16550) advanceTXSubTick() {
	u.txBitIdx++
	if u.txBitIdx < 16 {
		return
	}
	u.txBitIdx = 0
	u.advanceTXBit()
}

func (u *UART16550) advanceTXBit() {
	switch u.txState {
	case uartIdle:
		b, ok := u.txFIFO.pop()
		if !ok {
			return
		}
		u.txShift = b
		u.txLoaded = b
		u.txBitsLeft = u.wordLenBits()
		u.txState = uartStart
		if u.txFIFO.empty() {
			u.lsr |= lsrTHRE
		}
	case uartStart:
		u.txState = uartData
	case uartData:
		u.txShift >>= 1
		u.txBitsLeft--
		if u.txBitsLeft == 0 {
			if u.parityEnabled() {
				u.txState = uartParity
			} else {
				u.txState = uartStop
				u.txBitsLeft = u.stopBitSlots()
			}
		}
	case uartParity:
		u.txState = uartStop
		u.txBitsLeft = u.stopBitSlots()
	case uartStop:
		u.txBitsLeft--
		if u.txBitsLeft <= 0 {
			u.completeTXByte()
		}
	}
}

func (u *UART16550) completeTXByte() {
	out := u.lastTXByte()
	u.txState = uartIdle
	if u.txFIFO.empty() {
		u.lsr |= lsrTEMT
	}
	if u.mcr&mcrLOOP != 0 {
		u.deliverRXByte(out)
		return
	}
	if u.onByteOut != nil {
		u.onByteOut(out)
	}
}

// lastTXByte reconstructs the byte that was just shifted out; txShift has
// been shifted right bit-by-bit over the course of transmission so the
// original value is recovered by the word-length mask captured at load
// time. Kept simple: we stash the loaded byte separately instead.
func (u *UART16550) lastTXByte() byte { return u.txLoaded }

// ReceiveFromNetwork is called by the network bridge when bytes arrive
// from the connected TCP client; it stages them for the RX bit-serial
// engine to consume one at a time.
func (u *UART16550) ReceiveFromNetwork(data []byte) {
	n := copy(u.rxStaging[u.rxStagingLen:], data)
	u.rxStagingLen += n
}

func (u *UART16550) advanceRXSubTick() {
	u.rxBitIdx++
	if u.rxBitIdx < 16 {
		return
	}
	u.rxBitIdx = 0
	u.advanceRXBit()
}

func (u *UART16550) advanceRXBit() {
	switch u.rxState {
	case uartIdle:
		if u.rxStagingPos >= u.rxStagingLen {
			return
		}
		u.rxShift = u.rxStaging[u.rxStagingPos]
		u.rxStagingPos++
		if u.rxStagingPos == u.rxStagingLen {
			u.rxStagingLen = 0
			u.rxStagingPos = 0
		}
		u.rxBitsLeft = u.wordLenBits()
		u.rxState = uartStart
	case uartStart:
		u.rxState = uartData
	case uartData:
		u.rxBitsLeft--
		if u.rxBitsLeft == 0 {
			if u.parityEnabled() {
				u.rxState = uartParity
			} else {
				u.rxState = uartStop
				u.rxBitsLeft = u.stopBitSlots()
			}
		}
	case uartParity:
		u.rxState = uartStop
		u.rxBitsLeft = u.stopBitSlots()
	case uartStop:
		u.rxBitsLeft--
		if u.rxBitsLeft <= 0 {
			u.deliverRXByte(u.rxShift)
			u.rxState = uartIdle
		}
	}
}

func (u *UART16550) deliverRXByte(b byte) {
	if !u.rxFIFO.push(b) {
		u.lsr |= lsrOE
		return
	}
	u.lsr |= lsrDR
}

// InterruptPending reports whether the UART wants to assert its (logically
// software-visible) interrupt output, masked off the physical bus pin word
//.10 step 6.
func (u *UART16550) InterruptPending() bool {
	return u.iir()&0x01 == 0
}
