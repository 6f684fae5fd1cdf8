package main

// BusPins is the shared 64-bit pin word: a compact, OR-combined encoding of
// which signals are currently asserted (pulled low, in open-drain terms) by
// any peripheral during the current cycle. Treat individual bits only
// through the named accessors below, never index the raw integer elsewhere.
type BusPins uint64

const (
	PinSDA BusPins = 1 << iota
	PinSCL
	PinRTCSquareWave
	PinUARTInt
	PinPIOInt
	// PinCPUIRQ is reserved for a future direct-wired interrupt source;
	// today the CPU interrupt line is derived straight from PinPIOInt
	// rather than latched into the shared word.
	PinCPUIRQ
)

func (p BusPins) has(mask BusPins) bool { return p&mask != 0 }

// Pull ORs in the bits a peripheral wants asserted this cycle. Open-drain
// semantics: a peripheral may only ever add assertions, never clear bits
// another peripheral set; the combining pass simply accumulates across the
// fixed tick order (PIO -> I2C -> RTC -> UART) and is reset to zero at the
// start of the next cycle by the caller.
func (p *BusPins) Pull(mask BusPins) { *p |= mask }

func (p BusPins) SDA() bool  { return p.has(PinSDA) }
func (p BusPins) SCL() bool  { return p.has(PinSCL) }
