package main

// Flash state machine constants.3.
const (
	flashUnlockAddr1 = 0x5555
	flashUnlockAddr2 = 0x2AAA

	flashCmdProgram    = 0xA0
	flashCmdErasePrep  = 0x80
	flashCmdChipErase  = 0x10
	flashCmdSectorEra  = 0x30
	flashUnlockByte1   = 0xAA
	flashUnlockByte2   = 0x55
	flashSectorSize    = 4 * 1024
	flashSectorMask    = ^uint32(flashSectorSize - 1)
)

type flashPhase int

const (
	flashIdle flashPhase = iota
	flashS1              // saw 0x5555 <- 0xAA
	flashS2              // saw 0x2AAA <- 0x55 after S1
	flashActionSelected  // saw 0x5555 <- command byte after S2
	flashEraseS1         // nested unlock, first write (after 0x80 action)
	flashEraseS2         // nested unlock, second write
	flashBusy
)

// Timed completion constants. Real JEDEC parts measure microseconds; we
// keep these in picoseconds to stay in the clock's native unit.
const (
	tBytProgramPS  uint64 = 20_000_000     // 20 microseconds
	tSectorErasePS uint64 = 25_000_000_000 // 25 milliseconds
	tChipErasePS   uint64 = 50_000_000_000 // 50 milliseconds
)

// FlashMachine emulates sector-erase/byte-program JEDEC command sequences
// on writes to ROM. Reads pass straight through except during BUSY, when
// they return the in-progress byte XORed with a toggling bit 6.
type FlashMachine struct {
	phase      flashPhase
	pendingCmd byte

	busyAddr    uint32
	busyIsErase bool
	eraseBase   uint32
	eraseIsChip bool
	programByte byte
	completeAt  uint64
	toggle      bool
}

// Write processes one ROM-space write at the given physical offset. rom is
// mutated directly only by the completion path (via Read's lazy commit) or
// immediately for erase when the completion arrives; never on the write
// itself (byte program and erase always complete asynchronously).
func (f *FlashMachine) Write(rom []byte, offset uint32, value byte, nowPS uint64) {
	switch f.phase {
	case flashIdle:
		if offset == flashUnlockAddr1 && value == flashUnlockByte1 {
			f.phase = flashS1
			return
		}
	case flashS1:
		if offset == flashUnlockAddr2 && value == flashUnlockByte2 {
			f.phase = flashS2
			return
		}
	case flashS2:
		if offset == flashUnlockAddr1 {
			switch value {
			case flashCmdProgram:
				f.phase = flashActionSelected
				f.pendingCmd = flashCmdProgram
				return
			case flashCmdErasePrep:
				f.phase = flashActionSelected
				f.pendingCmd = flashCmdErasePrep
				return
			}
		}
	case flashActionSelected:
		if f.pendingCmd == flashCmdProgram {
			f.beginProgram(offset, value, nowPS)
			return
		}
		// erase: needs a second unlock sequence before the erase command
		if offset == flashUnlockAddr1 && value == flashUnlockByte1 {
			f.phase = flashEraseS1
			return
		}
	case flashEraseS1:
		if offset == flashUnlockAddr2 && value == flashUnlockByte2 {
			f.phase = flashEraseS2
			return
		}
	case flashEraseS2:
		if offset == flashUnlockAddr1 && value == flashCmdChipErase {
			f.beginChipErase(rom, nowPS)
			return
		}
		if value == flashCmdSectorEra {
			f.beginSectorErase(rom, offset, nowPS)
			return
		}
	case flashBusy:
		// ignore writes while a program/erase is in flight
		if nowPS < f.completeAt {
			return
		}
		f.commit(rom)
		f.Write(rom, offset, value, nowPS)
		return
	}
	f.phase = flashIdle
}

func (f *FlashMachine) beginProgram(offset uint32, value byte, nowPS uint64) {
	f.phase = flashBusy
	f.busyIsErase = false
	f.busyAddr = offset
	f.programByte = value
	f.completeAt = nowPS + tBytProgramPS
	f.toggle = false
}

func (f *FlashMachine) beginChipErase(rom []byte, nowPS uint64) {
	f.phase = flashBusy
	f.busyIsErase = true
	f.eraseIsChip = true
	f.completeAt = nowPS + tChipErasePS
	f.toggle = false
	_ = rom
}

func (f *FlashMachine) beginSectorErase(rom []byte, offset uint32, nowPS uint64) {
	f.phase = flashBusy
	f.busyIsErase = true
	f.eraseIsChip = false
	f.eraseBase = offset & flashSectorMask
	f.completeAt = nowPS + tSectorErasePS
	f.toggle = false
	_ = rom
}

// Read returns the ROM byte at offset, honouring BUSY toggle-bit semantics
// and performing the lazy commit once the completion timestamp has passed.
func (f *FlashMachine) Read(rom []byte, offset uint32, nowPS uint64) byte {
	if f.phase != flashBusy {
		return rom[offset]
	}
	if nowPS >= f.completeAt {
		f.commit(rom)
		return rom[offset]
	}
	if f.busyIsErase {
		f.toggle = !f.toggle
		v := byte(0xFF)
		if f.toggle {
			v ^= 0x40
		}
		return v
	}
	if offset != f.busyAddr {
		return rom[offset]
	}
	f.toggle = !f.toggle
	v := f.programByte
	if f.toggle {
		v ^= 0x40
	}
	return v
}

func (f *FlashMachine) commit(rom []byte) {
	if f.busyIsErase {
		if f.eraseIsChip {
			for i := range rom {
				rom[i] = 0xFF
			}
		} else {
			end := f.eraseBase + flashSectorSize
			if int(end) > len(rom) {
				end = uint32(len(rom))
			}
			for i := f.eraseBase; i < end; i++ {
				rom[i] = 0xFF
			}
		}
	} else {
		rom[f.busyAddr] = f.programByte
	}
	f.phase = flashIdle
}

// Busy reports whether a program/erase is currently in flight.
func (f *FlashMachine) Busy() bool { return f.phase == flashBusy }
