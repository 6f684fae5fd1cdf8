package main

// Z80 disassembler: decodes one instruction at a time into the mnemonic
// strings the debugger's listing and classify() both consume. The base
// (unprefixed) opcode table is built the same way the CPU core builds its
// own dispatch tables in cpu_ops_base.go - a [256]-entry array filled with
// a default, then overwritten range-by-range and opcode-by-opcode in an
// init-time builder - so decoding an instruction and executing it walk the
// same kind of table instead of two differently-shaped pieces of code.
// Branch-target detection follows the same pattern: a [256]branchKind
// lookup instead of one long multi-way OR.

import (
	"fmt"
	"strings"
)

// disasmFunc decodes the instruction starting at data[0] (pc is its
// address, needed for relative-branch targets) and returns its size in
// bytes and its mnemonic text.
type disasmFunc func(data []byte, pc uint16) (int, string)

var z80Reg8 = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var z80Reg16 = [4]string{"BC", "DE", "HL", "SP"}
var z80Reg16Push = [4]string{"BC", "DE", "HL", "AF"}
var z80Cond = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
var z80ALU = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}

var baseDisasmTable [256]disasmFunc

type branchKind int

const (
	branchNone branchKind = iota
	branchAbsolute
	branchRelative
)

var branchKindTable [256]branchKind

func init() {
	initBaseDisasmTable()
	initBranchKindTable()
}

func initBranchKindTable() {
	for _, op := range []byte{
		0xC3, 0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA, // JP nn / JP cc,nn
		0xCD, 0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC, // CALL nn / CALL cc,nn
	} {
		branchKindTable[op] = branchAbsolute
	}
	for _, op := range []byte{0x18, 0x20, 0x28, 0x30, 0x38, 0x10} { // JR / JR cc / DJNZ
		branchKindTable[op] = branchRelative
	}
}

func disasmUnknown(data []byte, pc uint16) (int, string) {
	return 1, fmt.Sprintf("db $%02X", data[0])
}

func disasmFixed(size int, mnemonic string) disasmFunc {
	return func(data []byte, pc uint16) (int, string) { return size, mnemonic }
}

func initBaseDisasmTable() {
	for i := range baseDisasmTable {
		baseDisasmTable[i] = disasmUnknown
	}

	baseDisasmTable[0x00] = disasmFixed(1, "NOP")
	baseDisasmTable[0x76] = disasmFixed(1, "HALT")

	// LD r, r' (01rrrsss), HALT already claimed 0x76 above.
	for op := 0x40; op <= 0x7F; op++ {
		o := byte(op)
		if o == 0x76 {
			continue
		}
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("LD %s, %s", z80Reg8[(o>>3)&7], z80Reg8[o&7])
		}
	}

	// ALU r (10aaasss)
	for op := 0x80; op <= 0xBF; op++ {
		o := byte(op)
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("%s %s", z80ALU[(o>>3)&7], z80Reg8[o&7])
		}
	}

	for _, op := range []byte{0x01, 0x11, 0x21, 0x31} { // LD rr, nn
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 3 {
				return 1, fmt.Sprintf("db $%02X", o)
			}
			nn := uint16(data[1]) | uint16(data[2])<<8
			return 3, fmt.Sprintf("LD %s, $%04X", z80Reg16[(o>>4)&3], nn)
		}
	}
	for _, op := range []byte{0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E} { // LD r, n
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 2 {
				return 1, fmt.Sprintf("db $%02X", o)
			}
			return 2, fmt.Sprintf("LD %s, $%02X", z80Reg8[(o>>3)&7], data[1])
		}
	}
	for _, op := range []byte{0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE} { // ALU n
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 2 {
				return 1, fmt.Sprintf("db $%02X", o)
			}
			return 2, fmt.Sprintf("%s $%02X", z80ALU[(o>>3)&7], data[1])
		}
	}

	baseDisasmTable[0xC3] = func(data []byte, pc uint16) (int, string) { // JP nn
		if len(data) < 3 {
			return 1, "JP ???"
		}
		return 3, fmt.Sprintf("JP $%04X", uint16(data[1])|uint16(data[2])<<8)
	}
	baseDisasmTable[0xCD] = func(data []byte, pc uint16) (int, string) { // CALL nn
		if len(data) < 3 {
			return 1, "CALL ???"
		}
		return 3, fmt.Sprintf("CALL $%04X", uint16(data[1])|uint16(data[2])<<8)
	}
	baseDisasmTable[0xC9] = disasmFixed(1, "RET")
	baseDisasmTable[0x18] = func(data []byte, pc uint16) (int, string) { // JR e
		if len(data) < 2 {
			return 1, "JR ???"
		}
		return 2, fmt.Sprintf("JR $%04X", pc+2+uint16(int8(data[1])))
	}
	for _, op := range []byte{0x20, 0x28, 0x30, 0x38} { // JR cc, e
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 2 {
				return 1, fmt.Sprintf("JR %s, ???", z80Cond[(o>>3)&3])
			}
			return 2, fmt.Sprintf("JR %s, $%04X", z80Cond[(o>>3)&3], pc+2+uint16(int8(data[1])))
		}
	}
	for _, op := range []byte{0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA} { // JP cc, nn
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 3 {
				return 1, fmt.Sprintf("JP %s, ???", z80Cond[(o>>3)&7])
			}
			nn := uint16(data[1]) | uint16(data[2])<<8
			return 3, fmt.Sprintf("JP %s, $%04X", z80Cond[(o>>3)&7], nn)
		}
	}
	for _, op := range []byte{0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC} { // CALL cc, nn
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			if len(data) < 3 {
				return 1, fmt.Sprintf("CALL %s, ???", z80Cond[(o>>3)&7])
			}
			nn := uint16(data[1]) | uint16(data[2])<<8
			return 3, fmt.Sprintf("CALL %s, $%04X", z80Cond[(o>>3)&7], nn)
		}
	}
	for _, op := range []byte{0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8} { // RET cc
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("RET %s", z80Cond[(o>>3)&7])
		}
	}
	for _, op := range []byte{0xC5, 0xD5, 0xE5, 0xF5} { // PUSH rr
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("PUSH %s", z80Reg16Push[(o>>4)&3])
		}
	}
	for _, op := range []byte{0xC1, 0xD1, 0xE1, 0xF1} { // POP rr
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("POP %s", z80Reg16Push[(o>>4)&3])
		}
	}
	for _, op := range []byte{0x03, 0x13, 0x23, 0x33} { // INC rr
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("INC %s", z80Reg16[(o>>4)&3])
		}
	}
	for _, op := range []byte{0x0B, 0x1B, 0x2B, 0x3B} { // DEC rr
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("DEC %s", z80Reg16[(o>>4)&3])
		}
	}
	for _, op := range []byte{0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C} { // INC r
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("INC %s", z80Reg8[(o>>3)&7])
		}
	}
	for _, op := range []byte{0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D} { // DEC r
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("DEC %s", z80Reg8[(o>>3)&7])
		}
	}
	for _, op := range []byte{0x09, 0x19, 0x29, 0x39} { // ADD HL, rr
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("ADD HL, %s", z80Reg16[(o>>4)&3])
		}
	}

	baseDisasmTable[0x0A] = disasmFixed(1, "LD A, (BC)")
	baseDisasmTable[0x1A] = disasmFixed(1, "LD A, (DE)")
	baseDisasmTable[0x02] = disasmFixed(1, "LD (BC), A")
	baseDisasmTable[0x12] = disasmFixed(1, "LD (DE), A")
	baseDisasmTable[0x22] = func(data []byte, pc uint16) (int, string) { // LD (nn), HL
		if len(data) < 3 {
			return 1, "LD (nn), HL"
		}
		nn := uint16(data[1]) | uint16(data[2])<<8
		return 3, fmt.Sprintf("LD ($%04X), HL", nn)
	}
	baseDisasmTable[0x2A] = func(data []byte, pc uint16) (int, string) { // LD HL, (nn)
		if len(data) < 3 {
			return 1, "LD HL, (nn)"
		}
		nn := uint16(data[1]) | uint16(data[2])<<8
		return 3, fmt.Sprintf("LD HL, ($%04X)", nn)
	}
	baseDisasmTable[0x32] = func(data []byte, pc uint16) (int, string) { // LD (nn), A
		if len(data) < 3 {
			return 1, "LD (nn), A"
		}
		nn := uint16(data[1]) | uint16(data[2])<<8
		return 3, fmt.Sprintf("LD ($%04X), A", nn)
	}
	baseDisasmTable[0x3A] = func(data []byte, pc uint16) (int, string) { // LD A, (nn)
		if len(data) < 3 {
			return 1, "LD A, (nn)"
		}
		nn := uint16(data[1]) | uint16(data[2])<<8
		return 3, fmt.Sprintf("LD A, ($%04X)", nn)
	}

	baseDisasmTable[0xE9] = disasmFixed(1, "JP (HL)")
	baseDisasmTable[0xF9] = disasmFixed(1, "LD SP, HL")
	baseDisasmTable[0xEB] = disasmFixed(1, "EX DE, HL")
	baseDisasmTable[0xD9] = disasmFixed(1, "EXX")
	baseDisasmTable[0x08] = disasmFixed(1, "EX AF, AF'")
	baseDisasmTable[0xF3] = disasmFixed(1, "DI")
	baseDisasmTable[0xFB] = disasmFixed(1, "EI")
	baseDisasmTable[0xDB] = func(data []byte, pc uint16) (int, string) { // IN A, (n)
		if len(data) < 2 {
			return 1, "IN A, (n)"
		}
		return 2, fmt.Sprintf("IN A, ($%02X)", data[1])
	}
	baseDisasmTable[0xD3] = func(data []byte, pc uint16) (int, string) { // OUT (n), A
		if len(data) < 2 {
			return 1, "OUT (n), A"
		}
		return 2, fmt.Sprintf("OUT ($%02X), A", data[1])
	}
	for _, op := range []byte{0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF} { // RST n
		o := op
		baseDisasmTable[o] = func(data []byte, pc uint16) (int, string) {
			return 1, fmt.Sprintf("RST $%02X", o&0x38)
		}
	}

	baseDisasmTable[0x07] = disasmFixed(1, "RLCA")
	baseDisasmTable[0x0F] = disasmFixed(1, "RRCA")
	baseDisasmTable[0x17] = disasmFixed(1, "RLA")
	baseDisasmTable[0x1F] = disasmFixed(1, "RRA")
	baseDisasmTable[0x27] = disasmFixed(1, "DAA")
	baseDisasmTable[0x2F] = disasmFixed(1, "CPL")
	baseDisasmTable[0x37] = disasmFixed(1, "SCF")
	baseDisasmTable[0x3F] = disasmFixed(1, "CCF")
	baseDisasmTable[0x10] = func(data []byte, pc uint16) (int, string) { // DJNZ
		if len(data) < 2 {
			return 1, "DJNZ ???"
		}
		return 2, fmt.Sprintf("DJNZ $%04X", pc+2+uint16(int8(data[1])))
	}
	baseDisasmTable[0xE3] = disasmFixed(1, "EX (SP), HL")
}

func decodeZ80Base(data []byte, pc uint16) (int, string) {
	return baseDisasmTable[data[0]](data, pc)
}

func decodeZ80Instruction(data []byte, pc uint16) (int, string) {
	op := data[0]

	switch op {
	case 0xCB:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		return 2, decodeZ80CB(data[1])
	case 0xED:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		return decodeZ80ED(data[1:], pc)
	case 0xDD:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		return decodeZ80DDFD(data[1:], pc, "IX")
	case 0xFD:
		if len(data) < 2 {
			return 1, fmt.Sprintf("db $%02X", op)
		}
		return decodeZ80DDFD(data[1:], pc, "IY")
	}

	return decodeZ80Base(data, pc)
}

// disassembleZ80 decodes count instructions starting at addr, reading
// through readMem so the debugger can disassemble out of live guest
// memory, a snapshot, or a ROM image interchangeably.
func disassembleZ80(readMem func(addr uint64, size int) []byte, addr uint64, count int) []DisassembledLine {
	lines := make([]DisassembledLine, 0, count)
	for range count {
		data := readMem(addr, 4) // max Z80 instruction is 4 bytes
		if len(data) < 1 {
			break
		}
		size, mnemonic := decodeZ80Instruction(data, uint16(addr))
		line := DisassembledLine{
			Address:  addr,
			HexBytes: hexBytes(data, size),
			Mnemonic: mnemonic,
			Size:     size,
		}
		annotateBranch(&line, data, addr)
		lines = append(lines, line)
		addr += uint64(size)
	}
	return lines
}

func hexBytes(data []byte, size int) string {
	parts := make([]string, 0, size)
	for j := 0; j < size && j < len(data); j++ {
		parts = append(parts, fmt.Sprintf("%02X", data[j]))
	}
	return strings.Join(parts, " ")
}

func annotateBranch(line *DisassembledLine, data []byte, addr uint64) {
	switch branchKindTable[data[0]] {
	case branchAbsolute:
		line.IsBranch = true
		if len(data) >= 3 {
			line.BranchTarget = uint64(uint16(data[1]) | uint16(data[2])<<8)
		}
	case branchRelative:
		line.IsBranch = true
		if len(data) >= 2 {
			line.BranchTarget = uint64(uint16(addr) + 2 + uint16(int8(data[1])))
		}
	}
}
