package main

// Unprefixed (base) opcode table and implementations: the 0x00-0xFF
// instructions that don't require a CB/DD/ED/FD escape byte, plus the
// 16-bit arithmetic and flag-update helpers they share with the prefixed
// op files.

func (c *CPU_Z80) initBaseOps() {
	for i := range c.baseOps {
		c.baseOps[i] = (*CPU_Z80).opUnimplemented
	}

	c.baseOps[0x00] = (*CPU_Z80).opNOP
	c.baseOps[0x76] = (*CPU_Z80).opHALT

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		op := opcode
		dest := byte((op >> 3) & 0x07)
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDRegReg(dest, src)
		}
	}

	ldRegImmOpcodes := map[byte]byte{
		0x06: 0,
		0x0E: 1,
		0x16: 2,
		0x1E: 3,
		0x26: 4,
		0x2E: 5,
		0x36: 6,
		0x3E: 7,
	}
	for opcode, reg := range ldRegImmOpcodes {
		op := opcode
		dest := reg
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDRegImm(dest)
		}
	}

	for opcode := 0x80; opcode <= 0x87; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluAdd, src)
		}
	}
	for opcode := 0x88; opcode <= 0x8F; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluAdc, src)
		}
	}
	for opcode := 0x90; opcode <= 0x97; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluSub, src)
		}
	}
	for opcode := 0x98; opcode <= 0x9F; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluSbc, src)
		}
	}
	for opcode := 0xA0; opcode <= 0xA7; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluAnd, src)
		}
	}
	for opcode := 0xA8; opcode <= 0xAF; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluXor, src)
		}
	}
	for opcode := 0xB0; opcode <= 0xB7; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluOr, src)
		}
	}
	for opcode := 0xB8; opcode <= 0xBF; opcode++ {
		op := opcode
		src := byte(op & 0x07)
		c.baseOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUReg(aluCp, src)
		}
	}

	c.baseOps[0xC6] = (*CPU_Z80).opADDImm
	c.baseOps[0xCE] = (*CPU_Z80).opADCImm
	c.baseOps[0xD6] = (*CPU_Z80).opSUBImm
	c.baseOps[0xDE] = (*CPU_Z80).opSBCImm
	c.baseOps[0xE6] = (*CPU_Z80).opANDImm
	c.baseOps[0xEE] = (*CPU_Z80).opXORImm
	c.baseOps[0xF6] = (*CPU_Z80).opORImm
	c.baseOps[0xFE] = (*CPU_Z80).opCPImm

	c.baseOps[0x27] = (*CPU_Z80).opDAA
	c.baseOps[0x2F] = (*CPU_Z80).opCPL
	c.baseOps[0x37] = (*CPU_Z80).opSCF
	c.baseOps[0x3F] = (*CPU_Z80).opCCF

	c.baseOps[0x01] = (*CPU_Z80).opLDBCNN
	c.baseOps[0x11] = (*CPU_Z80).opLDDENN
	c.baseOps[0x21] = (*CPU_Z80).opLDHLImm
	c.baseOps[0x31] = (*CPU_Z80).opLDSPNN
	c.baseOps[0x09] = (*CPU_Z80).opADDHLBC
	c.baseOps[0x19] = (*CPU_Z80).opADDHLDE
	c.baseOps[0x29] = (*CPU_Z80).opADDHLHL
	c.baseOps[0x39] = (*CPU_Z80).opADDHLSP
	c.baseOps[0x03] = (*CPU_Z80).opINCBC
	c.baseOps[0x13] = (*CPU_Z80).opINCDE
	c.baseOps[0x23] = (*CPU_Z80).opINCHL
	c.baseOps[0x33] = (*CPU_Z80).opINCSP
	c.baseOps[0x0B] = (*CPU_Z80).opDECBC
	c.baseOps[0x1B] = (*CPU_Z80).opDECDE
	c.baseOps[0x2B] = (*CPU_Z80).opDECHL
	c.baseOps[0x3B] = (*CPU_Z80).opDECSP
	c.baseOps[0xC5] = (*CPU_Z80).opPUSHBC
	c.baseOps[0xD5] = (*CPU_Z80).opPUSHDE
	c.baseOps[0xE5] = (*CPU_Z80).opPUSHLH
	c.baseOps[0xF5] = (*CPU_Z80).opPUSHAF
	c.baseOps[0xC1] = (*CPU_Z80).opPOPBC
	c.baseOps[0xD1] = (*CPU_Z80).opPOPDE
	c.baseOps[0xE1] = (*CPU_Z80).opPOPHL
	c.baseOps[0xF1] = (*CPU_Z80).opPOPAF
	c.baseOps[0xC3] = (*CPU_Z80).opJPNN
	c.baseOps[0x18] = (*CPU_Z80).opJR
	c.baseOps[0x10] = (*CPU_Z80).opDJNZ
	c.baseOps[0xCD] = (*CPU_Z80).opCALLNN
	c.baseOps[0xC9] = (*CPU_Z80).opRET
	c.baseOps[0xE3] = (*CPU_Z80).opEXSPHL
	c.baseOps[0x08] = (*CPU_Z80).opEXAF
	c.baseOps[0xEB] = (*CPU_Z80).opEXDEHL
	c.baseOps[0xD9] = (*CPU_Z80).opEXX
	c.baseOps[0xE9] = (*CPU_Z80).opJPHL
	c.baseOps[0x22] = (*CPU_Z80).opLDNNHL
	c.baseOps[0x2A] = (*CPU_Z80).opLDHLNN
	c.baseOps[0x32] = (*CPU_Z80).opLDNNA
	c.baseOps[0x3A] = (*CPU_Z80).opLDANN
	c.baseOps[0x02] = (*CPU_Z80).opLDBCA
	c.baseOps[0x0A] = (*CPU_Z80).opLDABC
	c.baseOps[0x12] = (*CPU_Z80).opLDDEA
	c.baseOps[0x1A] = (*CPU_Z80).opLDABD
	c.baseOps[0xF9] = (*CPU_Z80).opLDSPHL
	c.baseOps[0xD3] = (*CPU_Z80).opOUTNA
	c.baseOps[0xDB] = (*CPU_Z80).opINAN
	c.baseOps[0x07] = (*CPU_Z80).opRLCA
	c.baseOps[0x0F] = (*CPU_Z80).opRRCA
	c.baseOps[0x17] = (*CPU_Z80).opRLA
	c.baseOps[0x1F] = (*CPU_Z80).opRRA
	c.baseOps[0xC7] = (*CPU_Z80).opRST00
	c.baseOps[0xCF] = (*CPU_Z80).opRST08
	c.baseOps[0xD7] = (*CPU_Z80).opRST10
	c.baseOps[0xDF] = (*CPU_Z80).opRST18
	c.baseOps[0xE7] = (*CPU_Z80).opRST20
	c.baseOps[0xEF] = (*CPU_Z80).opRST28
	c.baseOps[0xF7] = (*CPU_Z80).opRST30
	c.baseOps[0xFF] = (*CPU_Z80).opRST38
	c.baseOps[0x04] = (*CPU_Z80).opINCB
	c.baseOps[0x0C] = (*CPU_Z80).opINCC
	c.baseOps[0x14] = (*CPU_Z80).opINCD
	c.baseOps[0x1C] = (*CPU_Z80).opINCE
	c.baseOps[0x24] = (*CPU_Z80).opINCH
	c.baseOps[0x2C] = (*CPU_Z80).opINCL
	c.baseOps[0x34] = (*CPU_Z80).opINCHLMem
	c.baseOps[0x3C] = (*CPU_Z80).opINCA
	c.baseOps[0x05] = (*CPU_Z80).opDECB
	c.baseOps[0x0D] = (*CPU_Z80).opDECC
	c.baseOps[0x15] = (*CPU_Z80).opDECD
	c.baseOps[0x1D] = (*CPU_Z80).opDECE
	c.baseOps[0x25] = (*CPU_Z80).opDECH
	c.baseOps[0x2D] = (*CPU_Z80).opDECL
	c.baseOps[0x35] = (*CPU_Z80).opDECHLMem
	c.baseOps[0x3D] = (*CPU_Z80).opDECA
	c.baseOps[0xC2] = (*CPU_Z80).opJPNZ
	c.baseOps[0xCA] = (*CPU_Z80).opJPZ
	c.baseOps[0xD2] = (*CPU_Z80).opJPNC
	c.baseOps[0xDA] = (*CPU_Z80).opJPC
	c.baseOps[0xE2] = (*CPU_Z80).opJPPO
	c.baseOps[0xEA] = (*CPU_Z80).opJPPE
	c.baseOps[0xF2] = (*CPU_Z80).opJPNS
	c.baseOps[0xFA] = (*CPU_Z80).opJPS
	c.baseOps[0x20] = (*CPU_Z80).opJRNZ
	c.baseOps[0x28] = (*CPU_Z80).opJRZ
	c.baseOps[0x30] = (*CPU_Z80).opJRNC
	c.baseOps[0x38] = (*CPU_Z80).opJRC
	c.baseOps[0xC4] = (*CPU_Z80).opCALLNZ
	c.baseOps[0xCC] = (*CPU_Z80).opCALLZ
	c.baseOps[0xD4] = (*CPU_Z80).opCALLNC
	c.baseOps[0xDC] = (*CPU_Z80).opCALLC
	c.baseOps[0xE4] = (*CPU_Z80).opCALLPO
	c.baseOps[0xEC] = (*CPU_Z80).opCALLPE
	c.baseOps[0xF4] = (*CPU_Z80).opCALLNS
	c.baseOps[0xFC] = (*CPU_Z80).opCALLS
	c.baseOps[0xC0] = (*CPU_Z80).opRETNZ
	c.baseOps[0xC8] = (*CPU_Z80).opRETZ
	c.baseOps[0xD0] = (*CPU_Z80).opRETNC
	c.baseOps[0xD8] = (*CPU_Z80).opRETC
	c.baseOps[0xE0] = (*CPU_Z80).opRETPO
	c.baseOps[0xE8] = (*CPU_Z80).opRETPE
	c.baseOps[0xF0] = (*CPU_Z80).opRETNS
	c.baseOps[0xF8] = (*CPU_Z80).opRETS
	c.baseOps[0xCB] = (*CPU_Z80).opCBPrefix
	c.baseOps[0xDD] = (*CPU_Z80).opDDPrefix
	c.baseOps[0xFD] = (*CPU_Z80).opFDPrefix
	c.baseOps[0xED] = (*CPU_Z80).opEDPrefix
	c.baseOps[0xF3] = (*CPU_Z80).opDI
	c.baseOps[0xFB] = (*CPU_Z80).opEI
}

func (c *CPU_Z80) opUnimplemented() {
	c.tick(4)
}

func (c *CPU_Z80) opNOP() {
	c.tick(4)
}

func (c *CPU_Z80) opHALT() {
	c.Halted = true
	c.tick(4)
}

func (c *CPU_Z80) opLDRegReg(dest, src byte) {
	value := c.readReg8(src)
	c.writeReg8(dest, value)
	if dest == 6 || src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opLDRegImm(dest byte) {
	value := c.fetchByte()
	c.writeReg8(dest, value)
	if dest == 6 {
		c.tick(10)
	} else {
		c.tick(7)
	}
}

type aluOp byte

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

func (c *CPU_Z80) opALUReg(op aluOp, src byte) {
	value := c.readReg8(src)
	c.performALU(op, value)
	if src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU_Z80) opADDImm() {
	value := c.fetchByte()
	c.performALU(aluAdd, value)
	c.tick(7)
}

func (c *CPU_Z80) opADCImm() {
	value := c.fetchByte()
	c.performALU(aluAdc, value)
	c.tick(7)
}

func (c *CPU_Z80) opSUBImm() {
	value := c.fetchByte()
	c.performALU(aluSub, value)
	c.tick(7)
}

func (c *CPU_Z80) opSBCImm() {
	value := c.fetchByte()
	c.performALU(aluSbc, value)
	c.tick(7)
}

func (c *CPU_Z80) opANDImm() {
	value := c.fetchByte()
	c.performALU(aluAnd, value)
	c.tick(7)
}

func (c *CPU_Z80) opXORImm() {
	value := c.fetchByte()
	c.performALU(aluXor, value)
	c.tick(7)
}

func (c *CPU_Z80) opORImm() {
	value := c.fetchByte()
	c.performALU(aluOr, value)
	c.tick(7)
}

func (c *CPU_Z80) opCPImm() {
	value := c.fetchByte()
	c.performALU(aluCp, value)
	c.tick(7)
}

func (c *CPU_Z80) opDAA() {
	a := c.A
	adj := byte(0)
	carry := c.Flag(z80FlagC)
	if c.Flag(z80FlagH) || (!c.Flag(z80FlagN) && (a&0x0F) > 0x09) {
		adj |= 0x06
	}
	if carry || (!c.Flag(z80FlagN) && a > 0x99) {
		adj |= 0x60
	}

	var res byte
	if c.Flag(z80FlagN) {
		res = a - adj
	} else {
		res = a + adj
	}

	c.A = res
	c.F &^= z80FlagS | z80FlagZ | z80FlagPV | z80FlagH | z80FlagC | z80FlagX | z80FlagY
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if parity8(res) {
		c.F |= z80FlagPV
	}
	if c.Flag(z80FlagN) {
		if (a^res)&0x10 != 0 {
			c.F |= z80FlagH
		}
	} else if (a&0x0F)+byte(adj&0x0F) > 0x0F {
		c.F |= z80FlagH
	}
	if adj >= 0x60 {
		c.F |= z80FlagC
	}
	c.F |= res & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU_Z80) opCPL() {
	c.A = ^c.A
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV | z80FlagC)) | z80FlagH | z80FlagN
	c.F |= c.A & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU_Z80) opSCF() {
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | z80FlagC
	c.F |= c.A & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU_Z80) opCCF() {
	carry := c.Flag(z80FlagC)
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagH
	} else {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU_Z80) opLDBCNN() {
	c.SetBC(c.fetchWord())
	c.tick(10)
}

func (c *CPU_Z80) opLDDENN() {
	c.SetDE(c.fetchWord())
	c.tick(10)
}

func (c *CPU_Z80) opLDHLImm() {
	c.SetHL(c.fetchWord())
	c.tick(10)
}

func (c *CPU_Z80) opLDSPNN() {
	c.SP = c.fetchWord()
	c.tick(10)
}

func (c *CPU_Z80) opADDHLBC() {
	c.addHL(c.BC())
	c.tick(11)
}

func (c *CPU_Z80) opADDHLDE() {
	c.addHL(c.DE())
	c.tick(11)
}

func (c *CPU_Z80) opADDHLHL() {
	c.addHL(c.HL())
	c.tick(11)
}

func (c *CPU_Z80) opADDHLSP() {
	c.addHL(c.SP)
	c.tick(11)
}

func (c *CPU_Z80) opINCBC() {
	c.SetBC(c.BC() + 1)
	c.tick(6)
}

func (c *CPU_Z80) opINCDE() {
	c.SetDE(c.DE() + 1)
	c.tick(6)
}

func (c *CPU_Z80) opINCHL() {
	c.SetHL(c.HL() + 1)
	c.tick(6)
}

func (c *CPU_Z80) opINCSP() {
	c.SP++
	c.tick(6)
}

func (c *CPU_Z80) opDECBC() {
	c.SetBC(c.BC() - 1)
	c.tick(6)
}

func (c *CPU_Z80) opDECDE() {
	c.SetDE(c.DE() - 1)
	c.tick(6)
}

func (c *CPU_Z80) opDECHL() {
	c.SetHL(c.HL() - 1)
	c.tick(6)
}

func (c *CPU_Z80) opDECSP() {
	c.SP--
	c.tick(6)
}

func (c *CPU_Z80) opPUSHBC() {
	c.pushWord(c.BC())
	c.tick(11)
}

func (c *CPU_Z80) opPUSHDE() {
	c.pushWord(c.DE())
	c.tick(11)
}

func (c *CPU_Z80) opPUSHLH() {
	c.pushWord(c.HL())
	c.tick(11)
}

func (c *CPU_Z80) opPUSHAF() {
	c.pushWord(c.AF())
	c.tick(11)
}

func (c *CPU_Z80) opPOPBC() {
	c.SetBC(c.popWord())
	c.tick(10)
}

func (c *CPU_Z80) opPOPDE() {
	c.SetDE(c.popWord())
	c.tick(10)
}

func (c *CPU_Z80) opPOPHL() {
	c.SetHL(c.popWord())
	c.tick(10)
}

func (c *CPU_Z80) opPOPAF() {
	c.SetAF(c.popWord())
	c.tick(10)
}

func (c *CPU_Z80) opJPNN() {
	c.PC = c.fetchWord()
	c.tick(10)
}

func (c *CPU_Z80) opJR() {
	disp := int8(c.fetchByte())
	c.PC = uint16(int32(c.PC) + int32(disp))
	c.tick(12)
}

func (c *CPU_Z80) opDJNZ() {
	disp := int8(c.fetchByte())
	c.B--
	if c.B != 0 {
		c.PC = uint16(int32(c.PC) + int32(disp))
		c.tick(13)
	} else {
		c.tick(8)
	}
}

func (c *CPU_Z80) opCALLNN() {
	addr := c.fetchWord()
	c.pushWord(c.PC)
	c.PC = addr
	c.tick(17)
}

func (c *CPU_Z80) opRET() {
	c.PC = c.popWord()
	c.tick(10)
}

func (c *CPU_Z80) opEXSPHL() {
	low := c.read(c.SP)
	high := c.read(c.SP + 1)
	memVal := uint16(high)<<8 | uint16(low)
	hl := c.HL()
	c.write(c.SP, byte(hl))
	c.write(c.SP+1, byte(hl>>8))
	c.SetHL(memVal)
	c.WZ = memVal
	c.tick(19)
}

func (c *CPU_Z80) opEXAF() {
	c.ExAF()
	c.tick(4)
}

func (c *CPU_Z80) opEXDEHL() {
	c.D, c.H = c.H, c.D
	c.E, c.L = c.L, c.E
	c.tick(4)
}

func (c *CPU_Z80) opEXX() {
	c.Exx()
	c.tick(4)
}

func (c *CPU_Z80) opJPHL() {
	c.PC = c.HL()
	c.WZ = c.PC
	c.tick(4)
}

func (c *CPU_Z80) opLDNNHL() {
	addr := c.fetchWord()
	value := c.HL()
	c.write(addr, byte(value))
	c.write(addr+1, byte(value>>8))
	c.WZ = addr + 1
	c.tick(16)
}

func (c *CPU_Z80) opLDHLNN() {
	addr := c.fetchWord()
	low := c.read(addr)
	high := c.read(addr + 1)
	c.SetHL(uint16(high)<<8 | uint16(low))
	c.WZ = addr + 1
	c.tick(16)
}

func (c *CPU_Z80) opLDNNA() {
	addr := c.fetchWord()
	c.write(addr, c.A)
	c.WZ = addr
	c.tick(13)
}

func (c *CPU_Z80) opLDANN() {
	addr := c.fetchWord()
	c.A = c.read(addr)
	c.WZ = addr
	c.tick(13)
}

func (c *CPU_Z80) opLDBCA() {
	c.write(c.BC(), c.A)
	c.tick(7)
}

func (c *CPU_Z80) opLDABC() {
	c.A = c.read(c.BC())
	c.tick(7)
}

func (c *CPU_Z80) opLDDEA() {
	c.write(c.DE(), c.A)
	c.tick(7)
}

func (c *CPU_Z80) opLDABD() {
	c.A = c.read(c.DE())
	c.tick(7)
}

func (c *CPU_Z80) opLDSPHL() {
	c.SP = c.HL()
	c.tick(6)
}

func (c *CPU_Z80) opOUTNA() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.out(port, c.A)
	c.tick(11)
}

func (c *CPU_Z80) opINAN() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.A = c.in(port)
	c.updateInFlags(c.A)
	c.tick(11)
}

func (c *CPU_Z80) opRLCA() {
	carry := c.A&0x80 != 0
	c.A = c.A<<1 | c.A>>7
	c.updateRotateFlags(carry)
	c.tick(4)
}

func (c *CPU_Z80) opRRCA() {
	carry := c.A&0x01 != 0
	c.A = c.A>>1 | c.A<<7
	c.updateRotateFlags(carry)
	c.tick(4)
}

func (c *CPU_Z80) opRLA() {
	carryIn := c.Flag(z80FlagC)
	carryOut := c.A&0x80 != 0
	c.A = c.A << 1
	if carryIn {
		c.A |= 0x01
	}
	c.updateRotateFlags(carryOut)
	c.tick(4)
}

func (c *CPU_Z80) opRRA() {
	carryIn := c.Flag(z80FlagC)
	carryOut := c.A&0x01 != 0
	c.A = c.A >> 1
	if carryIn {
		c.A |= 0x80
	}
	c.updateRotateFlags(carryOut)
	c.tick(4)
}

func (c *CPU_Z80) opRST00() {
	c.opRST(0x00)
}

func (c *CPU_Z80) opRST08() {
	c.opRST(0x08)
}

func (c *CPU_Z80) opRST10() {
	c.opRST(0x10)
}

func (c *CPU_Z80) opRST18() {
	c.opRST(0x18)
}

func (c *CPU_Z80) opRST20() {
	c.opRST(0x20)
}

func (c *CPU_Z80) opRST28() {
	c.opRST(0x28)
}

func (c *CPU_Z80) opRST30() {
	c.opRST(0x30)
}

func (c *CPU_Z80) opRST38() {
	c.opRST(0x38)
}

func (c *CPU_Z80) opRST(vector uint16) {
	c.pushWord(c.PC)
	c.PC = vector
	c.tick(11)
}

func (c *CPU_Z80) opCBPrefix() {
	opcode := c.fetchOpcode()
	c.cbOps[opcode](c)
}

func (c *CPU_Z80) opDDPrefix() {
	opcode := c.fetchOpcode()
	prev := c.prefixMode
	c.prefixMode = z80PrefixDD
	c.prefixOpcode = opcode
	c.ddOps[opcode](c)
	c.prefixMode = prev
}

func (c *CPU_Z80) opFDPrefix() {
	opcode := c.fetchOpcode()
	prev := c.prefixMode
	c.prefixMode = z80PrefixFD
	c.prefixOpcode = opcode
	c.fdOps[opcode](c)
	c.prefixMode = prev
}

func (c *CPU_Z80) opEDPrefix() {
	opcode := c.fetchOpcode()
	c.edOps[opcode](c)
}

func (c *CPU_Z80) serviceNMI() {
	c.nmiPending = false
	c.Halted = false
	c.incrementR()
	c.pushWord(c.PC)
	c.IFF1 = false
	c.PC = 0x0066
	c.tick(11)
}

func (c *CPU_Z80) serviceIRQ() {
	c.Halted = false
	c.incrementR()
	c.IFF1 = false
	c.IFF2 = false
	switch c.IM {
	case 0:
		c.pushWord(c.PC)
		c.PC = c.im0Vector()
		c.WZ = c.PC
		c.tick(13)
	case 2:
		vector := uint16(c.I)<<8 | uint16(c.irqVector)
		low := c.read(vector)
		high := c.read(vector + 1)
		c.pushWord(c.PC)
		c.PC = uint16(high)<<8 | uint16(low)
		c.WZ = vector + 1
		c.tick(19)
	default:
		c.pushWord(c.PC)
		c.PC = 0x0038
		c.WZ = c.PC
		c.tick(13)
	}
}

func (c *CPU_Z80) im0Vector() uint16 {
	vector := c.irqVector
	if vector&0xC7 == 0xC7 {
		return uint16(vector & 0x38)
	}
	return 0x0038
}

func (c *CPU_Z80) opINCB() {
	c.B = c.inc8(c.B)
	c.tick(4)
}

func (c *CPU_Z80) opINCC() {
	c.C = c.inc8(c.C)
	c.tick(4)
}

func (c *CPU_Z80) opINCD() {
	c.D = c.inc8(c.D)
	c.tick(4)
}

func (c *CPU_Z80) opINCE() {
	c.E = c.inc8(c.E)
	c.tick(4)
}

func (c *CPU_Z80) opINCH() {
	c.writeReg8(4, c.inc8(c.readReg8(4)))
	c.tick(4)
}

func (c *CPU_Z80) opINCL() {
	c.writeReg8(5, c.inc8(c.readReg8(5)))
	c.tick(4)
}

func (c *CPU_Z80) opINCHLMem() {
	addr := c.HL()
	value := c.read(addr)
	value = c.inc8(value)
	c.write(addr, value)
	c.tick(11)
}

func (c *CPU_Z80) opINCA() {
	c.A = c.inc8(c.A)
	c.tick(4)
}

func (c *CPU_Z80) opDECB() {
	c.B = c.dec8(c.B)
	c.tick(4)
}

func (c *CPU_Z80) opDECC() {
	c.C = c.dec8(c.C)
	c.tick(4)
}

func (c *CPU_Z80) opDECD() {
	c.D = c.dec8(c.D)
	c.tick(4)
}

func (c *CPU_Z80) opDECE() {
	c.E = c.dec8(c.E)
	c.tick(4)
}

func (c *CPU_Z80) opDECH() {
	c.writeReg8(4, c.dec8(c.readReg8(4)))
	c.tick(4)
}

func (c *CPU_Z80) opDECL() {
	c.writeReg8(5, c.dec8(c.readReg8(5)))
	c.tick(4)
}

func (c *CPU_Z80) opDECHLMem() {
	addr := c.HL()
	value := c.read(addr)
	value = c.dec8(value)
	c.write(addr, value)
	c.tick(11)
}

func (c *CPU_Z80) opDECA() {
	c.A = c.dec8(c.A)
	c.tick(4)
}

func (c *CPU_Z80) opDI() {
	c.IFF1 = false
	c.IFF2 = false
	c.iffDelay = 0
	c.tick(4)
}

func (c *CPU_Z80) opEI() {
	c.iffDelay = 2
	c.tick(4)
}

func (c *CPU_Z80) opJPNZ() {
	c.jpCond(!c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opJPZ() {
	c.jpCond(c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opJPNC() {
	c.jpCond(!c.Flag(z80FlagC))
}

func (c *CPU_Z80) opJPC() {
	c.jpCond(c.Flag(z80FlagC))
}

func (c *CPU_Z80) opJPPO() {
	c.jpCond(!c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opJPPE() {
	c.jpCond(c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opJPNS() {
	c.jpCond(!c.Flag(z80FlagS))
}

func (c *CPU_Z80) opJPS() {
	c.jpCond(c.Flag(z80FlagS))
}

func (c *CPU_Z80) opJRNZ() {
	c.jrCond(!c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opJRZ() {
	c.jrCond(c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opJRNC() {
	c.jrCond(!c.Flag(z80FlagC))
}

func (c *CPU_Z80) opJRC() {
	c.jrCond(c.Flag(z80FlagC))
}

func (c *CPU_Z80) opCALLNZ() {
	c.callCond(!c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opCALLZ() {
	c.callCond(c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opCALLNC() {
	c.callCond(!c.Flag(z80FlagC))
}

func (c *CPU_Z80) opCALLC() {
	c.callCond(c.Flag(z80FlagC))
}

func (c *CPU_Z80) opCALLPO() {
	c.callCond(!c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opCALLPE() {
	c.callCond(c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opCALLNS() {
	c.callCond(!c.Flag(z80FlagS))
}

func (c *CPU_Z80) opCALLS() {
	c.callCond(c.Flag(z80FlagS))
}

func (c *CPU_Z80) opRETNZ() {
	c.retCond(!c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opRETZ() {
	c.retCond(c.Flag(z80FlagZ))
}

func (c *CPU_Z80) opRETNC() {
	c.retCond(!c.Flag(z80FlagC))
}

func (c *CPU_Z80) opRETC() {
	c.retCond(c.Flag(z80FlagC))
}

func (c *CPU_Z80) opRETPO() {
	c.retCond(!c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opRETPE() {
	c.retCond(c.Flag(z80FlagPV))
}

func (c *CPU_Z80) opRETNS() {
	c.retCond(!c.Flag(z80FlagS))
}

func (c *CPU_Z80) opRETS() {
	c.retCond(c.Flag(z80FlagS))
}

func (c *CPU_Z80) addHL(value uint16) {
	hl := c.HL()
	sum := uint32(hl) + uint32(value)

	c.F &^= z80FlagH | z80FlagN | z80FlagC | z80FlagX | z80FlagY
	if ((hl&0x0FFF)+(value&0x0FFF))&0x1000 != 0 {
		c.F |= z80FlagH
	}
	if sum > 0xFFFF {
		c.F |= z80FlagC
	}
	result := uint16(sum)
	c.SetHL(result)
	c.F |= byte((result >> 8) & 0x28)
}

func (c *CPU_Z80) addIX(value uint16) {
	sum := uint32(c.IX) + uint32(value)
	c.F &^= z80FlagH | z80FlagN | z80FlagC | z80FlagX | z80FlagY
	if ((c.IX&0x0FFF)+(value&0x0FFF))&0x1000 != 0 {
		c.F |= z80FlagH
	}
	if sum > 0xFFFF {
		c.F |= z80FlagC
	}
	c.IX = uint16(sum)
	c.F |= byte((c.IX >> 8) & 0x28)
}

func (c *CPU_Z80) addIY(value uint16) {
	sum := uint32(c.IY) + uint32(value)
	c.F &^= z80FlagH | z80FlagN | z80FlagC | z80FlagX | z80FlagY
	if ((c.IY&0x0FFF)+(value&0x0FFF))&0x1000 != 0 {
		c.F |= z80FlagH
	}
	if sum > 0xFFFF {
		c.F |= z80FlagC
	}
	c.IY = uint16(sum)
	c.F |= byte((c.IY >> 8) & 0x28)
}

func (c *CPU_Z80) adcHL(value uint16) {
	hl := c.HL()
	carry := uint16(0)
	if c.Flag(z80FlagC) {
		carry = 1
	}
	sum := uint32(hl) + uint32(value) + uint32(carry)
	res := uint16(sum)

	c.F = 0
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x8000 != 0 {
		c.F |= z80FlagS
	}
	if ((hl&0x0FFF)+(value&0x0FFF)+carry)&0x1000 != 0 {
		c.F |= z80FlagH
	}
	if ((^(hl ^ value))&(hl^res))&0x8000 != 0 {
		c.F |= z80FlagPV
	}
	if sum > 0xFFFF {
		c.F |= z80FlagC
	}
	c.F |= byte((res >> 8) & 0x28)
	c.SetHL(res)
}

func (c *CPU_Z80) sbcHL(value uint16) {
	hl := c.HL()
	carry := uint16(0)
	if c.Flag(z80FlagC) {
		carry = 1
	}
	diff := int32(hl) - int32(value) - int32(carry)
	res := uint16(diff)

	c.F = z80FlagN
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x8000 != 0 {
		c.F |= z80FlagS
	}
	if int32(hl&0x0FFF)-int32(value&0x0FFF)-int32(carry) < 0 {
		c.F |= z80FlagH
	}
	if ((hl ^ value) & (hl ^ res) & 0x8000) != 0 {
		c.F |= z80FlagPV
	}
	if diff < 0 {
		c.F |= z80FlagC
	}
	c.F |= byte((res >> 8) & 0x28)
	c.SetHL(res)
}

func (c *CPU_Z80) inc8(value byte) byte {
	res := value + 1
	c.F = (c.F & z80FlagC)
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if (value&0x0F)+1 > 0x0F {
		c.F |= z80FlagH
	}
	if value == 0x7F {
		c.F |= z80FlagPV
	}
	c.F |= res & (z80FlagX | z80FlagY)
	return res
}

func (c *CPU_Z80) dec8(value byte) byte {
	res := value - 1
	c.F = (c.F & z80FlagC) | z80FlagN
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if value&0x0F == 0 {
		c.F |= z80FlagH
	}
	if value == 0x80 {
		c.F |= z80FlagPV
	}
	c.F |= res & (z80FlagX | z80FlagY)
	return res
}

func (c *CPU_Z80) updateInFlags(value byte) {
	carry := c.F & z80FlagC
	c.F = carry
	c.setSZPFlags(value)
}

func (c *CPU_Z80) updateAParityFlagsPreserveCarry() {
	carry := c.F & z80FlagC
	value := c.A
	c.F = carry
	if value == 0 {
		c.F |= z80FlagZ
	}
	if value&0x80 != 0 {
		c.F |= z80FlagS
	}
	if parity8(value) {
		c.F |= z80FlagPV
	}
	c.F |= value & (z80FlagX | z80FlagY)
}

func (c *CPU_Z80) updateLDAIRFlags() {
	carry := c.F & z80FlagC
	value := c.A
	c.F = carry
	if value == 0 {
		c.F |= z80FlagZ
	}
	if value&0x80 != 0 {
		c.F |= z80FlagS
	}
	if c.IFF2 {
		c.F |= z80FlagPV
	}
	c.F |= value & (z80FlagX | z80FlagY)
}

func (c *CPU_Z80) updateLDIFlags(value byte, bc uint16) {
	sum := c.A + value
	c.F = c.F & (z80FlagS | z80FlagZ | z80FlagC)
	if bc != 0 {
		c.F |= z80FlagPV
	}
	c.F |= sum & (z80FlagX | z80FlagY)
}

func (c *CPU_Z80) updateBlockIOFlags() {
	keep := c.F & (z80FlagS | z80FlagH | z80FlagPV | z80FlagC | z80FlagX | z80FlagY)
	c.F = keep | z80FlagN
	if c.B == 0 {
		c.F |= z80FlagZ
	}
}

func (c *CPU_Z80) updateRotateFlags(carry bool) {
	f := c.F & (z80FlagS | z80FlagZ | z80FlagPV)
	if carry {
		f |= z80FlagC
	}
	f |= c.A & (z80FlagX | z80FlagY)
	c.F = f
}

func (c *CPU_Z80) rotate8Left(value byte, carryIn bool) (byte, bool) {
	newCarry := value&0x80 != 0
	res := value << 1
	if carryIn {
		res |= 0x01
	}
	return res, newCarry
}

func (c *CPU_Z80) rotate8Right(value byte, carryIn bool) (byte, bool) {
	newCarry := value&0x01 != 0
	res := value >> 1
	if carryIn {
		res |= 0x80
	}
	return res, newCarry
}

func (c *CPU_Z80) shiftLeftArithmetic(value byte) (byte, bool) {
	newCarry := value&0x80 != 0
	res := value << 1
	return res, newCarry
}

func (c *CPU_Z80) shiftRightArithmetic(value byte) (byte, bool) {
	newCarry := value&0x01 != 0
	res := (value >> 1) | (value & 0x80)
	return res, newCarry
}

func (c *CPU_Z80) shiftRightLogical(value byte) (byte, bool) {
	newCarry := value&0x01 != 0
	res := value >> 1
	return res, newCarry
}

func (c *CPU_Z80) setSZPFlags(value byte) {
	c.F &^= z80FlagS | z80FlagZ | z80FlagPV | z80FlagX | z80FlagY
	if value == 0 {
		c.F |= z80FlagZ
	}
	if value&0x80 != 0 {
		c.F |= z80FlagS
	}
	if parity8(value) {
		c.F |= z80FlagPV
	}
	c.F |= value & (z80FlagX | z80FlagY)
}
