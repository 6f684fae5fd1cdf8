package main

// Prefix-table initializers and the IX/IY (DD/FD) load-and-arithmetic
// opcodes, plus the ED IN/OUT-via-port-C family. The indexed-CB opcodes
// (DDCB/FDCB) live in cpu_ops_cb.go since they share the plain-CB bit
// helpers; the rest of the ED table lives in cpu_ops_ed.go.

func (c *CPU_Z80) initCBOps() {
	for i := range c.cbOps {
		c.cbOps[i] = (*CPU_Z80).opUnimplemented
	}

	for opcode := 0x00; opcode <= 0x3F; opcode++ {
		op := byte(opcode)
		group := op >> 3
		reg := op & 0x07
		c.cbOps[op] = func(cpu *CPU_Z80) {
			cpu.opCBRotateShift(group, reg)
		}
	}

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		op := byte(opcode)
		bit := (op >> 3) & 0x07
		reg := op & 0x07
		c.cbOps[op] = func(cpu *CPU_Z80) {
			cpu.opCBBIT(bit, reg)
		}
	}

	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := byte(opcode)
		bit := (op >> 3) & 0x07
		reg := op & 0x07
		c.cbOps[op] = func(cpu *CPU_Z80) {
			cpu.opCBRES(bit, reg)
		}
	}

	for opcode := 0xC0; opcode <= 0xFF; opcode++ {
		op := byte(opcode)
		bit := (op >> 3) & 0x07
		reg := op & 0x07
		c.cbOps[op] = func(cpu *CPU_Z80) {
			cpu.opCBSET(bit, reg)
		}
	}
}

func (c *CPU_Z80) initDDOps() {
	for i := range c.ddOps {
		c.ddOps[i] = (*CPU_Z80).opDDUnimplemented
	}
	c.ddOps[0x21] = (*CPU_Z80).opLDIXNN
	c.ddOps[0x22] = (*CPU_Z80).opLDNNIX
	c.ddOps[0x2A] = (*CPU_Z80).opLDIXNNMem
	c.ddOps[0xE5] = (*CPU_Z80).opPUSHIX
	c.ddOps[0xE1] = (*CPU_Z80).opPOPIX
	c.ddOps[0xF9] = (*CPU_Z80).opLDSPX
	c.ddOps[0x36] = (*CPU_Z80).opLDIXdN
	c.ddOps[0x34] = (*CPU_Z80).opINCIXd
	c.ddOps[0x35] = (*CPU_Z80).opDECIXd
	c.ddOps[0xE9] = (*CPU_Z80).opJPIX
	c.ddOps[0xCB] = (*CPU_Z80).opDDCBPrefix
	c.ddOps[0xE3] = (*CPU_Z80).opEXSPIX
	c.ddOps[0x09] = (*CPU_Z80).opADDIXBC
	c.ddOps[0x19] = (*CPU_Z80).opADDIXDE
	c.ddOps[0x29] = (*CPU_Z80).opADDIXIX
	c.ddOps[0x39] = (*CPU_Z80).opADDIXSP
	c.ddOps[0x23] = (*CPU_Z80).opINCIX
	c.ddOps[0x2B] = (*CPU_Z80).opDECIX

	for opcode := byte(0x46); opcode <= 0x7E; opcode += 0x08 {
		if opcode == 0x76 {
			continue
		}
		op := opcode
		dest := byte((op >> 3) & 0x07)
		c.ddOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDRegIXd(dest)
		}
	}
	for opcode := byte(0x70); opcode <= 0x77; opcode++ {
		if opcode == 0x76 {
			continue
		}
		op := opcode
		src := byte(op & 0x07)
		c.ddOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDIXdReg(src)
		}
	}
	for opcode := byte(0x86); opcode <= 0xBE; opcode += 0x08 {
		op := opcode
		alu := aluOp((op >> 3) & 0x07)
		c.ddOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUIXd(alu)
		}
	}
}

func (c *CPU_Z80) initFDOps() {
	for i := range c.fdOps {
		c.fdOps[i] = (*CPU_Z80).opFDUnimplemented
	}
	c.fdOps[0x21] = (*CPU_Z80).opLDIYNN
	c.fdOps[0x22] = (*CPU_Z80).opLDNNIY
	c.fdOps[0x2A] = (*CPU_Z80).opLDIYNNMem
	c.fdOps[0xE5] = (*CPU_Z80).opPUSHIY
	c.fdOps[0xE1] = (*CPU_Z80).opPOPIY
	c.fdOps[0xF9] = (*CPU_Z80).opLDSPY
	c.fdOps[0x36] = (*CPU_Z80).opLDIYdN
	c.fdOps[0x34] = (*CPU_Z80).opINCIYd
	c.fdOps[0x35] = (*CPU_Z80).opDECIYd
	c.fdOps[0xE9] = (*CPU_Z80).opJPIY
	c.fdOps[0xCB] = (*CPU_Z80).opFDCBPrefix
	c.fdOps[0xE3] = (*CPU_Z80).opEXSPIY
	c.fdOps[0x09] = (*CPU_Z80).opADDIYBC
	c.fdOps[0x19] = (*CPU_Z80).opADDIYDE
	c.fdOps[0x29] = (*CPU_Z80).opADDIYIY
	c.fdOps[0x39] = (*CPU_Z80).opADDIYSP
	c.fdOps[0x23] = (*CPU_Z80).opINCIY
	c.fdOps[0x2B] = (*CPU_Z80).opDECIY

	for opcode := byte(0x46); opcode <= 0x7E; opcode += 0x08 {
		if opcode == 0x76 {
			continue
		}
		op := opcode
		dest := byte((op >> 3) & 0x07)
		c.fdOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDRegIYd(dest)
		}
	}
	for opcode := byte(0x70); opcode <= 0x77; opcode++ {
		if opcode == 0x76 {
			continue
		}
		op := opcode
		src := byte(op & 0x07)
		c.fdOps[op] = func(cpu *CPU_Z80) {
			cpu.opLDIYdReg(src)
		}
	}
	for opcode := byte(0x86); opcode <= 0xBE; opcode += 0x08 {
		op := opcode
		alu := aluOp((op >> 3) & 0x07)
		c.fdOps[op] = func(cpu *CPU_Z80) {
			cpu.opALUIYd(alu)
		}
	}
}

func (c *CPU_Z80) initEDOps() {
	for i := range c.edOps {
		c.edOps[i] = (*CPU_Z80).opEDUnimplemented
	}

	c.edOps[0x40] = (*CPU_Z80).opINBC
	c.edOps[0x48] = (*CPU_Z80).opINRC
	c.edOps[0x50] = (*CPU_Z80).opINDC
	c.edOps[0x58] = (*CPU_Z80).opINEC
	c.edOps[0x60] = (*CPU_Z80).opINHC
	c.edOps[0x68] = (*CPU_Z80).opINLC
	c.edOps[0x70] = (*CPU_Z80).opINCM
	c.edOps[0x78] = (*CPU_Z80).opINAC

	c.edOps[0x41] = (*CPU_Z80).opOUTBC
	c.edOps[0x49] = (*CPU_Z80).opOUTCC
	c.edOps[0x51] = (*CPU_Z80).opOUTDC
	c.edOps[0x59] = (*CPU_Z80).opOUTEC
	c.edOps[0x61] = (*CPU_Z80).opOUTHC
	c.edOps[0x69] = (*CPU_Z80).opOUTLC
	c.edOps[0x71] = (*CPU_Z80).opOUTC0
	c.edOps[0x79] = (*CPU_Z80).opOUTAC

	c.edOps[0x44] = (*CPU_Z80).opNEG
	c.edOps[0x4C] = (*CPU_Z80).opNEG
	c.edOps[0x54] = (*CPU_Z80).opNEG
	c.edOps[0x5C] = (*CPU_Z80).opNEG
	c.edOps[0x64] = (*CPU_Z80).opNEG
	c.edOps[0x6C] = (*CPU_Z80).opNEG
	c.edOps[0x74] = (*CPU_Z80).opNEG
	c.edOps[0x7C] = (*CPU_Z80).opNEG

	c.edOps[0x47] = (*CPU_Z80).opLDIA
	c.edOps[0x4F] = (*CPU_Z80).opLDRA
	c.edOps[0x57] = (*CPU_Z80).opLDAI
	c.edOps[0x5F] = (*CPU_Z80).opLDAR

	c.edOps[0x46] = (*CPU_Z80).opIM0
	c.edOps[0x56] = (*CPU_Z80).opIM1
	c.edOps[0x5E] = (*CPU_Z80).opIM2
	c.edOps[0x66] = (*CPU_Z80).opIM0
	c.edOps[0x6E] = (*CPU_Z80).opIM0
	c.edOps[0x76] = (*CPU_Z80).opIM1
	c.edOps[0x7E] = (*CPU_Z80).opIM2

	c.edOps[0x45] = (*CPU_Z80).opRETN
	c.edOps[0x4D] = (*CPU_Z80).opRETI
	c.edOps[0x55] = (*CPU_Z80).opRETN
	c.edOps[0x5D] = (*CPU_Z80).opRETN
	c.edOps[0x65] = (*CPU_Z80).opRETN
	c.edOps[0x6D] = (*CPU_Z80).opRETN
	c.edOps[0x75] = (*CPU_Z80).opRETN
	c.edOps[0x7D] = (*CPU_Z80).opRETN

	c.edOps[0x67] = (*CPU_Z80).opRRD
	c.edOps[0x6F] = (*CPU_Z80).opRLD

	c.edOps[0xA0] = (*CPU_Z80).opLDI
	c.edOps[0xB0] = (*CPU_Z80).opLDIR
	c.edOps[0xA8] = (*CPU_Z80).opLDD
	c.edOps[0xB8] = (*CPU_Z80).opLDDR
	c.edOps[0xA1] = (*CPU_Z80).opCPI
	c.edOps[0xB1] = (*CPU_Z80).opCPIR
	c.edOps[0xA9] = (*CPU_Z80).opCPD
	c.edOps[0xB9] = (*CPU_Z80).opCPDR
	c.edOps[0xA2] = (*CPU_Z80).opINI
	c.edOps[0xB2] = (*CPU_Z80).opINIR
	c.edOps[0xAA] = (*CPU_Z80).opIND
	c.edOps[0xBA] = (*CPU_Z80).opINDR
	c.edOps[0xA3] = (*CPU_Z80).opOUTI
	c.edOps[0xB3] = (*CPU_Z80).opOTIR
	c.edOps[0xAB] = (*CPU_Z80).opOUTD
	c.edOps[0xBB] = (*CPU_Z80).opOTDR

	c.edOps[0x43] = (*CPU_Z80).opLDNNBC
	c.edOps[0x4B] = (*CPU_Z80).opLDBCNNED
	c.edOps[0x53] = (*CPU_Z80).opLDNNDE
	c.edOps[0x5B] = (*CPU_Z80).opLDDENNED
	c.edOps[0x63] = (*CPU_Z80).opLDNNHLed
	c.edOps[0x6B] = (*CPU_Z80).opLDHLNNed
	c.edOps[0x73] = (*CPU_Z80).opLDNNSP
	c.edOps[0x7B] = (*CPU_Z80).opLDSPNNED

	c.edOps[0x4A] = (*CPU_Z80).opADCHLBC
	c.edOps[0x5A] = (*CPU_Z80).opADCHLDE
	c.edOps[0x6A] = (*CPU_Z80).opADCHLHL
	c.edOps[0x7A] = (*CPU_Z80).opADCHLSP
	c.edOps[0x42] = (*CPU_Z80).opSBCHLBC
	c.edOps[0x52] = (*CPU_Z80).opSBCHLDE
	c.edOps[0x62] = (*CPU_Z80).opSBCHLHL
	c.edOps[0x72] = (*CPU_Z80).opSBCHLSP
}

func (c *CPU_Z80) opEDUnimplemented() {
	c.tick(8)
}

func (c *CPU_Z80) opDDUnimplemented() {
	c.tick(4)
	c.baseOps[c.prefixOpcode](c)
}

func (c *CPU_Z80) opFDUnimplemented() {
	c.tick(4)
	c.baseOps[c.prefixOpcode](c)
}

func (c *CPU_Z80) opLDIXNN() {
	c.IX = c.fetchWord()
	c.tick(14)
}

func (c *CPU_Z80) opLDNNIX() {
	addr := c.fetchWord()
	c.write(addr, byte(c.IX))
	c.write(addr+1, byte(c.IX>>8))
	c.WZ = addr + 1
	c.tick(20)
}

func (c *CPU_Z80) opLDIXNNMem() {
	addr := c.fetchWord()
	low := c.read(addr)
	high := c.read(addr + 1)
	c.IX = uint16(high)<<8 | uint16(low)
	c.WZ = addr + 1
	c.tick(20)
}

func (c *CPU_Z80) opPUSHIX() {
	c.pushWord(c.IX)
	c.tick(15)
}

func (c *CPU_Z80) opPOPIX() {
	c.IX = c.popWord()
	c.tick(14)
}

func (c *CPU_Z80) opLDSPX() {
	c.SP = c.IX
	c.tick(10)
}

func (c *CPU_Z80) opLDIXdN() {
	disp := int8(c.fetchByte())
	value := c.fetchByte()
	addr := uint16(int32(c.IX) + int32(disp))
	c.write(addr, value)
	c.tick(19)
}

func (c *CPU_Z80) opINCIXd() {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IX) + int32(disp))
	value := c.read(addr)
	value = c.inc8(value)
	c.write(addr, value)
	c.tick(23)
}

func (c *CPU_Z80) opDECIXd() {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IX) + int32(disp))
	value := c.read(addr)
	value = c.dec8(value)
	c.write(addr, value)
	c.tick(23)
}

func (c *CPU_Z80) opJPIX() {
	c.PC = c.IX
	c.WZ = c.PC
	c.tick(8)
}

func (c *CPU_Z80) opEXSPIX() {
	low := c.read(c.SP)
	high := c.read(c.SP + 1)
	memVal := uint16(high)<<8 | uint16(low)
	c.write(c.SP, byte(c.IX))
	c.write(c.SP+1, byte(c.IX>>8))
	c.IX = memVal
	c.WZ = memVal
	c.tick(23)
}

func (c *CPU_Z80) opADDIXBC() {
	c.addIX(c.BC())
	c.tick(15)
}

func (c *CPU_Z80) opADDIXDE() {
	c.addIX(c.DE())
	c.tick(15)
}

func (c *CPU_Z80) opADDIXIX() {
	c.addIX(c.IX)
	c.tick(15)
}

func (c *CPU_Z80) opADDIXSP() {
	c.addIX(c.SP)
	c.tick(15)
}

func (c *CPU_Z80) opINCIX() {
	c.IX++
	c.tick(10)
}

func (c *CPU_Z80) opDECIX() {
	c.IX--
	c.tick(10)
}

func (c *CPU_Z80) opLDIYNN() {
	c.IY = c.fetchWord()
	c.tick(14)
}

func (c *CPU_Z80) opLDNNIY() {
	addr := c.fetchWord()
	c.write(addr, byte(c.IY))
	c.write(addr+1, byte(c.IY>>8))
	c.WZ = addr + 1
	c.tick(20)
}

func (c *CPU_Z80) opLDIYNNMem() {
	addr := c.fetchWord()
	low := c.read(addr)
	high := c.read(addr + 1)
	c.IY = uint16(high)<<8 | uint16(low)
	c.WZ = addr + 1
	c.tick(20)
}

func (c *CPU_Z80) opPUSHIY() {
	c.pushWord(c.IY)
	c.tick(15)
}

func (c *CPU_Z80) opPOPIY() {
	c.IY = c.popWord()
	c.tick(14)
}

func (c *CPU_Z80) opLDSPY() {
	c.SP = c.IY
	c.tick(10)
}

func (c *CPU_Z80) opLDIYdN() {
	disp := int8(c.fetchByte())
	value := c.fetchByte()
	addr := uint16(int32(c.IY) + int32(disp))
	c.write(addr, value)
	c.tick(19)
}

func (c *CPU_Z80) opINCIYd() {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IY) + int32(disp))
	value := c.read(addr)
	value = c.inc8(value)
	c.write(addr, value)
	c.tick(23)
}

func (c *CPU_Z80) opDECIYd() {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IY) + int32(disp))
	value := c.read(addr)
	value = c.dec8(value)
	c.write(addr, value)
	c.tick(23)
}

func (c *CPU_Z80) opJPIY() {
	c.PC = c.IY
	c.WZ = c.PC
	c.tick(8)
}

func (c *CPU_Z80) opEXSPIY() {
	low := c.read(c.SP)
	high := c.read(c.SP + 1)
	memVal := uint16(high)<<8 | uint16(low)
	c.write(c.SP, byte(c.IY))
	c.write(c.SP+1, byte(c.IY>>8))
	c.IY = memVal
	c.WZ = memVal
	c.tick(23)
}

func (c *CPU_Z80) opADDIYBC() {
	c.addIY(c.BC())
	c.tick(15)
}

func (c *CPU_Z80) opADDIYDE() {
	c.addIY(c.DE())
	c.tick(15)
}

func (c *CPU_Z80) opADDIYIY() {
	c.addIY(c.IY)
	c.tick(15)
}

func (c *CPU_Z80) opADDIYSP() {
	c.addIY(c.SP)
	c.tick(15)
}

func (c *CPU_Z80) opINCIY() {
	c.IY++
	c.tick(10)
}

func (c *CPU_Z80) opDECIY() {
	c.IY--
	c.tick(10)
}

func (c *CPU_Z80) opLDRegIXd(dest byte) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IX) + int32(disp))
	c.writeReg8Plain(dest, c.read(addr))
	c.tick(19)
}

func (c *CPU_Z80) opLDIXdReg(src byte) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IX) + int32(disp))
	c.write(addr, c.readReg8Plain(src))
	c.tick(19)
}

func (c *CPU_Z80) opALUIXd(op aluOp) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IX) + int32(disp))
	c.performALU(op, c.read(addr))
	c.tick(19)
}

func (c *CPU_Z80) opLDRegIYd(dest byte) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IY) + int32(disp))
	c.writeReg8Plain(dest, c.read(addr))
	c.tick(19)
}

func (c *CPU_Z80) opLDIYdReg(src byte) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IY) + int32(disp))
	c.write(addr, c.readReg8Plain(src))
	c.tick(19)
}

func (c *CPU_Z80) opALUIYd(op aluOp) {
	disp := int8(c.fetchByte())
	addr := uint16(int32(c.IY) + int32(disp))
	c.performALU(op, c.read(addr))
	c.tick(19)
}

func (c *CPU_Z80) inRegC(dest *byte) {
	value := c.in(c.BC())
	*dest = value
	c.updateInFlags(value)
	c.tick(12)
}

func (c *CPU_Z80) outRegC(value byte) {
	c.out(c.BC(), value)
	c.tick(12)
}

func (c *CPU_Z80) opINBC() {
	c.inRegC(&c.B)
}

func (c *CPU_Z80) opINRC() {
	c.inRegC(&c.C)
}

func (c *CPU_Z80) opINDC() {
	c.inRegC(&c.D)
}

func (c *CPU_Z80) opINEC() {
	c.inRegC(&c.E)
}

func (c *CPU_Z80) opINHC() {
	c.inRegC(&c.H)
}

func (c *CPU_Z80) opINLC() {
	c.inRegC(&c.L)
}

func (c *CPU_Z80) opINAC() {
	c.inRegC(&c.A)
}

func (c *CPU_Z80) opINCM() {
	value := c.in(c.BC())
	c.updateInFlags(value)
	c.tick(12)
}

func (c *CPU_Z80) opOUTBC() {
	c.outRegC(c.B)
}

func (c *CPU_Z80) opOUTCC() {
	c.outRegC(c.C)
}

func (c *CPU_Z80) opOUTDC() {
	c.outRegC(c.D)
}

func (c *CPU_Z80) opOUTEC() {
	c.outRegC(c.E)
}

func (c *CPU_Z80) opOUTHC() {
	c.outRegC(c.H)
}

func (c *CPU_Z80) opOUTLC() {
	c.outRegC(c.L)
}

func (c *CPU_Z80) opOUTAC() {
	c.outRegC(c.A)
}

func (c *CPU_Z80) opOUTC0() {
	c.outRegC(0x00)
}
