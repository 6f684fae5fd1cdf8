package main

// readVRAM/writeVRAM implement the bank-window mapping from the CPU's
// 14-bit (0x0000-0x3EFF) video-window offset onto the 1 MiB VRAM, selected
// by REG_MODE's bank-window field.
func (v *VideoCoprocessor) vramAddress(addr uint16) int {
	switch v.bankMode {
	case Bank1x16K:
		return int(v.pageRegs[0]&0x3F)*16384 + int(addr)
	case Bank2x8K:
		if addr < 0x2000 {
			return int(v.pageRegs[0]&0x7F)*8192 + int(addr)
		}
		return int(v.pageRegs[1]&0x7F)*8192 + int(addr-0x2000)
	case Bank4x4KLow:
		quad := addr / 0x1000
		return int(v.pageRegs[quad]&0xFF)*4096 + int(addr%0x1000)
	case Bank4x4KHigh:
		quad := addr / 0x1000
		return (int(v.pageRegs[quad]&0xFF)+128)*4096 + int(addr%0x1000)
	case BankSinclair:
		return sinclairAddress(addr)
	default:
		return int(addr)
	}
}

// sinclairAddress reproduces the classic non-linear ZX-Spectrum-style
// screen row interleave: the pixel row's middle and low thirds of its bit
// pattern are swapped relative to a naive linear scan, so that sequential
// framebuffer bytes step through character-cell bands rather than raster
// lines.
func sinclairAddress(addr uint16) int {
	row := int(addr / 32)
	col := int(addr % 32)
	third := (row & 0xC0)
	mid := (row & 0x07) << 3
	low := (row & 0x38) >> 3
	newRow := third | mid | low
	return newRow*32 + col
}

func (v *VideoCoprocessor) readVRAM(addr uint16) byte {
	idx := v.vramAddress(addr) & (len(v.vram) - 1)
	return v.vram[idx]
}

func (v *VideoCoprocessor) writeVRAM(addr uint16, value byte) {
	idx := v.vramAddress(addr) & (len(v.vram) - 1)
	v.vram[idx] = value
}

// rowUnit/colUnit translate a layer descriptor's band-oriented top/bottom
// (eighths of the frame height) and cell-oriented left/right (8-pixel
// columns) into pixel bounds. See DESIGN.md for why the two axes use
// different units.
func (v *VideoCoprocessor) layerRowBounds(l *LayerDescriptor) (int, int) {
	unit := v.mode.VisibleHeight / 8
	return int(l.Top) * unit, (int(l.Bottom) + 1) * unit
}

func (v *VideoCoprocessor) layerColBounds(l *LayerDescriptor) (int, int) {
	return int(l.Left) * 8, int(l.Right) * 8
}

func (v *VideoCoprocessor) layerActiveAt(l *LayerDescriptor, line, col int) bool {
	if l.Type == LayerNone {
		return false
	}
	top, bottom := v.layerRowBounds(l)
	if line < top || line >= bottom {
		return false
	}
	left, right := v.layerColBounds(l)
	return col >= left && col < right
}

// Tick advances the scanline engine by one CPU cycle; the video
// coprocessor is serviced once per bus tick alongside I2C/UART/RTC. The
// pixel clock is independent of the CPU clock: each call may render zero,
// one, or several whole scanlines depending on the ratio of cyclePS to the
// mode's line time.
func (v *VideoCoprocessor) Tick(nowPS, cyclePS uint64) {
	v.nextActionPS = nowPS
	for v.nextLinePS == 0 || nowPS >= v.nextLinePS {
		v.renderLine(v.currentLine)
		v.currentLine++
		if v.nextLinePS == 0 {
			v.nextLinePS = nowPS
		}
		v.nextLinePS += v.mode.PixelClockPS * uint64(v.mode.TotalWidth)
		if v.currentLine >= v.mode.TotalHeight {
			v.currentLine = 0
			v.frontReady = true
		}
		if v.nextLinePS > nowPS+cyclePS {
			break
		}
	}
}

func (v *VideoCoprocessor) renderLine(line int) {
	if line >= v.mode.VisibleHeight {
		return
	}
	bg := v.Background()
	rowBase := line * v.mode.VisibleWidth
	for col := 0; col < v.mode.VisibleWidth; col++ {
		v.backBuffer[rowBase+col] = bg
	}
	for i := range v.layers {
		l := &v.layers[i]
		if l.Type == LayerNone {
			continue
		}
		top, bottom := v.layerRowBounds(l)
		if line < top || line >= bottom {
			continue
		}
		left, right := v.layerColBounds(l)
		if right > v.mode.VisibleWidth {
			right = v.mode.VisibleWidth
		}
		for col := left; col < right; col++ {
			px, covered := v.renderLayerPixel(l, line, col)
			if covered {
				if v.debugVis {
					px = tintForLayer(px, LayerType(l.Type))
				}
				v.backBuffer[rowBase+col] = px
			}
		}
	}
}

// renderLayerPixel produces one pixel for a single layer at (line,col),
// given the layer's scroll offsets and type-specific VRAM layout.
func (v *VideoCoprocessor) renderLayerPixel(l *LayerDescriptor, line, col int) (uint16, bool) {
	srcX := col + l.ScrollX()
	srcY := line + l.ScrollY()
	base := int(l.Extra[0]) | int(l.Extra[1])<<8 | int(l.Extra[2])<<16

	switch l.Type {
	case LayerText:
		return v.renderTextPixel(base, srcX, srcY)
	case LayerTile:
		return v.renderTilePixel(base, srcX, srcY, int(l.Extra[3]))
	case Layer8bpp:
		idx := v.vramByte(base + srcY*v.mode.VisibleWidth + srcX)
		return v.paletteLookup(idx), true
	case Layer4bpp:
		off := base + (srcY*v.mode.VisibleWidth+srcX)/2
		b := v.vramByte(off)
		var nib byte
		if srcX&1 == 0 {
			nib = b & 0x0F
		} else {
			nib = b >> 4
		}
		return v.paletteLookup(nib), true
	case LayerSprite:
		// No sprite attribute table layout is specified; sprites never
		// cover background pixels until one is defined.
		return 0, false
	default:
		return 0, false
	}
}

func (v *VideoCoprocessor) vramByte(off int) byte {
	if off < 0 {
		off = 0
	}
	return v.vram[off&(len(v.vram)-1)]
}

func (v *VideoCoprocessor) paletteLookup(idx byte) uint16 {
	if v.lowerSel&0x01 != 0 {
		return v.palette2[idx]
	}
	return v.palette1[idx]
}

// renderTextPixel treats the base pointer as a char/attr grid (2 bytes per
// cell, 8x8 glyph rows read from VRAM at char*8 + row, independent of the
// base pointer), the
// simplest text-mode layout consistent with the 6502/Z80-era machines this
// coprocessor is modelled on.
func (v *VideoCoprocessor) renderTextPixel(base, x, y int) (uint16, bool) {
	cellX, cellY := x/8, y/8
	cols := v.mode.VisibleWidth / 8
	cellOff := base + (cellY*cols+cellX)*2
	ch := v.vramByte(cellOff)
	attr := v.vramByte(cellOff + 1)
	glyphRow := v.vramByte(int(ch)*8 + y%8)
	bit := 7 - x%8
	if glyphRow&(1<<uint(bit)) != 0 {
		return v.paletteLookup(attr & 0x0F), true
	}
	return v.paletteLookup(attr >> 4), true
}

func (v *VideoCoprocessor) renderTilePixel(base, x, y, tileSize int) (uint16, bool) {
	if tileSize == 0 {
		tileSize = 8
	}
	cellX, cellY := x/tileSize, y/tileSize
	cols := v.mode.VisibleWidth / tileSize
	tileIdx := v.vramByte(base + cellY*cols + cellX)
	tileDataBase := base + cols*((v.mode.VisibleHeight/tileSize)) + int(tileIdx)*tileSize*tileSize
	px := v.vramByte(tileDataBase + (y%tileSize)*tileSize + x%tileSize)
	return v.paletteLookup(px), true
}

// tintForLayer applies the debug-visualization colour wash: each layer type gets a fixed tint so
// overlapping layers are visually distinguishable while debugging.
func tintForLayer(px uint16, t LayerType) uint16 {
	tint := uint16(t) & 0x07
	return px ^ (tint << 1)
}
