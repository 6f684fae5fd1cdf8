package main

import "testing"

// TestVideoFullFrameLayerFillE6 is spec scenario E6: mode 0 (640x480,
// 800x525 total, 40000 ps/pixel), one 4bpp layer covering the entire
// visible area, ticked across a full frame via repeated Tick calls at a
// 4MHz CPU cycle granularity, asserting the back buffer holds the layer's
// palette colour everywhere the layer covers and that a frame completed.
func TestVideoFullFrameLayerFillE6(t *testing.T) {
	v := NewVideoCoprocessor(nil)

	const paletteColor = uint16(0x4A5B)
	v.SetPalette1Entry(1, paletteColor)

	v.layers[0] = LayerDescriptor{
		Type:   Layer4bpp,
		Top:    0,
		Bottom: 7,  // (Bottom+1)*unit = 8*60 = 480: full visible height
		Left:   0,
		Right:  80, // Right*8 = 640: full visible width
	}

	vramLen := (v.mode.VisibleWidth * v.mode.VisibleHeight) / 2
	for i := 0; i < vramLen; i++ {
		v.vram[i] = 0x11 // both nibbles select palette index 1
	}

	const cyclePS = 250_000 // 4MHz CPU cycle
	totalFramePS := uint64(v.mode.TotalHeight) * uint64(v.mode.TotalWidth) * v.mode.PixelClockPS

	completed := false
	var now uint64
	for now = cyclePS; now <= totalFramePS*2; now += cyclePS {
		v.Tick(now, cyclePS)
		if v.FrameReady() {
			completed = true
			break
		}
	}
	if !completed {
		t.Fatal("frame never completed across two full frame periods")
	}

	back := v.BackBuffer()
	samples := []int{
		0,                                     // top-left
		479*v.mode.VisibleWidth + 639,         // bottom-right
		240*v.mode.VisibleWidth + 320,         // center
	}
	for _, idx := range samples {
		if got := back[idx]; got != paletteColor {
			t.Fatalf("backBuffer[%d] = %04X, want %04X", idx, got, paletteColor)
		}
	}
}

func TestVideoPaletteRoundTrip(t *testing.T) {
	v := NewVideoCoprocessor(nil)
	v.SetPalette1Entry(10, 0x1234)
	v.SetPalette2Entry(20, 0x5678)
	if got := v.Palette1Entry(10); got != 0x1234 {
		t.Fatalf("Palette1Entry(10) = %04X, want 1234", got)
	}
	if got := v.Palette2Entry(20); got != 0x5678 {
		t.Fatalf("Palette2Entry(20) = %04X, want 5678", got)
	}
}

func TestVideoLayerNoneNeverCovers(t *testing.T) {
	v := NewVideoCoprocessor(nil)
	if v.layerActiveAt(&v.layers[0], 0, 0) {
		t.Fatal("an unconfigured (LayerNone) layer must never cover a pixel")
	}
}

func TestVideoBackgroundCombinesHiLo(t *testing.T) {
	v := NewVideoCoprocessor(nil)
	v.writeReg(regLocked, lockUnlockMagic)
	v.writeReg(regBGLo, 0x78)
	v.writeReg(regBGHi, 0x56)
	if got := v.Background(); got != 0x5678 {
		t.Fatalf("Background() = %04X, want 5678", got)
	}
}

func TestVideoRegLockGatesWrites(t *testing.T) {
	v := NewVideoCoprocessor(nil)
	v.writeReg(regLocked, lockUnlockMagic+1) // anything but the magic value locks
	v.writeReg(regBGLo, 0xFF)
	if got := v.Background(); got&0xFF == 0xFF {
		t.Fatal("write to a non-MODE/LOCKED register while locked took effect")
	}
}
