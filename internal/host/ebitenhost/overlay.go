package ebitenhost

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlaySource supplies the lines the debugger overlay renders each frame
// (register dump, current mode, last breakpoint hit). Nil means no overlay.
type OverlaySource interface {
	OverlayLines() []string
	OverlayEnabled() bool
}

// overlay rasterizes OverlaySource text with basicfont into a small RGBA
// buffer, then blits it as an ebiten image over the top-left corner of the
// window. Rebuilt only when the line count changes to avoid reallocating
// every frame.
type overlay struct {
	src OverlaySource
	img *ebiten.Image
	buf *image.RGBA
}

func newOverlay(src OverlaySource) *overlay {
	return &overlay{src: src}
}

const (
	overlayLineHeight = 14
	overlayPadding    = 4
	overlayWidth      = 220
)

func (o *overlay) draw(screen *ebiten.Image) {
	if o.src == nil || !o.src.OverlayEnabled() {
		return
	}
	lines := o.src.OverlayLines()
	if len(lines) == 0 {
		return
	}

	h := overlayPadding*2 + len(lines)*overlayLineHeight
	if o.buf == nil || o.buf.Bounds().Dy() != h {
		o.buf = image.NewRGBA(image.Rect(0, 0, overlayWidth, h))
		o.img = ebiten.NewImage(overlayWidth, h)
	}

	bg := color.RGBA{0, 0, 0, 200}
	for y := 0; y < h; y++ {
		for x := 0; x < overlayWidth; x++ {
			o.buf.Set(x, y, bg)
		}
	}

	drawer := &font.Drawer{
		Dst:  o.buf,
		Src:  image.NewUniform(color.RGBA{0x30, 0xFF, 0x30, 0xFF}),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(overlayPadding, overlayPadding+(i+1)*overlayLineHeight-4)
		drawer.DrawString(line)
	}

	o.img.WritePixels(o.buf.Pix)
	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(o.img, op)
}
