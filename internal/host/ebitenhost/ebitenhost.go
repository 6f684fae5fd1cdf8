// Package ebitenhost is the real graphical front-end: an ebiten window
// that blits the video coprocessor's back buffer every frame and feeds
// host keyboard events into the Beast's 48-key matrix. Grounded on the
// teacher's video_backend_ebiten.go (EbitenOutput), generalized from a
// byte-stream terminal sink to a direct key-matrix sink since the Beast
// has no terminal layer of its own.
package ebitenhost

import (
	"fmt"
	"sync"

	"github.com/atoone/beastem/internal/host/oto"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// VideoSource is the subset of the video coprocessor the host needs.
type VideoSource interface {
	BackBuffer() []uint16
	FrameReady() bool
	Width() int
	Height() int
}

// KeyboardSink is the subset of the keyboard matrix the host drives.
type KeyboardSink interface {
	KeyDown(row, col int)
	KeyUp(row, col int)
}

// AudioSource is the subset of the audio ring buffer the host drains.
type AudioSource interface {
	Drain(dst []int16) int
	SampleHz() int
}

type Config struct {
	Video      VideoSource
	Keyboard   KeyboardSink
	Audio      AudioSource
	Overlay    OverlaySource
	Zoom       float64
	SampleRate int
	Volume     int
}

// Host implements ebiten.Game and owns the window lifecycle.
type Host struct {
	cfg Config

	mu     sync.Mutex
	window *ebiten.Image
	closed bool

	audioPlayer *oto.Player
	overlay     *overlay
}

func New(cfg Config) (*Host, error) {
	if cfg.Zoom <= 0 {
		cfg.Zoom = 1
	}
	h := &Host{cfg: cfg, overlay: newOverlay(cfg.Overlay)}

	ebiten.SetWindowSize(int(float64(cfg.Video.Width())*cfg.Zoom), int(float64(cfg.Video.Height())*cfg.Zoom))
	ebiten.SetWindowTitle("Beast")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	if cfg.Audio != nil {
		player, err := oto.New(cfg.Audio, cfg.SampleRate, cfg.Volume)
		if err != nil {
			return nil, fmt.Errorf("ebitenhost: audio init: %w", err)
		}
		h.audioPlayer = player
	}

	go func() {
		if err := ebiten.RunGame(h); err != nil {
			h.mu.Lock()
			h.closed = true
			h.mu.Unlock()
		}
	}()

	return h, nil
}

// Poll is called from the bus tick loop at frame rate; ebiten's own
// Update/Draw callbacks run on the goroutine RunGame owns, so Poll here
// only needs to report liveness.
func (h *Host) Poll() {}

func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Host) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	if h.audioPlayer != nil {
		h.audioPlayer.Close()
	}
}

// Update implements ebiten.Game: handles window-close detection and
// keyboard-to-matrix translation.
func (h *Host) Update() error {
	if ebiten.IsWindowBeingClosed() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		return ebiten.Termination
	}
	h.handleKeyboard()
	return nil
}

func (h *Host) handleKeyboard() {
	for _, k := range beastKeyTable {
		if inpututil.IsKeyJustPressed(k.key) {
			h.cfg.Keyboard.KeyDown(k.row, k.col)
		}
		if inpututil.IsKeyJustReleased(k.key) {
			h.cfg.Keyboard.KeyUp(k.row, k.col)
		}
	}
}

// Draw implements ebiten.Game: blits the 15-bit-per-pixel back buffer
// into an RGBA ebiten image each frame.
func (h *Host) Draw(screen *ebiten.Image) {
	w, hgt := h.cfg.Video.Width(), h.cfg.Video.Height()
	if h.window == nil {
		h.window = ebiten.NewImage(w, hgt)
	}
	if h.cfg.Video.FrameReady() {
		buf := h.cfg.Video.BackBuffer()
		pixels := make([]byte, w*hgt*4)
		for i, px := range buf {
			r, g, b, a := unpack555(px)
			pixels[4*i] = r
			pixels[4*i+1] = g
			pixels[4*i+2] = b
			pixels[4*i+3] = a
		}
		h.window.WritePixels(pixels)
	}
	screen.DrawImage(h.window, nil)
	h.overlay.draw(screen)
}

func (h *Host) Layout(_, _ int) (int, int) {
	return h.cfg.Video.Width(), h.cfg.Video.Height()
}

// unpack555 expands a 5-5-5-1 packed colour into RGBA8888. The top bit is
// unused by the display path and always renders opaque.
func unpack555(px uint16) (r, g, b, a byte) {
	r = byte((px & 0x1F) << 3)
	g = byte(((px >> 5) & 0x1F) << 3)
	b = byte(((px >> 10) & 0x1F) << 3)
	a = 0xFF
	return
}
