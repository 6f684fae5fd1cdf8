// Package headless is the CI/test host backend: no window, no audio
// device, no keyboard source. It exists so the core can be driven to
// completion (e.g. load a ROM, run until QUIT) in environments with no
// display.
package headless

// VideoSource mirrors ebitenhost.VideoSource without importing it, so the
// headless backend never pulls in the graphics stack.
type VideoSource interface {
	BackBuffer() []uint16
	FrameReady() bool
	Width() int
	Height() int
}

type KeyboardSink interface {
	KeyDown(row, col int)
	KeyUp(row, col int)
}

// Host provides Poll and Closed, which main's headlessAdapter wraps into
// hostBackend; it does no real I/O: Poll only counts completed frames and
// the window is never "closed" by anything but an explicit call from the
// embedding test.
type Host struct {
	video    VideoSource
	keyboard KeyboardSink
	closed   bool

	frameCount uint64
}

func New(video VideoSource, keyboard KeyboardSink) *Host {
	return &Host{video: video, keyboard: keyboard}
}

// Poll drains one completed frame if ready, purely to exercise the same
// code path a graphical host would (useful for tests asserting the video
// coprocessor actually produced a frame).
func (h *Host) Poll() {
	if h.video != nil && h.video.FrameReady() {
		h.frameCount++
	}
}

func (h *Host) FrameCount() uint64 { return h.frameCount }

func (h *Host) Closed() bool { return h.closed }

// RequestQuit lets an embedding test or a signal handler stop the run loop
// without a real window-close event.
func (h *Host) RequestQuit() { h.closed = true }
