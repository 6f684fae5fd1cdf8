package main

import (
	"github.com/atoone/beastem/internal/host/ebitenhost"
	"github.com/atoone/beastem/internal/host/headless"
)

// hostBackend is what main's tick loop needs from whichever front-end is
// active: Poll is pumped once per frame boundary, Close tears it down on
// exit.
type hostBackend interface {
	Poll()
	WantsQuit() bool
	Close()
}

// headlessAdapter satisfies hostBackend for CI/test runs with no window.
type headlessAdapter struct {
	*headless.Host
}

func (h headlessAdapter) WantsQuit() bool { return h.Host.Closed() }
func (h headlessAdapter) Close()          {}

// ebitenAdapter wires the video coprocessor's back buffer and the
// keyboard to a real ebiten window.
type ebitenAdapter struct {
	*ebitenhost.Host
}

func (h ebitenAdapter) WantsQuit() bool { return h.Host.Closed() }
func (h ebitenAdapter) Close()          { h.Host.Shutdown() }

func newHostBackend(isHeadless bool, bus *Bus, runner *Runner, audioDevice, sampleRate, volume int, zoom float64) (hostBackend, error) {
	if isHeadless {
		return headlessAdapter{headless.New(bus.Video(), bus.Keyboard())}, nil
	}
	h, err := ebitenhost.New(ebitenhost.Config{
		Video:      bus.Video(),
		Keyboard:   bus.Keyboard(),
		Audio:      bus.Audio(),
		Overlay:    runner,
		Zoom:       zoom,
		SampleRate: sampleRate,
		Volume:     volume,
	})
	if err != nil {
		return nil, err
	}
	return ebitenAdapter{h}, nil
}
