// Package oto wraps github.com/ebitengine/oto/v3 into the small
// ring-buffer-draining player the core's audio ring buffer needs.
package oto

import (
	"github.com/ebitengine/oto/v3"
)

// Source is the subset of the core's audio ring buffer a player drains.
type Source interface {
	Drain(dst []int16) int
	SampleHz() int
}

// Player owns an oto context and a single streaming player reading from a
// Source, scaled by a 0-10 volume control.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// New opens an oto context at sampleRate (or the source's native rate if
// zero) and starts streaming immediately.
func New(src Source, sampleRate, volume int) (*Player, error) {
	rate := sampleRate
	if rate == 0 {
		rate = src.SampleHz()
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	p := &Player{ctx: ctx}
	p.player = ctx.NewPlayer(&reader{src: src, volume: clampVolume(volume)})
	p.player.Play()
	return p, nil
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func (p *Player) Close() {
	if p.player != nil {
		p.player.Close()
	}
}

// reader adapts Source.Drain to io.Reader, the shape oto.NewPlayer wants.
type reader struct {
	src    Source
	volume int
}

func (r *reader) Read(p []byte) (int, error) {
	samples := make([]int16, len(p)/2)
	n := r.src.Drain(samples)
	for i := 0; i < n; i++ {
		v := int32(samples[i]) * int32(r.volume) / 10
		p[2*i] = byte(v)
		p[2*i+1] = byte(v >> 8)
	}
	for i := n; i < len(samples); i++ {
		p[2*i], p[2*i+1] = 0, 0
	}
	return len(p), nil
}
