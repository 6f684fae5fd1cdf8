package main

import "testing"

func TestAudioRingDropsNewSampleOnOverrun(t *testing.T) {
	r := NewAudioRing(4) // buf len = 1
	r.Push(111)
	r.Push(222) // ring full (len 1): must drop 222, keep 111

	out := make([]int16, 2)
	n := r.Drain(out)
	if n != 1 {
		t.Fatalf("Drain returned %d samples, want 1", n)
	}
	if out[0] != 111 {
		t.Fatalf("surviving sample = %d, want 111 (oldest kept, newest dropped)", out[0])
	}
}

func TestAudioRingDrainFIFOOrder(t *testing.T) {
	r := NewAudioRing(400) // buf len = 100
	for i := int16(0); i < 5; i++ {
		r.Push(i)
	}
	out := make([]int16, 5)
	n := r.Drain(out)
	if n != 5 {
		t.Fatalf("Drain returned %d, want 5", n)
	}
	for i, v := range out {
		if v != int16(i) {
			t.Fatalf("out[%d] = %d, want %d (FIFO order)", i, v, i)
		}
	}
}

func TestAudioRingDrainPartialWhenEmpty(t *testing.T) {
	r := NewAudioRing(400)
	r.Push(1)
	r.Push(2)
	out := make([]int16, 10)
	n := r.Drain(out)
	if n != 2 {
		t.Fatalf("Drain returned %d, want 2 (only 2 queued)", n)
	}
}

func TestAudioRingSampleHz(t *testing.T) {
	r := NewAudioRing(44100)
	if got := r.SampleHz(); got != 44100 {
		t.Fatalf("SampleHz() = %d, want 44100", got)
	}
}
