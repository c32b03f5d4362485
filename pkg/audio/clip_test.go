package audio

import (
	"testing"
	"time"
)

func TestClipFramesAndDuration(t *testing.T) {
	c := &Clip{Samples: make([]int16, 32000), SampleRate: 16000, Channels: 2}
	if got := c.Frames(); got != 16000 {
		t.Errorf("Frames() = %d, want 16000", got)
	}
	if got := c.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	c := &Clip{Samples: []int16{0, 1, -1, 32767, -32768}, SampleRate: 16000, Channels: 1}
	got := FromBytes(c.Bytes(), 16000, 1)
	if len(got.Samples) != len(c.Samples) {
		t.Fatalf("got %d samples, want %d", len(got.Samples), len(c.Samples))
	}
	for i := range c.Samples {
		if got.Samples[i] != c.Samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got.Samples[i], c.Samples[i])
		}
	}
}

func TestFromBytesDropsOddByte(t *testing.T) {
	got := FromBytes([]byte{1, 0, 2}, 16000, 1)
	if len(got.Samples) != 1 {
		t.Errorf("got %d samples, want 1", len(got.Samples))
	}
}

func TestDownmixAverage(t *testing.T) {
	// Two stereo frames: (100, 200) and (-50, 50).
	c := &Clip{Samples: []int16{100, 200, -50, 50}, SampleRate: 16000, Channels: 2}
	mono := c.DownmixAverage()
	if !mono.Mono() {
		t.Fatal("expected mono clip")
	}
	want := []int16{150, 0}
	if len(mono.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(mono.Samples), len(want))
	}
	for i := range want {
		if mono.Samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, mono.Samples[i], want[i])
		}
	}
}

func TestDownmixAverageMonoPassthrough(t *testing.T) {
	c := &Clip{Samples: []int16{1, 2, 3}, SampleRate: 16000, Channels: 1}
	if got := c.DownmixAverage(); got != c {
		t.Error("mono downmix should return the same clip")
	}
}

func TestCloneIndependent(t *testing.T) {
	c := &Clip{Samples: []int16{1, 2, 3}, SampleRate: 16000, Channels: 1}
	cp := c.Clone()
	cp.Samples[0] = 99
	if c.Samples[0] != 1 {
		t.Error("clone shares sample storage with original")
	}
}
