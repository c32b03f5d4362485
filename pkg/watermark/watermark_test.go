package watermark

import (
	"math"
	"testing"

	"github.com/voicegate/voicegate/pkg/audio"
)

func sine(freq float64, amp float64, sampleRate, n int) *audio.Clip {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

func TestGenerateDeterministic(t *testing.T) {
	c := New()
	a := c.Generate(1.0, 16000)
	b := c.Generate(1.0, 16000)
	if len(a.Samples) != 16000 || len(b.Samples) != 16000 {
		t.Fatalf("got %d and %d samples, want 16000", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("non-deterministic at sample %d", i)
		}
	}
}

func TestGenerateAmplitude(t *testing.T) {
	c := New()
	clip := c.Generate(1.0, 16000)
	ampScale := float64(DefaultAmplitude) * 32767
	limit := int16(ampScale) + 1
	var peak int16
	for _, s := range clip.Samples {
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}
	if peak > limit {
		t.Errorf("peak %d exceeds amplitude limit %d", peak, limit)
	}
	// The sweep should actually reach near full configured amplitude.
	if peak < limit/2 {
		t.Errorf("peak %d suspiciously low for amplitude %v", peak, DefaultAmplitude)
	}
}

func TestDetectPureSweep(t *testing.T) {
	c := New()
	clip := c.Generate(2.0, 16000)
	r := c.Ratio(clip)
	if r < 0.5 {
		t.Errorf("pure sweep in-band ratio = %v, want near 1", r)
	}
	if !c.Detect(clip) {
		t.Error("Detect(pure sweep) = false, want true")
	}
}

func TestDetectSilence(t *testing.T) {
	c := New()
	clip := &audio.Clip{Samples: make([]int16, 16000), SampleRate: 16000, Channels: 1}
	if r := c.Ratio(clip); r != 0 {
		t.Errorf("Ratio(silence) = %v, want 0", r)
	}
	if c.Detect(clip) {
		t.Error("Detect(silence) = true, want false")
	}
}

func TestDetectEmptyClip(t *testing.T) {
	c := New()
	clip := &audio.Clip{SampleRate: 16000, Channels: 1}
	if c.Detect(clip) {
		t.Error("Detect(empty) = true, want false")
	}
}

func TestDetectOutOfBandTone(t *testing.T) {
	c := New()
	// 1kHz is far below the 7-7.8kHz band; a 10th-order bandpass leaves
	// essentially no residual energy.
	clip := sine(1000, 0.5, 16000, 32000)
	if c.Detect(clip) {
		t.Errorf("Detect(1kHz tone) = true, ratio = %v", c.Ratio(clip))
	}
}

func TestDetectInBandTone(t *testing.T) {
	c := New()
	clip := sine(7400, 0.5, 16000, 32000)
	if !c.Detect(clip) {
		t.Errorf("Detect(7.4kHz tone) = false, ratio = %v", c.Ratio(clip))
	}
}

func TestEmbedThenDetect(t *testing.T) {
	c := New()
	speech := sine(300, 0.3, 16000, 32000)

	if c.Detect(speech) {
		t.Fatalf("clean clip already detected, ratio = %v", c.Ratio(speech))
	}

	marked := c.Embed(speech)
	if !c.Detect(marked) {
		t.Errorf("Detect(watermarked) = false, ratio = %v", c.Ratio(marked))
	}

	// Embed must not mutate the input.
	orig := sine(300, 0.3, 16000, 32000)
	for i := range speech.Samples {
		if speech.Samples[i] != orig.Samples[i] {
			t.Fatalf("Embed mutated its input at sample %d", i)
		}
	}
}

func TestEmbedSaturates(t *testing.T) {
	c := New()
	clip := &audio.Clip{SampleRate: 16000, Channels: 1, Samples: make([]int16, 1600)}
	for i := range clip.Samples {
		clip.Samples[i] = 32767
	}
	out := c.Embed(clip)
	for i, s := range out.Samples {
		if s < -32768 || s > 32767 {
			t.Fatalf("sample %d out of range: %d", i, s)
		}
	}
}

func TestWithBandOption(t *testing.T) {
	c := New(WithBand(3000, 3500), WithThreshold(0.01))
	clip := sine(3200, 0.5, 16000, 32000)
	if !c.Detect(clip) {
		t.Errorf("custom band missed in-band tone, ratio = %v", c.Ratio(clip))
	}
	out := sine(7000, 0.5, 16000, 32000)
	if c.Detect(out) {
		t.Errorf("custom band detected out-of-band tone, ratio = %v", c.Ratio(out))
	}
}
