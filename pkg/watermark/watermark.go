// Package watermark generates and detects the anti-replay audio
// watermark used during enrollment capture.
//
// The watermark is a linear frequency sweep (chirp) confined to a narrow
// near-ultrasonic band. It is played while an enrollment sample is being
// recorded, so the raw recording carries the sweep. A verification clip
// that contains the sweep is therefore a replayed enrollment recording,
// not a live utterance, and must be rejected regardless of how well the
// voice matches.
//
// Detection band-pass filters the clip to the watermark band and compares
// in-band energy against total signal energy. The detection threshold is
// empirically tuned, not physically derived; treat it as a configurable
// constant.
package watermark

import (
	"math"
	"sync"

	"github.com/voicegate/voicegate/pkg/audio"
)

// Default codec parameters. The band sits just below the 8kHz Nyquist
// limit of 16kHz capture, where adult hearing sensitivity is low.
const (
	DefaultLowHz     = 7000.0
	DefaultHighHz    = 7800.0
	DefaultAmplitude = 0.15
	DefaultOrder     = 10

	// DefaultThreshold is the minimum in-band/total energy ratio that
	// counts as detection. Empirically tuned against 16kHz speech.
	DefaultThreshold = 0.0005
)

// Codec generates and detects the chirp watermark.
// The zero value is not usable; construct with [New].
type Codec struct {
	lowHz     float64
	highHz    float64
	amplitude float64
	order     int
	threshold float64

	// filter cache keyed by sample rate; detection typically sees a
	// single canonical rate.
	mu      sync.Mutex
	filters map[int]*sosFilter
}

// Option configures a Codec.
type Option func(*Codec)

// WithBand sets the sweep band edges in Hz.
func WithBand(lowHz, highHz float64) Option {
	return func(c *Codec) {
		if lowHz > 0 && highHz > lowHz {
			c.lowHz, c.highHz = lowHz, highHz
		}
	}
}

// WithAmplitude sets the generated sweep amplitude as a fraction of
// full scale, in (0, 1].
func WithAmplitude(a float64) Option {
	return func(c *Codec) {
		if a > 0 && a <= 1 {
			c.amplitude = a
		}
	}
}

// WithThreshold sets the detection energy-ratio threshold.
func WithThreshold(t float64) Option {
	return func(c *Codec) {
		if t > 0 {
			c.threshold = t
		}
	}
}

// New creates a Codec with the given options applied over the defaults.
func New(opts ...Option) *Codec {
	c := &Codec{
		lowHz:     DefaultLowHz,
		highHz:    DefaultHighHz,
		amplitude: DefaultAmplitude,
		order:     DefaultOrder,
		threshold: DefaultThreshold,
		filters:   make(map[int]*sosFilter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate renders the watermark sweep: a linear chirp from the band's
// low edge to its high edge over the given duration, scaled to the
// configured amplitude and quantized to PCM16. Deterministic for
// identical parameters.
func (c *Codec) Generate(durationSeconds float64, sampleRate int) *audio.Clip {
	n := int(float64(sampleRate) * durationSeconds)
	samples := make([]int16, n)
	scale := c.amplitude * 32767
	slope := (c.highHz - c.lowHz) / (2 * durationSeconds)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * (c.lowHz*t + slope*t*t)
		samples[i] = int16(math.Sin(phase) * scale)
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

// Embed mixes the watermark into a copy of the clip using saturating
// addition. The sweep spans the full clip duration. This is the offline
// equivalent of playing the sweep during live enrollment capture.
func (c *Codec) Embed(clip *audio.Clip) *audio.Clip {
	dur := clip.Duration().Seconds()
	mark := c.Generate(dur, clip.SampleRate)
	out := clip.Clone()
	for i := range out.Samples {
		if i >= len(mark.Samples) {
			break
		}
		v := int32(out.Samples[i]) + int32(mark.Samples[i])
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out.Samples[i] = int16(v)
	}
	return out
}

// Ratio computes the in-band to total energy ratio of the clip.
// A zero-energy clip yields 0 (never a division error).
func (c *Codec) Ratio(clip *audio.Clip) float64 {
	x := make([]float64, len(clip.Samples))
	var total float64
	for i, s := range clip.Samples {
		v := float64(s)
		x[i] = v
		total += v * v
	}
	if total == 0 {
		return 0
	}

	c.mu.Lock()
	f := c.filters[clip.SampleRate]
	if f == nil {
		f = newBandpass(c.order, c.lowHz, c.highHz, float64(clip.SampleRate))
		c.filters[clip.SampleRate] = f
	}
	c.mu.Unlock()

	filtered := f.apply(x)
	var inBand float64
	for _, v := range filtered {
		inBand += v * v
	}
	return inBand / total
}

// Detect reports whether the clip carries the watermark: true when the
// in-band energy ratio exceeds the configured threshold.
func (c *Codec) Detect(clip *audio.Clip) bool {
	return c.Ratio(clip) > c.threshold
}
