package audio

import "time"

// Clip is a decoded PCM16 audio buffer. Samples are interleaved when
// Channels > 1 (frame layout: ch0, ch1, ..., ch0, ch1, ...).
type Clip struct {
	// Samples holds signed 16-bit PCM samples, interleaved by channel.
	Samples []int16

	// SampleRate is the sample rate in Hz (e.g., 16000).
	SampleRate int

	// Channels is the number of audio channels (1 = mono).
	Channels int
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback duration of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Mono reports whether the clip has exactly one channel.
func (c *Clip) Mono() bool {
	return c.Channels == 1
}

// Bytes returns the samples as little-endian PCM16 bytes.
func (c *Clip) Bytes() []byte {
	b := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// FromBytes builds a clip from little-endian PCM16 bytes. A trailing odd
// byte is dropped.
func FromBytes(b []byte, sampleRate, channels int) *Clip {
	n := len(b) / 2
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return &Clip{Samples: samples, SampleRate: sampleRate, Channels: channels}
}

// DownmixAverage converts a multi-channel clip to mono by averaging all
// channels of each frame. Mono clips are returned unchanged.
func (c *Clip) DownmixAverage() *Clip {
	if c.Channels <= 1 {
		return c
	}
	frames := c.Frames()
	out := make([]int16, frames)
	for f := 0; f < frames; f++ {
		var sum int32
		for ch := 0; ch < c.Channels; ch++ {
			sum += int32(c.Samples[f*c.Channels+ch])
		}
		out[f] = int16(sum / int32(c.Channels))
	}
	return &Clip{Samples: out, SampleRate: c.SampleRate, Channels: 1}
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	cp := make([]int16, len(c.Samples))
	copy(cp, c.Samples)
	return &Clip{Samples: cp, SampleRate: c.SampleRate, Channels: c.Channels}
}
