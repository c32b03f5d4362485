// Package normalize converts arbitrary input audio into the canonical
// clip format used by the rest of the pipeline: mono, signed 16-bit PCM
// at a configured target sample rate.
//
// Normalization is idempotent: feeding an already-canonical clip (or its
// WAVE encoding) through the normalizer yields the identical samples.
package normalize

import (
	"errors"
	"fmt"

	"github.com/voicegate/voicegate/pkg/audio"
	"github.com/voicegate/voicegate/pkg/audio/resampler"
	"github.com/voicegate/voicegate/pkg/audio/wav"
)

// ErrDecode is returned when the input bytes are not decodable audio.
var ErrDecode = errors.New("normalize: cannot decode audio")

// DefaultSampleRate is the canonical sample rate expected by speaker
// embedding models.
const DefaultSampleRate = 16000

// Normalizer canonicalizes audio to mono PCM16 at TargetRate.
type Normalizer struct {
	// TargetRate is the output sample rate in Hz.
	// Zero means DefaultSampleRate.
	TargetRate int
}

// New creates a Normalizer with the given target sample rate.
// Pass 0 for the default (16kHz).
func New(targetRate int) *Normalizer {
	return &Normalizer{TargetRate: targetRate}
}

func (n *Normalizer) rate() int {
	if n.TargetRate > 0 {
		return n.TargetRate
	}
	return DefaultSampleRate
}

// Normalize decodes encoded audio bytes and canonicalizes the result.
// Currently WAVE is the accepted container; anything else fails with an
// error wrapping [ErrDecode].
func (n *Normalizer) Normalize(b []byte) (*audio.Clip, error) {
	if !wav.IsWAV(b) {
		return nil, fmt.Errorf("%w: unrecognized container", ErrDecode)
	}
	clip, err := wav.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return n.NormalizeClip(clip)
}

// NormalizeClip canonicalizes a decoded clip. A clip that is already
// canonical is returned unchanged (same samples, no resampling pass).
func (n *Normalizer) NormalizeClip(clip *audio.Clip) (*audio.Clip, error) {
	target := n.rate()
	if clip.Mono() && clip.SampleRate == target {
		return clip, nil
	}

	mono := clip.DownmixAverage()
	if mono.SampleRate == target {
		return mono, nil
	}

	samples, err := resampler.Resample(mono.Samples, mono.SampleRate, target)
	if err != nil {
		return nil, err
	}
	return &audio.Clip{Samples: samples, SampleRate: target, Channels: 1}, nil
}
