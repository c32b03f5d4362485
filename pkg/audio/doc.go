// Package audio provides the core audio types shared by the voicegate
// processing pipeline.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - wav: RIFF/WAVE container decoding and encoding
//   - resampler: sample rate conversion for PCM16 audio
//   - normalize: canonicalization of arbitrary input audio
//
// The central type is [Clip], a decoded PCM16 buffer carrying its sample
// rate and channel count. All signal processing stages (watermark
// detection, embedding extraction) operate on clips in canonical form:
// mono, one configured sample rate, signed 16-bit samples.
package audio
