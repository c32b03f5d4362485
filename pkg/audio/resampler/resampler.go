// Package resampler converts PCM16 audio between sample rates.
//
// It wraps a pure Go resampling engine (no CGO/FFI dependencies) with
// high-quality settings. Conversion is deterministic: identical input
// always produces identical output.
package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts mono PCM16 samples from srcRate to dstRate.
// If the rates are equal the input slice is returned as-is.
func Resample(samples []int16, srcRate, dstRate int) ([]int16, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		return samples, nil
	}

	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	// Normalize to [-1, 1] floats for the engine.
	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	out := make([]int16, len(output))
	for i, v := range output {
		out[i] = clampToInt16(v)
	}
	return out, nil
}

// clampToInt16 quantizes a normalized float sample to int16 with
// saturation.
func clampToInt16(v float64) int16 {
	switch {
	case v >= 1.0:
		return 32767
	case v <= -1.0:
		return -32768
	default:
		return int16(v * 32767.0)
	}
}
