package resampler

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(0.4 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func TestResampleSameRate(t *testing.T) {
	in := sine(440, 16000, 1600)
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length changed on same-rate pass: %d -> %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d changed on same-rate pass", i)
		}
	}
}

func TestResampleUpsample(t *testing.T) {
	in := sine(440, 8000, 8000) // 1s
	out, err := Resample(in, 8000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	// Length should be about double; the engine may trim filter edges.
	if len(out) < 15000 || len(out) > 17000 {
		t.Errorf("got %d samples, want ~16000", len(out))
	}
	for i, s := range out {
		if s < -32768 || s > 32767 {
			t.Fatalf("sample %d out of range: %d", i, s)
		}
	}
}

func TestResampleDownsample(t *testing.T) {
	in := sine(440, 44100, 44100) // 1s
	out, err := Resample(in, 44100, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) < 15000 || len(out) > 17000 {
		t.Errorf("got %d samples, want ~16000", len(out))
	}
}

func TestResampleInvalidRates(t *testing.T) {
	if _, err := Resample(nil, 0, 16000); err == nil {
		t.Error("zero source rate accepted")
	}
	if _, err := Resample(nil, 16000, -1); err == nil {
		t.Error("negative target rate accepted")
	}
}
