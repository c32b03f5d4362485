package embed

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/voicegate/voicegate/pkg/audio"
	"github.com/voicegate/voicegate/pkg/speaker"
)

func sine(freq float64, sampleRate, n int) *audio.Clip {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(0.4 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

func TestSpectralDeterministic(t *testing.T) {
	e := NewSpectral()
	clip := sine(440, 16000, 16000)

	a, err := e.Embed(context.Background(), clip)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), clip)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(a) != SpectralDimension {
		t.Fatalf("dimension = %d, want %d", len(a), SpectralDimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at component %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSpectralNormalized(t *testing.T) {
	e := NewSpectral()
	vec, err := e.Embed(context.Background(), sine(700, 16000, 16000))
	if err != nil {
		t.Fatal(err)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("squared norm = %v, want 1", norm)
	}
}

func TestSpectralSeparatesTones(t *testing.T) {
	e := NewSpectral()
	ctx := context.Background()

	low, err := e.Embed(ctx, sine(300, 16000, 16000))
	if err != nil {
		t.Fatal(err)
	}
	lowAgain, err := e.Embed(ctx, sine(300, 16000, 16000))
	if err != nil {
		t.Fatal(err)
	}
	high, err := e.Embed(ctx, sine(3000, 16000, 16000))
	if err != nil {
		t.Fatal(err)
	}

	same := speaker.CosineSimilarity(low, lowAgain)
	diff := speaker.CosineSimilarity(low, high)
	if same < 0.99 {
		t.Errorf("self-similarity = %v, want ~1", same)
	}
	if diff >= same {
		t.Errorf("cross-similarity %v not below self-similarity %v", diff, same)
	}
}

func TestSpectralTooShort(t *testing.T) {
	e := NewSpectral()
	clip := &audio.Clip{Samples: make([]int16, 100), SampleRate: 16000, Channels: 1}
	if _, err := e.Embed(context.Background(), clip); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed(short clip) = %v, want ErrEmbedding", err)
	}
}

func TestSpectralRejectsStereo(t *testing.T) {
	e := NewSpectral()
	clip := &audio.Clip{Samples: make([]int16, 2048), SampleRate: 16000, Channels: 2}
	if _, err := e.Embed(context.Background(), clip); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed(stereo clip) = %v, want ErrEmbedding", err)
	}
}

func TestSpectralSilenceZeroVector(t *testing.T) {
	e := NewSpectral()
	vec, err := e.Embed(context.Background(), &audio.Clip{
		Samples: make([]int16, 4096), SampleRate: 16000, Channels: 1,
	})
	if err != nil {
		t.Fatalf("Embed(silence): %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("component %d = %v, want zero vector for silence", i, v)
		}
	}
}

func TestFFTKnownSpike(t *testing.T) {
	// A cosine at bin 4 of a 16-point transform concentrates its energy
	// in bins 4 and 12.
	n := 16
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Cos(2 * math.Pi * 4 * float64(i) / float64(n))
	}
	fft(re, im)
	for b := 0; b < n; b++ {
		mag := math.Hypot(re[b], im[b])
		if b == 4 || b == 12 {
			if math.Abs(mag-8) > 1e-9 {
				t.Errorf("bin %d magnitude = %v, want 8", b, mag)
			}
		} else if mag > 1e-9 {
			t.Errorf("bin %d magnitude = %v, want 0", b, mag)
		}
	}
}
