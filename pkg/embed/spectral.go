package embed

import (
	"context"
	"fmt"
	"math"

	"github.com/voicegate/voicegate/pkg/audio"
)

// Spectral analysis parameters, sized for 16kHz speech.
const (
	spectralFFTSize = 512
	spectralHop     = 256

	// SpectralDimension is the vector length Spectral produces.
	SpectralDimension = 64
)

// Spectral is a deterministic local [Embedder]. It computes the clip's
// long-term average power spectrum, pools it into mel-spaced bands, and
// returns the L2-normalized log band energies.
//
// This captures the coarse spectral envelope of a voice, which is enough
// for tests and small offline deployments, but it is not a substitute
// for a trained speaker verification model.
type Spectral struct {
	window []float64 // Hann window, precomputed
}

// NewSpectral creates a Spectral embedder.
func NewSpectral() *Spectral {
	w := make([]float64, spectralFFTSize)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(spectralFFTSize-1))
	}
	return &Spectral{window: w}
}

var _ Embedder = (*Spectral)(nil)

// Embed computes the spectral embedding. The clip must be mono and hold
// at least one analysis frame (512 samples); shorter input fails with
// [ErrEmbedding]. A silent clip yields the zero vector, which never
// matches anything under cosine similarity.
func (s *Spectral) Embed(_ context.Context, clip *audio.Clip) ([]float32, error) {
	if !clip.Mono() {
		return nil, fmt.Errorf("%w: clip is not mono", ErrEmbedding)
	}
	if len(clip.Samples) < spectralFFTSize {
		return nil, fmt.Errorf("%w: clip too short (%d samples, need %d)",
			ErrEmbedding, len(clip.Samples), spectralFFTSize)
	}

	nBins := spectralFFTSize/2 + 1
	avg := make([]float64, nBins)
	frames := 0

	re := make([]float64, spectralFFTSize)
	im := make([]float64, spectralFFTSize)
	for off := 0; off+spectralFFTSize <= len(clip.Samples); off += spectralHop {
		for i := 0; i < spectralFFTSize; i++ {
			re[i] = float64(clip.Samples[off+i]) / 32768.0 * s.window[i]
			im[i] = 0
		}
		fft(re, im)
		for b := 0; b < nBins; b++ {
			avg[b] += re[b]*re[b] + im[b]*im[b]
		}
		frames++
	}
	for b := range avg {
		avg[b] /= float64(frames)
	}

	// Pool FFT bins into mel-spaced bands over 0..Nyquist.
	nyquist := float64(clip.SampleRate) / 2
	vec := make([]float32, SpectralDimension)
	melMax := hzToMel(nyquist)
	var norm float64
	for d := 0; d < SpectralDimension; d++ {
		lo := melToHz(melMax * float64(d) / SpectralDimension)
		hi := melToHz(melMax * float64(d+1) / SpectralDimension)
		bLo := int(lo / nyquist * float64(nBins-1))
		bHi := int(hi / nyquist * float64(nBins-1))
		if bHi <= bLo {
			bHi = bLo + 1
		}
		if bHi > nBins {
			bHi = nBins
		}
		var e float64
		for b := bLo; b < bHi; b++ {
			e += avg[b]
		}
		v := math.Log1p(e * 1e4)
		vec[d] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// Dimension returns SpectralDimension.
func (s *Spectral) Dimension() int { return SpectralDimension }

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// fft runs an in-place radix-2 decimation-in-time FFT over re/im.
// The length must be a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal reorder.
	for i, j := 0, 0; i < n-1; i++ {
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
		k := n >> 1
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}

	// Butterfly stages.
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := -2 * math.Pi / float64(size)
		wr, wi := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += size {
			tr, ti := 1.0, 0.0
			for k := 0; k < half; k++ {
				u, v := start+k, start+k+half
				xr := tr*re[v] - ti*im[v]
				xi := tr*im[v] + ti*re[v]
				re[v], im[v] = re[u]-xr, im[u]-xi
				re[u], im[u] = re[u]+xr, im[u]+xi
				tr, ti = tr*wr-ti*wi, tr*wi+ti*wr
			}
		}
	}
}
