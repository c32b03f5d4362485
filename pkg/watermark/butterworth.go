package watermark

import (
	"math"
	"math/cmplx"
)

// biquad is one second-order IIR filter section with normalized
// denominator (a0 = 1).
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// sosFilter is a cascade of second-order sections with a single overall
// gain, applied with zero initial conditions.
type sosFilter struct {
	sections []biquad
	gain     float64
}

// newBandpass designs a Butterworth band-pass filter of the given
// prototype order with edge frequencies lowHz..highHz at sample rate fs.
// The design follows the classic analog-prototype route: prototype poles,
// lowpass-to-bandpass transform, bilinear transform, then pairing of
// conjugate poles into second-order sections.
func newBandpass(order int, lowHz, highHz, fs float64) *sosFilter {
	// Prewarped analog edge frequencies (rad/s).
	w1 := 2 * fs * math.Tan(math.Pi*lowHz/fs)
	w2 := 2 * fs * math.Tan(math.Pi*highHz/fs)
	bw := w2 - w1
	w0 := math.Sqrt(w1 * w2)

	// Normalized lowpass prototype poles on the unit circle's left half.
	protos := make([]complex128, order)
	for k := 1; k <= order; k++ {
		theta := math.Pi * float64(2*k+order-1) / float64(2*order)
		protos[k-1] = cmplx.Exp(complex(0, theta))
	}

	// Lowpass-to-bandpass: each prototype pole maps to two analog poles.
	// Bilinear transform maps each analog pole into the z-plane.
	var zpoles []complex128
	for _, p := range protos {
		a := p * complex(bw/2, 0)
		d := cmplx.Sqrt(a*a - complex(w0*w0, 0))
		for _, s := range []complex128{a + d, a - d} {
			z := (complex(2*fs, 0) + s) / (complex(2*fs, 0) - s)
			zpoles = append(zpoles, z)
		}
	}

	// Keep one pole of each conjugate pair; the section supplies the
	// conjugate implicitly. Bilinear-transformed zeros sit at z = +1 and
	// z = -1 (numerator z^2 - 1 per section).
	var sections []biquad
	for _, zp := range zpoles {
		if imag(zp) <= 0 {
			continue
		}
		re, mag2 := real(zp), real(zp)*real(zp)+imag(zp)*imag(zp)
		sections = append(sections, biquad{
			b0: 1, b1: 0, b2: -1,
			a1: -2 * re, a2: mag2,
		})
	}

	f := &sosFilter{sections: sections, gain: 1}

	// Normalize to unit gain at the geometric center frequency.
	fc := math.Sqrt(lowHz * highHz)
	mag := f.magnitudeAt(fc, fs)
	if mag > 0 {
		f.gain = 1 / mag
	}
	return f
}

// magnitudeAt evaluates the cascade's magnitude response at freq Hz.
func (f *sosFilter) magnitudeAt(freq, fs float64) float64 {
	z := cmplx.Exp(complex(0, 2*math.Pi*freq/fs))
	z2 := z * z
	h := complex(f.gain, 0)
	for _, s := range f.sections {
		num := complex(s.b0, 0)*z2 + complex(s.b1, 0)*z + complex(s.b2, 0)
		den := z2 + complex(s.a1, 0)*z + complex(s.a2, 0)
		h *= num / den
	}
	return cmplx.Abs(h)
}

// apply runs the cascade over x with zero initial state and returns the
// filtered signal. Direct form II transposed per section.
func (f *sosFilter) apply(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	for _, s := range f.sections {
		var s1, s2 float64
		for i, v := range y {
			out := s.b0*v + s1
			s1 = s.b1*v - s.a1*out + s2
			s2 = s.b2*v - s.a2*out
			y[i] = out
		}
	}
	if f.gain != 1 {
		for i := range y {
			y[i] *= f.gain
		}
	}
	return y
}
