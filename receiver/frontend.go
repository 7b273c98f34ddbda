// Package receiver implements the front end of the demodulator: complex
// down-conversion to baseband followed by root-raised-cosine matched
// filtering.
package receiver

import "math"

// DownMix multiplies the real passband signal by the complex carrier
// exp(-j*2*pi*fc*n/fs), producing the raw complex baseband.
func DownMix(noisy []float64, carrierHz, sampleRate float64) []complex128 {
	out := make([]complex128, len(noisy))
	w := 2 * math.Pi * carrierHz / sampleRate
	for n, v := range noisy {
		theta := -w * float64(n)
		out[n] = complex(v*math.Cos(theta), v*math.Sin(theta))
	}
	return out
}

// RRCTaps designs a root-raised-cosine filter of numTaps coefficients at
// roll-off beta and symbol period samplesPerSymbol, normalized to unit
// Euclidean norm. NaN values at the t = +/-1/(2*beta) singularities are
// replaced with 0 before normalization, matching the reference
// implementation's guard.
func RRCTaps(numTaps int, beta, samplesPerSymbol float64) []float64 {
	taps := make([]float64, numTaps)
	half := numTaps / 2
	for i := 0; i < numTaps; i++ {
		t := float64(i-half) / samplesPerSymbol
		taps[i] = rrcSample(t, beta)
	}

	var sumSq float64
	for _, v := range taps {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm > 0 {
		for i := range taps {
			taps[i] /= norm
		}
	}
	return taps
}

func rrcSample(t, beta float64) float64 {
	denom := 1 - math.Pow(2*beta*t, 2)
	if denom == 0 {
		// t = +/-1/(2*beta): singularity, replaced with 0 before
		// normalization rather than the closed-form limit.
		return 0
	}
	v := sinc(t) * math.Cos(math.Pi*beta*t) / denom
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// MatchedFilter runs a causal FIR convolution of complex baseband x
// against the real-valued filter taps.
func MatchedFilter(x []complex128, taps []float64) []complex128 {
	out := make([]complex128, len(x))
	for n := range x {
		var acc complex128
		for k, h := range taps {
			idx := n - k
			if idx < 0 {
				break
			}
			acc += complex(h, 0) * x[idx]
		}
		out[n] = acc
	}
	return out
}
