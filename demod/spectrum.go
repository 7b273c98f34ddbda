package demod

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum computes a windowed real-FFT magnitude snapshot of
// signal in dB, for a plot/diagnostics collaborator (the renderer
// itself is out of scope; only the numbers it would need are). This is
// the same gonum.org/v1/gonum/dsp/fourier usage the reference
// spectrum/waterfall decoders rely on, applied here to the received
// passband instead of a live audio stream.
func PowerSpectrum(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}

	windowed := make([]float64, n)
	for i, v := range signal {
		windowed[i] = v * hann(i, n)
	}

	fft := fourier.NewFFT(n)
	spectrum := fft.Coefficients(nil, windowed)

	magDB := make([]float64, len(spectrum))
	for i, c := range spectrum {
		mag := math.Hypot(real(c), imag(c)) / float64(n)
		magDB[i] = 20 * math.Log10(mag+1e-12)
	}
	return magDB
}

func hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}
