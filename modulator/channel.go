package modulator

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AWGN adds zero-mean white Gaussian noise to clean at the given SNR
// (dB), using rng as the noise source so a run is fully reproducible
// given its seed. Signal power is estimated with gonum's stat.Mean
// rather than a hand-rolled accumulation loop, and the noisy buffer is
// built with gonum's floats package rather than a per-sample loop. Noise
// itself is drawn with rng.NormFloat64 rather than gonum's
// distuv.Normal: distuv.Normal.Src wants a golang.org/x/exp/rand.Source
// (Seed(uint64)), which *math/rand.Rand (Seed(int64)) doesn't satisfy,
// and rng is the same *math/rand.Rand threaded through the whole
// pipeline for reproducibility.
func AWGN(clean []float64, snrDB float64, rng *rand.Rand) []float64 {
	squared := make([]float64, len(clean))
	for i, v := range clean {
		squared[i] = v * v
	}
	signalPower := stat.Mean(squared, nil)

	snrLinear := math.Pow(10, snrDB/10)
	noisePower := 0.0
	if snrLinear > 0 {
		noisePower = signalPower / snrLinear
	}
	sigma := math.Sqrt(noisePower)

	noise := make([]float64, len(clean))
	for i := range noise {
		noise[i] = rng.NormFloat64() * sigma
	}

	noisy := make([]float64, len(clean))
	copy(noisy, clean)
	floats.Add(noisy, noise)
	return noisy
}
