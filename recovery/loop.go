// Package recovery implements the joint symbol-timing and carrier
// recovery loop: a Gardner timing-error detector driving a type-II PI
// loop over a fractional sample index, plus a decision-directed carrier
// PLL driving a numerically controlled oscillator (NCO). It is exposed
// as a single pure function over an explicit Gains record rather than
// package-level state, so a tuning harness can sweep gains by calling it
// repeatedly instead of rebinding a global.
package recovery

import "math"

// Gains holds the four PI loop constants. Defaults come from the
// protocol specification; Ki_c is conventionally Kp_c^2/4 for a
// critically damped second-order loop.
type Gains struct {
	KpCarrier float64
	KiCarrier float64
	KpTiming  float64
	KiTiming  float64
}

// DefaultGains returns the specification's default loop gains.
func DefaultGains() Gains {
	kpc := 5e-6
	return Gains{
		KpCarrier: kpc,
		KiCarrier: kpc * kpc / 4,
		KpTiming:  1e-4,
		KiTiming:  1e-6,
	}
}

// Result holds one complex symbol, its Gardner timing error, and the
// NCO's instantaneous frequency offset (Hz) per recovered symbol.
type Result struct {
	Symbols         []complex128
	TimingError     []float64
	NCOFreqOffsetHz []float64
}

// Run advances a fractional sample index through baseband, emitting one
// complex symbol per loop iteration until the input is exhausted. It is
// deterministic and numerically stable for all-zero input: the NCO
// frequency never diverges before the first symbol exists, because the
// Gardner error is only computed once a previous symbol is available.
func Run(baseband []complex128, samplesPerSymbol float64, sampleRate float64, gains Gains) Result {
	var (
		ncoPhase          float64
		ncoFreqRad        float64
		integratorCarrier float64
		timingError       float64
		integratorTiming  float64
	)

	var res Result
	n := len(baseband)
	iIn := samplesPerSymbol

	var havePrev bool
	var prevMid complex128

	for {
		midIdx := int(math.Floor(iIn))
		if midIdx < 1 || midIdx+1 >= n {
			break
		}
		midFrac := iIn - float64(midIdx)
		mid := lerp(baseband[midIdx], baseband[midIdx+1], midFrac)

		halfPos := iIn - samplesPerSymbol/2
		halfIdx := int(math.Floor(halfPos))
		if halfIdx < 1 || halfIdx+1 >= n {
			break
		}
		halfFrac := halfPos - float64(halfIdx)
		half := lerp(baseband[halfIdx], baseband[halfIdx+1], halfFrac)

		ncoRot := complex(math.Cos(-ncoPhase), math.Sin(-ncoPhase))
		correctedMid := mid * ncoRot
		correctedHalf := half * ncoRot

		if havePrev {
			timingError = real(correctedHalf)*(real(correctedMid)-real(prevMid)) +
				imag(correctedHalf)*(imag(correctedMid)-imag(prevMid))
		}

		integratorTiming += gains.KiTiming * timingError
		iIn += samplesPerSymbol - (gains.KpTiming*timingError + integratorTiming)

		phaseError := math.Atan2(imag(correctedMid), real(correctedMid))
		integratorCarrier += gains.KiCarrier * phaseError
		ncoFreqRad += gains.KpCarrier*phaseError + integratorCarrier
		ncoPhase += ncoFreqRad

		res.Symbols = append(res.Symbols, correctedMid)
		res.TimingError = append(res.TimingError, timingError)
		res.NCOFreqOffsetHz = append(res.NCOFreqOffsetHz, ncoFreqRad*sampleRate/(2*math.Pi))

		prevMid = correctedMid
		havePrev = true
	}

	return res
}

func lerp(a, b complex128, frac float64) complex128 {
	return a + complex(frac, 0)*(b-a)
}
