package modulator

import "math"

// biquad is a direct-form-I second-order IIR section, the same shape
// the teacher's navtex/fsk decoders use for their mark/space/lowpass
// filters (audio_extensions/navtex/biquad.go), adapted here to a
// lowpass-only cookbook form since that's the only response this
// modulator needs.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

func newLowpassBiquad(cutoffHz, sampleRate, q float64) biquad {
	omega := 2.0 * math.Pi * cutoffHz / sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2.0 * q)

	b0 := (1.0 - cosOmega) / 2.0
	b1 := 1.0 - cosOmega
	b2 := (1.0 - cosOmega) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosOmega
	a2 := 1.0 - alpha

	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

func (f *biquad) step(in float64) float64 {
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, out
	return out
}

func (f *biquad) filterAll(in []float64) []float64 {
	f.reset()
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = f.step(v)
	}
	return out
}

// butterworthLowpass4 is a 4th-order Butterworth lowpass realized as a
// cascade of two maximally-flat 2nd-order sections, each a
// cookbook-style biquad at the quality factors a 4-pole Butterworth
// prototype splits into: Q = 1/(2*cos(theta)) for theta = pi/8, 3pi/8.
type butterworthLowpass4 struct {
	stage1, stage2 biquad
}

func newButterworthLowpass4(cutoffHz, sampleRate float64) butterworthLowpass4 {
	q1 := 1.0 / (2.0 * math.Cos(math.Pi/8.0))
	q2 := 1.0 / (2.0 * math.Cos(3.0*math.Pi/8.0))
	return butterworthLowpass4{
		stage1: newLowpassBiquad(cutoffHz, sampleRate, q1),
		stage2: newLowpassBiquad(cutoffHz, sampleRate, q2),
	}
}

func (f butterworthLowpass4) forward(in []float64) []float64 {
	return f.stage2.filterAll(f.stage1.filterAll(in))
}

// zeroPhase runs the cascade forward then backward (filtfilt), canceling
// the phase response of the IIR filter so a smoothed phase signal stays
// aligned with its unfiltered source sample-for-sample.
func zeroPhase(cutoffHz, sampleRate float64, in []float64) []float64 {
	f := newButterworthLowpass4(cutoffHz, sampleRate)
	forward := f.forward(in)
	reversed := reverse(forward)

	f2 := newButterworthLowpass4(cutoffHz, sampleRate)
	backward := f2.forward(reversed)
	return reverse(backward)
}

func reverse(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
