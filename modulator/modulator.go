// Package modulator synthesizes the Raman Whisper passband signal: a
// QPSK phase stream bandlimited with a zero-phase Butterworth filter,
// dithered by a slow FSK tone pair, and composed around the carrier.
package modulator

import (
	"math"

	"github.com/ArrEssJay/chimera/protocol"
)

// PhaseMap is the Gray-coded, pi/4-offset QPSK constellation: index k
// holds the phase (radians) assigned to symbol k.
var PhaseMap = [4]float64{
	math.Pi/2 + math.Pi/4, // symbol 0: bit pair (0,0)
	math.Pi / 4,           // symbol 1: bit pair (0,1)
	math.Pi + math.Pi/4,   // symbol 2: bit pair (1,1)
	3*math.Pi/2 + math.Pi/4, // symbol 3: bit pair (1,0)
}

// symbolForBits maps a Gray-coded bit pair to its constellation index,
// per the forward table in the protocol specification.
func symbolForBits(b0, b1 byte) int {
	switch {
	case b0 == 0 && b1 == 0:
		return 0
	case b0 == 0 && b1 == 1:
		return 1
	case b0 == 1 && b1 == 1:
		return 2
	default: // (1,0)
		return 3
	}
}

// Params bundles the sample/symbol geometry derived once per run from a
// SimulationConfig and protocol.Config, so the synthesis functions below
// don't each recompute it.
type Params struct {
	SampleRate       float64
	SamplesPerSymbol int
	SamplesPerBit    int
	NumSamples       int
	DurationSeconds  float64
}

// DeriveParams computes the sample-domain geometry for totalFrames of
// framed bits at the protocol's symbol/bit rates.
func DeriveParams(sampleRate float64, p protocol.Config, totalFrames int) Params {
	sps := int(math.Round(sampleRate / p.QPSKSymbolRateHz))
	if sps < 1 {
		sps = 1
	}
	spb := int(math.Round(sampleRate / p.FSKBitRateHz))
	if spb < 1 {
		spb = 1
	}
	duration := float64(totalFrames*p.Layout.Total) / p.QPSKSymbolRateHz
	if duration < 1 {
		duration = 1
	}
	numSamples := int(duration * sampleRate)
	return Params{
		SampleRate:       sampleRate,
		SamplesPerSymbol: sps,
		SamplesPerBit:    spb,
		NumSamples:       numSamples,
		DurationSeconds:  duration,
	}
}

// QPSKPhaseStream maps the framed bitstream (2 bits/symbol) to a
// zero-order-held phase waveform of exactly params.NumSamples samples,
// then bandlimits it with a zero-phase 4th-order Butterworth lowpass
// applied separately to sin/cos to avoid 2*pi discontinuities.
func QPSKPhaseStream(framedBits []byte, p protocol.Config, params Params) []float64 {
	numSymbols := len(framedBits) / 2
	raw := make([]float64, 0, numSymbols*params.SamplesPerSymbol)
	for i := 0; i < numSymbols; i++ {
		symbol := symbolForBits(framedBits[2*i], framedBits[2*i+1])
		phase := PhaseMap[symbol]
		for s := 0; s < params.SamplesPerSymbol; s++ {
			raw = append(raw, phase)
		}
	}
	raw = padOrTruncate(raw, params.NumSamples)

	sinRaw := make([]float64, len(raw))
	cosRaw := make([]float64, len(raw))
	for i, phase := range raw {
		sinRaw[i] = math.Sin(phase)
		cosRaw[i] = math.Cos(phase)
	}

	sinSmoothed := zeroPhase(p.QPSKBandwidthHz, params.SampleRate, sinRaw)
	cosSmoothed := zeroPhase(p.QPSKBandwidthHz, params.SampleRate, cosRaw)

	phase := make([]float64, len(raw))
	for i := range phase {
		phase[i] = math.Atan2(sinSmoothed[i], cosSmoothed[i])
	}
	return phase
}

// FSKPhaseStream builds the slow FSK dither phase accumulator:
// frequency offset is held per SamplesPerBit samples from payloadBits
// tiled to cover the full duration (an empty payload tiles as all-zero
// bits, i.e. the -deviation tone throughout),
// and the carrier itself is integrated alongside the offset so the
// receiver's single down-mix at CarrierFreqHz stays self-consistent
// with this accumulator (see the design notes on double-counting f_c).
func FSKPhaseStream(payloadBits []byte, p protocol.Config, params Params) []float64 {
	bitsNeeded := int(math.Ceil(params.DurationSeconds * p.FSKBitRateHz))
	fskBits := tileBits(payloadBits, bitsNeeded)

	deviation := p.FSKFreqDeviationHz()
	freqOffsets := make([]float64, 0, bitsNeeded*params.SamplesPerBit)
	for _, bit := range fskBits {
		offset := -deviation
		if bit == 1 {
			offset = deviation
		}
		for s := 0; s < params.SamplesPerBit; s++ {
			freqOffsets = append(freqOffsets, offset)
		}
	}
	freqOffsets = padOrTruncate(freqOffsets, params.NumSamples)

	phase := make([]float64, len(freqOffsets))
	accum := 0.0
	twoPiOverFs := 2 * math.Pi / params.SampleRate
	for i, offset := range freqOffsets {
		accum += p.CarrierFreqHz + offset
		phase[i] = twoPiOverFs * accum
	}
	return phase
}

// Compose produces the noise-free passband signal clean[n] =
// sin(phase_fsk[n] + phase_qpsk_smoothed[n]).
func Compose(fskPhase, qpskPhase []float64) []float64 {
	n := len(fskPhase)
	if len(qpskPhase) < n {
		n = len(qpskPhase)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Sin(fskPhase[i] + qpskPhase[i])
	}
	return out
}

func padOrTruncate(in []float64, n int) []float64 {
	if len(in) >= n {
		return in[:n]
	}
	out := make([]float64, n)
	copy(out, in)
	return out
}

func tileBits(bits []byte, n int) []byte {
	out := make([]byte, n)
	if len(bits) == 0 {
		return out
	}
	for i := range out {
		out[i] = bits[i%len(bits)]
	}
	return out
}
