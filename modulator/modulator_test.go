package modulator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ArrEssJay/chimera/protocol"
)

func TestDeriveParamsMatchesSampleRateOverSymbolRate(t *testing.T) {
	p := protocol.DefaultConfig()
	params := DeriveParams(48000, p, 2)
	wantSps := int(math.Round(48000.0 / p.QPSKSymbolRateHz))
	if params.SamplesPerSymbol != wantSps {
		t.Fatalf("sps = %d, want %d", params.SamplesPerSymbol, wantSps)
	}
}

func TestQPSKPhaseStreamLengthMatchesParams(t *testing.T) {
	p := protocol.DefaultConfig()
	params := DeriveParams(4800, p, 1)
	bits := make([]byte, p.Layout.FrameBits())
	phase := QPSKPhaseStream(bits, p, params)
	if len(phase) != params.NumSamples {
		t.Fatalf("len(phase) = %d, want %d", len(phase), params.NumSamples)
	}
}

func TestAWGNWithInfiniteSNRLeavesSignalUnchanged(t *testing.T) {
	clean := make([]float64, 256)
	for i := range clean {
		clean[i] = math.Sin(float64(i) * 0.1)
	}
	rng := rand.New(rand.NewSource(1))
	noisy := AWGN(clean, math.Inf(1), rng)
	for i := range clean {
		if noisy[i] != clean[i] {
			t.Fatalf("sample %d: got %v, want %v (noise-free)", i, noisy[i], clean[i])
		}
	}
}

func TestComposeIsBoundedToUnitRange(t *testing.T) {
	p := protocol.DefaultConfig()
	params := DeriveParams(4800, p, 1)
	bits := make([]byte, p.Layout.FrameBits())
	for i := range bits {
		bits[i] = byte(i % 2)
	}
	qpsk := QPSKPhaseStream(bits, p, params)
	fsk := FSKPhaseStream(nil, p, params)
	clean := Compose(fsk, qpsk)
	for i, v := range clean {
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("sample %d out of [-1,1]: %v", i, v)
		}
	}
}
