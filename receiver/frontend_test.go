package receiver

import (
	"math"
	"testing"
)

func TestRRCTapsHaveUnitNorm(t *testing.T) {
	taps := RRCTaps(101, 0.35, 3000.0/16.0)
	var sumSq float64
	for _, v := range taps {
		if math.IsNaN(v) {
			t.Fatal("RRC taps contain NaN")
		}
		sumSq += v * v
	}
	if math.Abs(sumSq-1) > 1e-9 {
		t.Fatalf("sum of squares = %v, want 1", sumSq)
	}
}

func TestDownMixFirstSampleIsIdentity(t *testing.T) {
	noisy := []float64{1, 0.5, -0.3}
	out := DownMix(noisy, 12000, 48000)
	if real(out[0]) != 1 || imag(out[0]) != 0 {
		t.Fatalf("sample 0 = %v, want 1+0i (theta=0)", out[0])
	}
}

func TestMatchedFilterIsCausal(t *testing.T) {
	taps := []float64{1, 0.5}
	x := []complex128{1, 0, 0, 0}
	out := MatchedFilter(x, taps)
	if out[0] != 1 {
		t.Fatalf("out[0] = %v, want 1", out[0])
	}
	if out[1] != 0.5 {
		t.Fatalf("out[1] = %v, want 0.5", out[1])
	}
}
