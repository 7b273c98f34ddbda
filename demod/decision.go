// Package demod turns recovered complex symbols back into bits: phase
// slicing against the QPSK constellation, frame-sync correlation, and
// per-frame LDPC decoding aggregation.
package demod

import "math"

// reverseGray maps a constellation index back to its Gray-coded bit
// pair. It is the explicit, verified inverse of
// modulator.symbolForBits (0,0)->0, (0,1)->1, (1,1)->2, (1,0)->3 —
// not copied directly from the spec's listed numbers, which read as
// the inverse but swap symbols 0 and 1; TestSliceRoundTripsCleanSymbols
// checks this table against a copy of modulator.PhaseMap's phases.
var reverseGray = [4][2]byte{
	0: {0, 0},
	1: {0, 1},
	2: {1, 1},
	3: {1, 0},
}

// Slice decides the nearest constellation symbol for each received
// complex symbol against phaseMap, and expands the decision to its
// Gray-coded bit pair. phaseMap is the same table the modulator used, so
// a phase rotation ambiguity introduced upstream shows up here as bit
// errors rather than a silent constellation mismatch.
func Slice(symbols []complex128, phaseMap [4]float64) []byte {
	bits := make([]byte, 0, len(symbols)*2)
	for _, s := range symbols {
		angle := math.Atan2(imag(s), real(s))
		best := 0
		bestDelta := math.MaxFloat64
		for k, ref := range phaseMap {
			delta := math.Abs(wrap(angle - ref))
			if delta < bestDelta {
				bestDelta = delta
				best = k
			}
		}
		pair := reverseGray[best]
		bits = append(bits, pair[0], pair[1])
	}
	return bits
}

// wrap maps a radian angle to (-pi, pi].
func wrap(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// PadOrTruncate makes bits exactly n long, padding with zero bits or
// truncating as needed, for comparison against a known-length reference
// bitstream.
func PadOrTruncate(bits []byte, n int) []byte {
	if len(bits) >= n {
		return bits[:n]
	}
	out := make([]byte, n)
	copy(out, bits)
	return out
}

// CountErrors returns the number of positions where a and b differ, up
// to the shorter of the two lengths.
func CountErrors(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	errs := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			errs++
		}
	}
	return errs
}
