package ldpc

import "math"

// Encode computes the systematic codeword c = m * G (mod 2) for a
// message row m of length mat.K. The first K bits of the result equal m
// unchanged; the remaining N-K bits are parity.
func Encode(mat Matrices, message []byte) []byte {
	acc := newBitRow(mat.N)
	for i, bit := range message {
		if i >= mat.K {
			break
		}
		if bit&1 == 1 {
			acc.xorInto(mat.g[i])
		}
	}
	return acc.unpack(mat.N)
}

// DefaultMaxIterations is the belief-propagation iteration bound used
// when a caller doesn't need a tighter bound. Spec requires at least 20;
// this gives comfortable margin at the design SNR of 3 dB.
const DefaultMaxIterations = 50

// Decode runs log-domain sum-product belief propagation over H to
// recover mat.K message bits from a received hard-bit codeword and the
// channel SNR in dB. It stops early once the current hard decision
// satisfies every parity check, and otherwise runs until maxIters and
// returns its best (possibly non-converged) hard decision — a
// DecodingDivergence condition the caller observes only as an elevated
// post-FEC bit error rate, per the error handling design.
func Decode(mat Matrices, received []byte, snrDB float64, maxIters int) []byte {
	if maxIters <= 0 {
		maxIters = DefaultMaxIterations
	}
	n := mat.N
	channelLLR := channelLLRs(received, snrDB)

	// varToCheck[n][idx] / checkToVar[m][idx] index in lockstep with
	// mat.varChecks[n] / mat.checkVars[m].
	varToCheck := make([][]float64, n)
	for i := range varToCheck {
		varToCheck[i] = make([]float64, len(mat.varChecks[i]))
	}
	checkToVar := make([][]float64, len(mat.checkVars))
	for i := range checkToVar {
		checkToVar[i] = make([]float64, len(mat.checkVars[i]))
	}

	plain := make([]byte, n)
	for iter := 0; iter < maxIters; iter++ {
		// Hard decision from total belief at each variable node.
		for v := 0; v < n; v++ {
			total := channelLLR[v]
			for _, msg := range varToCheck[v] {
				total += msg
			}
			if total < 0 {
				plain[v] = 1
			} else {
				plain[v] = 0
			}
		}

		if syndromeZero(mat, plain) {
			break
		}

		// Check-to-variable update (log-domain tanh rule).
		for m, vars := range mat.checkVars {
			for idx := range vars {
				// Product of tanh(incoming/2) over all other variables in this check.
				prod := 1.0
				for idx2, v2 := range vars {
					if idx2 == idx {
						continue
					}
					incoming := incomingLLR(channelLLR, varToCheck, v2, mat.varChecks[v2], m)
					prod *= math.Tanh(-incoming / 2.0)
				}
				checkToVar[m][idx] = -2.0 * atanhClamped(prod)
			}
		}

		// Variable-to-check update: sum of channel LLR and all other
		// incoming check messages.
		for v := 0; v < n; v++ {
			checks := mat.varChecks[v]
			for idx := range checks {
				sum := channelLLR[v]
				for idx2, m2 := range checks {
					if idx2 == idx {
						continue
					}
					sum += findMessage(checkToVar[m2], mat.checkVars[m2], v)
				}
				varToCheck[v][idx] = sum
			}
		}
	}

	return plain[:mat.K]
}

// incomingLLR returns the total belief variable v holds about itself,
// excluding any message routed through check excludeCheck.
func incomingLLR(channelLLR []float64, varToCheck [][]float64, v int, checksOfV []int, excludeCheck int) float64 {
	total := channelLLR[v]
	for idx, m := range checksOfV {
		if m == excludeCheck {
			continue
		}
		total += varToCheck[v][idx]
	}
	return total
}

// findMessage looks up the message check m sent toward variable v.
func findMessage(checkRow []float64, varsOfCheck []int, v int) float64 {
	for idx, col := range varsOfCheck {
		if col == v {
			return checkRow[idx]
		}
	}
	return 0
}

func syndromeZero(mat Matrices, plain []byte) bool {
	for _, vars := range mat.checkVars {
		parity := byte(0)
		for _, v := range vars {
			parity ^= plain[v]
		}
		if parity != 0 {
			return false
		}
	}
	return true
}

// channelLLRs converts hard 0/1 received bits plus the channel SNR into
// log-likelihood ratios L = ln(P(bit=0)/P(bit=1)), modeling the hard
// slicer as a binary symmetric channel with crossover probability
// p = Q(sqrt(2 * SNR_linear)).
func channelLLRs(received []byte, snrDB float64) []float64 {
	snrLinear := math.Pow(10, snrDB/10)
	p := qFunc(math.Sqrt(2 * snrLinear))
	p = math.Min(math.Max(p, 1e-6), 0.5-1e-6)
	l0 := math.Log((1 - p) / p)

	llr := make([]float64, len(received))
	for i, bit := range received {
		if bit == 0 {
			llr[i] = l0
		} else {
			llr[i] = -l0
		}
	}
	return llr
}

// qFunc is the Gaussian tail probability Q(x) = 0.5*erfc(x/sqrt(2)).
func qFunc(x float64) float64 {
	return 0.5 * math.Erfc(x/math.Sqrt2)
}

// atanhClamped guards the atanh singularities at +/-1 the same way the
// reference modulator guards its RRC filter's sinc singularities: clamp
// rather than propagate NaN/Inf into the next iteration.
func atanhClamped(x float64) float64 {
	const lim = 1 - 1e-9
	if x > lim {
		x = lim
	}
	if x < -lim {
		x = -lim
	}
	return math.Atanh(x)
}
