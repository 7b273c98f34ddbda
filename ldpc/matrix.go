// Package ldpc builds regular (dv, dc) LDPC parity-check and generator
// matrices and provides systematic encoding plus a log-domain
// belief-propagation soft decoder. Rows are packed into []uint64 words
// so encode and syndrome checks run as XOR/popcount rather than dense
// floating-point linear algebra.
package ldpc

import (
	"fmt"
	"math/bits"
	"math/rand"
)

// bitRow is a packed row of N bits, LSB-first within each word.
type bitRow []uint64

func newBitRow(n int) bitRow {
	return make(bitRow, (n+63)/64)
}

func (r bitRow) set(i int) {
	r[i/64] |= 1 << uint(i%64)
}

func (r bitRow) get(i int) byte {
	if (r[i/64]>>uint(i%64))&1 == 1 {
		return 1
	}
	return 0
}

func (r bitRow) xorInto(src bitRow) {
	for w := range r {
		r[w] ^= src[w]
	}
}

func (r bitRow) toggle(i int) {
	r[i/64] ^= 1 << uint(i%64)
}

// swapBits exchanges the bit values at columns i and j.
func (r bitRow) swapBits(i, j int) {
	if r.get(i) != r.get(j) {
		r.toggle(i)
		r.toggle(j)
	}
}

func (r bitRow) popcount() int {
	n := 0
	for _, w := range r {
		n += bits.OnesCount64(w)
	}
	return n
}

func (r bitRow) unpack(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = r.get(i)
	}
	return out
}

// Matrices holds the parity-check matrix H ((n-k) x n), the systematic
// generator matrix G (k x n), and adjacency lists derived from H that
// the belief-propagation decoder walks repeatedly.
type Matrices struct {
	N, K, Dv, Dc int

	h []bitRow
	g []bitRow

	// checkVars[m] lists the variable (column) indices touching check m.
	checkVars [][]int
	// varChecks[n] lists the check (row) indices touching variable n.
	varChecks [][]int
}

// Build constructs a regular (dv, dc) LDPC code of length n, dimension
// k = n - (n*dv/dc), using the classic Gallager block construction: the
// first block of (n-k)/dv rows partitions the n columns into n/dc
// contiguous groups of weight dc; each subsequent block is the same
// partition with its columns independently shuffled by a seeded PRNG, so
// that every column ends up with weight exactly dv. A raw Gallager H
// this way is not systematic, so it is then row-reduced (with column
// swaps) into H = [A | I_(n-k)] the same way
// original_source/python_src/chimera/pipeline.py relies on pyldpc's
// make_ldpc(systematic=True); only then is G = [I_k | A^T] derived, the
// one formula that actually guarantees G*H^T = 0 mod 2.
func Build(n, dv, dc int, seed int64) (Matrices, error) {
	if n <= 0 || dv <= 0 || dc <= 0 {
		return Matrices{}, fmt.Errorf("ldpc: n, dv, dc must be positive (got n=%d dv=%d dc=%d)", n, dv, dc)
	}
	if (n*dv)%dc != 0 {
		return Matrices{}, fmt.Errorf("ldpc: n*dv (%d) must be divisible by dc (%d)", n*dv, dc)
	}
	m := n * dv / dc
	k := n - m
	if k <= 0 {
		return Matrices{}, fmt.Errorf("ldpc: resulting k=%d is not positive for n=%d dv=%d dc=%d", k, n, dv, dc)
	}
	blockSize := m / dv
	if blockSize*dv != m {
		return Matrices{}, fmt.Errorf("ldpc: n-k=%d is not divisible by dv=%d", m, dv)
	}
	if blockSize*dc != n {
		return Matrices{}, fmt.Errorf("ldpc: block size %d * dc %d must equal n %d", blockSize, dc, n)
	}

	rng := rand.New(rand.NewSource(seed))

	// First block: row i owns columns [i*dc, (i+1)*dc).
	baseCols := make([][]int, blockSize)
	for i := 0; i < blockSize; i++ {
		cols := make([]int, dc)
		for j := 0; j < dc; j++ {
			cols[j] = i*dc + j
		}
		baseCols[i] = cols
	}

	h := make([]bitRow, 0, m)
	for b := 0; b < dv; b++ {
		perm := rng.Perm(n)
		for i := 0; i < blockSize; i++ {
			row := newBitRow(n)
			if b == 0 {
				for _, c := range baseCols[i] {
					row.set(c)
				}
			} else {
				for _, c := range baseCols[i] {
					row.set(perm[c])
				}
			}
			h = append(h, row)
		}
	}

	mat := Matrices{N: n, K: k, Dv: dv, Dc: dc, h: h}
	if err := mat.systematize(); err != nil {
		return Matrices{}, err
	}
	mat.buildAdjacency()
	if err := mat.buildGenerator(); err != nil {
		return Matrices{}, err
	}
	return mat, nil
}

// systematize row-reduces H in place (with column swaps where a pivot
// column is all-zero in the remaining rows) until its last n-k columns
// form an identity matrix, i.e. H = [A | I_(n-k)]. This is the same
// elimination pyldpc's coding_matrix_systematic performs; the column
// swaps permute which physical column carries which logical bit, but
// since every downstream consumer (adjacency lists, G, encode/decode)
// only ever sees this post-elimination H, that relabeling never leaks
// out of the Matrices value. A Gallager H is never full row rank (the
// rows of each block sum to the all-ones row), so elimination stops at
// the first row left without a pivot: that row and any after it are all
// zero (redundant checks), their identity columns are not formed, and
// the parity bits in those columns are always 0. The reduced H, which
// the decoder walks, no longer has the regular dv/dc weights.
func (mat *Matrices) systematize() error {
	h := mat.h
	n, k := mat.N, mat.K
	m := n - k

	for r := 0; r < m; r++ {
		targetCol := k + r

		pivotRow := -1
		for cIdx := 0; cIdx < n; cIdx++ {
			if cIdx >= k && cIdx < targetCol {
				continue // already-fixed identity column; don't disturb it
			}
			for rr := r; rr < m; rr++ {
				if h[rr].get(cIdx) == 1 {
					pivotRow = rr
					if cIdx != targetCol {
						for _, row := range h {
							row.swapBits(cIdx, targetCol)
						}
					}
					break
				}
			}
			if pivotRow != -1 {
				break
			}
		}
		if pivotRow == -1 {
			// Rows r..m-1 are all zero: dependent on the rows already reduced.
			break
		}

		h[r], h[pivotRow] = h[pivotRow], h[r]
		for rr := 0; rr < m; rr++ {
			if rr != r && h[rr].get(targetCol) == 1 {
				h[rr].xorInto(h[r])
			}
		}
	}

	mat.h = h
	return nil
}

func (mat *Matrices) buildAdjacency() {
	m := len(mat.h)
	mat.checkVars = make([][]int, m)
	mat.varChecks = make([][]int, mat.N)
	for row := 0; row < m; row++ {
		for col := 0; col < mat.N; col++ {
			if mat.h[row].get(col) == 1 {
				mat.checkVars[row] = append(mat.checkVars[row], col)
				mat.varChecks[col] = append(mat.varChecks[col], row)
			}
		}
	}
}

// buildGenerator derives G = [I_k | A^T] with A = H[:, :k], valid only
// because systematize has already put H into H = [A | I_(n-k)] form; it
// fails with a MatrixShape-class error if the result isn't (k, n).
func (mat *Matrices) buildGenerator() error {
	k, n := mat.K, mat.N
	m := n - k
	g := make([]bitRow, k)
	for i := 0; i < k; i++ {
		row := newBitRow(n)
		row.set(i)
		for j := 0; j < m; j++ {
			if mat.h[j].get(i) == 1 {
				row.set(k + j)
			}
		}
		g[i] = row
	}
	if len(g) != k {
		return fmt.Errorf("ldpc: generator matrix construction failed: got %d rows, want %d", len(g), k)
	}
	for _, row := range g {
		if len(row)*64 < n {
			return fmt.Errorf("ldpc: generator matrix row width mismatch: want %d columns", n)
		}
	}
	mat.g = g
	return nil
}

// CheckSyndromeZero reports whether every row of G * H^T is zero mod 2,
// i.e. that every codeword produced by G lies in the null space of H.
func (mat Matrices) CheckSyndromeZero() bool {
	for _, grow := range mat.g {
		for _, hrow := range mat.h {
			overlap := newBitRow(mat.N)
			overlap.xorInto(grow)
			for w := range overlap {
				overlap[w] &= hrow[w]
			}
			if overlap.popcount()%2 != 0 {
				return false
			}
		}
	}
	return true
}
