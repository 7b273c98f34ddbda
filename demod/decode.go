package demod

import (
	"github.com/ArrEssJay/chimera/ldpc"
	"github.com/ArrEssJay/chimera/protocol"
)

// DecodeFrames partitions alignedBits (already sync-aligned) into
// whole frames, hands each frame's codeword to the LDPC decoder along
// with snrDB, and concatenates the recovered message bits across every
// frame that fully fit.
func DecodeFrames(alignedBits []byte, p protocol.Config, mat ldpc.Matrices, snrDB float64) []byte {
	frameBits := p.Layout.FrameBits()
	headerBits := (p.Layout.Sync + p.Layout.TargetID + p.Layout.Command) * 2
	codewordBits := mat.N

	numFrames := len(alignedBits) / frameBits
	decoded := make([]byte, 0, numFrames*mat.K)

	for i := 0; i < numFrames; i++ {
		start := i * frameBits
		frame := alignedBits[start : start+frameBits]
		payloadEnd := headerBits + codewordBits
		if len(frame) < payloadEnd {
			continue
		}
		codeword := frame[headerBits:payloadEnd]
		message := ldpc.Decode(mat, codeword, snrDB, ldpc.DefaultMaxIterations)
		decoded = append(decoded, message...)
	}

	return decoded
}
