// Package frame packs an LDPC-coded payload into the wire-exact Raman
// Whisper frame layout: sync | target_id | command | payload | ecc,
// repeated once per chunk of the message.
package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/ArrEssJay/chimera/bitstream"
	"github.com/ArrEssJay/chimera/ldpc"
	"github.com/ArrEssJay/chimera/protocol"
)

// ErrTooManyFrames is returned when the payload needs more frames than
// protocol.Config.MaxFrames allows.
var ErrTooManyFrames = errors.New("frame: payload requires more frames than MaxFrames allows")

// Assemble packs payloadBits into the full transmitted bit-stream:
// total_frames frames of sync|target|command|payload|ecc, each
// frame_bits wide. It returns ErrTooManyFrames if the payload overflows
// protocol.Config.MaxFrames.
func Assemble(payloadBits []byte, p protocol.Config, mat ldpc.Matrices) ([]byte, int, error) {
	k := mat.K
	totalFrames := 1
	if len(payloadBits) > 0 {
		totalFrames = int(math.Ceil(float64(len(payloadBits)) / float64(k)))
	}
	if totalFrames > p.MaxFrames {
		return nil, 0, fmt.Errorf("%w: requires %d frames, max is %d", ErrTooManyFrames, totalFrames, p.MaxFrames)
	}

	syncBits, err := bitstream.HexToBits(p.SyncSequenceHex, p.Layout.Sync*2)
	if err != nil {
		return nil, 0, fmt.Errorf("frame: sync sequence: %w", err)
	}
	targetBits, err := bitstream.HexToBits(p.TargetIDHex, p.Layout.TargetID*2)
	if err != nil {
		return nil, 0, fmt.Errorf("frame: target id: %w", err)
	}

	frameBits := p.Layout.FrameBits()
	out := make([]byte, 0, totalFrames*frameBits)

	for i := 0; i < totalFrames; i++ {
		command := p.CommandOpcode | (uint32(i) << p.CurrentFrameShift) | (uint32(totalFrames) << p.TotalFramesShift)
		commandBits, err := bitstream.IntToBits(uint64(command), p.Layout.Command*2)
		if err != nil {
			return nil, 0, fmt.Errorf("frame: command field: %w", err)
		}

		start := i * k
		end := start + k
		chunk := make([]byte, k)
		if start < len(payloadBits) {
			copy(chunk, payloadBits[start:min(end, len(payloadBits))])
		}

		codeword := ldpc.Encode(mat, chunk)
		payload, ecc := codeword[:k], codeword[k:]

		out = append(out, syncBits...)
		out = append(out, targetBits...)
		out = append(out, commandBits...)
		out = append(out, payload...)
		out = append(out, ecc...)
	}

	return out, totalFrames, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
