package frame

import (
	"errors"
	"strings"
	"testing"

	"github.com/ArrEssJay/chimera/bitstream"
	"github.com/ArrEssJay/chimera/ldpc"
	"github.com/ArrEssJay/chimera/protocol"
)

func testMatrices(t *testing.T) ldpc.Matrices {
	t.Helper()
	l := protocol.DefaultLDPCConfig()
	p := protocol.DefaultConfig()
	mat, err := ldpc.Build(p.Layout.CodewordBits(), l.Dv, l.Dc, l.Seed)
	if err != nil {
		t.Fatalf("ldpc.Build: %v", err)
	}
	return mat
}

func TestAssembleSingleFrameLayout(t *testing.T) {
	p := protocol.DefaultConfig()
	mat := testMatrices(t)
	payload := bitstream.StringToBits("hi")

	bits, totalFrames, err := Assemble(payload, p, mat)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if totalFrames != 1 {
		t.Fatalf("totalFrames = %d, want 1", totalFrames)
	}
	if len(bits) != p.Layout.FrameBits() {
		t.Fatalf("len(bits) = %d, want %d", len(bits), p.Layout.FrameBits())
	}

	syncBits, _ := bitstream.HexToBits(p.SyncSequenceHex, p.Layout.Sync*2)
	targetBits, _ := bitstream.HexToBits(p.TargetIDHex, p.Layout.TargetID*2)
	if !equalBits(bits[:len(syncBits)], syncBits) {
		t.Fatal("sync field mismatch")
	}
	if !equalBits(bits[len(syncBits):len(syncBits)+len(targetBits)], targetBits) {
		t.Fatal("target id field mismatch")
	}
}

func TestAssembleEveryFrameHeaderIsConstantExceptCommand(t *testing.T) {
	p := protocol.DefaultConfig()
	mat := testMatrices(t)
	payload := bitstream.StringToBits(strings.Repeat("x", 40))

	bits, totalFrames, err := Assemble(payload, p, mat)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if totalFrames < 2 {
		t.Fatalf("expected multiple frames, got %d", totalFrames)
	}

	frameBits := p.Layout.FrameBits()
	headerWidth := (p.Layout.Sync + p.Layout.TargetID) * 2
	firstHeader := bits[:headerWidth]
	for i := 1; i < totalFrames; i++ {
		start := i * frameBits
		header := bits[start : start+headerWidth]
		if !equalBits(header, firstHeader) {
			t.Fatalf("frame %d: sync+target header differs from frame 0", i)
		}
	}
}

func TestAssembleCodewordIsValid(t *testing.T) {
	p := protocol.DefaultConfig()
	mat := testMatrices(t)
	payload := bitstream.StringToBits("Chimera!")

	bits, totalFrames, err := Assemble(payload, p, mat)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	frameBits := p.Layout.FrameBits()
	headerWidth := (p.Layout.Sync + p.Layout.TargetID + p.Layout.Command) * 2
	for i := 0; i < totalFrames; i++ {
		start := i * frameBits
		codeword := bits[start+headerWidth : start+frameBits]
		decoded := ldpc.Decode(mat, codeword, 20.0, ldpc.DefaultMaxIterations)
		got := ldpc.Encode(mat, decoded)
		if !equalBits(got, codeword) {
			t.Fatalf("frame %d: codeword is not a valid G codeword", i)
		}
	}
}

func TestAssembleEmptyPayloadYieldsOneFrame(t *testing.T) {
	p := protocol.DefaultConfig()
	mat := testMatrices(t)
	_, totalFrames, err := Assemble(nil, p, mat)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if totalFrames != 1 {
		t.Fatalf("totalFrames = %d, want 1", totalFrames)
	}
}

func TestAssembleOverflowsProtocolLimit(t *testing.T) {
	p := protocol.DefaultConfig()
	p.MaxFrames = 1
	mat := testMatrices(t)
	payload := bitstream.StringToBits(strings.Repeat("x", 4096))

	_, _, err := Assemble(payload, p, mat)
	if !errors.Is(err, ErrTooManyFrames) {
		t.Fatalf("expected ErrTooManyFrames, got %v", err)
	}
}

func equalBits(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
