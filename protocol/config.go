// Package protocol holds the immutable frame layout and protocol/LDPC
// configuration shared by the frame assembler, modulator, receiver and
// demodulator. Nothing in this package allocates signal buffers or
// touches the LDPC matrices themselves — it is pure configuration.
package protocol

// FrameLayout describes the symbol budget of a single Raman Whisper
// frame. All fields are symbol counts (2 bits/QPSK symbol); Invariant:
// Sync+TargetID+Command+DataPayload+ECC == Total.
type FrameLayout struct {
	Total       int
	Sync        int
	TargetID    int
	Command     int
	DataPayload int
	ECC         int
}

// DefaultFrameLayout returns the frame layout fixed by the protocol spec.
func DefaultFrameLayout() FrameLayout {
	return FrameLayout{
		Total:       128,
		Sync:        16,
		TargetID:    16,
		Command:     16,
		DataPayload: 64,
		ECC:         16,
	}
}

// MessageBits is the number of raw payload bits per frame (2 bits/symbol).
func (l FrameLayout) MessageBits() int { return l.DataPayload * 2 }

// ECCBits is the number of parity bits per frame.
func (l FrameLayout) ECCBits() int { return l.ECC * 2 }

// CodewordBits is MessageBits + ECCBits, the LDPC codeword length.
func (l FrameLayout) CodewordBits() int { return l.MessageBits() + l.ECCBits() }

// FrameBits is the total bit width of one frame (2 bits/symbol).
func (l FrameLayout) FrameBits() int { return l.Total * 2 }

// Valid checks the frame layout's defining invariant.
func (l FrameLayout) Valid() bool {
	return l.Sync+l.TargetID+l.Command+l.DataPayload+l.ECC == l.Total
}

// Config carries the Raman Whisper protocol constants: carrier
// frequency, QPSK/FSK rates, sync/target identifiers and frame budget.
type Config struct {
	CarrierFreqHz      float64
	QPSKSymbolRateHz   float64
	QPSKBandwidthHz    float64
	FSKBitRateHz       float64
	FSKFreqZeroHz      float64
	FSKFreqOneHz       float64
	CommandOpcode      uint32
	Layout             FrameLayout
	SyncSequenceHex    string
	TargetIDHex        string
	MaxFrames          int
	CurrentFrameShift  uint
	TotalFramesShift   uint
}

// DefaultConfig returns the protocol constants from the specification.
func DefaultConfig() Config {
	return Config{
		CarrierFreqHz:     12000.0,
		QPSKSymbolRateHz:  16.0,
		QPSKBandwidthHz:   20.0,
		FSKBitRateHz:      1.0,
		FSKFreqZeroHz:     11999.0,
		FSKFreqOneHz:      12001.0,
		CommandOpcode:     0x0001,
		Layout:            DefaultFrameLayout(),
		SyncSequenceHex:   "A5A5A5A5",
		TargetIDHex:       "DEADBEEF",
		MaxFrames:         256,
		CurrentFrameShift: 16,
		TotalFramesShift:  24,
	}
}

// FSKFreqDeviationHz is the FSK tone offset from the carrier.
func (c Config) FSKFreqDeviationHz() float64 {
	return c.FSKFreqOneHz - c.CarrierFreqHz
}

// LDPCConfig configures the (dv, dc) regular LDPC code used for the
// error-correcting layer of every frame.
type LDPCConfig struct {
	Dv   int
	Dc   int
	Seed int64
}

// DefaultLDPCConfig returns the rate-4/5 (160,128) regular LDPC config.
func DefaultLDPCConfig() LDPCConfig {
	return LDPCConfig{Dv: 2, Dc: 10, Seed: 42}
}
