// Package chimera is a self-contained software modem for the Raman
// Whisper dual-layer acoustic signaling protocol: frame assembly, LDPC
// systematic coding, QPSK/FSK passband synthesis, an AWGN channel model,
// and a matching receiver (down-conversion, RRC matched filter, joint
// timing/carrier recovery, and LDPC soft decoding). It runs the full
// encode -> channel -> decode pipeline deterministically given a seed.
package chimera

import (
	"github.com/google/uuid"

	"github.com/ArrEssJay/chimera/ldpc"
	"github.com/ArrEssJay/chimera/protocol"
)

// defaultPlaintext is the demonstration payload used when a caller
// supplies neither a SimulationConfig.PlaintextSource override nor an
// explicit plaintext argument.
const defaultPlaintext = "This is a longer message demonstrating the protocol-compliant, rate-4/5 LDPC error " +
	"correction. This signal simulates reception through a physically accurate AWGN channel " +
	"where noise is added post-modulation. The decoder will now attempt to recover this exact " +
	"message."

// SimulationConfig is the user-facing configuration for an end-to-end
// run: sample rate, SNR, source text, and an optional RNG seed for
// reproducibility.
type SimulationConfig struct {
	SampleRate      int
	SNRdB           float64
	PlaintextSource string
	RNGSeed         *int64
	Verbose         bool
}

// DefaultSimulationConfig returns the specification's default simulation
// parameters.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		SampleRate:      48000,
		SNRdB:           3.0,
		PlaintextSource: defaultPlaintext,
	}
}

// EncodingResult captures everything the modulation stage produced.
type EncodingResult struct {
	NoisySignal     []float64
	CleanSignal     []float64
	QPSKBitstream   []byte
	PayloadBits     []byte
	QPSKPhaseMap    [4]float64
	TotalFrames     int
	DurationSeconds float64
	NumSamples      int
	SeedUsed        int64
	Logs            []string
}

// Diagnostics holds the intermediate arrays captured during
// demodulation for an external plot/debug collaborator, plus a
// supplemental power-spectrum snapshot (see SPEC_FULL.md §4.D').
type Diagnostics struct {
	ReceivedSymbolsI []float64
	ReceivedSymbolsQ []float64
	TimingError      []float64
	NCOFreqOffsetHz  []float64
	SpectrumDB       []float64
}

// DemodulationResult captures everything the demodulation/decode stage
// produced.
type DemodulationResult struct {
	DemodulatedBitstream []byte
	DecodedBitstream     []byte
	RecoveredMessage     string
	PreFECErrors         int
	PreFECBER            float64
	PostFECErrors        int
	PostFECBER           float64
	Diagnostics          Diagnostics
	Logs                 []string
}

// SimulationResult aggregates both stages of an end-to-end run.
type SimulationResult struct {
	RunID        uuid.UUID
	Encoding     EncodingResult
	Demodulation DemodulationResult
	Matrices     ldpc.Matrices
	Logs         []string
}

// Protocol re-exports protocol.Config under the chimera package so
// callers constructing a full pipeline run don't need a second import
// for the common case.
type Protocol = protocol.Config

// LDPCConfig re-exports protocol.LDPCConfig.
type LDPCConfig = protocol.LDPCConfig

// DefaultProtocol returns the specification's default protocol config.
func DefaultProtocol() Protocol { return protocol.DefaultConfig() }

// DefaultLDPCConfig returns the specification's default LDPC config.
func DefaultLDPCConfig() LDPCConfig { return protocol.DefaultLDPCConfig() }
