package chimera

import "fmt"

// Kind classifies a fatal error raised by the pipeline, mirroring the
// error-handling table in the protocol specification.
type Kind int

const (
	// ErrInvalidArgument covers malformed bit-primitive calls: a
	// non-positive bit width, an oversize integer, or a hex width that
	// isn't a multiple of 8.
	ErrInvalidArgument Kind = iota
	// ErrProtocolOverflow means the payload needs more frames than
	// MaxFrames allows.
	ErrProtocolOverflow
	// ErrMatrixShape means LDPC generator-matrix construction produced
	// the wrong shape.
	ErrMatrixShape
	// ErrMissingBackend means a required filter or decoder backend
	// couldn't run (e.g. on degenerate input).
	ErrMissingBackend
	// ErrFrameSyncLost means the sync pattern was never found in the
	// demodulated bitstream.
	ErrFrameSyncLost
)

func (k Kind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrProtocolOverflow:
		return "ProtocolOverflow"
	case ErrMatrixShape:
		return "MatrixShape"
	case ErrMissingBackend:
		return "MissingBackend"
	case ErrFrameSyncLost:
		return "FrameSyncLost"
	default:
		return "Unknown"
	}
}

// Error is the fatal error type raised to callers. All fatal conditions
// in the pipeline produce one of these; no partial results are
// returned alongside a non-nil error.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chimera: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("chimera: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}
