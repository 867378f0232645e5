package codec

import "errors"

// Error kinds reported by the codec. Every error returned from an encode or
// decode operation wraps exactly one of these sentinels, so callers can
// classify failures with errors.Is. A codec instance that has returned an
// error is poisoned; further operations on it are undefined and callers must
// discard it.
var (
	// ErrUnexpectedEOF indicates the source ran out while reading a declared payload.
	ErrUnexpectedEOF = errors.New("yajbe: unexpected end of input")

	// ErrMalformed indicates a tag byte that maps to no handler, an invalid
	// length or width, or an END marker outside an EOF-terminated container.
	ErrMalformed = errors.New("yajbe: malformed input")

	// ErrUnsupported indicates a reserved tag that no extant binding
	// implements, or an enum-config record naming an algorithm other than LRU.
	ErrUnsupported = errors.New("yajbe: unsupported encoding")

	// ErrTypeMismatch indicates a typed reader was called on a value of a
	// different category.
	ErrTypeMismatch = errors.New("yajbe: type mismatch")

	// ErrInvalidArgument indicates an encoder call with a value outside the
	// representable range.
	ErrInvalidArgument = errors.New("yajbe: invalid argument")

	// ErrBufferFull indicates a fixed-buffer sink cannot accept more bytes.
	ErrBufferFull = errors.New("yajbe: buffer full")

	// ErrIO wraps a failure of the underlying byte source or sink.
	ErrIO = errors.New("yajbe: i/o failure")
)
