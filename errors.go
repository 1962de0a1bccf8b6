package httpcodec

import "errors"

// Composer misuse errors. Both are recoverable: the caller may retry
// with a different state, a larger buffer, or a smaller header.
var (
	// ErrBadState is returned when a composer operation is attempted in
	// the wrong lifecycle phase.
	ErrBadState = errors.New("httpcodec: operation not valid in current state")

	// ErrInsufficientCapacity is returned by AddHeader when writing the
	// header plus the reserved final CRLF CRLF would overflow the
	// composer's buffer.
	ErrInsufficientCapacity = errors.New("httpcodec: insufficient buffer capacity for header")
)

// ParseError enumerates the specific reason RequestParser.Ingest
// rejected a request. It is a purely diagnostic accessor (see
// RequestParser.LastError): the state machine itself only ever
// transitions to the single collapsed StateInvalidRequest terminal
// state, per the spec's documented open question.
type ParseError int8

const (
	// ParseErrorNone means the parser has not rejected anything.
	ParseErrorNone ParseError = iota
	// ParseErrorBadProtocol means the request line's protocol token was
	// not the literal "HTTP/1.1" followed by CRLF.
	ParseErrorBadProtocol
	// ParseErrorInvalidHeaderName means a header name contained a byte
	// outside the accepted character class.
	ParseErrorInvalidHeaderName
	// ParseErrorInvalidHeaderValue means a header value contained a byte
	// outside the accepted character class.
	ParseErrorInvalidHeaderValue
	// ParseErrorNulByte means a NUL byte appeared anywhere in the header
	// region.
	ParseErrorNulByte
	// ParseErrorTooManyHeaders means the 32-header ceiling was reached.
	ParseErrorTooManyHeaders
	// ParseErrorTruncated means the caller signalled EOF (Ingest(0))
	// before the parser reached StateDone.
	ParseErrorTruncated
)

func (e ParseError) String() string {
	switch e {
	case ParseErrorNone:
		return "none"
	case ParseErrorBadProtocol:
		return "bad protocol literal"
	case ParseErrorInvalidHeaderName:
		return "invalid header name byte"
	case ParseErrorInvalidHeaderValue:
		return "invalid header value byte"
	case ParseErrorNulByte:
		return "NUL byte in header region"
	case ParseErrorTooManyHeaders:
		return "too many headers"
	case ParseErrorTruncated:
		return "truncated request"
	default:
		return "unknown"
	}
}
