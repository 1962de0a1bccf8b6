package httpcodec

import (
	"bytes"
	"iter"
)

const (
	sp = byte(' ')
	cr = byte('\r')
	lf = byte('\n')
)

var strHTTP11CRLF = []byte("HTTP/1.1\r\n")

// MaxRequestHeaders is the fixed ceiling on the number of headers a
// RequestParser will track per request (headerViews array size).
// It matches HTTP_REQUEST_MAX_HEADERS_COUNT from §7 of the original
// spec.
const MaxRequestHeaders = 32

// RequestMaxHeadersDefaultSize is the default buffer capacity
// (HTTP_REQUEST_MAX_HEADERS_DEFAULT_SIZE) used by NewRequestParserSize
// when a caller does not supply their own backing storage.
const RequestMaxHeadersDefaultSize uint16 = 2048

// MethodView is a borrowed range designating the request method.
// Len is 8-bit because no HTTP method token in practice approaches
// 256 bytes and the spec fixes this width explicitly.
type MethodView struct {
	Idx uint16
	Len uint8
}

// Bytes returns the method bytes aliasing buf.
func (m MethodView) Bytes(buf []byte) []byte {
	if m.Len == 0 {
		return buf[:0]
	}
	return buf[m.Idx : int(m.Idx)+int(m.Len)]
}

// HeaderView is a pair of borrowed ranges designating one parsed
// header's name and value.
type HeaderView struct {
	Name  Range
	Value Range
}

// RequestParser incrementally parses an HTTP/1.1 request line and
// headers into a fixed-size buffer, exposing parsed fields as
// byte-slice views aliasing that buffer. See doc.go and
// SPEC_FULL.md §4.2 for the full contract.
//
// A RequestParser is single-threaded and non-shareable: it must not be
// used from concurrently running goroutines, exactly like the
// teacher's RequestHeader/ResponseHeader types.
type RequestParser struct {
	buf           []byte
	bufferLen     uint16
	headersEndIdx uint16

	state     ParserState
	lastError ParseError

	methodView MethodView
	uriView    Range

	headerViews  [MaxRequestHeaders]HeaderView
	headersCount uint8

	// Scratch state for the header currently being accumulated.
	curName       Range
	curValue      Range
	valueStarted  bool
	crPendingName bool
	crPendingVal  bool
}

// NewRequestParser returns a RequestParser embedding buf as its backing
// storage — the zero-allocation embedding form. buf's length becomes
// the parser's fixed capacity and is never grown; len(buf) must fit in
// a uint16.
func NewRequestParser(buf []byte) *RequestParser {
	if len(buf) > int(^uint16(0)) {
		panic("httpcodec: RequestParser buffer exceeds uint16 capacity")
	}
	p := &RequestParser{buf: buf}
	return p
}

// NewRequestParserSize allocates an n-byte backing buffer and returns a
// RequestParser embedding it. This is the one documented exception to
// "no allocation": the allocation happens once at construction, never
// during Ingest/Reset/view access.
func NewRequestParserSize(n uint16) *RequestParser {
	return NewRequestParser(make([]byte, n))
}

// Capacity returns the parser's fixed buffer capacity N.
func (p *RequestParser) Capacity() int {
	return len(p.buf)
}

// State returns the parser's current state.
func (p *RequestParser) State() ParserState {
	return p.state
}

// LastError returns the specific reason the parser reached
// StateInvalidRequest, or ParseErrorNone if it has not. This is a
// diagnostic-only accessor layered over the collapsed state machine;
// see the "granular parse errors" open-question resolution in
// SPEC_FULL.md §10.
func (p *RequestParser) LastError() ParseError {
	return p.lastError
}

// Reset returns the parser to StateReady with all cursors and views
// zeroed. If zeroBuffer is true (the default a caller should use for
// data hygiene across reuses), every byte of the backing buffer is
// zeroed too.
func (p *RequestParser) Reset(zeroBuffer bool) {
	*p = RequestParser{buf: p.buf}
	if zeroBuffer {
		clear(p.buf)
	}
}

// NextChunkInfo returns a pointer into the parser's remaining free
// capacity and the largest number of bytes the caller may write
// through it before calling Ingest. It returns a nil pointer and 0 once
// the parser is in a terminal state (StateInvalidRequest or
// StateDone).
func (p *RequestParser) NextChunkInfo(desired int) ChunkInfo {
	if !p.state.IsActive() {
		return ChunkInfo{}
	}
	remaining := int(p.Capacity()) - int(p.bufferLen)
	max := min(desired, remaining)
	if max <= 0 {
		return ChunkInfo{Ptr: p.buf[p.bufferLen:p.bufferLen], Max: 0}
	}
	return ChunkInfo{Ptr: p.buf[p.bufferLen : int(p.bufferLen)+max], Max: max}
}

// Ingest advances the state machine over the n bytes freshly written at
// the cursor returned by the most recent NextChunkInfo call. Calling
// Ingest(0) after the caller has observed EOF on its transport signals
// truncation: if the parser has not yet reached StateDone it is
// rejected as ParseErrorTruncated.
//
// Ingest is a no-op once the parser has reached a terminal state —
// buffer mutation past InvalidRequest/Done is forbidden until Reset.
func (p *RequestParser) Ingest(n int) {
	if !p.state.IsActive() {
		return
	}
	if n == 0 {
		p.reject(ParseErrorTruncated)
		return
	}

	if p.state == StateReady {
		p.state = StateReadingMethod
	}

	start := int(p.bufferLen)
	end := start + n
	for i := start; i < end && p.state.IsActive(); i++ {
		p.step(uint16(i), p.buf[i])
	}
	p.bufferLen = uint16(end)
}

func (p *RequestParser) reject(reason ParseError) {
	p.state = StateInvalidRequest
	p.lastError = reason
}

func (p *RequestParser) step(i uint16, c byte) {
	if c == 0 {
		p.reject(ParseErrorNulByte)
		return
	}

	switch p.state {
	case StateReadingMethod:
		if c == sp {
			p.uriView.Idx = i + 1
			p.state = StateReadingURI
			return
		}
		p.methodView.Len++

	case StateReadingURI:
		if c == sp {
			p.state = StateReadingProtocol
			return
		}
		p.uriView.Len++

	case StateReadingProtocol:
		threshold := p.uriView.Idx + p.uriView.Len + 10
		if i != threshold {
			return
		}
		protoStart := p.uriView.Idx + p.uriView.Len + 1
		if !bytes.Equal(p.buf[protoStart:i+1], strHTTP11CRLF) {
			p.reject(ParseErrorBadProtocol)
			return
		}
		p.state = StateReadingHeaderName

	case StateReadingHeaderName:
		p.stepHeaderName(i, c)

	case StateReadingHeaderValue:
		p.stepHeaderValue(i, c)
	}
}

func (p *RequestParser) stepHeaderName(i uint16, c byte) {
	if p.crPendingName {
		if c == lf {
			p.headersEndIdx = i + 1
			p.state = StateDone
			return
		}
		p.reject(ParseErrorInvalidHeaderName)
		return
	}

	if p.curName.Len == 0 {
		if c == cr {
			p.crPendingName = true
			return
		}
		if p.headersCount >= MaxRequestHeaders {
			p.reject(ParseErrorTooManyHeaders)
			return
		}
	}

	if IsHeaderNameByte(c) {
		if p.curName.Len == 0 {
			p.curName.Idx = i
		}
		p.curName.Len++
		return
	}
	if c == ':' && p.curName.Len > 0 {
		p.state = StateReadingHeaderValue
		p.valueStarted = false
		return
	}
	p.reject(ParseErrorInvalidHeaderName)
}

func (p *RequestParser) stepHeaderValue(i uint16, c byte) {
	if p.crPendingVal {
		if c == lf {
			p.commitHeader()
			return
		}
		p.reject(ParseErrorInvalidHeaderValue)
		return
	}

	if !p.valueStarted {
		if c == sp {
			return
		}
		p.valueStarted = true
		p.curValue.Idx = i
	}

	if c == cr {
		p.crPendingVal = true
		return
	}
	if IsHeaderValueByte(c) {
		p.curValue.Len++
		return
	}
	p.reject(ParseErrorInvalidHeaderValue)
}

func (p *RequestParser) commitHeader() {
	p.headerViews[p.headersCount] = HeaderView{Name: p.curName, Value: p.curValue}
	p.headersCount++

	p.curName = Range{}
	p.curValue = Range{}
	p.valueStarted = false
	p.crPendingName = false
	p.crPendingVal = false
	p.state = StateReadingHeaderName
}

// Method returns the parsed request method, aliasing the internal
// buffer. Valid once the parser has moved past StateReadingMethod;
// callers should only consult it once State reaches StateDone.
func (p *RequestParser) Method() []byte {
	return p.methodView.Bytes(p.buf)
}

// URI returns the parsed request-target, aliasing the internal buffer.
func (p *RequestParser) URI() []byte {
	return p.uriView.Bytes(p.buf)
}

// HeadersCount returns the number of headers parsed so far.
func (p *RequestParser) HeadersCount() int {
	return int(p.headersCount)
}

// GetHeader performs a case-insensitive lookup of name among the
// parsed headers, returning the first matching value view and true, or
// (nil, false) if no header with that name (any ASCII case) was
// parsed.
func (p *RequestParser) GetHeader(name string) ([]byte, bool) {
	nb := s2b(name)
	for idx := uint8(0); idx < p.headersCount; idx++ {
		hv := p.headerViews[idx]
		if equalFoldASCII(hv.Name.Bytes(p.buf), nb) {
			return hv.Value.Bytes(p.buf), true
		}
	}
	return nil, false
}

// Headers returns a lazy, finite sequence of (name, value) views in
// arrival order, preserving the original case of each header name.
func (p *RequestParser) Headers() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for idx := uint8(0); idx < p.headersCount; idx++ {
			hv := p.headerViews[idx]
			if !yield(hv.Name.Bytes(p.buf), hv.Value.Bytes(p.buf)) {
				return
			}
		}
	}
}

// BufferFragment returns the unparsed trailing bytes in
// [headersEndIdx, bufferLen) — the start of the request body, or the
// next pipelined request. It is only meaningful once State is
// StateDone; before that it returns an empty slice.
func (p *RequestParser) BufferFragment() []byte {
	if p.state != StateDone {
		return p.buf[:0]
	}
	return p.buf[p.headersEndIdx:p.bufferLen]
}
