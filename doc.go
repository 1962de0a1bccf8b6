/*
Package httpcodec provides a zero-allocation HTTP/1.1 request parser and
response composer for embedding in I/O-agnostic servers, clients, and
resource-constrained environments.

The package exposes two independent engines:

  - [RequestParser] incrementally parses a request line and headers into
    a fixed-size buffer and exposes parsed fields as byte-slice views
    aliasing that buffer.
  - [ResponseComposer] incrementally appends a status line and headers
    into a fixed-size buffer and exposes it as a chunked source for
    transmission.

Neither engine performs socket I/O, TLS, body parsing, or any dynamic
allocation during steady-state operation. Both expose the same
two-phase "chunk handoff" contract ([ChunkInfo]) so that callers can
drive arbitrary transports without the package depending on any of
them. See cmd/httpcodecd for a reference integration that wires the
codec to real sockets.
*/
package httpcodec
