package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/nilbuf/httpcodec"
)

// Options configures a Server.
type Options struct {
	Listen ListenConfig

	// RequestBufferSize sizes each connection's RequestParser buffer.
	RequestBufferSize uint16
	// ResponseBufferSize sizes each connection's ResponseComposer buffer.
	ResponseBufferSize uint16

	MaxWorkersCount       int
	MaxIdleWorkerDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger Logger
	// Verbose, when true, logs every transport error instead of only
	// the unexpected ones (mirrors the teacher's LogAllErrors).
	Verbose bool

	// Handle is called once per fully-parsed request with the parser
	// (to read method/URI/headers/BufferFragment), the composer (to
	// build the response), and the server's cached clock reading (to
	// pass straight to composer.AddDateHeader without calling
	// time.Now() on the request path). Handle must call
	// composer.AddStatus (or AddStatusStandard), zero or more
	// AddHeader/AddDateHeader, then EndHeaders before returning.
	Handle func(p *httpcodec.RequestParser, c *httpcodec.ResponseComposer, now time.Time)
}

// Server drives one httpcodec.RequestParser and one
// httpcodec.ResponseComposer per accepted connection through the
// chunk-handoff protocol against a real net.Conn, dispatched across a
// bounded worker pool. It exists purely to demonstrate the ambient
// concerns SPEC_FULL.md §6 assigns outside the core codec; the core
// package never imports this one.
type Server struct {
	opts  Options
	clock *cachedClock
	pool  *workerPool
	ln    net.Listener
}

// New constructs a Server from opts, filling in documented defaults for
// zero-valued fields.
func New(opts Options) *Server {
	if opts.RequestBufferSize == 0 {
		opts.RequestBufferSize = httpcodec.RequestMaxHeadersDefaultSize
	}
	if opts.ResponseBufferSize == 0 {
		opts.ResponseBufferSize = httpcodec.ResponseMaxHeadersDefaultSize
	}
	if opts.MaxWorkersCount == 0 {
		opts.MaxWorkersCount = 256 * 1024
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger
	}
	return &Server{opts: opts, clock: newCachedClock()}
}

// ListenAndServe listens on opts.Listen and serves accepted connections
// until the listener is closed.
func (s *Server) ListenAndServe() error {
	ln, err := Listen(s.opts.Listen)
	if err != nil {
		return err
	}
	s.ln = ln

	s.pool = &workerPool{
		Logger:                s.opts.Logger,
		Handler:               s.serveConn,
		MaxWorkersCount:       s.opts.MaxWorkersCount,
		MaxIdleWorkerDuration: s.opts.MaxIdleWorkerDuration,
	}
	s.pool.Start()
	defer s.pool.Stop()
	defer s.clock.Stop()

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if !s.pool.Serve(c) {
			_ = c.Close()
		}
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// serveConn drives a single connection's request/response cycle
// through the chunk-handoff protocol. One RequestParser and one
// ResponseComposer are allocated here — per-connection, per-worker —
// with no coordination across connections, exercising the "no ordering
// requirement between instances" property from SPEC_FULL.md §5.
func (s *Server) serveConn(c net.Conn) {
	parser := httpcodec.NewRequestParserSize(s.opts.RequestBufferSize)
	composer := httpcodec.NewResponseComposerSize(s.opts.ResponseBufferSize)

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	for {
		parser.Reset(true)
		composer.Reset(true)
		body.Reset()

		if err := s.readRequest(c, parser); err != nil {
			if !isExpectedTransportError(err) || s.opts.Verbose {
				if !errors.Is(err, io.EOF) {
					s.opts.Logger.Printf("httpcodecd: read error from %s: %v", c.RemoteAddr(), err)
				}
			}
			return
		}

		// Stage any bytes the parser could not interpret (start of the
		// body, or the next pipelined request) — exactly the collaborator
		// named in SPEC_FULL.md §1: "the caller streams bodies itself".
		body.Write(parser.BufferFragment())

		if parser.State() != httpcodec.StateDone {
			s.writeBadRequest(c, composer)
			return
		}

		s.opts.Handle(parser, composer, s.clock.Now())

		if err := s.writeResponse(c, composer); err != nil {
			if !isExpectedTransportError(err) || s.opts.Verbose {
				s.opts.Logger.Printf("httpcodecd: write error to %s: %v", c.RemoteAddr(), err)
			}
			return
		}
	}
}

func (s *Server) readRequest(c net.Conn, parser *httpcodec.RequestParser) error {
	for parser.State().IsActive() {
		if s.opts.ReadTimeout > 0 {
			if err := c.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
				return err
			}
		}

		info := parser.NextChunkInfo(4096)
		if info.Max == 0 {
			break
		}
		n, err := c.Read(info.Ptr)
		if n > 0 {
			parser.Ingest(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) && parser.State() == httpcodec.StateDone {
				return nil
			}
			if errors.Is(err, io.EOF) {
				parser.Ingest(0)
			}
			return err
		}
	}
	if parser.State() != httpcodec.StateDone && parser.State() != httpcodec.StateInvalidRequest {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (s *Server) writeResponse(c net.Conn, composer *httpcodec.ResponseComposer) error {
	for composer.State() != httpcodec.ComposerDone {
		if s.opts.WriteTimeout > 0 {
			if err := c.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
				return err
			}
		}

		info := composer.NextChunkInfo(4096)
		if info.Max == 0 {
			break
		}
		n, err := c.Write(info.Ptr)
		composer.MarkRead(n)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) writeBadRequest(c net.Conn, composer *httpcodec.ResponseComposer) {
	composer.Reset(true)
	if err := composer.AddStatusStandard(400); err != nil {
		return
	}
	if err := composer.AddHeader([]byte("Connection"), []byte("close")); err != nil {
		return
	}
	if err := composer.EndHeaders(); err != nil {
		return
	}
	_ = s.writeResponse(c, composer)
}

// Now returns the server's cached, second-granularity clock reading —
// the same value Handle receives as its now parameter, exposed here
// for callers that need it outside of a request (e.g. background
// tasks sharing the server's clock).
func (s *Server) Now() time.Time {
	return s.clock.Now()
}
