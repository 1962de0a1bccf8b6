// Command httpcodecd is a minimal reference server built on the
// httpcodec package: it answers every request with a fixed status line
// and a Date header, demonstrating the chunk-handoff protocol driven
// against real sockets. It is not part of the codec's scope — see
// SPEC_FULL.md §6.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/nilbuf/httpcodec"
	"github.com/nilbuf/httpcodec/internal/server"
)

var (
	addr        = flag.String("addr", ":8080", "TCP address to listen on")
	reusePort   = flag.Bool("reusePort", false, "Enable SO_REUSEPORT")
	reqBufSize  = flag.Int("reqBufSize", 2048, "Per-connection request buffer size")
	respBufSize = flag.Int("respBufSize", 2048, "Per-connection response buffer size")
	readTimeout = flag.Duration("readTimeout", 10*time.Second, "Per-request read timeout")
	verbose     = flag.Bool("verbose", false, "Log every transport error, not just unexpected ones")

	autocertHost = flag.String("autocertHost", "", "Autocert host name; only logged at startup, the server always serves plain HTTP")
	certCacheDir = flag.String("certCacheDir", "./certs", "Autocert certificate cache directory; only logged at startup")
)

func main() {
	flag.Parse()

	srv := server.New(server.Options{
		Listen: server.ListenConfig{
			Addr:      *addr,
			ReusePort: *reusePort,
		},
		RequestBufferSize:  uint16(*reqBufSize),
		ResponseBufferSize: uint16(*respBufSize),
		ReadTimeout:        *readTimeout,
		Verbose:            *verbose,
		Handle:             handle,
	})

	if *autocertHost != "" {
		log.Printf("httpcodecd: autocertHost %q and certCacheDir %q are set, but TLS is not enabled; serving plain HTTP", *autocertHost, *certCacheDir)
	}
	log.Printf("httpcodecd: listening on %q", *addr)

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("httpcodecd: %v", err)
	}
}

func handle(p *httpcodec.RequestParser, c *httpcodec.ResponseComposer, now time.Time) {
	if err := c.AddStatusStandard(200); err != nil {
		return
	}
	if err := c.AddDateHeader(now); err != nil {
		return
	}
	if err := c.AddHeader([]byte("Content-Length"), []byte("0")); err != nil {
		return
	}
	if err := c.AddHeader([]byte("Connection"), []byte("keep-alive")); err != nil {
		return
	}
	_ = c.EndHeaders()
}
