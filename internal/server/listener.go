package server

import (
	"net"

	"github.com/valyala/tcplisten"
)

// ListenConfig controls how Listen constructs the server's TCP
// listener.
type ListenConfig struct {
	// Addr is the address to listen on, e.g. ":8080".
	Addr string

	// ReusePort enables SO_REUSEPORT so multiple processes (or multiple
	// acceptor goroutines in this one) can share Addr.
	ReusePort bool
}

// Listen constructs a net.Listener for cfg.Addr using
// github.com/valyala/tcplisten, the same reuseport-aware listener
// construction the teacher corpus uses for its own servers.
func Listen(cfg ListenConfig) (net.Listener, error) {
	lc := tcplisten.Config{
		ReusePort:   cfg.ReusePort,
		DeferAccept: true,
		FastOpen:    true,
	}
	return lc.NewListener("tcp4", cfg.Addr)
}
