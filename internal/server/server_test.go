package server

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nilbuf/httpcodec"
)

func TestServeConnRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	srv := New(Options{
		ReadTimeout: time.Second,
		Handle: func(p *httpcodec.RequestParser, c *httpcodec.ResponseComposer, now time.Time) {
			if string(p.Method()) != "GET" {
				t.Errorf("Handle saw Method() = %q, want GET", p.Method())
			}
			if err := c.AddStatusStandard(200); err != nil {
				t.Fatalf("AddStatusStandard: %v", err)
			}
			if err := c.AddHeader([]byte("Content-Length"), []byte("0")); err != nil {
				t.Fatalf("AddHeader: %v", err)
			}
			if err := c.EndHeaders(); err != nil {
				t.Fatalf("EndHeaders: %v", err)
			}
		},
	})

	done := make(chan struct{})
	go func() {
		srv.serveConn(serverConn)
		close(done)
	}()

	if _, err := clientConn.Write([]byte("GET /ping HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	reader := bufio.NewReader(clientConn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading status line: %v", err)
	}
	if !strings.HasPrefix(statusLine, "HTTP/1.1 200 OK") {
		t.Errorf("status line = %q, want HTTP/1.1 200 OK prefix", statusLine)
	}

	_ = clientConn.Close()
	<-done
}

func TestServeConnWritesBadRequestOnMalformedInput(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	srv := New(Options{
		ReadTimeout: time.Second,
		Handle: func(p *httpcodec.RequestParser, c *httpcodec.ResponseComposer, now time.Time) {
			t.Fatal("Handle should not be called for a malformed request")
		},
	})

	done := make(chan struct{})
	go func() {
		srv.serveConn(serverConn)
		close(done)
	}()

	if _, err := clientConn.Write([]byte("GET / HTTP/1.0\r\n\r\n")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	reader := bufio.NewReader(clientConn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading status line: %v", err)
	}
	if !strings.HasPrefix(statusLine, "HTTP/1.1 400 Bad Request") {
		t.Errorf("status line = %q, want HTTP/1.1 400 Bad Request prefix", statusLine)
	}

	<-done
}

// readDateHeader reads one full response (status line through the
// terminating blank line) off r and returns its Date header value,
// leaving the reader positioned at the start of the next response.
func readDateHeader(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var date string
	var found bool
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading response: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ": "); ok && strings.EqualFold(name, "Date") {
			date, found = value, true
		}
	}
	if !found {
		t.Fatal("reached end of headers without a Date header")
	}
	return date
}

// TestServeConnReusesCachedClockAcrossRequests drives two sequential
// requests over one keep-alive connection, with the server's cached
// clock stalled, and checks both responses' Date headers came from the
// same cached clock reading rather than two independent time.Now()
// calls on the request path (see Options.Handle).
func TestServeConnReusesCachedClockAcrossRequests(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	srv := New(Options{
		ReadTimeout: time.Second,
		Handle: func(p *httpcodec.RequestParser, c *httpcodec.ResponseComposer, now time.Time) {
			if err := c.AddStatusStandard(200); err != nil {
				t.Fatalf("AddStatusStandard: %v", err)
			}
			if err := c.AddDateHeader(now); err != nil {
				t.Fatalf("AddDateHeader: %v", err)
			}
			if err := c.AddHeader([]byte("Content-Length"), []byte("0")); err != nil {
				t.Fatalf("AddHeader: %v", err)
			}
			if err := c.EndHeaders(); err != nil {
				t.Fatalf("EndHeaders: %v", err)
			}
		},
	})
	// Stall the cached clock so both requests read the same cached value.
	srv.clock.Stop()

	done := make(chan struct{})
	go func() {
		srv.serveConn(serverConn)
		close(done)
	}()

	reader := bufio.NewReader(clientConn)

	if _, err := clientConn.Write([]byte("GET /first HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("client write 1: %v", err)
	}
	first := readDateHeader(t, reader)

	if _, err := clientConn.Write([]byte("GET /second HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatalf("client write 2: %v", err)
	}
	second := readDateHeader(t, reader)

	if first != second {
		t.Errorf("Date headers differ across sequential requests served with the cached clock stalled: %q vs %q", first, second)
	}

	_ = clientConn.Close()
	<-done
}
