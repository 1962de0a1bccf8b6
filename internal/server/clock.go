// Package server is a reference integration layer that wires the
// httpcodec core to real TCP sockets, a bounded worker pool, a cached
// clock, and logging. None of this package is imported by the
// httpcodec core — it is a caller of the library, demonstrating the
// ambient concerns the core deliberately excludes. See SPEC_FULL.md §6.
package server

import (
	"sync"
	"sync/atomic"
	"time"
)

// dateLayout mirrors httpcodec's own RFC 1123 Date-header layout.
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// cachedClock refreshes a cached time.Time once a second in the
// background, so the request path never calls time.Now; the Date header
// value itself is still formatted per response by
// ResponseComposer.AddDateHeader. Grounded on the teacher's
// serverDateUpdater (server_date.go) and coarseTime.go.
type cachedClock struct {
	value  atomic.Value // time.Time
	mtx    sync.Mutex
	stopCh chan struct{}
}

func newCachedClock() *cachedClock {
	c := &cachedClock{stopCh: make(chan struct{})}
	c.refresh()
	go c.loop()
	return c
}

func (c *cachedClock) loop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

func (c *cachedClock) refresh() {
	c.value.Store(time.Now())
}

// Now returns the most recently cached time, at most ~1 second stale.
func (c *cachedClock) Now() time.Time {
	v, ok := c.value.Load().(time.Time)
	if !ok {
		// Slow path: no refresh has landed yet (race at construction).
		c.mtx.Lock()
		defer c.mtx.Unlock()
		now := time.Now()
		c.value.Store(now)
		return now
	}
	return v
}

func (c *cachedClock) Stop() {
	close(c.stopCh)
}
