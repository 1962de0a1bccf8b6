package server

import (
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Handler serves one accepted connection. The worker pool closes c
// after Handler returns.
type Handler func(c net.Conn)

// workerPool dispatches accepted connections to a pool of goroutines in
// FILO order, keeping recently used goroutines warm. Adapted from the teacher's workerpool.go: generalized
// away from fasthttp's ServeHandler/ConnState types, otherwise the same
// FILO stack scheme.
type workerPool struct {
	workerChanPool sync.Pool

	Logger Logger

	ready   workerChanStack
	Handler Handler

	stopCh chan struct{}

	MaxWorkersCount       int
	MaxIdleWorkerDuration time.Duration

	workersCount int32
	mustStop     atomic.Bool
}

type workerChan struct {
	next        *workerChan
	ch          chan net.Conn
	lastUseTime int64
}

type workerChanStack struct {
	head, tail *workerChan
}

func (s *workerChanStack) push(ch *workerChan) {
	ch.next = s.head
	s.head = ch
	if s.tail == nil {
		s.tail = ch
	}
}

func (s *workerChanStack) pop() *workerChan {
	head := s.head
	if head == nil {
		return nil
	}
	s.head = head.next
	if s.head == nil {
		s.tail = nil
	}
	return head
}

var workerChanCap = func() int {
	if runtime.GOMAXPROCS(0) == 1 {
		return 0
	}
	return 1
}()

func (wp *workerPool) Start() {
	if wp.stopCh != nil {
		return
	}
	wp.stopCh = make(chan struct{})
	stopCh := wp.stopCh
	wp.workerChanPool.New = func() any {
		return &workerChan{ch: make(chan net.Conn, workerChanCap)}
	}
	go func() {
		for {
			wp.clean()
			select {
			case <-stopCh:
				return
			default:
				time.Sleep(wp.getMaxIdleWorkerDuration())
			}
		}
	}()
}

func (wp *workerPool) Stop() {
	if wp.stopCh == nil {
		return
	}
	close(wp.stopCh)
	wp.stopCh = nil

	for {
		ch := wp.ready.pop()
		if ch == nil {
			break
		}
		ch.ch <- nil
	}
	wp.mustStop.Store(true)
}

func (wp *workerPool) getMaxIdleWorkerDuration() time.Duration {
	if wp.MaxIdleWorkerDuration <= 0 {
		return 10 * time.Second
	}
	return wp.MaxIdleWorkerDuration
}

func (wp *workerPool) clean() {
	criticalTime := time.Now().Add(-wp.getMaxIdleWorkerDuration()).UnixNano()

	current := wp.ready.head
	for current != nil {
		next := current.next
		if current.lastUseTime < criticalTime {
			current.ch <- nil
			wp.workerChanPool.Put(current)
		} else {
			wp.ready.head = current
			break
		}
		current = next
	}
	wp.ready.tail = wp.ready.head
}

// Serve dispatches c to a worker, starting a new one if the pool has
// not yet reached MaxWorkersCount. It returns false if the pool is
// saturated.
func (wp *workerPool) Serve(c net.Conn) bool {
	ch := wp.getCh()
	if ch == nil {
		return false
	}
	ch.ch <- c
	return true
}

func (wp *workerPool) getCh() *workerChan {
	ch := wp.ready.pop()
	if ch == nil && atomic.LoadInt32(&wp.workersCount) < int32(wp.MaxWorkersCount) {
		atomic.AddInt32(&wp.workersCount, 1)
		vch := wp.workerChanPool.Get()
		ch = vch.(*workerChan)
		go func() {
			wp.workerFunc(ch)
			wp.workerChanPool.Put(vch)
		}()
	}
	return ch
}

func (wp *workerPool) release(ch *workerChan) bool {
	ch.lastUseTime = time.Now().UnixNano()
	if wp.mustStop.Load() {
		return false
	}
	wp.ready.push(ch)
	return true
}

func (wp *workerPool) workerFunc(ch *workerChan) {
	for c := range ch.ch {
		if c == nil {
			break
		}

		wp.Handler(c)
		_ = c.Close()

		if !wp.release(ch) {
			break
		}
	}
	atomic.AddInt32(&wp.workersCount, -1)
}
