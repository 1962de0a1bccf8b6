package server

import (
	"testing"
	"time"
)

func TestCachedClockStaysWithinOneSecondOfReality(t *testing.T) {
	c := newCachedClock()
	defer c.Stop()

	got := c.Now()
	drift := time.Since(got)
	if drift < 0 {
		drift = -drift
	}
	if drift > time.Second {
		t.Errorf("cached clock drifted %s from reality, want <= 1s", drift)
	}
}

func TestCachedClockRefreshUpdatesValue(t *testing.T) {
	c := newCachedClock()
	defer c.Stop()

	first := c.Now()
	time.Sleep(10 * time.Millisecond)
	c.refresh()
	second := c.Now()

	if !second.After(first) {
		t.Errorf("refresh did not advance the cached value: first=%v second=%v", first, second)
	}
}
