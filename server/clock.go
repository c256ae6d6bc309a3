package main

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Clock is the coarse wall clock shared by the master and workers. Backed by
// a 1ms-resolution time cache so hot loops never hit the VDSO; readers see a
// value at most ~1ms stale.
type Clock struct {
	cache *timecache.TimeCache
}

func NewClock() *Clock {
	return &Clock{cache: timecache.NewWithResolution(time.Millisecond)}
}

func (c *Clock) NowMs() uint64 {
	return uint64(c.cache.CachedTime().UnixMilli())
}

func (c *Clock) NowSec() uint64 {
	return c.NowMs() / 1000
}

func (c *Clock) Stop() {
	c.cache.Stop()
}
