package player

import (
	"sync"
	"time"
)

// MediaClock is the externally owned playback clock. The engine reads it
// every frame and the skip controller is the only component that drives
// it programmatically.
type MediaClock interface {
	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64
	// Duration returns the media duration in seconds.
	Duration() float64
	// Playing reports whether the media is advancing.
	Playing() bool
	// Ready reports whether metadata (duration) is known yet.
	Ready() bool
	// Seek jumps the playback position to an absolute time.
	Seek(seconds float64)
}

// MetadataSink is implemented by clocks that learn their metadata from the
// channel's video_info message rather than from a local decoder.
type MetadataSink interface {
	SetMetadata(duration, fps float64, frameCount int64)
}

// SimClock is a wall-clock driven MediaClock used by the demo player and
// tests. Position advances in real time while playing.
type SimClock struct {
	mu         sync.Mutex
	position   float64
	duration   float64
	fps        float64
	frameCount int64
	playing    bool
	ready      bool
	resumedAt  time.Time
}

func NewSimClock() *SimClock {
	return &SimClock{}
}

func (c *SimClock) SetMetadata(duration, fps float64, frameCount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = duration
	c.fps = fps
	c.frameCount = frameCount
	c.ready = true
}

func (c *SimClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.playing = true
	c.resumedAt = time.Now()
}

func (c *SimClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.position = c.positionLocked()
	c.playing = false
}

func (c *SimClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *SimClock) positionLocked() float64 {
	pos := c.position
	if c.playing {
		pos += time.Since(c.resumedAt).Seconds()
	}
	if c.ready && pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *SimClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *SimClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing && (!c.ready || c.positionLocked() < c.duration)
}

func (c *SimClock) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *SimClock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	c.position = seconds
	c.resumedAt = time.Now()
}
