package player

import (
	"sync"
	"testing"
	"time"

	"github.com/avelkov/skipstream/internal/models"
)

// fakeClock is a manually driven MediaClock.
type fakeClock struct {
	mu       sync.Mutex
	position float64
	duration float64
	fps      float64
	playing  bool
	ready    bool
	seeks    []float64
}

func newFakeClock(position, duration float64) *fakeClock {
	return &fakeClock{position: position, duration: duration, playing: true, ready: true}
}

func (c *fakeClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *fakeClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *fakeClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *fakeClock) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *fakeClock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = seconds
	c.seeks = append(c.seeks, seconds)
}

func (c *fakeClock) SetMetadata(duration, fps float64, frameCount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = duration
	c.fps = fps
	c.ready = true
}

func (c *fakeClock) setPosition(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = seconds
}

func (c *fakeClock) seekCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seeks)
}

func (c *fakeClock) lastSeek() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.seeks) == 0 {
		return -1
	}
	return c.seeks[len(c.seeks)-1]
}

// fakeChannel is an in-memory Channel.
type fakeChannel struct {
	mu     sync.Mutex
	open   bool
	closed bool
	sent   []models.Message

	msgs      chan models.Message
	closeOnce sync.Once
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{open: true, msgs: make(chan models.Message, 64)}
}

func (c *fakeChannel) Send(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.sent = append(c.sent, msg)
}

func (c *fakeChannel) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeChannel) Messages() <-chan models.Message {
	return c.msgs
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.open = false
	c.closed = true
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.msgs) })
	return nil
}

func (c *fakeChannel) deliver(msg models.Message) {
	c.msgs <- msg
}

func (c *fakeChannel) sentOfType(mt models.MessageType) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Message
	for _, msg := range c.sent {
		if msg.Type == mt {
			out = append(out, msg)
		}
	}
	return out
}

func (c *fakeChannel) wasClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// collectSink records every rendered overlay frame.
type collectSink struct {
	mu     sync.Mutex
	frames []OverlayFrame
}

func (s *collectSink) RenderFrame(frame OverlayFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *collectSink) last() (OverlayFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return OverlayFrame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

func (s *collectSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
