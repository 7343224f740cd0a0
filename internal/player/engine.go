package player

import (
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/models"
)

// Channel is the duplex channel the processor talks through. Implemented
// by channel.Manager; faked in tests.
type Channel interface {
	// Send transmits a message best-effort. Dropped when the channel is
	// not open.
	Send(msg models.Message)
	// Open reports whether the channel can currently deliver sends.
	Open() bool
	// Messages yields inbound messages in arrival order. Closed when the
	// channel shuts down for good.
	Messages() <-chan models.Message
	// Close tears the channel down cleanly, suppressing reconnection.
	Close() error
}

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Config tunes one processor. Zero values fall back to the reference
// behavior.
type Config struct {
	FrameInterval time.Duration
	Cooldown      time.Duration
	Policy        models.PolicyConfig
}

func (c *Config) applyDefaults() {
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.Policy == (models.PolicyConfig{}) {
		c.Policy = models.DefaultPolicy()
	}
}

// Events posted into the run loop. All engine state is mutated from the
// loop goroutine only, so the components need no locking of their own.
type procEvent interface{ isProcEvent() }

type policyEvent struct{ policy models.PolicyConfig }

type seekEvent struct{ to float64 }

type cooldownEvent struct{}

type snapshotEvent struct{ resp chan []models.SkipEvent }

type teardownEvent struct{ done chan struct{} }

func (policyEvent) isProcEvent()   {}
func (seekEvent) isProcEvent()     {}
func (cooldownEvent) isProcEvent() {}
func (snapshotEvent) isProcEvent() {}
func (teardownEvent) isProcEvent() {}

// Processor runs the synchronization engine for one playback session: a
// single goroutine consuming display-frame ticks and channel messages, one
// at a time, run to completion.
type Processor struct {
	sessionID string
	clock     MediaClock
	channel   Channel
	sampler   *ClockSampler
	store     *ClassificationStore
	skip      *SkipController
	render    *RenderSync
	cfg       Config
	policy    models.PolicyConfig
	logger    *zap.Logger

	events    chan procEvent
	done      chan struct{}
	cooldown  *time.Timer
	failed    bool
	closeOnce sync.Once

	errMu   sync.Mutex
	lastErr error
}

func NewProcessor(sessionID string, clock MediaClock, ch Channel, sink FrameSink, cfg Config, logger *zap.Logger) *Processor {
	cfg.applyDefaults()

	sampler := NewClockSampler()
	store := NewClassificationStore()
	skip := NewSkipController(clock, logger)

	return &Processor{
		sessionID: sessionID,
		clock:     clock,
		channel:   ch,
		sampler:   sampler,
		store:     store,
		skip:      skip,
		render:    NewRenderSync(clock, sampler, store, skip, sink),
		cfg:       cfg,
		policy:    cfg.Policy,
		logger:    logger.With(zap.String("session_id", sessionID)),
		events:    make(chan procEvent, 16),
		done:      make(chan struct{}),
	}
}

func (p *Processor) SessionID() string {
	return p.sessionID
}

// Start launches the run loop.
func (p *Processor) Start() {
	go p.run()
}

func (p *Processor) run() {
	ticker := time.NewTicker(p.cfg.FrameInterval)
	defer ticker.Stop()

	msgs := p.channel.Messages()
	for {
		select {
		case <-ticker.C:
			p.onFrameTick()
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			p.onMessage(msg)
		case ev := <-p.events:
			if td, ok := ev.(teardownEvent); ok {
				p.teardown()
				close(td.done)
				return
			}
			p.dispatch(ev)
		}
	}
}

// onFrameTick runs one render pass and issues a sampling request when the
// sampler reports a new bucket and the channel is open.
func (p *Processor) onFrameTick() {
	t, sample := p.render.Tick()
	if sample && !p.failed && p.channel.Open() {
		p.channel.Send(models.Message{
			Type:      models.TypeProcessFrame,
			SessionID: p.sessionID,
			Timestamp: t,
		})
	}
}

func (p *Processor) onMessage(msg models.Message) {
	switch msg.Type {
	case models.TypeClassification:
		p.onClassification(msg)

	case models.TypeVideoInfo:
		if sink, ok := p.clock.(MetadataSink); ok {
			sink.SetMetadata(msg.Duration, msg.FPS, msg.FrameCount)
		}
		p.logger.Info("received video info",
			zap.Float64("duration", msg.Duration),
			zap.Float64("fps", msg.FPS),
			zap.Int64("frame_count", msg.FrameCount),
		)

	case models.TypeConnectionEstablished:
		p.logger.Info("channel session established")

	case models.TypePing:
		p.channel.Send(models.Message{Type: models.TypePong, SessionID: p.sessionID})

	case models.TypeError:
		// A backend error makes the channel unusable for this session.
		p.failed = true
		p.setErr(errors.New(msg.Message))
		p.logger.Error("backend reported error", zap.String("message", msg.Message))
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("closing channel after backend error", zap.Error(err))
		}

	default:
		p.logger.Warn("dropping unrecognized message", zap.String("type", string(msg.Type)))
	}
}

func (p *Processor) onClassification(msg models.Message) {
	rec := &models.ClassificationRecord{
		BucketTime:   Quantize(msg.Timestamp),
		Label:        msg.Label,
		Confidence:   msg.Confidence,
		Flagged:      msg.Flagged,
		RawTimestamp: msg.Timestamp,
	}
	p.store.Put(rec)

	if p.skip.HandleClassification(rec, p.policy) {
		// The programmatic seek invalidates the last sampled bucket.
		p.render.ResetSampler()
		p.scheduleCooldown()
	}
}

func (p *Processor) scheduleCooldown() {
	p.cooldown = time.AfterFunc(p.cfg.Cooldown, func() {
		p.post(cooldownEvent{})
	})
}

func (p *Processor) dispatch(ev procEvent) {
	switch ev := ev.(type) {
	case cooldownEvent:
		p.skip.EndCooldown()
	case policyEvent:
		p.policy = ev.policy
	case seekEvent:
		p.clock.Seek(ev.to)
		p.render.ResetSampler()
	case snapshotEvent:
		events := p.skip.Events()
		out := make([]models.SkipEvent, len(events))
		copy(out, events)
		ev.resp <- out
	}
}

// teardown runs inside the loop so no event can interleave with it: stop
// the pending cool-down timer, close the channel cleanly, let the render
// ticker die with the loop, then release the playback source.
func (p *Processor) teardown() {
	if p.cooldown != nil {
		p.cooldown.Stop()
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("closing channel on teardown", zap.Error(err))
	}
	if closer, ok := p.clock.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			p.logger.Warn("releasing media source", zap.Error(err))
		}
	}
	close(p.done)
}

func (p *Processor) post(ev procEvent) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// SetPolicy replaces the active skip policy on the next loop iteration.
func (p *Processor) SetPolicy(policy models.PolicyConfig) {
	p.post(policyEvent{policy: policy})
}

// SeekTo performs a user-driven scrub and resets bucket sampling.
func (p *Processor) SeekTo(seconds float64) {
	p.post(seekEvent{to: seconds})
}

// SkipEvents returns a copy of the skip history.
func (p *Processor) SkipEvents() []models.SkipEvent {
	resp := make(chan []models.SkipEvent, 1)
	select {
	case p.events <- snapshotEvent{resp: resp}:
		return <-resp
	case <-p.done:
		return nil
	}
}

func (p *Processor) setErr(err error) {
	p.errMu.Lock()
	p.lastErr = err
	p.errMu.Unlock()
}

// Err returns the surfaced permanent failure, if any.
func (p *Processor) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.lastErr
}

// Close tears the session down as one atomic operation and waits for the
// loop to exit. Safe to call more than once.
func (p *Processor) Close() error {
	p.closeOnce.Do(func() {
		td := teardownEvent{done: make(chan struct{})}
		select {
		case p.events <- td:
			<-td.done
		case <-p.done:
		}
	})
	return nil
}
