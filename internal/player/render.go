package player

// OverlayMode says what the current overlay frame shows.
type OverlayMode int

const (
	// OverlayNone renders nothing over the media.
	OverlayNone OverlayMode = iota
	// OverlayClassification renders the label and confidence bar.
	OverlayClassification
	// OverlaySkipping renders the full-frame "content being skipped"
	// indicator. It always wins over a stale classification overlay.
	OverlaySkipping
)

// OverlayFrame is one rendered overlay state, produced once per display
// frame.
type OverlayFrame struct {
	Mode        OverlayMode
	Label       string
	Confidence  float64
	Flagged     bool
	CurrentTime float64
}

// FrameSink consumes overlay frames. Implementations draw them; this core
// only decides what they contain.
type FrameSink interface {
	RenderFrame(frame OverlayFrame)
}

// RenderSync ties the sampler, store and skip controller together once per
// display frame. The tick order is fixed: the skip indicator suppresses
// both the classification overlay and sampling, so no request is ever sent
// for content that is actively being skipped.
type RenderSync struct {
	clock   MediaClock
	sampler *ClockSampler
	store   *ClassificationStore
	skip    *SkipController
	sink    FrameSink
}

func NewRenderSync(clock MediaClock, sampler *ClockSampler, store *ClassificationStore, skip *SkipController, sink FrameSink) *RenderSync {
	return &RenderSync{
		clock:   clock,
		sampler: sampler,
		store:   store,
		skip:    skip,
		sink:    sink,
	}
}

// Tick runs one render pass and reports whether a classification request
// should be issued, along with the raw playback time to request. Ticks
// before the media clock has metadata are no-ops.
func (r *RenderSync) Tick() (float64, bool) {
	if !r.clock.Ready() {
		return 0, false
	}

	currentTime := r.clock.CurrentTime()

	if r.skip.State() == SkipSkipping {
		r.sink.RenderFrame(OverlayFrame{
			Mode:        OverlaySkipping,
			CurrentTime: currentTime,
		})
		return 0, false
	}

	frame := OverlayFrame{Mode: OverlayNone, CurrentTime: currentTime}
	if rec := r.store.Lookup(currentTime); rec != nil {
		frame.Mode = OverlayClassification
		frame.Label = rec.Label
		frame.Confidence = rec.Confidence
		frame.Flagged = rec.Flagged
	}
	r.sink.RenderFrame(frame)

	if _, ok := r.sampler.OnTick(currentTime, r.clock.Playing()); ok {
		return currentTime, true
	}
	return 0, false
}

// ResetSampler forgets the last sampled bucket after any seek.
func (r *RenderSync) ResetSampler() {
	r.sampler.Reset()
}
