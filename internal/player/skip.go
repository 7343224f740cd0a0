package player

import (
	"time"

	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/models"
)

// SkipState is the two-state machine driving automatic seeks.
type SkipState int

const (
	SkipIdle SkipState = iota
	SkipSkipping
)

func (s SkipState) String() string {
	switch s {
	case SkipIdle:
		return "idle"
	case SkipSkipping:
		return "skipping"
	default:
		return "unknown"
	}
}

// DefaultCooldown is how long the controller stays in Skipping after a
// seek before it will consider another classification.
const DefaultCooldown = time.Second

// SkipController decides, from an incoming classification and the active
// policy, whether to jump the playback position forward. Skips are
// monotonic forward jumps and are never reverted.
type SkipController struct {
	state  SkipState
	events []models.SkipEvent
	clock  MediaClock
	logger *zap.Logger
}

func NewSkipController(clock MediaClock, logger *zap.Logger) *SkipController {
	return &SkipController{
		state:  SkipIdle,
		clock:  clock,
		logger: logger,
	}
}

// HandleClassification runs the Idle → Skipping transition when the policy
// allows it. A classification arriving while already Skipping is ignored,
// not queued. Returns true when a seek was issued; the caller is expected
// to schedule EndCooldown and reset its clock sampler.
func (c *SkipController) HandleClassification(rec *models.ClassificationRecord, policy models.PolicyConfig) bool {
	if c.state != SkipIdle {
		return false
	}
	if !policy.Enabled || !rec.Flagged || rec.Confidence < policy.ConfidenceThreshold {
		return false
	}

	fromTime := c.clock.CurrentTime()
	targetTime := fromTime + policy.SkipDuration
	// Never seek to or past end-of-media; that would fire an end event.
	if max := c.clock.Duration() - 1; targetTime > max {
		targetTime = max
	}
	if targetTime < fromTime {
		targetTime = fromTime
	}

	c.events = append(c.events, models.SkipEvent{
		FromTime:   fromTime,
		ToTime:     targetTime,
		DecidedAt:  time.Now(),
		Confidence: rec.Confidence,
		Label:      rec.Label,
	})

	c.state = SkipSkipping
	c.clock.Seek(targetTime)

	c.logger.Info("skipping flagged content",
		zap.Float64("from", fromTime),
		zap.Float64("to", targetTime),
		zap.String("label", rec.Label),
		zap.Float64("confidence", rec.Confidence),
	)
	return true
}

// EndCooldown returns the controller to Idle. Called by the engine when
// the post-skip cool-down timer fires.
func (c *SkipController) EndCooldown() {
	c.state = SkipIdle
}

func (c *SkipController) State() SkipState {
	return c.state
}

// Events returns the append-only skip history. Read-only to callers.
func (c *SkipController) Events() []models.SkipEvent {
	return c.events
}
