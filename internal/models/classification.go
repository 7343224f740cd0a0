package models

import "time"

// ClassificationRecord is one classification result for a quantized
// playback bucket. Immutable once created.
type ClassificationRecord struct {
	BucketTime   float64
	Label        string
	Confidence   float64
	Flagged      bool
	RawTimestamp float64
}

// SkipEvent records one forward jump decided by the skip controller.
type SkipEvent struct {
	FromTime   float64
	ToTime     float64
	DecidedAt  time.Time
	Confidence float64
	Label      string
}

// PolicyConfig is the user-facing auto-skip policy. Values are clamped by
// the configuration surface before they reach this core, so no validation
// happens here.
type PolicyConfig struct {
	Enabled             bool
	SkipDuration        float64
	ConfidenceThreshold float64
	BufferTime          float64
}

// DefaultPolicy mirrors the reference behavior: skip 10 seconds ahead when
// a flagged classification arrives with confidence above 0.7.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		Enabled:             true,
		SkipDuration:        10,
		ConfidenceThreshold: 0.7,
		BufferTime:          0,
	}
}
