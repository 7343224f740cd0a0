package player

import "math"

// BucketWidth is the sampling granularity in seconds. Classification is
// requested and cached at this resolution.
const BucketWidth = 0.5

// Quantize rounds a playback time down to its bucket boundary.
func Quantize(t float64) float64 {
	return math.Floor(t/BucketWidth) * BucketWidth
}

func bucketIndex(t float64) int64 {
	return int64(math.Floor(t / BucketWidth))
}

// ClockSampler watches the media clock and signals when playback has
// entered a bucket that has not been sampled yet.
type ClockSampler struct {
	lastBucket int64
	hasLast    bool
}

func NewClockSampler() *ClockSampler {
	return &ClockSampler{}
}

// OnTick quantizes currentTime and reports whether playback has reached a
// new bucket. It signals only while the media is actually playing; the
// caller is responsible for not invoking it during an active skip.
func (s *ClockSampler) OnTick(currentTime float64, playing bool) (float64, bool) {
	if !playing || currentTime < 0 {
		return 0, false
	}

	idx := bucketIndex(currentTime)
	if s.hasLast && idx == s.lastBucket {
		return 0, false
	}

	s.lastBucket = idx
	s.hasLast = true
	return Quantize(currentTime), true
}

// Reset forgets the last signaled bucket. Called after any seek so the
// next tick is always treated as a new bucket.
func (s *ClockSampler) Reset() {
	s.hasLast = false
}
