// Package classifier provides the backend-side content classification.
// The real model lives outside this repository; StubClassifier stands in
// for it with deterministic per-bucket results so the full pipeline can
// run and be tested end to end.
package classifier

import (
	"encoding/binary"
	"hash/fnv"
	"io"

	"github.com/avelkov/skipstream/internal/player"
)

// Result is one classification verdict for a timestamp.
type Result struct {
	Label      string
	Confidence float64
	Flagged    bool
}

// Classifier produces a classification for a video at a timestamp.
type Classifier interface {
	Classify(videoID string, timestamp float64) Result
}

// flagThreshold mirrors the reference detector: a label from the flagged
// set counts as flagged only above this confidence.
const flagThreshold = 0.7

// StubClassifier derives a stable pseudo-random result from the video ID
// and the timestamp's bucket. The same bucket always classifies the same
// way, which is what the client-side cache and skip tests rely on.
type StubClassifier struct {
	labels  []string
	flagged map[string]bool
}

func NewStubClassifier() *StubClassifier {
	return &StubClassifier{
		labels: []string{
			"conversation",
			"scenery",
			"sports",
			"dancing",
			"violence",
			"explicit",
		},
		flagged: map[string]bool{
			"violence": true,
			"explicit": true,
		},
	}
}

func (c *StubClassifier) Classify(videoID string, timestamp float64) Result {
	h := fnv.New64a()
	io.WriteString(h, videoID)
	binary.Write(h, binary.LittleEndian, int64(player.Quantize(timestamp)/player.BucketWidth))
	sum := h.Sum64()

	label := c.labels[sum%uint64(len(c.labels))]
	confidence := 0.40 + float64((sum>>8)%60)/100.0

	return Result{
		Label:      label,
		Confidence: confidence,
		Flagged:    c.flagged[label] && confidence > flagThreshold,
	}
}
