package classifier

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// VideoMeta is the playback metadata pushed to clients as video_info.
type VideoMeta struct {
	Duration   float64
	FPS        float64
	FrameCount int64
}

// DefaultMeta is used when no prober is available for an upload.
func DefaultMeta() VideoMeta {
	return VideoMeta{Duration: 120, FPS: 30, FrameCount: 3600}
}

// Prober reads video metadata through ffprobe.
type Prober struct {
	ffprobePath string
}

func NewProber() (*Prober, error) {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &Prober{ffprobePath: path}, nil
}

func (p *Prober) Probe(videoPath string) (VideoMeta, error) {
	out, err := exec.Command(p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	).Output()
	if err != nil {
		return VideoMeta{}, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}

	meta := VideoMeta{}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		switch key {
		case "duration":
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				meta.Duration = d
			}
		case "avg_frame_rate":
			meta.FPS = parseFrameRate(value)
		case "nb_frames":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				meta.FrameCount = n
			}
		}
	}

	if meta.Duration <= 0 {
		return VideoMeta{}, fmt.Errorf("ffprobe reported no duration for %s", videoPath)
	}
	if meta.FPS <= 0 {
		meta.FPS = 30
	}
	if meta.FrameCount == 0 {
		meta.FrameCount = int64(math.Round(meta.Duration * meta.FPS))
	}
	return meta, nil
}

// parseFrameRate handles ffprobe's fractional rates like "30000/1001".
func parseFrameRate(value string) float64 {
	num, den, found := strings.Cut(value, "/")
	if !found {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return 0
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
