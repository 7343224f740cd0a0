// Command player is a headless demo client: it dials a session's channel,
// runs the synchronization engine against a simulated media clock, and
// draws the overlay state to the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/channel"
	"github.com/avelkov/skipstream/internal/models"
	"github.com/avelkov/skipstream/internal/player"
)

type terminalSink struct{}

func (terminalSink) RenderFrame(frame player.OverlayFrame) {
	switch frame.Mode {
	case player.OverlaySkipping:
		fmt.Printf("\r[%6.1fs] >>> skipping flagged content <<<                    ", frame.CurrentTime)
	case player.OverlayClassification:
		marker := " "
		if frame.Flagged {
			marker = "!"
		}
		bar := strings.Repeat("#", int(frame.Confidence*10))
		fmt.Printf("\r[%6.1fs] %s %-12s %-10s %.2f          ", frame.CurrentTime, marker, frame.Label, bar, frame.Confidence)
	default:
		fmt.Printf("\r[%6.1fs] %-50s", frame.CurrentTime, "")
	}
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080", "backend websocket base URL")
	sessionID := flag.String("session", "", "session ID from a prior upload")
	skipDuration := flag.Float64("skip-duration", 10, "seconds to jump past flagged content")
	threshold := flag.Float64("confidence-threshold", 0.7, "minimum confidence to act on a flag")
	disableSkip := flag.Bool("no-skip", false, "render the overlay but never seek")
	flag.Parse()

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: player -session <session-id> [-url ws://host:port]")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	policy := models.PolicyConfig{
		Enabled:             !*disableSkip,
		SkipDuration:        *skipDuration,
		ConfidenceThreshold: *threshold,
	}

	mgr := channel.NewManager(channel.Config{
		URL:       fmt.Sprintf("%s/ws/%s", *serverURL, *sessionID),
		SessionID: *sessionID,
	}, logger)

	clock := player.NewSimClock()
	registry := player.NewRegistry(logger)

	proc, err := registry.Create(*sessionID, clock, mgr, terminalSink{}, player.Config{Policy: policy})
	if err != nil {
		logger.Fatal("creating processor", zap.Error(err))
	}

	if err := mgr.Connect(); err != nil {
		logger.Fatal("connecting channel", zap.Error(err))
	}

	clock.Play()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ended := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if clock.Ready() && !clock.Playing() {
				close(ended)
				return
			}
		}
	}()

	select {
	case <-interrupt:
		fmt.Println()
		logger.Info("interrupted")
	case <-ended:
		fmt.Println()
		logger.Info("playback finished")
	}

	skips := proc.SkipEvents()
	if err := registry.Destroy(*sessionID); err != nil {
		logger.Warn("destroying session", zap.Error(err))
	}

	if len(skips) == 0 {
		fmt.Println("no content was skipped")
		return
	}
	fmt.Printf("skipped %d segment(s):\n", len(skips))
	for _, s := range skips {
		fmt.Printf("  %6.1fs -> %6.1fs  %s (%.2f)\n", s.FromTime, s.ToTime, s.Label, s.Confidence)
	}
}
