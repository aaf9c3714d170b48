// Command replay feeds a recorded pipeline event trace through the latency
// engine and prints the resulting analysis.
//
// Offline mode analyzes the trace in-process and prints each completed
// interaction plus the summary report. Live mode (--url) streams the trace
// into a running latency-server instead.
//
// Usage:
//
//	go run ./cmd/replay --trace session.jsonl
//	go run ./cmd/replay --trace session.jsonl --push http://collector:9000/latency
//	go run ./cmd/replay --trace session.jsonl --url ws://localhost:8090/ws/events --speed 2
//
// A trace is a JSONL file of pipeline events:
//
//	{"kind":"transcription_complete","text":"hello","ts":1700000000.000}
//	{"kind":"text","ts":1700000000.400}
//	{"kind":"tts_started","ts":1700000000.420}
//	{"kind":"tts_audio","ts":1700000000.550}
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teslashibe/go-voicemetrics/internal/httpc"
	"github.com/teslashibe/go-voicemetrics/internal/log"
	"github.com/teslashibe/go-voicemetrics/pkg/feed"
	"github.com/teslashibe/go-voicemetrics/pkg/latency"
	"github.com/teslashibe/go-voicemetrics/pkg/protocol"
)

func main() {
	trace := flag.String("trace", "", "path to JSONL event trace (required)")
	url := flag.String("url", "", "stream to a running server instead of analyzing locally, e.g. ws://localhost:8090/ws/events")
	speed := flag.Float64("speed", 0, "replay speed for --url mode; 0 sends without pacing")
	push := flag.String("push", "", "POST the final overview JSON to this URL")
	idleTimeout := flag.Duration("idle-timeout", latency.DefaultConfig().IdleTimeout, "turn segmentation idle timeout")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		log.Init("debug")
	} else {
		log.Init("warn")
	}

	if *trace == "" {
		fmt.Fprintln(os.Stderr, "Error: --trace is required")
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*trace)
	if err != nil {
		fatal("open trace: %v", err)
	}
	events, err := feed.ReadTrace(f)
	f.Close()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Loaded %d events from %s\n", len(events), *trace)

	if *url != "" {
		stream(*url, events, *speed)
		return
	}

	analyze(events, *idleTimeout, *push, *debug)
}

// stream replays the trace into a running latency server.
func stream(url string, events []protocol.EventData, speed float64) {
	client, err := feed.Dial(url)
	if err != nil {
		fatal("%v", err)
	}
	defer client.Close()

	if err := client.Replay(events, speed); err != nil {
		fatal("replay: %v", err)
	}
	fmt.Printf("Streamed %d events to %s\n", len(events), url)
}

// analyze runs the trace through an in-process tracker and prints the
// resulting report.
func analyze(events []protocol.EventData, idleTimeout time.Duration, push string, debug bool) {
	cfg := latency.DefaultConfig().
		WithIdleTimeout(idleTimeout).
		WithDebug(debug)
	tracker := latency.New(cfg)

	for _, ev := range events {
		tracker.OnEvent(latency.Event{
			Kind:      latency.Kind(ev.Kind),
			Direction: latency.Direction(ev.Direction),
			Text:      ev.Text,
			Timestamp: ev.Timestamp,
		})
	}

	for _, snap := range tracker.Recent(tracker.CompletedCount()) {
		line, err := json.Marshal(snap)
		if err != nil {
			continue
		}
		fmt.Printf("LATENCY_METRICS: %s\n", line)
	}

	fmt.Println()
	fmt.Println(tracker.SummaryReport())

	if push != "" {
		if err := pushOverview(push, tracker.Overview()); err != nil {
			fatal("push: %v", err)
		}
		fmt.Printf("Pushed overview to %s\n", push)
	}
}

// pushOverview uploads the final overview JSON to a collector.
func pushOverview(url string, overview latency.Overview) error {
	body, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	resp, err := httpc.Client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
