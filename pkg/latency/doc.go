// Package latency measures per-turn and aggregate latency for realtime voice
// pipelines.
//
// The package consumes an ordered stream of pipeline events (transcription,
// model text, speech synthesis, audio frames) and segments them into
// interactions: one conversational turn each, from the user's transcription
// to the first synthesized audio of the reply. For every completed
// interaction it derives stage latencies (STT, LLM, TTS, total,
// voice-to-voice) and folds them into rolling aggregate statistics.
//
// The tracker is a pure observer. It never blocks, never performs I/O on the
// event path, and a malformed event can never interrupt the pipeline that
// feeds it.
//
// # Usage
//
// Create one Tracker per pipeline session and feed it events as they occur:
//
//	import "github.com/teslashibe/go-voicemetrics/pkg/latency"
//
//	tracker := latency.New(latency.DefaultConfig())
//
//	// Feed pipeline events in arrival order.
//	tracker.OnEvent(latency.Event{
//	    Kind:      latency.KindTranscriptionComplete,
//	    Text:      "what time is it",
//	    Timestamp: latency.Now(),
//	})
//
//	// React to completed turns.
//	tracker.OnComplete(func(snap latency.Snapshot) {
//	    fmt.Printf("turn %s: voice-to-voice %.0fms\n",
//	        snap.InteractionID, snap.VoiceToVoiceLatencyMs)
//	})
//
// # Statistics
//
// Aggregate statistics are recomputed over the full completion archive on
// every completed turn:
//
//	stats := tracker.Stats()
//	fmt.Printf("%d turns, avg voice-to-voice %.0fms\n",
//	    stats.TotalInteractions,
//	    stats.AverageLatencies["voice_to_voice_latency"])
//
// Percentiles (p95/p99) appear once a latency type has at least 20 samples.
// SummaryReport renders the same numbers as a human-readable report.
package latency
