package latency

import (
	"testing"
	"time"
)

// newTestTracker returns a tracker with a deterministic clock.
func newTestTracker(cfg Config) (*Tracker, *float64) {
	now := 1000.0
	tr := New(cfg)
	tr.clock = func() float64 { return now }
	return tr, &now
}

// completeTurn feeds one full turn starting at base seconds and returns the
// completed snapshot.
func completeTurn(t *testing.T, tr *Tracker, base float64) Snapshot {
	t.Helper()
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Text: "hi", Timestamp: base})
	tr.OnEvent(Event{Kind: KindTextProduced, Timestamp: base + 0.4})
	tr.OnEvent(Event{Kind: KindSynthesisStarted, Timestamp: base + 0.42})
	tr.OnEvent(Event{Kind: KindSynthesisAudioProduced, Timestamp: base + 0.55})

	recent := tr.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("turn at t=%v did not complete", base)
	}
	return recent[0]
}

func TestSegmentationNewTurnAfterIdleTimeout(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	// 3.0s gap exceeds the 2.0s idle timeout: two distinct interactions.
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 103.0})

	if got := tr.ActiveCount(); got != 2 {
		t.Errorf("active count = %d, want 2 distinct interactions", got)
	}
}

func TestSegmentationGroupsWithinIdleTimeout(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	// 1.0s gap stays within the 2.0s timeout: one interaction, and its
	// transcription_complete keeps the first event's time. The second
	// transcription's time is dropped.
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 101.0})

	if got := tr.ActiveCount(); got != 1 {
		t.Fatalf("active count = %d, want 1", got)
	}

	tr.OnEvent(Event{Kind: KindSynthesisAudioProduced, Timestamp: 101.5})
	recent := tr.Recent(1)
	if len(recent) != 1 {
		t.Fatal("interaction did not complete")
	}
	if got := recent[0].Timestamps.TranscriptionComplete; got != 100.0 {
		t.Errorf("transcription_complete = %v, want 100.0 (first event only)", got)
	}
}

func TestSegmentationIdleClockAdvancesInBothBranches(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	// Transcriptions at 100.0, 101.5, 103.0: each gap is within the
	// timeout even though the total span is not, so all group into one
	// interaction because the idle clock advances on every event.
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 101.5})
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 103.0})

	if got := tr.ActiveCount(); got != 1 {
		t.Errorf("active count = %d, want 1", got)
	}
}

func TestEventRoutingFirstAndLastWriteRules(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})

	// Outbound audio: first write wins.
	tr.OnEvent(Event{Kind: KindAudioFrame, Direction: DirectionOutbound, Timestamp: 100.5})
	tr.OnEvent(Event{Kind: KindAudioFrame, Direction: DirectionOutbound, Timestamp: 100.9})

	// Inbound audio never touches audio_output.
	tr.OnEvent(Event{Kind: KindAudioFrame, Direction: DirectionInbound, Timestamp: 100.95})

	// Text: first write wins.
	tr.OnEvent(Event{Kind: KindTextProduced, Timestamp: 100.4})
	tr.OnEvent(Event{Kind: KindTextProduced, Timestamp: 100.8})

	// Synthesis start: last write wins.
	tr.OnEvent(Event{Kind: KindSynthesisStarted, Timestamp: 100.42})
	tr.OnEvent(Event{Kind: KindSynthesisStarted, Timestamp: 100.45})

	tr.OnEvent(Event{Kind: KindSynthesisAudioProduced, Timestamp: 101.0})

	snap := tr.Recent(1)[0]
	ts := snap.Timestamps
	if ts.AudioOutput != 100.5 {
		t.Errorf("audio_output = %v, want 100.5 (first outbound frame)", ts.AudioOutput)
	}
	if ts.LLMComplete != 100.4 {
		t.Errorf("llm_complete = %v, want 100.4 (first text)", ts.LLMComplete)
	}
	if ts.TTSStart != 100.45 {
		t.Errorf("tts_start = %v, want 100.45 (last synthesis start)", ts.TTSStart)
	}
	if ts.TTSComplete != 101.0 {
		t.Errorf("tts_complete = %v, want 101.0", ts.TTSComplete)
	}
}

func TestCompletionMovesInteractionToArchive(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	snap := completeTurn(t, tr, 100.0)

	if tr.ActiveCount() != 0 {
		t.Errorf("active count = %d after completion, want 0", tr.ActiveCount())
	}
	if tr.CompletedCount() != 1 {
		t.Errorf("completed count = %d, want 1", tr.CompletedCount())
	}

	// Completed interactions stay addressable.
	got, ok := tr.Lookup(snap.InteractionID)
	if !ok {
		t.Fatalf("lookup(%q) failed after completion", snap.InteractionID)
	}
	if got.TTSLatencyMs != snap.TTSLatencyMs {
		t.Errorf("lookup snapshot mismatch: %v vs %v", got.TTSLatencyMs, snap.TTSLatencyMs)
	}

	// Terminal events after completion are inert: no current interaction.
	tr.OnEvent(Event{Kind: KindSynthesisAudioProduced, Timestamp: 101.0})
	if tr.CompletedCount() != 1 {
		t.Errorf("completed count changed after stray terminal event")
	}
}

func TestEndToEndTurnLatencies(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	tr.OnEvent(Event{Kind: KindSessionStart, Timestamp: 99.0})
	snap := completeTurn(t, tr, 100.0)

	if !almostEqual(snap.LLMLatencyMs, 400) {
		t.Errorf("llm latency = %v, want 400", snap.LLMLatencyMs)
	}
	if !almostEqual(snap.TTSLatencyMs, 130) {
		t.Errorf("tts latency = %v, want 130", snap.TTSLatencyMs)
	}
	if !almostEqual(snap.VoiceToVoiceLatencyMs, 550) {
		t.Errorf("voice-to-voice latency = %v, want 550", snap.VoiceToVoiceLatencyMs)
	}
}

func TestUnrecognizedEventsAreInert(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})

	tr.OnEvent(Event{Kind: "bogus", Timestamp: 100.5})
	tr.OnEvent(Event{Kind: KindTextProduced})               // missing timestamp
	tr.OnEvent(Event{Kind: KindSynthesisAudioProduced})     // missing timestamp
	tr.OnEvent(Event{Kind: "", Timestamp: 100.6})           // missing kind
	tr.OnEvent(Event{Kind: KindSessionStart, Timestamp: 1}) // pass-through

	if got := tr.ActiveCount(); got != 1 {
		t.Errorf("active count = %d after malformed events, want 1", got)
	}
	if got := tr.CompletedCount(); got != 0 {
		t.Errorf("completed count = %d after malformed events, want 0", got)
	}
}

func TestRecentReturnsLastNInCompletionOrder(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	var ids []string
	for i := 0; i < 7; i++ {
		snap := completeTurn(t, tr, 100.0+float64(i)*10)
		ids = append(ids, snap.InteractionID)
	}

	recent := tr.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("recent(3) returned %d entries", len(recent))
	}
	for i, want := range ids[4:] {
		if recent[i].InteractionID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].InteractionID, want)
		}
	}

	// The archive itself is never truncated.
	if got := tr.CompletedCount(); got != 7 {
		t.Errorf("completed count = %d, want 7", got)
	}
	if got := len(tr.Recent(100)); got != 7 {
		t.Errorf("recent(100) returned %d, want all 7", got)
	}
}

func TestOverview(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	for i := 0; i < 7; i++ {
		completeTurn(t, tr, 100.0+float64(i)*10)
	}
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 500.0})

	ov := tr.Overview()
	if ov.ActiveInteractions != 1 {
		t.Errorf("overview active = %d, want 1", ov.ActiveInteractions)
	}
	if ov.CompletedInteractions != 7 {
		t.Errorf("overview completed = %d, want 7", ov.CompletedInteractions)
	}
	if len(ov.RecentInteractions) != 5 {
		t.Errorf("overview recent = %d entries, want 5", len(ov.RecentInteractions))
	}
	if ov.Stats.TotalInteractions != 7 {
		t.Errorf("overview stats total = %d, want 7", ov.Stats.TotalInteractions)
	}
}

func TestResetClearsEverything(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	completeTurn(t, tr, 100.0)
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 200.0})

	tr.Reset()

	ov := tr.Overview()
	if ov.ActiveInteractions != 0 || ov.CompletedInteractions != 0 {
		t.Errorf("counts after reset = %d/%d, want 0/0",
			ov.ActiveInteractions, ov.CompletedInteractions)
	}
	if ov.Stats.TotalInteractions != 0 {
		t.Errorf("stats total after reset = %d, want 0", ov.Stats.TotalInteractions)
	}
	for name, m := range map[string]map[string]float64{
		"average": ov.Stats.AverageLatencies,
		"min":     ov.Stats.MinLatencies,
		"max":     ov.Stats.MaxLatencies,
		"p95":     ov.Stats.P95Latencies,
		"p99":     ov.Stats.P99Latencies,
	} {
		if len(m) != 0 {
			t.Errorf("%s latencies not empty after reset: %v", name, m)
		}
	}
}

func TestEvictStale(t *testing.T) {
	cfg := DefaultConfig().WithEvictAfter(5 * time.Second)
	tr, now := newTestTracker(cfg)

	*now = 100.0
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})
	if got := tr.EvictStale(); got != 0 {
		t.Errorf("evicted %d fresh interactions", got)
	}

	*now = 200.0
	if got := tr.EvictStale(); got != 1 {
		t.Errorf("evicted = %d, want 1", got)
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("active count = %d after eviction", tr.ActiveCount())
	}
	if tr.CompletedCount() != 0 {
		t.Error("evicted interaction must not enter the archive")
	}
}

func TestEvictDisabledByDefault(t *testing.T) {
	tr, now := newTestTracker(DefaultConfig())

	*now = 100.0
	tr.OnEvent(Event{Kind: KindTranscriptionComplete, Timestamp: 100.0})
	*now = 1e9
	if got := tr.EvictStale(); got != 0 {
		t.Errorf("eviction ran with EvictAfter=0, removed %d", got)
	}
	if tr.ActiveCount() != 1 {
		t.Error("abandoned interaction must stay active by default")
	}
}
