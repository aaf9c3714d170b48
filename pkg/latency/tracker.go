package latency

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-voicemetrics/internal/log"
)

// Tracker consumes pipeline events in arrival order and maintains per-turn
// interaction state plus aggregate statistics. All methods are safe for
// concurrent use; mutating operations serialize behind a single mutex, which
// is sufficient at conversational event rates.
//
// One Tracker instance belongs to exactly one pipeline session. Instances
// are never shared across sessions.
type Tracker struct {
	mu  sync.Mutex
	cfg Config

	active    map[string]*Interaction
	completed []*Interaction
	counter   int

	// Turn segmentation state: the interaction new events group into, and
	// the time of the last inbound transcription activity.
	currentID     string
	lastInboundAt float64

	stats Stats

	onComplete func(Snapshot)

	// clock supplies "now" in float seconds. Overridable in tests.
	clock func() float64
}

// New creates a Tracker. Invalid config values fall back to defaults so that
// instrumentation can never fail to come up.
func New(cfg Config) *Tracker {
	if err := cfg.Validate(); err != nil {
		log.Warn("latency: invalid config, using defaults", "err", err)
		cfg = DefaultConfig()
	}
	return &Tracker{
		cfg:    cfg,
		active: make(map[string]*Interaction),
		stats:  newStats(),
		clock:  Now,
	}
}

// OnComplete registers a callback fired after each completed interaction.
// The callback receives a copied snapshot and runs on its own goroutine; it
// must not call back into mutating Tracker methods.
func (t *Tracker) OnComplete(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onComplete = fn
}

// OnEvent is the sole event entry point. It consumes one pipeline event and
// updates interaction state as a side effect. It is a total function: no
// event, however malformed, causes an error or panic.
func (t *Tracker) OnEvent(ev Event) {
	switch ev.Classify() {
	case KindUnrecognized:
		// Dropped silently. A failure here must never interrupt a
		// live audio session.
		return
	case KindSessionStart:
		// Pipeline initialization marker, forwarded untouched.
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case KindTranscriptionComplete:
		t.onTranscription(ev)
	case KindAudioFrame:
		if ev.Direction == DirectionOutbound {
			if in := t.current(); in != nil && in.Stamps.AudioOutput == 0 {
				in.Stamps.AudioOutput = ev.Timestamp
				t.debugf("audio output started", in.ID)
			}
		}
	case KindTextProduced:
		if in := t.current(); in != nil && in.Stamps.LLMComplete == 0 {
			in.Stamps.LLMComplete = ev.Timestamp
			t.debugf("llm response complete", in.ID)
		}
	case KindSynthesisStarted:
		if in := t.current(); in != nil {
			in.Stamps.TTSStart = ev.Timestamp
			t.debugf("tts started", in.ID)
		}
	case KindSynthesisAudioProduced:
		in := t.current()
		if in == nil {
			return
		}
		// Synthesized audio is the bot's speaker output, so it also
		// marks audio_output for the voice-to-voice measurement.
		if in.Stamps.AudioOutput == 0 {
			in.Stamps.AudioOutput = ev.Timestamp
		}
		if in.Stamps.TTSComplete == 0 {
			in.Stamps.TTSComplete = ev.Timestamp
			t.debugf("tts audio complete", in.ID)
			t.complete(in)
		}
	}
}

// onTranscription applies the turn segmentation rule: a transcription opens
// a new interaction when none is current or when the idle timeout elapsed
// since the last inbound activity.
//
// When the transcription falls inside the idle window of the current
// interaction its timestamp is intentionally not recorded. On
// multi-utterance turns this drops data the voice-to-voice measurement
// would want; kept as-is pending product review.
func (t *Tracker) onTranscription(ev Event) {
	idle := t.cfg.IdleTimeout.Seconds()
	if t.currentID == "" || ev.Timestamp-t.lastInboundAt > idle {
		in := t.newInteraction()
		in.Stamps.TranscriptionComplete = ev.Timestamp
		t.currentID = in.ID
		t.debugf("new interaction started", in.ID)
	}
	t.lastInboundAt = ev.Timestamp
}

// current returns the current interaction if it exists and is still active.
func (t *Tracker) current() *Interaction {
	if t.currentID == "" {
		return nil
	}
	return t.active[t.currentID]
}

// newInteraction creates and registers a fresh active interaction.
func (t *Tracker) newInteraction() *Interaction {
	t.counter++
	now := t.clock()
	in := &Interaction{
		ID:    fmt.Sprintf("interaction_%d_%d", t.counter, int64(now*1000)),
		State: StateActive,
		Stamps: Timestamps{
			Start: now,
		},
	}
	t.active[in.ID] = in
	return in
}

// complete finalizes an interaction: stamps the end time, derives latencies,
// archives it and rebuilds aggregate statistics. Called with the mutex held.
func (t *Tracker) complete(in *Interaction) {
	in.Stamps.End = t.clock()
	in.computeLatencies()
	in.State = StateCompleted

	delete(t.active, in.ID)
	t.completed = append(t.completed, in)
	if t.currentID == in.ID {
		t.currentID = ""
	}
	t.stats = rebuildStats(t.completed)

	snap := in.Snapshot()
	log.Info("interaction completed",
		"id", snap.InteractionID,
		"voice_to_voice_ms", snap.VoiceToVoiceLatencyMs,
		"stt_ms", snap.STTLatencyMs,
		"llm_ms", snap.LLMLatencyMs,
		"tts_ms", snap.TTSLatencyMs,
		"total_ms", snap.TotalLatencyMs,
	)

	if t.onComplete != nil {
		// Copied snapshot on a fresh goroutine so the callback can log
		// or transmit without holding up event processing.
		go t.onComplete(snap)
	}
}

// ActiveCount returns the number of interactions still collecting events.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// CompletedCount returns the size of the completion archive.
func (t *Tracker) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

// Lookup returns a snapshot of the interaction with the given id, active or
// completed.
func (t *Tracker) Lookup(id string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if in, ok := t.active[id]; ok {
		return in.Snapshot(), true
	}
	for _, in := range t.completed {
		if in.ID == id {
			return in.Snapshot(), true
		}
	}
	return Snapshot{}, false
}

// Stats returns a copy of the current aggregate statistics.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.clone()
}

// Recent returns the last n completed interactions in completion order. The
// underlying archive is never truncated.
func (t *Tracker) Recent(n int) []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recentLocked(n)
}

func (t *Tracker) recentLocked(n int) []Snapshot {
	if n > len(t.completed) {
		n = len(t.completed)
	}
	if n <= 0 {
		return []Snapshot{}
	}
	out := make([]Snapshot, 0, n)
	for _, in := range t.completed[len(t.completed)-n:] {
		out = append(out, in.Snapshot())
	}
	return out
}

// Overview is the full reporting snapshot of one tracker.
type Overview struct {
	Stats                 Stats      `json:"current_stats"`
	ActiveInteractions    int        `json:"active_interactions"`
	CompletedInteractions int        `json:"completed_interactions"`
	RecentInteractions    []Snapshot `json:"recent_interactions"`
}

// Overview returns aggregate statistics together with counts and the most
// recent completions.
func (t *Tracker) Overview() Overview {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Overview{
		Stats:                 t.stats.clone(),
		ActiveInteractions:    len(t.active),
		CompletedInteractions: len(t.completed),
		RecentInteractions:    t.recentLocked(t.cfg.RecentCount),
	}
}

// Reset clears the active set, the completion archive and aggregate
// statistics atomically from the caller's perspective.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[string]*Interaction)
	t.completed = nil
	t.currentID = ""
	t.lastInboundAt = 0
	t.stats = newStats()
	log.Info("latency statistics reset")
}

// EvictStale drops active interactions whose last activity is older than
// Config.EvictAfter and returns how many were removed. A no-op when eviction
// is disabled. Evicted interactions never enter the archive; they are
// abandoned turns that never saw synthesized audio.
func (t *Tracker) EvictStale() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.EvictAfter <= 0 {
		return 0
	}
	cutoff := t.clock() - t.cfg.EvictAfter.Seconds()
	evicted := 0
	for id, in := range t.active {
		if lastActivity(in) < cutoff {
			delete(t.active, id)
			if t.currentID == id {
				t.currentID = ""
			}
			evicted++
			log.Warn("evicted stale interaction", "id", id)
		}
	}
	return evicted
}

// lastActivity returns the newest stage timestamp of an interaction.
func lastActivity(in *Interaction) float64 {
	ts := in.Stamps
	latest := ts.Start
	for _, v := range []float64{
		ts.AudioReceived, ts.TranscriptionStart, ts.TranscriptionComplete,
		ts.LLMStart, ts.LLMComplete, ts.TTSStart, ts.TTSComplete,
		ts.AudioOutput,
	} {
		if v > latest {
			latest = v
		}
	}
	return latest
}

func (t *Tracker) debugf(msg, id string) {
	if t.cfg.Debug {
		log.Debug(msg, "id", id)
	}
}
