package latency

import "math"

// State tracks the lifecycle of an interaction.
type State int

const (
	// StateActive means the interaction is still collecting events.
	StateActive State = iota

	// StateCompleted means the terminal event arrived and the interaction
	// is immutable.
	StateCompleted
)

// Timestamps holds the stage timestamps of one interaction, in wall-clock
// seconds. Zero means the stage was never observed.
type Timestamps struct {
	Start                 float64 `json:"start"`
	AudioReceived         float64 `json:"audio_received"`
	TranscriptionStart    float64 `json:"transcription_start"`
	TranscriptionComplete float64 `json:"transcription_complete"`
	LLMStart              float64 `json:"llm_start"`
	LLMComplete           float64 `json:"llm_complete"`
	TTSStart              float64 `json:"tts_start"`
	TTSComplete           float64 `json:"tts_complete"`
	AudioOutput           float64 `json:"audio_output"`
	End                   float64 `json:"end"`
}

// Interaction is one conversational turn: from the user's transcription to
// the first synthesized audio of the reply. Derived latencies are in
// milliseconds and stay zero until the interaction completes.
type Interaction struct {
	ID     string
	State  State
	Stamps Timestamps

	STTLatency          float64
	LLMLatency          float64
	TTSLatency          float64
	TotalLatency        float64
	VoiceToVoiceLatency float64
}

// computeLatencies derives stage latencies from the recorded timestamps.
// A latency is only computed when both timestamps of its pair are set;
// otherwise it stays exactly zero. LLM latency falls back to measuring from
// transcription completion when no explicit LLM start was observed.
func (in *Interaction) computeLatencies() {
	ts := in.Stamps

	if ts.TranscriptionStart > 0 && ts.TranscriptionComplete > 0 {
		in.STTLatency = (ts.TranscriptionComplete - ts.TranscriptionStart) * 1000
	}

	if ts.LLMStart > 0 && ts.LLMComplete > 0 {
		in.LLMLatency = (ts.LLMComplete - ts.LLMStart) * 1000
	} else if ts.TranscriptionComplete > 0 && ts.LLMComplete > 0 {
		in.LLMLatency = (ts.LLMComplete - ts.TranscriptionComplete) * 1000
	}

	if ts.TTSStart > 0 && ts.TTSComplete > 0 {
		in.TTSLatency = (ts.TTSComplete - ts.TTSStart) * 1000
	}

	if ts.Start > 0 && ts.End > 0 {
		in.TotalLatency = (ts.End - ts.Start) * 1000
	}

	if ts.TranscriptionComplete > 0 && ts.AudioOutput > 0 {
		in.VoiceToVoiceLatency = (ts.AudioOutput - ts.TranscriptionComplete) * 1000
	}
}

// Snapshot is the wire form of a completed interaction, suitable for
// logging or JSON emission. Latencies are rounded to two decimals.
type Snapshot struct {
	InteractionID         string     `json:"interaction_id"`
	STTLatencyMs          float64    `json:"stt_latency_ms"`
	LLMLatencyMs          float64    `json:"llm_latency_ms"`
	TTSLatencyMs          float64    `json:"tts_latency_ms"`
	TotalLatencyMs        float64    `json:"total_latency_ms"`
	VoiceToVoiceLatencyMs float64    `json:"voice_to_voice_latency_ms"`
	Timestamps            Timestamps `json:"timestamps"`
}

// Snapshot returns the loggable form of the interaction.
func (in *Interaction) Snapshot() Snapshot {
	return Snapshot{
		InteractionID:         in.ID,
		STTLatencyMs:          round2(in.STTLatency),
		LLMLatencyMs:          round2(in.LLMLatency),
		TTSLatencyMs:          round2(in.TTSLatency),
		TotalLatencyMs:        round2(in.TotalLatency),
		VoiceToVoiceLatencyMs: round2(in.VoiceToVoiceLatency),
		Timestamps:            in.Stamps,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
