package latency

import "time"

// Kind identifies the type of a pipeline event.
type Kind string

const (
	// KindSessionStart marks pipeline initialization. Forwarded untouched.
	KindSessionStart Kind = "session_start"

	// KindTranscriptionComplete is emitted when speech-to-text finishes a
	// user utterance. This is the event that opens a new interaction.
	KindTranscriptionComplete Kind = "transcription_complete"

	// KindTextProduced is emitted when the model produces response text.
	KindTextProduced Kind = "text"

	// KindSynthesisStarted is emitted when text-to-speech begins.
	KindSynthesisStarted Kind = "tts_started"

	// KindSynthesisAudioProduced is emitted for synthesized audio output.
	// The first one observed for an interaction is its terminal event.
	KindSynthesisAudioProduced Kind = "tts_audio"

	// KindAudioFrame is a raw audio frame moving through the pipeline.
	// Direction distinguishes user microphone audio from bot speaker audio.
	KindAudioFrame Kind = "audio"

	// KindUnrecognized classifies events the tracker does not understand.
	// They are dropped without touching interaction state.
	KindUnrecognized Kind = "unrecognized"
)

// Direction classifies audio flow relative to the user.
type Direction string

const (
	// DirectionInbound is user-to-system audio (microphone).
	DirectionInbound Direction = "inbound"

	// DirectionOutbound is system-to-user audio (speaker).
	DirectionOutbound Direction = "outbound"
)

// Event is a single timestamped occurrence reported by the pipeline.
// Timestamp is wall-clock seconds with sub-millisecond resolution.
// Direction is only meaningful for KindAudioFrame.
type Event struct {
	Kind      Kind      `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp float64   `json:"ts"`
}

// Classify validates the event structurally and returns its effective kind.
// Events with an unknown kind or a missing timestamp classify as
// KindUnrecognized; they must pass through without side effects.
func (e Event) Classify() Kind {
	if e.Timestamp <= 0 {
		return KindUnrecognized
	}
	switch e.Kind {
	case KindSessionStart, KindTranscriptionComplete, KindTextProduced,
		KindSynthesisStarted, KindSynthesisAudioProduced, KindAudioFrame:
		return e.Kind
	}
	return KindUnrecognized
}

// Now returns the current wall-clock time as float seconds, the timestamp
// format events carry on the wire.
func Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
