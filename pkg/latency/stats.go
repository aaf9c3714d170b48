package latency

import "sort"

// Latency type keys used in aggregate statistics maps.
const (
	KeySTT          = "stt_latency"
	KeyLLM          = "llm_latency"
	KeyTTS          = "tts_latency"
	KeyTotal        = "total_latency"
	KeyVoiceToVoice = "voice_to_voice_latency"
)

// latencyKeys is the stable iteration order for reports.
var latencyKeys = []string{KeySTT, KeyLLM, KeyTTS, KeyTotal, KeyVoiceToVoice}

// percentileMinSamples is the minimum sample count before p95/p99 are
// reported for a latency type.
const percentileMinSamples = 20

// Stats holds aggregate latency statistics over all completed interactions.
// Each map is keyed by latency type; a type with no positive samples is
// absent from every map.
type Stats struct {
	TotalInteractions int                `json:"total_interactions"`
	AverageLatencies  map[string]float64 `json:"average_latencies"`
	MinLatencies      map[string]float64 `json:"min_latencies"`
	MaxLatencies      map[string]float64 `json:"max_latencies"`
	P95Latencies      map[string]float64 `json:"p95_latencies"`
	P99Latencies      map[string]float64 `json:"p99_latencies"`
}

func newStats() Stats {
	return Stats{
		AverageLatencies: make(map[string]float64),
		MinLatencies:     make(map[string]float64),
		MaxLatencies:     make(map[string]float64),
		P95Latencies:     make(map[string]float64),
		P99Latencies:     make(map[string]float64),
	}
}

// clone returns an independent copy safe to hand to callers.
func (s Stats) clone() Stats {
	out := Stats{TotalInteractions: s.TotalInteractions}
	out.AverageLatencies = copyMap(s.AverageLatencies)
	out.MinLatencies = copyMap(s.MinLatencies)
	out.MaxLatencies = copyMap(s.MaxLatencies)
	out.P95Latencies = copyMap(s.P95Latencies)
	out.P99Latencies = copyMap(s.P99Latencies)
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// latencyByKey maps a latency type key to the interaction's derived value.
func latencyByKey(in *Interaction, key string) float64 {
	switch key {
	case KeySTT:
		return in.STTLatency
	case KeyLLM:
		return in.LLMLatency
	case KeyTTS:
		return in.TTSLatency
	case KeyTotal:
		return in.TotalLatency
	case KeyVoiceToVoice:
		return in.VoiceToVoiceLatency
	}
	return 0
}

// rebuildStats recomputes aggregate statistics from the full completion
// archive. Recomputation is intentionally not incremental: at conversational
// turn rates a full pass is cheap, and it keeps the math trivially auditable.
func rebuildStats(completed []*Interaction) Stats {
	stats := newStats()
	stats.TotalInteractions = len(completed)
	if len(completed) == 0 {
		return stats
	}

	for _, key := range latencyKeys {
		values := make([]float64, 0, len(completed))
		for _, in := range completed {
			if v := latencyByKey(in, key); v > 0 {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}

		var sum, min, max float64
		min = values[0]
		max = values[0]
		for _, v := range values {
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		stats.AverageLatencies[key] = sum / float64(len(values))
		stats.MinLatencies[key] = min
		stats.MaxLatencies[key] = max

		// Nearest-rank percentiles, no interpolation. Only meaningful
		// once enough turns completed.
		if n := len(values); n >= percentileMinSamples {
			sorted := make([]float64, n)
			copy(sorted, values)
			sort.Float64s(sorted)
			stats.P95Latencies[key] = sorted[int(0.95*float64(n))]
			stats.P99Latencies[key] = sorted[int(0.99*float64(n))]
		}
	}
	return stats
}
