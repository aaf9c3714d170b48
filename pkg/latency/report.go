package latency

import (
	"fmt"
	"strings"
)

const reportRule = "============================================================"

// SummaryReport renders the current aggregate statistics as a human-readable
// report. When nothing has completed yet it returns an explicit
// "nothing to report" line instead of an empty document.
func (t *Tracker) SummaryReport() string {
	stats := t.Stats()
	if stats.TotalInteractions == 0 {
		return "No completed interactions to report"
	}

	var b strings.Builder
	b.WriteString(reportRule + "\n")
	b.WriteString("LATENCY ANALYSIS SUMMARY REPORT\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Total Interactions: %d\n\n", stats.TotalInteractions)

	if len(stats.AverageLatencies) > 0 {
		b.WriteString("Average Latencies:\n")
		for _, key := range latencyKeys {
			if v, ok := stats.AverageLatencies[key]; ok {
				fmt.Fprintf(&b, "  %s: %.2fms\n", displayName(key), v)
			}
		}
		b.WriteString("\n")
	}

	if len(stats.MinLatencies) > 0 {
		b.WriteString("Performance Ranges:\n")
		for _, key := range latencyKeys {
			min, ok := stats.MinLatencies[key]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %s: %.2fms - %.2fms\n",
				displayName(key), min, stats.MaxLatencies[key])
		}
		b.WriteString("\n")
	}

	if len(stats.P95Latencies) > 0 {
		b.WriteString("95th Percentile Latencies:\n")
		for _, key := range latencyKeys {
			if v, ok := stats.P95Latencies[key]; ok {
				fmt.Fprintf(&b, "  %s: %.2fms\n", displayName(key), v)
			}
		}
		b.WriteString("\n")
	}

	if len(stats.P99Latencies) > 0 {
		b.WriteString("99th Percentile Latencies:\n")
		for _, key := range latencyKeys {
			if v, ok := stats.P99Latencies[key]; ok {
				fmt.Fprintf(&b, "  %s: %.2fms\n", displayName(key), v)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(reportRule)
	return b.String()
}

// displayName turns "voice_to_voice_latency" into "Voice To Voice Latency".
func displayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
