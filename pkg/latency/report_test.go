package latency

import (
	"strings"
	"testing"
)

func TestSummaryReportEmpty(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())

	got := tr.SummaryReport()
	if got != "No completed interactions to report" {
		t.Errorf("empty report = %q", got)
	}
}

func TestSummaryReportSections(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())
	for i := 0; i < 3; i++ {
		completeTurn(t, tr, 100.0+float64(i)*10)
	}

	report := tr.SummaryReport()

	for _, want := range []string{
		"LATENCY ANALYSIS SUMMARY REPORT",
		"Total Interactions: 3",
		"Average Latencies:",
		"Performance Ranges:",
		"Llm Latency: 400.00ms",
		"Tts Latency: 130.00ms",
		"Voice To Voice Latency: 550.00ms - 550.00ms",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}

	// Three completions are far below the percentile threshold.
	if strings.Contains(report, "Percentile") {
		t.Errorf("report contains percentiles with only 3 samples\n%s", report)
	}
}

func TestSummaryReportPercentiles(t *testing.T) {
	tr, _ := newTestTracker(DefaultConfig())
	for i := 0; i < 25; i++ {
		completeTurn(t, tr, 100.0+float64(i)*10)
	}

	report := tr.SummaryReport()
	if !strings.Contains(report, "95th Percentile Latencies:") {
		t.Errorf("report missing p95 section with 25 samples\n%s", report)
	}
	if !strings.Contains(report, "99th Percentile Latencies:") {
		t.Errorf("report missing p99 section with 25 samples\n%s", report)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{KeySTT, "Stt Latency"},
		{KeyVoiceToVoice, "Voice To Voice Latency"},
	}
	for _, tt := range tests {
		if got := displayName(tt.key); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
