package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-voicemetrics/pkg/protocol"
)

func TestReadTrace(t *testing.T) {
	trace := strings.Join([]string{
		`# recorded 2026-08-10, kitchen-timer session`,
		`{"kind":"transcription_complete","text":"hello","ts":100.0}`,
		``,
		`{"kind":"text","ts":100.4}`,
		`{"kind":"tts_started","ts":100.42}`,
		`{"kind":"tts_audio","ts":100.55}`,
	}, "\n")

	events, err := ReadTrace(strings.NewReader(trace))
	if err != nil {
		t.Fatalf("ReadTrace: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4 (comments and blanks skipped)", len(events))
	}
	if events[0].Kind != "transcription_complete" || events[0].Text != "hello" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[3].Timestamp != 100.55 {
		t.Errorf("last timestamp = %v", events[3].Timestamp)
	}
}

func TestReadTraceRejectsMalformedLine(t *testing.T) {
	trace := "{\"kind\":\"text\",\"ts\":1.0}\nnot json\n"
	_, err := ReadTrace(strings.NewReader(trace))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the offending line: %v", err)
	}
}

func TestReadTraceEmpty(t *testing.T) {
	events, err := ReadTrace(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadTrace: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events from empty trace", len(events))
	}
}

func TestDelay(t *testing.T) {
	prev := protocol.EventData{Timestamp: 100.0}
	next := protocol.EventData{Timestamp: 100.5}

	tests := []struct {
		name  string
		prev  protocol.EventData
		next  protocol.EventData
		speed float64
		want  time.Duration
	}{
		{"realtime", prev, next, 1, 500 * time.Millisecond},
		{"double speed", prev, next, 2, 250 * time.Millisecond},
		{"no pacing", prev, next, 0, 0},
		{"out of order", next, prev, 1, 0},
		{"same timestamp", prev, prev, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delay(tt.prev, tt.next, tt.speed); got != tt.want {
				t.Errorf("Delay() = %v, want %v", got, tt.want)
			}
		})
	}
}
