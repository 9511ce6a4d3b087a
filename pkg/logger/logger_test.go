package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONWithServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Output: &buf, Service: "sessions"})

	log.Info("booked", "session_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "sessions" {
		t.Errorf("expected service attribute 'sessions', got %v", record[SERVICE])
	}
	if record["session_id"] != "abc" {
		t.Errorf("expected session_id 'abc', got %v", record["session_id"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{level: DEBUG, debugSeen: true, warnSeen: true},
		{level: INFO, debugSeen: false, warnSeen: true},
		{level: ERROR, debugSeen: false, warnSeen: false},
		{level: "bogus", debugSeen: false, warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tt.level, Output: &buf, Format: TEXT})

			log.Debug("debug-line")
			log.Warn("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.debugSeen {
				t.Errorf("debug visible = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.warnSeen {
				t.Errorf("warn visible = %v, want %v", got, tt.warnSeen)
			}
		})
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).With("component", "sweeper")

	log.Info("tick")

	if !strings.Contains(buf.String(), `"component":"sweeper"`) {
		t.Errorf("expected component attribute in %q", buf.String())
	}
}
