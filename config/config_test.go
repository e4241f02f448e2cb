package config

import (
	"errors"
	"testing"

	"github.com/FastLED/clockless/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{"strips": [{"pin": 5, "leds": 60}]}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Channel.RingBuffers != 3 {
		t.Errorf("ring_buffers = %d, want default 3", cfg.Channel.RingBuffers)
	}
	if cfg.Channel.QueueDepth != 3 {
		t.Errorf("queue_depth = %d, want default ring size", cfg.Channel.QueueDepth)
	}
	s := cfg.Strips[0]
	if s.Chipset != "WS2812" || s.ColorOrder != "GRB" || s.RecordSize != 3 {
		t.Errorf("strip defaults = %+v", s)
	}
	if s.Bytes() != 180 {
		t.Errorf("Bytes() = %d, want 180", s.Bytes())
	}
}

func TestLoadRGBWRecordSize(t *testing.T) {
	cfg, err := Load([]byte(`{"strips": [{"pin": 2, "leds": 10, "chipset": "SK6812", "color_order": "GRBW"}]}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strips[0].RecordSize != 4 {
		t.Errorf("record_size = %d, want 4 from color_order", cfg.Strips[0].RecordSize)
	}
}

func TestLoadRejectsQueueDepthViolation(t *testing.T) {
	_, err := Load([]byte(`{"channel": {"ring_buffers": 4, "queue_depth": 3}, "strips": [{"pin": 1, "leds": 1}]}`))
	if !errors.Is(err, core.ErrQueueDepth) {
		t.Errorf("expected ErrQueueDepth, got %v", err)
	}
}

func TestLoadRejectsUnknownChipset(t *testing.T) {
	_, err := Load([]byte(`{"strips": [{"pin": 1, "leds": 1, "chipset": "APA102"}]}`))
	if !errors.Is(err, core.ErrUnknownChipset) {
		t.Errorf("expected ErrUnknownChipset, got %v", err)
	}
}

func TestLoadRejectsRecordOrderMismatch(t *testing.T) {
	_, err := Load([]byte(`{"strips": [{"pin": 1, "leds": 1, "color_order": "GRB", "record_size": 4}]}`))
	if err == nil {
		t.Error("expected an error for record_size/color_order mismatch")
	}
}

func TestLoadBadJSON(t *testing.T) {
	if _, err := Load([]byte(`{`)); err == nil {
		t.Error("expected a parse error")
	}
}
